package main // Entry point package

import (
    "context"
    "log"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/railway-seat-reservation/internal/config"
    "github.com/iliyamo/railway-seat-reservation/internal/database"
    "github.com/iliyamo/railway-seat-reservation/internal/handler"
    "github.com/iliyamo/railway-seat-reservation/internal/queue"
    "github.com/iliyamo/railway-seat-reservation/internal/repository"
    "github.com/iliyamo/railway-seat-reservation/internal/router"
    "github.com/iliyamo/railway-seat-reservation/internal/service"
)

func main() {
    // .env is optional; real deployments set the environment directly.
    _ = godotenv.Load()
    cfg := config.Load()

    db, err := database.Open(cfg.DSN(), cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetime)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    rdb := config.NewRedisClient()
    if rdb == nil {
        log.Println("redis unavailable; cache and rate limiting disabled")
    }

    // Repositories share the one pool; handlers own the transactions.
    bookings := repository.NewBookingRepo(db)
    payments := repository.NewPaymentRepo(db)
    waitlist := repository.NewWaitlistRepo(db)
    trips := repository.NewTripRepo(db)
    trains := repository.NewTrainRepo(db)
    cities := repository.NewCityRepo(db)
    passengers := repository.NewPassengerRepo(db)
    accounts := repository.NewAccountRepo(db)
    tokens := repository.NewTokenRepo(db)
    reports := repository.NewReportRepo(db)
    notifications := repository.NewNotificationRepo(db)

    authH := handler.NewAuthHandler(cfg, accounts, tokens)
    bookingH := handler.NewBookingHandler(cfg, bookings, payments, waitlist, trips, trains, passengers, notifications)
    paymentH := handler.NewPaymentHandler(bookings, payments, waitlist, passengers)
    waitlistH := handler.NewWaitlistHandler(bookings, waitlist, trains)
    staffH := handler.NewStaffHandler(accounts)
    catalogH := handler.NewCatalogHandler(cities, trips, trains)
    availH := handler.NewAvailabilityHandler(bookings, trips, trains)
    passengerH := handler.NewPassengerHandler(passengers, bookings)
    reportH := handler.NewReportHandler(reports)

    e := echo.New()
    e.HideBanner = true
    router.RegisterRoutes(e)
    router.RegisterAuth(e, authH, cfg.JWTSecret)
    router.RegisterPublic(e, catalogH, availH, config.LoadCacheConfig(), config.LoadRateLimitConfig(), rdb)
    router.RegisterPassenger(e, bookingH, paymentH, passengerH, cfg.JWTSecret)
    router.RegisterStaff(e, waitlistH, staffH, passengerH, reportH, cfg.JWTSecret)

    // Background workers: the broker consumer writing the notification
    // log, and the departure reminder sweep.
    go func() {
        if err := queue.StartNotificationConsumer(); err != nil {
            log.Printf("notification consumer stopped: %v", err)
        }
    }()
    sweep := service.NewReminderSweep(notifications, 0, 0)
    go sweep.Run(context.Background())

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)
    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}

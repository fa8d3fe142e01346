package config // package config loads application configuration from environment variables

import (
    "fmt"     // fmt assembles the database DSN
    "log"     // log reports configuration errors and halts execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
    "strings" // strings normalizes class names for fare lookup
    "time"    // time expresses the connection lifetime
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Fare values are stored in cents so that money
// arithmetic stays integral throughout the booking engine.
type Config struct {
    Env               string // application environment (e.g. "dev", "prod")
    Port              string // HTTP port to listen on
    DBUser            string // database username
    DBPass            string // database password (optional)
    DBHost            string // database host address
    DBPort            string // database port number
    DBName            string // database name
    DBMaxOpenConns    int           // connection pool upper bound
    DBMaxIdleConns    int           // idle connections kept around
    DBConnMaxLifetime time.Duration // connection age before recycling
    JWTSecret         string // secret used to sign JWTs
    AccessTTLMin      int    // access token time‑to‑live in minutes
    RefreshTTLDays    int    // refresh token time‑to‑live in days
    BcryptCost        int    // bcrypt cost for password hashing
    FareEconomyCents  uint32 // base fare for an Economy seat, in cents
    FareBusinessCents uint32 // base fare for a Business seat, in cents
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  The fare table is
// deliberately configuration rather than compiled-in constants so that it
// can differ per deployment and per test.
func Load() Config {
    return Config{
        Env:               must("APP_ENV"),
        Port:              must("APP_PORT"),
        DBUser:            must("DB_USER"),
        DBPass:            os.Getenv("DB_PASS"), // empty allowed
        DBHost:            must("DB_HOST"),
        DBPort:            must("DB_PORT"),
        DBName:            must("DB_NAME"),
        DBMaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 25),
        DBMaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 25),
        DBConnMaxLifetime: envDur("DB_CONN_MAX_LIFETIME", 30*time.Minute),
        JWTSecret:         must("JWT_SECRET"),
        AccessTTLMin:      mustInt("ACCESS_TOKEN_TTL_MIN"),
        RefreshTTLDays:    mustInt("REFRESH_TOKEN_TTL_DAYS"),
        BcryptCost:        mustInt("BCRYPT_COST"),
        FareEconomyCents:  uint32(mustInt("FARE_ECONOMY_CENTS")),
        FareBusinessCents: uint32(mustInt("FARE_BUSINESS_CENTS")),
    }
}

// DSN assembles the MySQL connection string from the DB_* settings.
// parseTime maps DATETIME columns onto time.Time and loc=UTC keeps
// the booking timestamps consistent across handlers.
func (c Config) DSN() string {
    auth := c.DBUser
    if c.DBPass != "" {
        auth = fmt.Sprintf("%s:%s", c.DBUser, c.DBPass)
    }
    return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
        auth, c.DBHost, c.DBPort, c.DBName)
}

// FareForClass resolves the configured base fare for a fare class.  The
// second return value is false when the class is not one of the declared
// fare tiers; callers should treat that as an invalid-argument condition.
func (c Config) FareForClass(class string) (uint32, bool) {
    switch strings.TrimSpace(class) {
    case "Economy":
        return c.FareEconomyCents, true
    case "Business":
        return c.FareBusinessCents, true
    }
    return 0, false
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}

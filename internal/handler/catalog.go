package handler

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/railway-seat-reservation/internal/model"
    "github.com/iliyamo/railway-seat-reservation/internal/repository"
)

// CatalogHandler serves the public browse endpoints: cities, trip
// search and the trains running today.  These routes sit behind the
// Redis response cache.
type CatalogHandler struct {
    Cities *repository.CityRepo
    Trips  *repository.TripRepo
    Trains *repository.TrainRepo
}

func NewCatalogHandler(c *repository.CityRepo, t *repository.TripRepo, tr *repository.TrainRepo) *CatalogHandler {
    return &CatalogHandler{Cities: c, Trips: t, Trains: tr}
}

// ListCities returns every city served by the network.
func (h *CatalogHandler) ListCities(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    cities, err := h.Cities.List(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list cities failed"})
    }
    out := make([]echo.Map, 0, len(cities))
    for _, city := range cities {
        out = append(out, echo.Map{
            "id":           city.ID,
            "name_english": city.NameEnglish,
            "name_arabic":  city.NameArabic,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"cities": out})
}

// Search finds active trips between two cities on a date.  Query
// parameters: from, to (city names) and date (YYYY-MM-DD).
func (h *CatalogHandler) Search(c echo.Context) error {
    from := strings.TrimSpace(c.QueryParam("from"))
    to := strings.TrimSpace(c.QueryParam("to"))
    date := strings.TrimSpace(c.QueryParam("date"))
    if from == "" || to == "" || date == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "from, to and date are required"})
    }
    if _, err := time.Parse("2006-01-02", date); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    trips, err := h.Trips.Search(ctx, from, to, date)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"trips": tripSummariesJSON(trips)})
}

// ActiveToday lists the trips departing today that are still Active.
func (h *CatalogHandler) ActiveToday(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    date := time.Now().UTC().Format("2006-01-02")
    trips, err := h.Trips.ActiveOn(ctx, date)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list trips failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"date": date, "trips": tripSummariesJSON(trips)})
}

// Stations lists the stations a train passes through.
func (h *CatalogHandler) Stations(c echo.Context) error {
    trainID := paramID(c, "id")
    if trainID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid train id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    stops, err := h.Trains.Stations(ctx, trainID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list stations failed"})
    }
    out := make([]echo.Map, 0, len(stops))
    for _, s := range stops {
        out = append(out, echo.Map{
            "station_id":   s.StationID,
            "name_english": s.NameEnglish,
            "name_arabic":  s.NameArabic,
            "city_id":      s.CityID,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"train_id": trainID, "stations": out})
}

func tripSummariesJSON(trips []model.TripSummary) []echo.Map {
    out := make([]echo.Map, 0, len(trips))
    for _, t := range trips {
        out = append(out, echo.Map{
            "trip_id":             t.TripID,
            "train_id":            t.TrainID,
            "train":               t.TrainName,
            "departure_at":        t.DepartureAt,
            "arrival_at":          t.ArrivalAt,
            "origin_station":      t.OriginStation,
            "destination_station": t.DestinationStation,
            "origin_city":         t.OriginCity,
            "destination_city":    t.DestinationCity,
        })
    }
    return out
}

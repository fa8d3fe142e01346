package config

import (
    "testing"
    "time"
)

func TestFareForClass(t *testing.T) {
    cfg := Config{FareEconomyCents: 7500, FareBusinessCents: 15000}

    fare, ok := cfg.FareForClass("Economy")
    if !ok || fare != 7500 {
        t.Fatalf("Economy fare wrong: %d %v", fare, ok)
    }
    fare, ok = cfg.FareForClass(" Business ")
    if !ok || fare != 15000 {
        t.Fatalf("Business fare should tolerate whitespace: %d %v", fare, ok)
    }
    if _, ok := cfg.FareForClass("First"); ok {
        t.Fatalf("unknown class must not resolve")
    }
}

func TestDSN(t *testing.T) {
    cfg := Config{DBUser: "app", DBHost: "localhost", DBPort: "3306", DBName: "railway"}
    want := "app@tcp(localhost:3306)/railway?charset=utf8mb4&parseTime=true&loc=UTC"
    if got := cfg.DSN(); got != want {
        t.Fatalf("passwordless DSN wrong:\n got %s\nwant %s", got, want)
    }

    cfg.DBPass = "secret"
    want = "app:secret@tcp(localhost:3306)/railway?charset=utf8mb4&parseTime=true&loc=UTC"
    if got := cfg.DSN(); got != want {
        t.Fatalf("DSN wrong:\n got %s\nwant %s", got, want)
    }
}

func TestLoadRateLimitConfigNormalizesDegenerateValues(t *testing.T) {
    t.Setenv("RATE_LIMIT_CAPACITY", "0")
    t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-3")
    t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "0s")
    t.Setenv("RATE_LIMIT_TTL", "1s")

    cfg := LoadRateLimitConfig()
    if cfg.Capacity < 1 {
        t.Fatalf("capacity not normalized: %d", cfg.Capacity)
    }
    if cfg.RefillTokens < 1 {
        t.Fatalf("refill tokens not normalized: %d", cfg.RefillTokens)
    }
    if cfg.RefillInterval <= 0 {
        t.Fatalf("interval not normalized: %v", cfg.RefillInterval)
    }
    if cfg.TTL < 5*cfg.RefillInterval {
        t.Fatalf("ttl should cover several refill intervals, got %v", cfg.TTL)
    }
}

func TestLoadCacheConfigDefaults(t *testing.T) {
    cfg := LoadCacheConfig()
    if !cfg.Methods["GET"] {
        t.Fatalf("GET should be cached by default")
    }
    if cfg.TTL != 15*time.Second {
        t.Fatalf("default TTL wrong: %v", cfg.TTL)
    }
}

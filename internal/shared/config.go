package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// PriceRange is one operation's plausibility window in MXN.
type PriceRange struct {
	Min, Max, OptimalMin, OptimalMax float64
}

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	FeedBase    string
	FeedKey     string
	FeedRPS     int
	IngestFile  string
	Workers     int
	CacheTTL    time.Duration

	GazetteerPath   string
	Sale            PriceRange
	Rent            PriceRange
	USDRate         float64
	EURRate         float64
	PersistRejected bool
}

// Load reads the environment, after merging a .env file from the working
// directory when one exists. Variables already set win over the file.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("could not read .env file")
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/propiedades?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		FeedBase:    env("FEED_BASE_URL", ""),
		FeedKey:     env("FEED_API_KEY", ""),
		FeedRPS:     atoi("FEED_RPS", 5),
		IngestFile:  env("INGEST_FILE", ""),
		Workers:     atoi("INGEST_WORKERS", 8),
		CacheTTL:    time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,

		GazetteerPath: env("GAZETTEER_PATH", ""),
		Sale: PriceRange{
			Min:        atof("PRICE_SALE_MIN", 500_000),
			Max:        atof("PRICE_SALE_MAX", 50_000_000),
			OptimalMin: atof("PRICE_SALE_MIN", 500_000),
			OptimalMax: atof("PRICE_SALE_OPTIMAL_MAX", 20_000_000),
		},
		Rent: PriceRange{
			Min:        atof("PRICE_RENT_MIN", 1_000),
			Max:        atof("PRICE_RENT_MAX", 100_000),
			OptimalMin: atof("PRICE_RENT_OPTIMAL_MIN", 3_000),
			OptimalMax: atof("PRICE_RENT_OPTIMAL_MAX", 50_000),
		},
		USDRate:         atof("USD_MXN_RATE", 17.5),
		EURRate:         atof("EUR_MXN_RATE", 19),
		PersistRejected: atob("PERSIST_REJECTED", false),
	}
	if c.FeedBase == "" && c.IngestFile == "" {
		log.Warn().Msg("neither FEED_BASE_URL nor INGEST_FILE is set")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoi(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
	}
	return def
}

func atof(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Warn().Str("key", k).Str("value", v).Msg("not a number, using default")
	}
	return def
}

func atob(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Warn().Str("key", k).Str("value", v).Msg("not a boolean, using default")
	}
	return def
}

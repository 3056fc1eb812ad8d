package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultInspectionURL is the King County food establishment search page.
const DefaultInspectionURL = "http://info.kingcounty.gov/health/ehs/foodsafety/inspections/Results.aspx"

// Config holds all application configuration loaded from environment variables.
type Config struct {
	InspectionURL     string
	CachePath         string
	FetchMode         string
	ChromeBin         string
	MaxRetries        int
	RequestTimeoutSec int
	ExtractWorkers    int

	GeocodeURL         string
	GeocodeAPIKey      string
	GeocodeConcurrency int
	GeocodeRateLimitMs int

	CSVOutputPath     string
	GeoJSONOutputPath string
	SQLitePath        string

	StorePostgres    bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	LogLevel string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		InspectionURL:     getEnv("INSPECTION_URL", DefaultInspectionURL),
		CachePath:         getEnv("CACHE_PATH", "./inspection_page.html"),
		FetchMode:         strings.ToLower(getEnv("FETCH_MODE", "http")),
		ChromeBin:         getEnv("CHROME_BIN", ""),
		MaxRetries:        getEnvInt("MAX_RETRIES", 3),
		RequestTimeoutSec: getEnvInt("REQUEST_TIMEOUT_SEC", 30),
		ExtractWorkers:    getEnvInt("EXTRACT_WORKERS", 1),

		GeocodeURL:         getEnv("GEOCODE_URL", "https://maps.googleapis.com/maps/api/geocode/json"),
		GeocodeAPIKey:      getEnv("GEOCODE_API_KEY", ""),
		GeocodeConcurrency: getEnvInt("GEOCODE_CONCURRENCY", 3),
		GeocodeRateLimitMs: getEnvInt("GEOCODE_RATE_LIMIT_MS", 200),

		CSVOutputPath:     getEnv("CSV_OUTPUT_PATH", "./output/inspections.csv"),
		GeoJSONOutputPath: getEnv("GEOJSON_OUTPUT_PATH", "./output/inspections.geojson"),
		SQLitePath:        getEnv("SQLITE_PATH", ""),

		StorePostgres:    getEnvBool("STORE_POSTGRES", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "inspections"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DBDriver   string
	SQLitePath string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	BaseURL   string
	ChromeBin string
	Headless  bool

	MaxQuantity    int
	GiveUpQuantity int
	MaxRetries     int

	LoadMoreWait      time.Duration
	LoadMoreDelay     time.Duration
	RemoveDelay       time.Duration
	TicketSettleDelay time.Duration
	PanelWait         time.Duration
	LocationWait      time.Duration
	ActionTimeout     time.Duration

	ExportPath            string
	ExportTruncateColumns []string
	ExportMaxLength       int

	LogLevel string
}

// Load reads the .env file (or the given files) and returns a populated Config struct.
func Load(envFiles ...string) *Config {
	if err := godotenv.Load(envFiles...); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		SQLitePath: getEnv("SQLITE_PATH", "events.db"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "events_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		BaseURL:   getEnv("BASE_URL", "https://www.viagogo.com/United-States"),
		ChromeBin: getEnv("CHROME_BIN", ""),
		Headless:  getEnvBool("HEADLESS", false),

		MaxQuantity:    getEnvInt("MAX_QUANTITY", 5),
		GiveUpQuantity: getEnvInt("GIVE_UP_QUANTITY", 20),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),

		LoadMoreWait:      getEnvDuration("LOAD_MORE_WAIT", 5*time.Second),
		LoadMoreDelay:     getEnvDuration("LOAD_MORE_DELAY", 5*time.Second),
		RemoveDelay:       getEnvDuration("REMOVE_DELAY", 500*time.Millisecond),
		TicketSettleDelay: getEnvDuration("TICKET_SETTLE_DELAY", 2*time.Second),
		PanelWait:         getEnvDuration("PANEL_WAIT", 10*time.Second),
		LocationWait:      getEnvDuration("LOCATION_WAIT", 10*time.Second),
		ActionTimeout:     getEnvDuration("ACTION_TIMEOUT", 30*time.Second),

		ExportPath:            getEnv("EXPORT_PATH", "styled_event_ticket_data_truncated.xlsx"),
		ExportTruncateColumns: getEnvList("EXPORT_TRUNCATE_COLUMNS", []string{"zone"}),
		ExportMaxLength:       getEnvInt("EXPORT_MAX_LENGTH", 40),

		LogLevel: getEnv("LOG_LEVEL", "INFO"),
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
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("750ms", "5s") or a bare number of milliseconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(val); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

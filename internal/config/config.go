package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

const (
	defaultPort          = "5001"
	defaultSearchBaseURL = "https://www.google.com/maps/search/"
	defaultUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	DriverNone = "none"
)

type Config struct {
	Port string

	Headless           bool
	ChromePath         string
	UserAgent          string
	SearchBaseURL      string
	NavigationTimeout  time.Duration
	FirstResultTimeout time.Duration
	SettleInterval     time.Duration
	ConvergeTimeout    time.Duration
	ScrollStep         int

	DefaultLimit int
	MaxLimit     int

	DBDriver string
	DBDSN    string
	DBHost   string
	DBUser   string
	DBPass   string
	DBName   string

	AllowOrigin string
	LogLevel    string
	LogFormat   string
}

// Load reads envFile into the environment (a missing file is ignored) and
// then builds the config from the environment.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	headless, err := parseHeadless(os.Getenv("HEADLESS"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:               valueOrDefault(os.Getenv("PORT"), defaultPort),
		Headless:           headless,
		ChromePath:         strings.TrimSpace(os.Getenv("CHROME_PATH")),
		UserAgent:          valueOrDefault(os.Getenv("USER_AGENT"), defaultUserAgent),
		SearchBaseURL:      valueOrDefault(os.Getenv("SEARCH_BASE_URL"), defaultSearchBaseURL),
		NavigationTimeout:  parseDurationEnv("NAVIGATION_TIMEOUT_MS", 60000),
		FirstResultTimeout: parseDurationEnv("FIRST_RESULT_TIMEOUT_MS", 10000),
		SettleInterval:     parseDurationEnv("SETTLE_INTERVAL_MS", 2000),
		ConvergeTimeout:    parseDurationEnv("CONVERGE_TIMEOUT_MS", 120000),
		ScrollStep:         parseIntEnv("SCROLL_STEP_PX", 1500),
		DefaultLimit:       parseIntEnv("DEFAULT_LIMIT", 20),
		MaxLimit:           parseIntEnv("MAX_LIMIT", 100),
		DBDriver:           strings.ToLower(valueOrDefault(os.Getenv("DB_DRIVER"), "mysql")),
		DBDSN:              strings.TrimSpace(os.Getenv("DB_DSN")),
		DBHost:             valueOrDefault(os.Getenv("DB_HOST"), "127.0.0.1:3306"),
		DBUser:             valueOrDefault(os.Getenv("DB_USER"), "leads"),
		DBPass:             strings.TrimSpace(os.Getenv("DB_PASSWORD")),
		DBName:             valueOrDefault(os.Getenv("DB_NAME"), "leads"),
		AllowOrigin:        valueOrDefault(os.Getenv("CORS_ALLOW_ORIGIN"), "*"),
		LogLevel:           strings.ToLower(valueOrDefault(os.Getenv("LOG_LEVEL"), "info")),
		LogFormat:          strings.ToLower(valueOrDefault(os.Getenv("LOG_FORMAT"), "json")),
	}

	if cfg.DefaultLimit > cfg.MaxLimit {
		cfg.DefaultLimit = cfg.MaxLimit
	}
	switch cfg.DBDriver {
	case "mysql", "sqlite3", "pgx", DriverNone:
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.DBDriver != "mysql" && cfg.DBDriver != DriverNone && cfg.DBDSN == "" {
		return Config{}, fmt.Errorf("DB_DSN is required for DB_DRIVER=%s", cfg.DBDriver)
	}
	if cfg.DBDriver == "mysql" && cfg.DBDSN != "" {
		if err := checkMySQLDSN(cfg.DBDSN); err != nil {
			return Config{}, err
		}
	}

	return cfg, nil
}

func (c Config) Addr() string {
	return ":" + c.Port
}

// DSN returns DB_DSN, or for mysql a DSN assembled from the DB_* parts.
func (c Config) DSN() string {
	if c.DBDSN != "" {
		return c.DBDSN
	}
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.DBUser, c.DBPass, c.DBHost, c.DBName,
	)
}

func (c Config) StoreEnabled() bool {
	return c.DBDriver != DriverNone
}

func parseHeadless(value string) (bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return true, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid HEADLESS value: %w", err)
	}
	return b, nil
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}

func parseDurationEnv(key string, defaultMs int) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return time.Duration(defaultMs) * time.Millisecond
	}
	ms, err := strconv.Atoi(value)
	if err != nil || ms < 0 {
		return time.Duration(defaultMs) * time.Millisecond
	}
	return time.Duration(ms) * time.Millisecond
}

func parseIntEnv(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// checkMySQLDSN rejects DSNs that would return DATETIME columns as bytes.
func checkMySQLDSN(dsn string) error {
	parsed, err := mysql.ParseDSN(dsn)
	if err != nil {
		return fmt.Errorf("invalid DB_DSN: %w", err)
	}
	if !parsed.ParseTime {
		return errors.New("DB_DSN for mysql must set parseTime=true")
	}
	return nil
}

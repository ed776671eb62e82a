package config

import (
	"doghouse/version"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds doghouse runtime configuration.
type Config struct {
	LogLevel    string
	LogFilePath string
	Port        int

	// Storage
	DBDriver         string // postgres or sqlite
	DBHost           string
	DBName           string
	DBUser           string
	DBPassword       string
	DBPort           int
	DBSSLMode        string
	DBConnectTimeout int // seconds

	// SQLite (DBDriver == "sqlite")
	DatabaseURL          string
	SQLitePragmasEnabled bool
	SQLiteBusyTimeoutMS  int
	SQLiteJournalMode    string
	SQLiteSynchronous    string
	SQLiteMaxOpenConns   int
	SQLiteMaxIdleConns   int
	SQLiteConnMaxIdleSec int
	SQLiteConnMaxLifeSec int

	// Pool bounds for the postgres driver
	DBMaxOpenConns int
	DBMaxIdleConns int

	// Retrieval
	AutoSeed          bool
	DogTiers          []string
	DogAPIURL         string
	DogAPITimeoutSecs int
	FallbackFile      string
}

// Settings is the global configuration instance populated from environment variables and flags.
var Settings *Config

func init() {
	// A missing .env is the normal case in containers.
	_ = godotenv.Load()

	Settings = FromEnv()
}

// FromEnv builds a Config from the current environment.
func FromEnv() *Config {
	return &Config{
		LogLevel:    strings.ToUpper(getEnv("LOG_LEVEL", "INFO")),
		LogFilePath: getEnv("LOG_FILE", ""),
		Port:        getEnvInt("PORT", 5000),

		DBDriver:         strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:           os.Getenv("DB_HOST"),
		DBName:           os.Getenv("DB_NAME"),
		DBUser:           os.Getenv("DB_USER"),
		DBPassword:       os.Getenv("DB_PASS"),
		DBPort:           getEnvInt("DB_PORT", 5432),
		DBSSLMode:        getEnv("DB_SSLMODE", "disable"),
		DBConnectTimeout: getEnvInt("DB_CONNECT_TIMEOUT", 3),

		DatabaseURL:          getEnv("DATABASE_URL", "doghouse.db"),
		SQLitePragmasEnabled: getEnvBool("SQLITE_PRAGMAS_ENABLED", true),
		SQLiteBusyTimeoutMS:  getEnvInt("SQLITE_BUSY_TIMEOUT_MS", 5000),
		SQLiteJournalMode:    getEnv("SQLITE_JOURNAL_MODE", "WAL"),
		SQLiteSynchronous:    getEnv("SQLITE_SYNCHRONOUS", "NORMAL"),
		SQLiteMaxOpenConns:   getEnvInt("SQLITE_MAX_OPEN_CONNS", 1),
		SQLiteMaxIdleConns:   getEnvInt("SQLITE_MAX_IDLE_CONNS", 1),
		SQLiteConnMaxIdleSec: getEnvInt("SQLITE_CONN_MAX_IDLE_SECONDS", 300),
		SQLiteConnMaxLifeSec: getEnvInt("SQLITE_CONN_MAX_LIFETIME_SECONDS", 0),

		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 2),

		AutoSeed:          getEnvBool("AUTO_SEED", true),
		DogTiers:          splitList(getEnv("DOG_TIERS", "storage")),
		DogAPIURL:         getEnv("DOG_API_URL", "https://dog.ceo/api/breeds/image/random"),
		DogAPITimeoutSecs: getEnvInt("DOG_API_TIMEOUT_SECONDS", 5),
		FallbackFile:      os.Getenv("DOG_FALLBACK_FILE"),
	}
}

// ParseFlags parses command-line flags and applies any overrides to the package-level Settings.
// It handles --help (prints usage and exits) and --version (prints build info and exits).
func ParseFlags() {
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "doghouse - dog record service\n\n")
		fmt.Fprintf(out, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintln(out, "Options:")
		flag.PrintDefaults()
		fmt.Fprintln(out, "\nEnvironment variables (a .env file in the working directory is loaded first):")
		fmt.Fprintln(out, "  LOG_LEVEL                 Log level (DEBUG, INFO, WARN, ERROR)")
		fmt.Fprintln(out, "  LOG_FILE                  Log file path; empty logs to stderr")
		fmt.Fprintln(out, "  PORT                      HTTP server port (default 5000)")
		fmt.Fprintln(out, "  DB_DRIVER                 Storage driver: postgres or sqlite (default postgres)")
		fmt.Fprintln(out, "  DB_HOST                   Postgres host")
		fmt.Fprintln(out, "  DB_NAME                   Postgres database name")
		fmt.Fprintln(out, "  DB_USER                   Postgres user")
		fmt.Fprintln(out, "  DB_PASS                   Postgres password")
		fmt.Fprintln(out, "  DB_PORT                   Postgres port (default 5432)")
		fmt.Fprintln(out, "  DB_SSLMODE                Postgres sslmode (default disable)")
		fmt.Fprintln(out, "  DB_CONNECT_TIMEOUT        Connect timeout in seconds (default 3)")
		fmt.Fprintln(out, "  DATABASE_URL              SQLite database path when DB_DRIVER=sqlite (default doghouse.db)")
		fmt.Fprintln(out, "  AUTO_SEED                 Seed an empty table from the local catalog (default true)")
		fmt.Fprintln(out, "  DOG_TIERS                 Ordered /dog fallback tiers: storage,api,local (default storage)")
		fmt.Fprintln(out, "  DOG_API_URL               External dog image API endpoint")
		fmt.Fprintln(out, "  DOG_API_TIMEOUT_SECONDS   External API timeout in seconds (default 5)")
		fmt.Fprintln(out, "  DOG_FALLBACK_FILE         Local catalog JSON file (default: bundled dataset)")
	}

	port := flag.Int("port", Settings.Port, "HTTP server port (overrides PORT)")
	driver := flag.String("db-driver", Settings.DBDriver, "Storage driver: postgres or sqlite (overrides DB_DRIVER)")
	db := flag.String("db", Settings.DatabaseURL, "SQLite database path (overrides DATABASE_URL)")
	logLevel := flag.String("log-level", Settings.LogLevel, "Log level: DEBUG, INFO, WARN, ERROR (overrides LOG_LEVEL)")
	logFile := flag.String("log-file", Settings.LogFilePath, "Log file path (overrides LOG_FILE)")
	autoSeed := flag.Bool("auto-seed", Settings.AutoSeed, "Seed an empty table from the local catalog (overrides AUTO_SEED)")
	tiers := flag.String("tiers", strings.Join(Settings.DogTiers, ","), "Ordered /dog fallback tiers (overrides DOG_TIERS)")
	fallbackFile := flag.String("fallback-file", Settings.FallbackFile, "Local catalog JSON file (overrides DOG_FALLBACK_FILE)")

	showHelp := flag.Bool("help", false, "Show help and exit")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Println(version.GetBuildInfo())
		os.Exit(0)
	}

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	Settings.Port = *port
	Settings.DBDriver = strings.ToLower(*driver)
	Settings.DatabaseURL = *db
	Settings.LogLevel = strings.ToUpper(*logLevel)
	Settings.LogFilePath = *logFile
	Settings.AutoSeed = *autoSeed
	Settings.DogTiers = splitList(*tiers)
	Settings.FallbackFile = *fallbackFile
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// splitList turns "a, b,,c" into [a b c], lowercased.
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

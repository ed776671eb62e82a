package database

import (
	"doghouse/config"
	"fmt"
	"net/url"
	"strings"
)

// Storage drivers accepted in DB_DRIVER.
const (
	// DriverPostgres is the production store, reached over DB_HOST/DB_PORT.
	DriverPostgres = "postgres"
	// DriverSQLite keeps the dogs table in the file named by DATABASE_URL.
	DriverSQLite = "sqlite"
)

// poolConfig holds the database/sql pool bounds applied after open.
type poolConfig struct {
	maxOpenConns int
	maxIdleConns int
	maxIdleSec   int
	maxLifeSec   int
}

// sanitizePoolConfig fixes bounds that database/sql would misread. A request
// needs at least one open connection, and idle connections above the open
// limit would never be used.
func sanitizePoolConfig(cfg poolConfig) poolConfig {
	if cfg.maxOpenConns < 1 {
		cfg.maxOpenConns = 1
	}
	if cfg.maxIdleConns < 0 {
		cfg.maxIdleConns = 0
	}
	if cfg.maxIdleConns > cfg.maxOpenConns {
		cfg.maxIdleConns = cfg.maxOpenConns
	}
	if cfg.maxIdleSec < 0 {
		cfg.maxIdleSec = 0
	}
	if cfg.maxLifeSec < 0 {
		cfg.maxLifeSec = 0
	}
	return cfg
}

// currentPoolConfig picks the pool bounds for the configured driver.
func currentPoolConfig(settings *config.Config) poolConfig {
	if settings.DBDriver == DriverSQLite {
		return sanitizePoolConfig(poolConfig{
			maxOpenConns: settings.SQLiteMaxOpenConns,
			maxIdleConns: settings.SQLiteMaxIdleConns,
			maxIdleSec:   settings.SQLiteConnMaxIdleSec,
			maxLifeSec:   settings.SQLiteConnMaxLifeSec,
		})
	}
	return sanitizePoolConfig(poolConfig{
		maxOpenConns: settings.DBMaxOpenConns,
		maxIdleConns: settings.DBMaxIdleConns,
		maxIdleSec:   300,
	})
}

// buildPostgresDSN renders a key/value libpq-style DSN. Values are quoted so
// passwords with spaces or quotes survive.
func buildPostgresDSN(settings *config.Config) string {
	timeout := settings.DBConnectTimeout
	if timeout <= 0 {
		timeout = 3
	}
	sslMode := settings.DBSSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	pairs := []struct{ key, value string }{
		{"host", settings.DBHost},
		{"port", fmt.Sprintf("%d", settings.DBPort)},
		{"user", settings.DBUser},
		{"password", settings.DBPassword},
		{"dbname", settings.DBName},
		{"sslmode", sslMode},
		{"connect_timeout", fmt.Sprintf("%d", timeout)},
	}

	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p.key+"="+quoteDSNValue(p.value))
	}
	return strings.Join(parts, " ")
}

func quoteDSNValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// buildSQLiteDSN turns DATABASE_URL into a glebarez DSN. With SQLITE_PRAGMAS_ENABLED on,
// the configured pragmas ride along as _pragma parameters next to whatever
// query the URL already had.
func buildSQLiteDSN(dbPath string, settings *config.Config) string {
	base, rawQuery, _ := strings.Cut(dbPath, "?")

	query, _ := url.ParseQuery(rawQuery)

	if settings.SQLitePragmasEnabled {
		if settings.SQLiteBusyTimeoutMS > 0 {
			query.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", settings.SQLiteBusyTimeoutMS))
		}
		if journalMode := normalizeSQLiteJournalMode(settings.SQLiteJournalMode); journalMode != "" {
			query.Add("_pragma", fmt.Sprintf("journal_mode(%s)", journalMode))
		}
		if synchronous := normalizeSQLiteSynchronous(settings.SQLiteSynchronous); synchronous != "" {
			query.Add("_pragma", fmt.Sprintf("synchronous(%s)", synchronous))
		}
	}

	if len(query) == 0 {
		return base
	}
	return base + "?" + query.Encode()
}

// normalizeSQLiteJournalMode maps SQLITE_JOURNAL_MODE to a pragma value. Unknown modes yield "" so the pragma is skipped.
func normalizeSQLiteJournalMode(value string) string {
	value = strings.ToUpper(strings.TrimSpace(value))
	switch value {
	case "WAL", "DELETE", "TRUNCATE", "PERSIST", "MEMORY", "OFF":
		return value
	default:
		return ""
	}
}

// normalizeSQLiteSynchronous accepts SQLITE_SYNCHRONOUS by name or by level number.
func normalizeSQLiteSynchronous(value string) string {
	value = strings.ToUpper(strings.TrimSpace(value))
	switch value {
	case "OFF", "NORMAL", "FULL", "EXTRA":
		return value
	case "0", "1", "2", "3":
		return value
	default:
		return ""
	}
}

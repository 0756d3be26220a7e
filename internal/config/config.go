package config // package config loads application configuration from environment variables

import (
	"log"     // log reports configuration errors and halts execution
	"os"      // os provides access to environment variables
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env             string        // application environment (e.g. "dev", "prod")
	Port            string        // HTTP port to listen on
	DBUser          string        // database username
	DBPass          string        // database password (optional)
	DBHost          string        // database host address
	DBPort          string        // database port number
	DBName          string        // database name
	JWTSecret       string        // secret used to sign and verify staff JWTs
	AccessTTL       time.Duration // access token lifetime
	RefreshTTL      time.Duration // refresh token lifetime
	PasswordCost    int           // bcrypt cost for staff passwords
	LogLevel        string        // zap level: debug, info, warn, error
	LogFormat       string        // "json" or "console"
	MigrateOnStart  bool          // apply embedded migrations at boot
	MigrationsTable string        // golang-migrate bookkeeping table
	RabbitURL       string        // AMQP broker for guest confirmations; empty disables publishing
	KeyCodeCost     int           // bcrypt cost for digital key codes
	ShutdownTimeout time.Duration // graceful shutdown budget
	RelayInterval   time.Duration // how often QUEUED confirmations are retried
}

// Load reads a local .env file when present, then builds a Config from the
// environment.  Required variables are enforced by must() and missing
// values cause the program to exit with a fatal log message.
func Load() Config {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	return Config{
		Env:             must("APP_ENV"),
		Port:            must("APP_PORT"),
		DBUser:          must("DB_USER"),
		DBPass:          os.Getenv("DB_PASS"), // empty allowed
		DBHost:          must("DB_HOST"),
		DBPort:          must("DB_PORT"),
		DBName:          must("DB_NAME"),
		JWTSecret:       must("JWT_SECRET"),
		AccessTTL:       time.Duration(envInt("ACCESS_TOKEN_TTL_MIN", 60)) * time.Minute,
		RefreshTTL:      time.Duration(envInt("REFRESH_TOKEN_TTL_DAYS", 14)) * 24 * time.Hour,
		PasswordCost:    envInt("BCRYPT_COST", 12),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		LogFormat:       envStr("LOG_FORMAT", "json"),
		MigrateOnStart:  envBool("MIGRATE_ON_START", true),
		MigrationsTable: envStr("MIGRATIONS_TABLE", "schema_migrations"),
		RabbitURL:       rabbitURL(),
		KeyCodeCost:     envInt("KEY_CODE_COST", 10),
		ShutdownTimeout: envDur("SHUTDOWN_TIMEOUT", 10*time.Second),
		RelayInterval:   envDur("CONFIRMATION_RELAY_INTERVAL", 30*time.Second),
	}
}

// rabbitURL honours RABBITMQ_URL then AMQP_URL.
func rabbitURL() string {
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		return v
	}
	return os.Getenv("AMQP_URL")
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

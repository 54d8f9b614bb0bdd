package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. Required variables are enforced by must()
// and missing values cause the program to exit with a fatal log message.
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // HTTP port to listen on

	DBUser string
	DBPass string // optional
	DBHost string
	DBPort string
	DBName string

	JWTSecret       string // secret used to sign JWTs
	AccessTTLMin    int    // access token time-to-live in minutes
	SessionTTLDays  int    // server-side session time-to-live in days
	RememberTTLDays int    // session TTL when "remember me" is set
	BcryptCost      int    // bcrypt cost for password hashing

	AppBaseURL string // public base URL used in email links

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	MailWorkers   int // notification worker pool size
	MailQueueSize int // bounded notification queue capacity

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
}

// Load reads configuration values from environment variables.
func Load() Config {
	return Config{
		Env:  must("APP_ENV"),
		Port: must("APP_PORT"),

		DBUser: must("DB_USER"),
		DBPass: os.Getenv("DB_PASS"),
		DBHost: must("DB_HOST"),
		DBPort: must("DB_PORT"),
		DBName: must("DB_NAME"),

		JWTSecret:       must("JWT_SECRET"),
		AccessTTLMin:    envInt("ACCESS_TOKEN_TTL_MIN", 15),
		SessionTTLDays:  envInt("SESSION_TTL_DAYS", 1),
		RememberTTLDays: envInt("REMEMBER_SESSION_TTL_DAYS", 30),
		BcryptCost:      envInt("BCRYPT_COST", 12),

		AppBaseURL: must("APP_BASE_URL"),

		SMTPHost: must("SMTP_HOST"),
		SMTPPort: envInt("SMTP_PORT", 587),
		SMTPUser: os.Getenv("SMTP_USERNAME"),
		SMTPPass: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom: must("SMTP_FROM"),

		MailWorkers:   envInt("MAIL_WORKERS", 4),
		MailQueueSize: envInt("MAIL_QUEUE_SIZE", 256),

		MinioEndpoint:  must("MINIO_ENDPOINT"),
		MinioAccessKey: must("MINIO_ACCESS_KEY"),
		MinioSecretKey: must("MINIO_SECRET_KEY"),
		MinioBucket:    envStr("MINIO_BUCKET", "avatars"),
		MinioUseSSL:    envBool("MINIO_USE_SSL", false),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envBool(k string, d bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	case "0", "false", "FALSE", "False", "no", "off":
		return false
	}
	return d
}

package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr string
	LogLevel string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	// Persistence: a database URL selects the Postgres store; otherwise
	// the aggregate lives in DataFile.
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32
	DataFile    string

	// If true, /readyz returns 503 unless DB is configured and reachable.
	ReadinessRequireDB bool

	// DrawMode selects the assignment strategy: "eager" or "lazy".
	DrawMode string

	// AppURL is the public base for reveal links in emails.
	AppURL string

	// Admin guard: the argon2id hash wins over the plain dev password.
	AdminPasswordHash string
	AdminPassword     string

	// Outbound mail; empty SMTPHost disables delivery (noop notifier).
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr: EnvString("SANTA_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel: EnvString("SANTA_LOG_LEVEL", "info"),

		ReadHeaderTimeout: EnvDuration("SANTA_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("SANTA_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("SANTA_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("SANTA_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("SANTA_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("SANTA_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("SANTA_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("SANTA_DB_MIN_CONNS", 0),
		DataFile:    EnvString("SANTA_DATA_FILE", "data.json"),

		ReadinessRequireDB: EnvBool("SANTA_READINESS_REQUIRE_DB", false),

		DrawMode: EnvString("SANTA_DRAW_MODE", "eager"),
		AppURL:   EnvString("SANTA_APP_URL", ""),

		AdminPasswordHash: EnvString("SANTA_ADMIN_PASSWORD_HASH", ""),
		AdminPassword:     EnvString("SANTA_ADMIN_PASSWORD", ""),

		SMTPHost: EnvString("SANTA_SMTP_HOST", ""),
		SMTPPort: EnvInt("SANTA_SMTP_PORT", 587),
		SMTPUser: EnvString("SANTA_SMTP_USER", ""),
		SMTPPass: EnvString("SANTA_SMTP_PASS", ""),
		SMTPFrom: EnvString("SANTA_SMTP_FROM", ""),
	}
}

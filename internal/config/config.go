package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"voicemitra"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`
	// Timezone decides local day boundaries for dashboard buckets. Empty means server local.
	Timezone string `env:"APP_TIMEZONE" envDefault:""`
	// PublicURL is used to build links in outgoing email.
	PublicURL string `env:"APP_PUBLIC_URL" envDefault:"http://localhost:3000"`

	Postgres  Postgres
	Redis     Redis
	Security  Security
	OAuth     OAuth
	AI        AI
	Quiz      Quiz
	Dashboard Dashboard
	SMTP      SMTP
	CORS      CORS
}

// Postgres captures connection info for the SQL database.
type Postgres struct {
	Host     string `env:"PG_HOST,notEmpty"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER,notEmpty"`
	Password string `env:"PG_PASSWORD,notEmpty"`
	Database string `env:"PG_DATABASE,notEmpty"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
	MaxConns int    `env:"PG_MAX_CONNS" envDefault:"10"`
}

// DSN renders the keyword/value connection string understood by pgx.
func (p Postgres) DSN() string {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
	if p.MaxConns > 0 {
		dsn += fmt.Sprintf(" pool_max_conns=%d", p.MaxConns)
	}
	return dsn
}

// LoadPostgres parses only the database settings, for tools that need nothing else.
func LoadPostgres() (Postgres, error) {
	var pg Postgres
	if err := env.ParseWithOptions(&pg, env.Options{RequiredIfNoDef: true}); err != nil {
		return Postgres{}, fmt.Errorf("parse postgres config: %w", err)
	}
	return pg, nil
}

// Redis holds cache configuration.
type Redis struct {
	Addr     string `env:"REDIS_ADDR,notEmpty"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// Security stores secrets for signing and auth.
type Security struct {
	JWTSecret     string        `env:"JWT_SECRET,notEmpty"`
	AccessTTL     time.Duration `env:"JWT_ACCESS_TTL" envDefault:"1h"`
	RefreshTTL    time.Duration `env:"JWT_REFRESH_TTL" envDefault:"168h"`
	ResetTokenTTL time.Duration `env:"PASSWORD_RESET_TTL" envDefault:"1h"`
}

// OAuth holds OAuth provider configuration.
type OAuth struct {
	GoogleClientID     string        `env:"GOOGLE_OAUTH_CLIENT_ID" envDefault:""`
	GoogleClientSecret string        `env:"GOOGLE_OAUTH_CLIENT_SECRET" envDefault:""`
	GoogleRedirectURL  string        `env:"GOOGLE_OAUTH_REDIRECT_URL" envDefault:""`
	StateTTL           time.Duration `env:"OAUTH_STATE_TTL" envDefault:"10m"`
}

// AI configures the Gemini backend used for quizzes and answers.
type AI struct {
	APIKey            string        `env:"GEMINI_API_KEY" envDefault:""`
	Model             string        `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
	BaseURL           string        `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com"`
	HTTPTimeout       time.Duration `env:"AI_HTTP_TIMEOUT" envDefault:"45s"`
	GenerationTimeout time.Duration `env:"AI_GENERATION_TIMEOUT" envDefault:"30s"`
}

// Quiz groups quiz lifecycle defaults.
type Quiz struct {
	DefaultQuestionCount int `env:"DEFAULT_QUESTION_COUNT" envDefault:"5"`
	MaxQuestionCount     int `env:"MAX_QUESTION_COUNT" envDefault:"20"`
	DefaultPageSize      int `env:"DEFAULT_PAGE_SIZE" envDefault:"10"`
	HistoryPageSize      int `env:"HISTORY_PAGE_SIZE" envDefault:"50"`
}

// Dashboard governs stats aggregation and caching.
type Dashboard struct {
	CacheTTL           time.Duration `env:"DASHBOARD_CACHE_TTL" envDefault:"60s"`
	StreakLookbackDays int           `env:"STREAK_LOOKBACK_DAYS" envDefault:"365"`
	MonthlyGoal        int           `env:"DASHBOARD_MONTHLY_GOAL" envDefault:"20"`
}

// SMTP holds email server configuration.
type SMTP struct {
	Host      string `env:"SMTP_HOST" envDefault:""`
	Port      int    `env:"SMTP_PORT" envDefault:"587"`
	Username  string `env:"SMTP_USERNAME" envDefault:""`
	Password  string `env:"SMTP_PASSWORD" envDefault:""`
	FromEmail string `env:"SMTP_FROM_EMAIL" envDefault:""`
}

// CORS holds Cross-Origin Resource Sharing configuration.
type CORS struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS" envSeparator:"," envDefault:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS" envSeparator:"," envDefault:"Content-Type,Authorization"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE" envDefault:"3600"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Quiz.MaxQuestionCount <= 0 || cfg.Quiz.MaxQuestionCount > 20 {
		return nil, fmt.Errorf("MAX_QUESTION_COUNT must be within 1..20, got %d", cfg.Quiz.MaxQuestionCount)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Location resolves the configured timezone.
func (a *App) Location() (*time.Location, error) {
	if a.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", a.Timezone, err)
	}
	return loc, nil
}

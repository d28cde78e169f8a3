package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Cfg is the global configuration loaded at startup.
var Cfg Config

// Config holds all application configuration.
type Config struct {
	// Server
	Port            string
	BaseURL         string
	SiteName        string
	ShutdownTimeout time.Duration

	// Sentry
	SentryDSN         string
	SentryEnvironment string
	SentryRelease     string

	// Analytics
	GTMID string

	// Rate limiter
	RateLimitRPS   int
	RateLimitBurst int

	// Link checker
	LinkCheckEnabled  bool
	LinkCheckInterval time.Duration
	LinkCheckDelay    time.Duration

	// Official page verification
	SourceCheckEnabled  bool
	SourceCheckInterval time.Duration

	// Deadline tracker
	DeadlineCheckEnabled bool
	AdminAPIKey          string

	// Estimate counter
	CounterBackend string
	CounterFile    string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int

	// Content
	GuidesDir string

	// HTTP
	UserAgent string

	// Gzip
	GzipEnabled bool

	// Turnstile
	TurnstileSiteKey   string
	TurnstileSecretKey string

	// Telegram alerts
	TelegramBotToken string
	TelegramChatID   string
}

// Load reads .env (if present) and populates Cfg from environment variables.
func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using environment variables")
	}

	Cfg = Config{
		Port:            envOr("PORT", "8080"),
		BaseURL:         envOr("BASE_URL", "https://irishgrants.ie"),
		SiteName:        envOr("SITE_NAME", "Irish Grants Hub"),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT", 15*time.Second),

		SentryDSN:         os.Getenv("SENTRY_DSN"),
		SentryEnvironment: envOr("SENTRY_ENVIRONMENT", "production"),
		SentryRelease:     envOr("SENTRY_RELEASE", "irishgrants@1.0.0"),

		GTMID: envOr("GTM_ID", ""),

		RateLimitRPS:   envInt("RATE_LIMIT_RPS", 30),
		RateLimitBurst: envInt("RATE_LIMIT_BURST", 60),

		LinkCheckEnabled:  envBool("LINKCHECK_ENABLED", true),
		LinkCheckInterval: envDuration("LINKCHECK_INTERVAL", 24*time.Hour),
		LinkCheckDelay:    envDuration("LINKCHECK_DELAY", 5*time.Second),

		SourceCheckEnabled:  envBool("SOURCECHECK_ENABLED", true),
		SourceCheckInterval: envDuration("SOURCECHECK_INTERVAL", 12*time.Hour),

		DeadlineCheckEnabled: envBool("DEADLINE_CHECK_ENABLED", true),
		AdminAPIKey:          os.Getenv("ADMIN_API_KEY"),

		CounterBackend: envOr("COUNTER_BACKEND", "file"),
		CounterFile:    envOr("COUNTER_FILE", "counter.json"),
		RedisAddr:      envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        envInt("REDIS_DB", 0),

		GuidesDir: envOr("GUIDES_DIR", "content/guides"),

		UserAgent: envOr("USER_AGENT", "Mozilla/5.0 (compatible; IrishGrantsBot/1.0; +https://irishgrants.ie)"),

		GzipEnabled: envBool("GZIP_ENABLED", true),

		TurnstileSiteKey:   os.Getenv("TURNSTILE_SITE_KEY"),
		TurnstileSecretKey: os.Getenv("TURNSTILE_SECRET_KEY"),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   os.Getenv("TELEGRAM_CHAT_ID"),
	}

	log.Printf("config: loaded (port=%s, linkcheck=%v, sourcecheck=%v, counter=%s, gtm=%s)",
		Cfg.Port, Cfg.LinkCheckEnabled, Cfg.SourceCheckEnabled, Cfg.CounterBackend, maskGTM(Cfg.GTMID))
}

func maskGTM(id string) string {
	if id == "" {
		return "(disabled)"
	}
	return id
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

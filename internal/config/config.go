package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/vytor/duodash/internal/coach"
	"github.com/vytor/duodash/internal/normalize"
)

type Config struct {
	Addr      string `yaml:"addr"`
	DBPath    string `yaml:"db_path"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	TimeZone  string `yaml:"timezone"`

	DuolingoBaseURL  string        `yaml:"duolingo_base_url"`
	DuolingoUsername string        `yaml:"duolingo_username"`
	DuolingoJWT      string        `yaml:"duolingo_jwt"`
	UpstreamTimeout  time.Duration `yaml:"upstream_timeout"`

	CacheTTL        time.Duration `yaml:"cache_ttl"`
	CacheMaxEntries int           `yaml:"cache_max_entries"`
	RedisAddr       string        `yaml:"redis_addr"`

	SyncWorkerCount   int           `yaml:"sync_worker_count"`
	SyncQueueSize     int           `yaml:"sync_queue_size"`
	SyncInterval      time.Duration `yaml:"sync_interval"`
	SnapshotRetention time.Duration `yaml:"snapshot_retention"`

	AIProvider string `yaml:"ai_provider"`
	AIModel    string `yaml:"ai_model"`
	AIBaseURL  string `yaml:"ai_base_url"`
	AIAPIKey   string `yaml:"ai_api_key"`
}

// providerKeyEnv names the provider-specific key consulted when AI_API_KEY is unset.
var providerKeyEnv = map[string]string{
	string(coach.ProviderGemini):      "GEMINI_API_KEY",
	string(coach.ProviderOpenRouter):  "OPENROUTER_API_KEY",
	string(coach.ProviderDeepSeek):    "DEEPSEEK_API_KEY",
	string(coach.ProviderSiliconFlow): "SILICONFLOW_API_KEY",
	string(coach.ProviderMoonshot):    "MOONSHOT_API_KEY",
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Addr:            ":8080",
		DBPath:          "file:duodash.db",
		LogLevel:        "INFO",
		LogFormat:       "text",
		TimeZone:        normalize.DefaultTimeZone,
		DuolingoBaseURL: "https://www.duolingo.com",
		UpstreamTimeout: 8 * time.Second,
		CacheTTL:        5 * time.Minute,
		CacheMaxEntries: 256,
		SyncWorkerCount: 2,
		SyncQueueSize:   32,
		AIProvider:      string(coach.ProviderGemini),
	}
}

// Load reads configuration from a .env file (if present), an optional YAML file
// named by CONFIG_FILE, and environment variables, in increasing precedence.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			log.Printf("ignoring config file: %v", err)
		}
	}

	cfg.Addr = envOr("ADDR", cfg.Addr)
	cfg.DBPath = envOr("DB_PATH", cfg.DBPath)
	cfg.LogLevel = envOr("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = envOr("LOG_FORMAT", cfg.LogFormat)
	cfg.TimeZone = envOr("TIMEZONE", cfg.TimeZone)
	cfg.DuolingoBaseURL = envOr("DUOLINGO_BASE_URL", cfg.DuolingoBaseURL)
	cfg.DuolingoUsername = envOr("DUOLINGO_USERNAME", cfg.DuolingoUsername)
	cfg.DuolingoJWT = envOr("DUOLINGO_JWT", cfg.DuolingoJWT)
	cfg.UpstreamTimeout = envDurationOr("UPSTREAM_TIMEOUT", cfg.UpstreamTimeout)
	cfg.CacheTTL = envDurationOr("CACHE_TTL", cfg.CacheTTL)
	cfg.CacheMaxEntries = envIntOr("CACHE_MAX_ENTRIES", cfg.CacheMaxEntries)
	cfg.RedisAddr = envOr("REDIS_ADDR", cfg.RedisAddr)
	cfg.SyncWorkerCount = envIntOr("SYNC_WORKER_COUNT", cfg.SyncWorkerCount)
	cfg.SyncQueueSize = envIntOr("SYNC_QUEUE_SIZE", cfg.SyncQueueSize)
	cfg.SyncInterval = envDurationOr("SYNC_INTERVAL", cfg.SyncInterval)
	cfg.SnapshotRetention = envDurationOr("SNAPSHOT_RETENTION", cfg.SnapshotRetention)
	cfg.AIProvider = strings.ToLower(envOr("AI_PROVIDER", cfg.AIProvider))
	cfg.AIModel = envOr("AI_MODEL", cfg.AIModel)
	cfg.AIBaseURL = envOr("AI_BASE_URL", cfg.AIBaseURL)
	cfg.AIAPIKey = envOr("AI_API_KEY", cfg.AIAPIKey)
	if cfg.AIAPIKey == "" {
		if key, ok := providerKeyEnv[cfg.AIProvider]; ok {
			cfg.AIAPIKey = os.Getenv(key)
		}
	}

	return cfg
}

// mergeFile overlays the keys present in a YAML file onto cfg.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	if c.Addr == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("DB_PATH cannot be empty"))
	}

	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR (got %q)", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json (got %q)", c.LogFormat))
	}

	if _, err := normalize.LoadLocation(c.TimeZone); err != nil {
		errs = append(errs, fmt.Errorf("TIMEZONE: %v", err))
	}

	if c.DuolingoBaseURL == "" {
		errs = append(errs, errors.New("DUOLINGO_BASE_URL cannot be empty"))
	}
	if c.UpstreamTimeout <= 0 {
		errs = append(errs, fmt.Errorf("UPSTREAM_TIMEOUT must be positive (got %v)", c.UpstreamTimeout))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("CACHE_TTL must be positive (got %v)", c.CacheTTL))
	}
	if c.CacheMaxEntries < 1 {
		errs = append(errs, fmt.Errorf("CACHE_MAX_ENTRIES must be at least 1 (got %d)", c.CacheMaxEntries))
	}
	if c.SyncWorkerCount < 1 {
		errs = append(errs, fmt.Errorf("SYNC_WORKER_COUNT must be at least 1 (got %d)", c.SyncWorkerCount))
	}
	if c.SyncQueueSize < 1 {
		errs = append(errs, fmt.Errorf("SYNC_QUEUE_SIZE must be at least 1 (got %d)", c.SyncQueueSize))
	}
	if c.SyncInterval < 0 {
		errs = append(errs, fmt.Errorf("SYNC_INTERVAL cannot be negative (got %v)", c.SyncInterval))
	}
	if c.SnapshotRetention < 0 {
		errs = append(errs, fmt.Errorf("SNAPSHOT_RETENTION cannot be negative (got %v)", c.SnapshotRetention))
	}

	if !coach.ValidProvider(c.AIProvider) {
		errs = append(errs, fmt.Errorf("AI_PROVIDER %q is not supported", c.AIProvider))
	} else if c.AIProvider == string(coach.ProviderCustom) && c.AIBaseURL == "" {
		errs = append(errs, errors.New("AI_BASE_URL is required for the custom AI provider"))
	}

	return errors.Join(errs...)
}

// Configured reports whether real upstream credentials are present.
func (c Config) Configured() bool {
	return c.DuolingoUsername != "" && !isPlaceholder(c.DuolingoJWT)
}

func isPlaceholder(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "" || v == "changeme" || strings.HasPrefix(v, "your_") || strings.HasPrefix(v, "<")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

// envDurationOr accepts Go durations ("90s") or a bare number of seconds.
func envDurationOr(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Printf("invalid value for %s=%q, using default %v", key, v, def)
	return def
}

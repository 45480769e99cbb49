package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable consulted when no --config
// flag is given.
const EnvConfigPath = "JOBFINDER_CONFIG"

const defaultConfigPath = "config.yaml"

// Config is the root configuration for jobfinder.
type Config struct {
	Server       ServerConfig
	Search       SearchConfig
	Apify        ApifyConfig
	Sources      SourcesConfig
	RateLimit    RateLimitConfig
	Retry        RetryConfig
	AI           AIConfig
	Ranking      RankingConfig
	Cache        CacheConfig
	History      HistoryConfig
	Notification NotificationConfig
	Log          LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Addr            string
	WriteTimeout    time.Duration // must outlast a full search
	ShutdownTimeout time.Duration
}

// SearchConfig controls the search pipeline.
type SearchConfig struct {
	TopN          int           // 0 returns every ranked job
	SourceTimeout time.Duration // per source, covers actor run and dataset read
}

// ApifyConfig holds the actor platform credentials and run settings.
type ApifyConfig struct {
	BaseURL       string
	Token         string // APIFY_TOKEN overrides
	MaxItems      int    // per source
	WaitForFinish time.Duration
	PollInterval  time.Duration
}

// SourceConfig describes one job board.
type SourceConfig struct {
	Enabled bool
	ActorID string // empty selects the adapter's default actor
}

// SourcesConfig lists the three supported boards.
type SourcesConfig struct {
	LinkedIn  SourceConfig
	Indeed    SourceConfig
	Glassdoor SourceConfig
}

// Enabled returns the names of enabled sources in fan-out order.
func (s SourcesConfig) Enabled() []string {
	var names []string
	for _, e := range []struct {
		name string
		cfg  SourceConfig
	}{
		{"linkedin", s.LinkedIn},
		{"indeed", s.Indeed},
		{"glassdoor", s.Glassdoor},
	} {
		if e.cfg.Enabled {
			names = append(names, e.name)
		}
	}
	return names
}

// RateLimitConfig controls spacing between actor runs on the same board.
type RateLimitConfig struct {
	MinDelay time.Duration
}

// RetryConfig controls retries of failed actor runs.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// AIConfig controls the language and embedding model provider.
type AIConfig struct {
	Enabled        bool
	Provider       string // "openai" or "gemini"
	BaseURL        string // OpenAI-compatible endpoint; unused for gemini
	APIKey         string // OPENAI_API_KEY / GEMINI_API_KEY override
	Model          string
	EmbeddingModel string
	Timeout        time.Duration
}

// RankingConfig selects the relevance ranker.
type RankingConfig struct {
	Strategy     string // "llm", "embedding" or "keyword"
	DefaultScore float64
}

// CacheConfig controls caching of source results.
type CacheConfig struct {
	Backend         string // "none", "sqlite" or "redis"
	TTL             time.Duration
	SQLitePath      string
	RedisURL        string
	CleanupSchedule string // cron spec
}

// HistoryConfig controls the search log.
type HistoryConfig struct {
	Enabled bool
	Path    string // SQLite file; shared with the sqlite cache by default
}

// NotificationConfig controls where `search --notify` sends results.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text or json
}

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	StrategyLLM       = "llm"
	StrategyEmbedding = "embedding"
	StrategyKeyword   = "keyword"

	CacheNone   = "none"
	CacheSQLite = "sqlite"
	CacheRedis  = "redis"
)

const (
	defaultOpenAIBaseURL        = "https://api.openai.com/v1"
	defaultOpenAIModel          = "gpt-4o-mini"
	defaultOpenAIEmbeddingModel = "text-embedding-3-small"
	defaultGeminiModel          = "gemini-2.0-flash"
	defaultGeminiEmbeddingModel = "text-embedding-004"
	defaultDBPath               = "jobfinder.db"
)

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	Server       rawServerConfig    `yaml:"server"`
	Search       rawSearchConfig    `yaml:"search"`
	Apify        rawApifyConfig     `yaml:"apify"`
	Sources      rawSourcesConfig   `yaml:"sources"`
	RateLimit    rawRateLimitConfig `yaml:"rate_limit"`
	Retry        rawRetryConfig     `yaml:"retry"`
	AI           rawAIConfig        `yaml:"ai"`
	Ranking      rawRankingConfig   `yaml:"ranking"`
	Cache        rawCacheConfig     `yaml:"cache"`
	History      rawHistoryConfig   `yaml:"history"`
	Notification NotificationConfig `yaml:"notification"`
	Log          rawLogConfig       `yaml:"log"`
}

type rawServerConfig struct {
	Addr            string `yaml:"addr"`
	WriteTimeout    string `yaml:"write_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

type rawSearchConfig struct {
	TopN          *int   `yaml:"top_n"`
	SourceTimeout string `yaml:"source_timeout"`
}

type rawApifyConfig struct {
	BaseURL       string `yaml:"base_url"`
	Token         string `yaml:"token"`
	MaxItems      int    `yaml:"max_items"`
	WaitForFinish string `yaml:"wait_for_finish"`
	PollInterval  string `yaml:"poll_interval"`
}

type rawSourceConfig struct {
	Enabled *bool  `yaml:"enabled"`
	ActorID string `yaml:"actor_id"`
}

type rawSourcesConfig struct {
	LinkedIn  rawSourceConfig `yaml:"linkedin"`
	Indeed    rawSourceConfig `yaml:"indeed"`
	Glassdoor rawSourceConfig `yaml:"glassdoor"`
}

type rawRateLimitConfig struct {
	MinDelay string `yaml:"min_delay"`
}

type rawRetryConfig struct {
	MaxRetries *int   `yaml:"max_retries"`
	BaseDelay  string `yaml:"base_delay"`
}

type rawAIConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Provider       string `yaml:"provider"`
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	EmbeddingModel string `yaml:"embedding_model"`
	Timeout        string `yaml:"timeout"`
}

type rawRankingConfig struct {
	Strategy     string   `yaml:"strategy"`
	DefaultScore *float64 `yaml:"default_score"`
}

type rawCacheConfig struct {
	Backend         string `yaml:"backend"`
	TTL             string `yaml:"ttl"`
	SQLitePath      string `yaml:"sqlite_path"`
	RedisURL        string `yaml:"redis_url"`
	CleanupSchedule string `yaml:"cleanup_schedule"`
}

type rawHistoryConfig struct {
	Enabled *bool  `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type rawLogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ResolvePath picks the config file: the flag value, then $JOBFINDER_CONFIG,
// then ./config.yaml. It returns "" when none was given and ./config.yaml
// does not exist, so the caller runs on defaults and environment alone.
func ResolvePath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	if _, err := os.Stat(defaultConfigPath); err == nil {
		return defaultConfigPath
	}
	return ""
}

// Load reads and parses the YAML config file at path, applies environment
// overrides, validates it, and returns Config. An empty path skips the file.
func Load(path string) (*Config, error) {
	var raw rawConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}

		// Expand environment variables
		expanded := os.ExpandEnv(string(data))

		if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&raw)

	cfg, err := build(raw)
	if err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv lets credentials and actor ids come from the environment.
func applyEnv(raw *rawConfig) {
	override := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	override(&raw.Apify.Token, "APIFY_TOKEN")
	override(&raw.Sources.LinkedIn.ActorID, "LINKEDIN_ACTOR_ID")
	override(&raw.Sources.Indeed.ActorID, "INDEED_ACTOR_ID")
	override(&raw.Sources.Glassdoor.ActorID, "GLASSDOOR_ACTOR_ID")

	if raw.AI.Provider == ProviderGemini {
		override(&raw.AI.APIKey, "GEMINI_API_KEY")
	} else {
		override(&raw.AI.APIKey, "OPENAI_API_KEY")
	}
}

func build(raw rawConfig) (*Config, error) {
	var errs []error
	dur := func(field, value string, def time.Duration) time.Duration {
		if value == "" {
			return def
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("parse %s %q: %w", field, value, err))
			return def
		}
		return d
	}

	cfg := &Config{
		Server: ServerConfig{
			Addr:            orDefault(raw.Server.Addr, ":8000"),
			WriteTimeout:    dur("server.write_timeout", raw.Server.WriteTimeout, 10*time.Minute),
			ShutdownTimeout: dur("server.shutdown_timeout", raw.Server.ShutdownTimeout, 15*time.Second),
		},
		Search: SearchConfig{
			TopN:          1,
			SourceTimeout: dur("search.source_timeout", raw.Search.SourceTimeout, 5*time.Minute),
		},
		Apify: ApifyConfig{
			BaseURL:       raw.Apify.BaseURL,
			Token:         raw.Apify.Token,
			MaxItems:      raw.Apify.MaxItems,
			WaitForFinish: dur("apify.wait_for_finish", raw.Apify.WaitForFinish, 60*time.Second),
			PollInterval:  dur("apify.poll_interval", raw.Apify.PollInterval, 0),
		},
		Sources: SourcesConfig{
			LinkedIn:  sourceConfig(raw.Sources.LinkedIn),
			Indeed:    sourceConfig(raw.Sources.Indeed),
			Glassdoor: sourceConfig(raw.Sources.Glassdoor),
		},
		RateLimit: RateLimitConfig{
			MinDelay: dur("rate_limit.min_delay", raw.RateLimit.MinDelay, 2*time.Second),
		},
		Retry: RetryConfig{
			MaxRetries: 2,
			BaseDelay:  dur("retry.base_delay", raw.Retry.BaseDelay, 5*time.Second),
		},
		AI: AIConfig{
			Enabled:        raw.AI.Enabled,
			Provider:       orDefault(raw.AI.Provider, ProviderOpenAI),
			BaseURL:        raw.AI.BaseURL,
			APIKey:         raw.AI.APIKey,
			Model:          raw.AI.Model,
			EmbeddingModel: raw.AI.EmbeddingModel,
			Timeout:        dur("ai.timeout", raw.AI.Timeout, 60*time.Second),
		},
		Ranking: RankingConfig{
			Strategy:     raw.Ranking.Strategy,
			DefaultScore: 50,
		},
		Cache: CacheConfig{
			Backend:         orDefault(raw.Cache.Backend, CacheNone),
			TTL:             dur("cache.ttl", raw.Cache.TTL, 6*time.Hour),
			SQLitePath:      orDefault(raw.Cache.SQLitePath, defaultDBPath),
			RedisURL:        raw.Cache.RedisURL,
			CleanupSchedule: orDefault(raw.Cache.CleanupSchedule, "@every 1h"),
		},
		History: HistoryConfig{
			Enabled: raw.History.Enabled == nil || *raw.History.Enabled,
			Path:    raw.History.Path,
		},
		Notification: NotificationConfig{
			Type:       orDefault(raw.Notification.Type, "log"),
			WebhookURL: raw.Notification.WebhookURL,
		},
		Log: LogConfig{
			Level:  orDefault(raw.Log.Level, "info"),
			Format: orDefault(raw.Log.Format, "text"),
		},
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if raw.Search.TopN != nil {
		cfg.Search.TopN = *raw.Search.TopN
	}
	if cfg.Apify.MaxItems == 0 {
		cfg.Apify.MaxItems = 50
	}
	if raw.Retry.MaxRetries != nil {
		cfg.Retry.MaxRetries = *raw.Retry.MaxRetries
	}
	if raw.Ranking.DefaultScore != nil {
		cfg.Ranking.DefaultScore = *raw.Ranking.DefaultScore
	}
	if cfg.History.Path == "" {
		cfg.History.Path = cfg.Cache.SQLitePath
	}

	switch cfg.AI.Provider {
	case ProviderOpenAI:
		cfg.AI.BaseURL = orDefault(cfg.AI.BaseURL, defaultOpenAIBaseURL)
		cfg.AI.Model = orDefault(cfg.AI.Model, defaultOpenAIModel)
		cfg.AI.EmbeddingModel = orDefault(cfg.AI.EmbeddingModel, defaultOpenAIEmbeddingModel)
	case ProviderGemini:
		cfg.AI.Model = orDefault(cfg.AI.Model, defaultGeminiModel)
		cfg.AI.EmbeddingModel = orDefault(cfg.AI.EmbeddingModel, defaultGeminiEmbeddingModel)
	}

	if cfg.Ranking.Strategy == "" {
		cfg.Ranking.Strategy = StrategyKeyword
		if cfg.AI.Enabled {
			cfg.Ranking.Strategy = StrategyLLM
		}
	}

	return cfg, nil
}

func sourceConfig(raw rawSourceConfig) SourceConfig {
	return SourceConfig{
		Enabled: raw.Enabled == nil || *raw.Enabled,
		ActorID: raw.ActorID,
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func validate(cfg *Config) error {
	if cfg.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if cfg.Search.TopN < 0 {
		return fmt.Errorf("search.top_n must not be negative, got %d", cfg.Search.TopN)
	}
	if cfg.Search.SourceTimeout <= 0 {
		return fmt.Errorf("search.source_timeout must be positive, got %v", cfg.Search.SourceTimeout)
	}
	if cfg.Apify.MaxItems < 0 {
		return fmt.Errorf("apify.max_items must not be negative, got %d", cfg.Apify.MaxItems)
	}

	if len(cfg.Sources.Enabled()) == 0 {
		return fmt.Errorf("at least one source must be enabled")
	}
	if cfg.Apify.Token == "" {
		return fmt.Errorf("apify.token (or APIFY_TOKEN) is required")
	}

	if cfg.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must not be negative, got %d", cfg.Retry.MaxRetries)
	}

	if cfg.AI.Enabled {
		switch cfg.AI.Provider {
		case ProviderOpenAI, ProviderGemini:
		default:
			return fmt.Errorf("ai.provider must be %q or %q, got %q", ProviderOpenAI, ProviderGemini, cfg.AI.Provider)
		}
		if cfg.AI.APIKey == "" {
			return fmt.Errorf("ai.api_key is required when ai.enabled is true")
		}
		if cfg.AI.Model == "" {
			return fmt.Errorf("ai.model is required when ai.enabled is true")
		}
	}

	switch cfg.Ranking.Strategy {
	case StrategyKeyword:
	case StrategyLLM, StrategyEmbedding:
		if !cfg.AI.Enabled {
			return fmt.Errorf("ranking.strategy %q requires ai.enabled", cfg.Ranking.Strategy)
		}
	default:
		return fmt.Errorf("ranking.strategy must be llm, embedding or keyword, got %q", cfg.Ranking.Strategy)
	}
	if cfg.Ranking.DefaultScore < 0 || cfg.Ranking.DefaultScore > 100 {
		return fmt.Errorf("ranking.default_score must be between 0 and 100, got %v", cfg.Ranking.DefaultScore)
	}

	switch cfg.Cache.Backend {
	case CacheNone:
	case CacheSQLite, CacheRedis:
		if cfg.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive, got %v", cfg.Cache.TTL)
		}
		if cfg.Cache.Backend == CacheRedis && cfg.Cache.RedisURL == "" {
			return fmt.Errorf("cache.redis_url is required when cache.backend is \"redis\"")
		}
		if _, err := cron.ParseStandard(cfg.Cache.CleanupSchedule); err != nil {
			return fmt.Errorf("cache.cleanup_schedule %q: %w", cfg.Cache.CleanupSchedule, err)
		}
	default:
		return fmt.Errorf("cache.backend must be none, sqlite or redis, got %q", cfg.Cache.Backend)
	}

	switch cfg.Notification.Type {
	case "log":
	case "slack":
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, "https://hooks.slack.com/") {
			return fmt.Errorf("notification.webhook_url must start with https://hooks.slack.com/")
		}
	default:
		return fmt.Errorf("notification.type must be log or slack, got %q", cfg.Notification.Type)
	}

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", cfg.Log.Level)
	}
	switch cfg.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", cfg.Log.Format)
	}

	return nil
}

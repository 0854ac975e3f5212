package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Server      ServerConfig     `toml:"server"`
	Storage     StorageConfig    `toml:"storage"`
	Logging     LoggingConfig    `toml:"logging"`
	Jobs        JobsConfig       `toml:"jobs"`
	Enrichment  EnrichmentConfig `toml:"enrichment"`
	Fetcher     FetcherConfig    `toml:"fetcher"`
	Catalog     CatalogConfig    `toml:"catalog"`
	WebSocket   WebSocketConfig  `toml:"websocket"`
	Scheduler   SchedulerConfig  `toml:"scheduler"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// JobsConfig controls batch submission limits and processor pacing
type JobsConfig struct {
	MaxBatchSize int    `toml:"max_batch_size"` // Maximum item ids per submitted batch
	ItemDelay    string `toml:"item_delay"`     // Minimum interval between enrichment calls, e.g. "15s"
	ShutdownWait string `toml:"shutdown_wait"`  // How long shutdown waits for running jobs before abandoning them
}

// EnrichmentConfig selects and configures the LLM provider
type EnrichmentConfig struct {
	Provider string       `toml:"provider"` // "claude" or "gemini"
	Claude   ClaudeConfig `toml:"claude"`
	Gemini   GeminiConfig `toml:"gemini"`
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key (env ANTHROPIC_API_KEY takes priority)
	Model       string  `toml:"model"`       // Model for extraction/generation
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 4096)
	Timeout     string  `toml:"timeout"`     // Per-call timeout as duration string (default: "2m")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.2)
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"` // Gemini API key (env GEMINI_API_KEY takes priority)
	Model       string  `toml:"model"`
	Timeout     string  `toml:"timeout"`
	Temperature float32 `toml:"temperature"`
}

// FetcherConfig controls supplier source fetching
type FetcherConfig struct {
	UserAgent   string `toml:"user_agent"`
	Timeout     string `toml:"timeout"`       // HTTP request timeout
	MaxBodySize int    `toml:"max_body_size"` // Maximum response body size in bytes
}

// CatalogConfig locates the per-category attribute schema files
type CatalogConfig struct {
	SchemasDir string `toml:"schemas_dir"` // Directory containing category schema YAML files
}

// WebSocketConfig controls the progress/log push channel
type WebSocketConfig struct {
	MinLevel         string   `toml:"min_level"`         // Minimum log level to broadcast
	ProgressThrottle string   `toml:"progress_throttle"` // Max one progress frame per interval per connection set
	ExcludePatterns  []string `toml:"exclude_patterns"`  // Log message patterns to exclude from broadcasting
}

// SchedulerConfig controls the stale-job sweeper
type SchedulerConfig struct {
	StaleAfter    string `toml:"stale_after"`    // Running jobs without a heartbeat for this long are failed
	SweepSchedule string `toml:"sweep_schedule"` // Cron schedule for the sweep
}

// NewDefaultConfig creates a configuration with default values.
// Only user-facing settings should be exposed in merx.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
		Jobs: JobsConfig{
			MaxBatchSize: 100,
			ItemDelay:    "15s", // keeps one job under the provider's requests-per-minute budget
			ShutdownWait: "30s",
		},
		Enrichment: EnrichmentConfig{
			Provider: "claude",
			Claude: ClaudeConfig{
				APIKey:      "",
				Model:       "claude-haiku-3-5-20241022",
				MaxTokens:   4096,
				Timeout:     "2m",
				Temperature: 0.2,
			},
			Gemini: GeminiConfig{
				APIKey:      "",
				Model:       "gemini-3-flash-preview",
				Timeout:     "2m",
				Temperature: 0.2,
			},
		},
		Fetcher: FetcherConfig{
			UserAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			Timeout:     "30s",
			MaxBodySize: 10 * 1024 * 1024, // 10MB
		},
		Catalog: CatalogConfig{
			SchemasDir: "./schemas",
		},
		WebSocket: WebSocketConfig{
			MinLevel:         "info",
			ProgressThrottle: "500ms",
			ExcludePatterns: []string{
				"WebSocket client connected",
				"WebSocket client disconnected",
				"HTTP request",
				"HTTP response",
			},
		},
		Scheduler: SchedulerConfig{
			StaleAfter:    "10m",
			SweepSchedule: "*/5 * * * *",
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env. Later files override earlier
// files; environment variables override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("MERX_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("MERX_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("MERX_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if badgerPath := os.Getenv("MERX_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	if level := os.Getenv("MERX_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("MERX_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	if maxBatch := os.Getenv("MERX_JOBS_MAX_BATCH_SIZE"); maxBatch != "" {
		if mb, err := strconv.Atoi(maxBatch); err == nil && mb > 0 {
			config.Jobs.MaxBatchSize = mb
		}
	}
	if itemDelay := os.Getenv("MERX_JOBS_ITEM_DELAY"); itemDelay != "" {
		if _, err := time.ParseDuration(itemDelay); err == nil {
			config.Jobs.ItemDelay = itemDelay
		}
	}
	if shutdownWait := os.Getenv("MERX_JOBS_SHUTDOWN_WAIT"); shutdownWait != "" {
		if _, err := time.ParseDuration(shutdownWait); err == nil {
			config.Jobs.ShutdownWait = shutdownWait
		}
	}

	if provider := os.Getenv("MERX_ENRICHMENT_PROVIDER"); provider != "" {
		config.Enrichment.Provider = provider
	}
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Enrichment.Claude.APIKey = apiKey
	}
	if apiKey := os.Getenv("MERX_CLAUDE_API_KEY"); apiKey != "" {
		config.Enrichment.Claude.APIKey = apiKey // MERX_ prefix takes priority
	}
	if model := os.Getenv("MERX_CLAUDE_MODEL"); model != "" {
		config.Enrichment.Claude.Model = model
	}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.Enrichment.Gemini.APIKey = apiKey
	}
	if apiKey := os.Getenv("MERX_GEMINI_API_KEY"); apiKey != "" {
		config.Enrichment.Gemini.APIKey = apiKey
	}
	if model := os.Getenv("MERX_GEMINI_MODEL"); model != "" {
		config.Enrichment.Gemini.Model = model
	}

	if userAgent := os.Getenv("MERX_FETCHER_USER_AGENT"); userAgent != "" {
		config.Fetcher.UserAgent = userAgent
	}
	if timeout := os.Getenv("MERX_FETCHER_TIMEOUT"); timeout != "" {
		if _, err := time.ParseDuration(timeout); err == nil {
			config.Fetcher.Timeout = timeout
		}
	}

	if schemasDir := os.Getenv("MERX_CATALOG_SCHEMAS_DIR"); schemasDir != "" {
		config.Catalog.SchemasDir = schemasDir
	}

	if staleAfter := os.Getenv("MERX_SCHEDULER_STALE_AFTER"); staleAfter != "" {
		if _, err := time.ParseDuration(staleAfter); err == nil {
			config.Scheduler.StaleAfter = staleAfter
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// ParseDurationOr parses a duration string, falling back to def when the
// value is empty or malformed.
func ParseDurationOr(value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return d
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

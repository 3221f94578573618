package model

import "time"

// Config is the complete claimcheck configuration. It is YAML-serializable
// so `claimcheck config init/show` can round-trip it.
type Config struct {
	HTTP         HTTPConfig         `yaml:"http"`
	Cache        CacheConfig        `yaml:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting"`
	Output       OutputConfig       `yaml:"output"`
	LLM          LLMConfig          `yaml:"llm"`
}

// HTTPConfig controls remote document loading.
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty"`
	NoProxy      string        `yaml:"no_proxy,omitempty"`
	InsecureTLS  bool          `yaml:"insecure_tls"`
	CheckRobots  bool          `yaml:"check_robots"`
}

// CacheConfig controls caching of fetched remote documents.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Dir       string        `yaml:"dir"`        // Disk cache directory
	MemoryTTL time.Duration `yaml:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl"`
}

// ConcurrencyConfig controls batch processing.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers"`
}

// RateLimitingConfig controls per-host request pacing.
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Verbose       bool `yaml:"verbose"`
	IncludeFooter bool `yaml:"include_footer"`
}

// LLMConfig controls the optional report narration.
type LLMConfig struct {
	Provider        string `yaml:"provider"` // "openai", "ollama", "" (disabled)
	Model           string `yaml:"model"`
	APIKey          string `yaml:"-"` // Never persisted; environment only
	BaseURL         string `yaml:"base_url,omitempty"`
	Timeout         int    `yaml:"timeout"` // seconds
	StrictAllowlist bool   `yaml:"strict_allowlist"`
	MaxTokens       int    `yaml:"max_tokens"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "claimcheck/0.1 (+https://github.com/docattest/claimcheck)",
			MaxBodyBytes: 16_000_000,
			CheckRobots:  true,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "", // Resolved to ~/.claimcheck/cache at load time
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         5,
		},
		Output: OutputConfig{
			Verbose:       false,
			IncludeFooter: true,
		},
		LLM: LLMConfig{
			Provider:        "", // Disabled by default
			Timeout:         30,
			StrictAllowlist: true,
			MaxTokens:       1000,
		},
	}
}

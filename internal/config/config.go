package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the marketlens serving configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Query     QueryConfig     `yaml:"query"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Answer    AnswerConfig    `yaml:"answer"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
	APIKeys         []string `yaml:"api_keys"` // empty = auth disabled
}

// CorpusConfig points at the preprocessed corpus produced by the ingestion
// pipeline.
type CorpusConfig struct {
	Path string `yaml:"path"`
}

// StorageConfig holds document persistence settings. Driver "memory" keeps
// everything in-process; "redis" persists documents and the embedding cache.
type StorageConfig struct {
	Driver              string   `yaml:"driver"` // memory, redis (default: memory)
	Addrs               []string `yaml:"addrs"`
	Password            string   `yaml:"password"`
	KeyPrefix           string   `yaml:"key_prefix"`
	ReadinessTimeoutSec int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds embedding settings.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"` // local, openai (default: local)
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Cache      bool   `yaml:"cache"` // cache vectors in the KV store
}

// QueryConfig holds query engine settings.
type QueryConfig struct {
	DefaultTopK    int     `yaml:"default_top_k"`
	MinQueryLen    int     `yaml:"min_query_len"`
	MaxQueryLen    int     `yaml:"max_query_len"`
	MinSimilarity  float64 `yaml:"min_similarity"`
	TimeoutSeconds int     `yaml:"timeout_sec"` // 0 = no timeout
}

// AnalysisConfig holds the market analyzer thresholds.
type AnalysisConfig struct {
	VolatilityLow  float64  `yaml:"volatility_low"`  // low/medium boundary
	VolatilityHigh float64  `yaml:"volatility_high"` // medium/high boundary
	TrendEpsilon   *float64 `yaml:"trend_epsilon"`
	SMAWindow      int      `yaml:"sma_window"`
	HoldOnHighRisk *bool    `yaml:"hold_on_high_risk"` // risk gates trend (default true)
}

// AnswerConfig holds answer synthesis settings.
type AnswerConfig struct {
	MaxExcerptLen int `yaml:"max_excerpt_len"`
	MaxFacts      int `yaml:"max_facts"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Corpus.Path == "" {
		c.Corpus.Path = "processed_nifty_data.json"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "marketlens:"
	}
	if c.Storage.ReadinessTimeoutSec <= 0 {
		c.Storage.ReadinessTimeoutSec = 30
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "local"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 384
	}
	if c.Query.DefaultTopK <= 0 {
		c.Query.DefaultTopK = 3
	}
	if c.Query.MinQueryLen <= 0 {
		c.Query.MinQueryLen = 3
	}
	if c.Query.MaxQueryLen <= 0 {
		c.Query.MaxQueryLen = 500
	}
	if c.Query.MinSimilarity == 0 {
		c.Query.MinSimilarity = 0.10
	}
	if c.Analysis.VolatilityLow <= 0 {
		c.Analysis.VolatilityLow = 20
	}
	if c.Analysis.VolatilityHigh <= 0 {
		c.Analysis.VolatilityHigh = 50
	}
	if c.Analysis.TrendEpsilon == nil {
		eps := 0.0
		c.Analysis.TrendEpsilon = &eps
	}
	if c.Analysis.SMAWindow <= 0 {
		c.Analysis.SMAWindow = 3
	}
	if c.Analysis.HoldOnHighRisk == nil {
		hold := true
		c.Analysis.HoldOnHighRisk = &hold
	}
	if c.Answer.MaxExcerptLen <= 0 {
		c.Answer.MaxExcerptLen = 400
	}
	if c.Answer.MaxFacts <= 0 {
		c.Answer.MaxFacts = 5
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Storage.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("storage.driver must be \"memory\" or \"redis\", got %q", c.Storage.Driver)
	}
	if c.Storage.Driver == "redis" && len(c.Storage.Addrs) == 0 {
		return fmt.Errorf("storage.addrs is required for the redis driver")
	}
	switch c.Embedding.Provider {
	case "local", "openai":
	default:
		return fmt.Errorf("embedding.provider must be \"local\" or \"openai\", got %q", c.Embedding.Provider)
	}
	if c.Embedding.Provider == "openai" && c.Embedding.APIKey == "" {
		return fmt.Errorf("embedding.api_key is required for the openai provider")
	}
	if c.Analysis.VolatilityLow >= c.Analysis.VolatilityHigh {
		return fmt.Errorf(
			"analysis.volatility_low (%v) must be below analysis.volatility_high (%v)",
			c.Analysis.VolatilityLow, c.Analysis.VolatilityHigh,
		)
	}
	if *c.Analysis.TrendEpsilon < 0 {
		return fmt.Errorf("analysis.trend_epsilon must not be negative")
	}
	if c.Query.MinQueryLen > c.Query.MaxQueryLen {
		return fmt.Errorf(
			"query.min_query_len (%d) must not exceed query.max_query_len (%d)",
			c.Query.MinQueryLen, c.Query.MaxQueryLen,
		)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}

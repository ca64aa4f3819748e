// Package config provides configuration loading for the proofd service.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the service.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Resources ResourcesConfig `yaml:"resources"`
	Redis     RedisConfig     `yaml:"redis"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Grammar   GrammarConfig   `yaml:"grammar"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	MaxTextLength int    `yaml:"max_text_length"`
}

// ResourcesConfig holds paths to the static corpus resources. Both are
// required; the service cannot start without them.
type ResourcesConfig struct {
	LexiconPath string `yaml:"lexicon_path"`
	NgramPath   string `yaml:"ngram_path"`
}

// RedisConfig holds the optional user-dictionary store settings. An empty
// Addr disables the user dictionary.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// AnalysisConfig holds the detection tuning knobs.
type AnalysisConfig struct {
	MaxEditDistance   int     `yaml:"max_edit_distance"`
	MaxCandidates     int     `yaml:"max_candidates"`
	MinWordLength     int     `yaml:"min_word_length"`
	RealWordThreshold float64 `yaml:"real_word_threshold"`
	RealWordGain      float64 `yaml:"real_word_gain"`
}

// GrammarConfig holds grammar-engine settings. IrregularVerbs maps a base
// verb to [third-person, past, past-participle] and extends the built-in
// table.
type GrammarConfig struct {
	Enabled         *bool               `yaml:"enabled"`
	TaggerTimeoutMS int                 `yaml:"tagger_timeout_ms"`
	IrregularVerbs  map[string][]string `yaml:"irregular_verbs"`
}

// EnabledOrDefault returns whether grammar checks run; defaults to true when
// unset.
func (g *GrammarConfig) EnabledOrDefault() bool {
	if g.Enabled != nil {
		return *g.Enabled
	}
	return true
}

// Load reads and parses the config file at path, applies defaults, then
// environment overrides. An empty path yields defaults plus environment.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	ApplyDefaults(&cfg)
	applyEnv(&cfg)
	return &cfg, nil
}

// applyEnv layers the deployment-level environment overrides on top of the
// file values.
func applyEnv(cfg *Config) {
	cfg.Server.Host = getenv("PROOFD_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvInt("PROOFD_PORT", cfg.Server.Port)
	cfg.Resources.LexiconPath = getenv("LEXICON_PATH", cfg.Resources.LexiconPath)
	cfg.Resources.NgramPath = getenv("NGRAM_PATH", cfg.Resources.NgramPath)
	cfg.Redis.Addr = getenv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getenv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if i, err := strconv.Atoi(v); err == nil {
		return i
	}
	return def
}

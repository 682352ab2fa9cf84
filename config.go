package cordsearch

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level, YAML-driven configuration for a
// cordsearchd instance. Fields not set in the file fall back to
// defaultConfig; individual fields can be overridden by CORDSEARCH_*
// environment variables.
type Config struct {
	IndexDir   string         `yaml:"index_dir"`
	ListenAddr string         `yaml:"listen_addr"`
	LogLevel   string         `yaml:"log_level"`
	LogFormat  string         `yaml:"log_format"`
	BM25       BM25Config     `yaml:"bm25"`
	Cache      CacheConfig    `yaml:"cache"`
	Semantic   SemanticConfig `yaml:"semantic"`
	Barrels    BarrelsConfig  `yaml:"barrels"`
}

// BM25Config lets an operator override the ranking constants for
// experimentation without a rebuild.
type BM25Config struct {
	K1 float64 `yaml:"k1"`
	B  float64 `yaml:"b"`
}

// CacheConfig sets the capacities of the three independent LRU
// caches and how often they flush to disk.
type CacheConfig struct {
	SearchCapacity     int `yaml:"search_capacity"`
	AIOverviewCapacity int `yaml:"ai_overview_capacity"`
	AISummaryCapacity  int `yaml:"ai_summary_capacity"`
	SaveEveryNPuts     int `yaml:"save_every_n_puts"`
}

// SemanticConfig mirrors SemanticExpandParams for YAML override; no
// CORDSEARCH_* environment variable applies to it.
type SemanticConfig struct {
	Enabled       bool    `yaml:"enabled"`
	PerTerm       int     `yaml:"per_term"`
	GlobalTopK    int     `yaml:"global_topk"`
	MinSim        float64 `yaml:"min_sim"`
	Alpha         float64 `yaml:"alpha"`
	MaxTotalTerms int     `yaml:"max_total_terms"`
}

// BarrelsConfig controls segment-writer sharding.
type BarrelsConfig struct {
	Count uint32 `yaml:"count"`
}

func defaultConfig() Config {
	return Config{
		IndexDir:   "./index",
		ListenAddr: ":8080",
		LogLevel:   "info",
		LogFormat:  "text",
		BM25:       BM25Config{K1: bm25K1, B: bm25B},
		Cache: CacheConfig{
			SearchCapacity:     2600,
			AIOverviewCapacity: 500,
			AISummaryCapacity:  1000,
			SaveEveryNPuts:     50,
		},
		Semantic: SemanticConfig{
			Enabled:       true,
			PerTerm:       DefaultSemanticExpandParams.PerTerm,
			GlobalTopK:    DefaultSemanticExpandParams.GlobalTopK,
			MinSim:        DefaultSemanticExpandParams.MinSim,
			Alpha:         DefaultSemanticExpandParams.Alpha,
			MaxTotalTerms: DefaultSemanticExpandParams.MaxTotalTerms,
		},
		Barrels: BarrelsConfig{Count: DefaultBarrelCount},
	}
}

// LoadConfig reads path (if non-empty and it exists) over top of
// defaultConfig, then applies CORDSEARCH_* environment overrides.
func LoadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CORDSEARCH_INDEX_DIR"); v != "" {
		cfg.IndexDir = v
	}
	if v := os.Getenv("CORDSEARCH_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("CORDSEARCH_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("CORDSEARCH_LOG_FORMAT"); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}
	if v := os.Getenv("CORDSEARCH_BM25_K1"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.BM25.K1 = f
		}
	}
	if v := os.Getenv("CORDSEARCH_BM25_B"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.BM25.B = f
		}
	}
}

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	internal "github.com/ZanzyTHEbar/fiq/fiq"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Index      IndexConfig      `mapstructure:"index"`
	Walker     WalkerConfig     `mapstructure:"walker"`
	Duplicates DuplicatesConfig `mapstructure:"duplicates"`
	Log        LogConfig        `mapstructure:"log"`
}

// IndexConfig controls the trigram name index and its cache tiers.
type IndexConfig struct {
	TTL          time.Duration `mapstructure:"ttl"`
	CacheDir     string        `mapstructure:"cacheDir"`
	BuildWorkers int           `mapstructure:"buildWorkers"`
	Disabled     bool          `mapstructure:"disabled"`
}

// WalkerConfig controls directory traversal.
type WalkerConfig struct {
	Threads       int      `mapstructure:"threads"`
	IncludeHidden bool     `mapstructure:"includeHidden"`
	IgnoreFiles   []string `mapstructure:"ignoreFiles"`
	SkipDirs      []string `mapstructure:"skipDirs"`
}

// DuplicatesConfig tunes duplicate detection.
type DuplicatesConfig struct {
	PartialBytes int64 `mapstructure:"partialBytes"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

const (
	DefaultTTL           = time.Hour
	DefaultWalkerThreads = 4
	DefaultPartialBytes  = 4096
)

// Default returns the configuration used when no file or environment overrides exist.
func Default() *Config {
	return &Config{
		Index: IndexConfig{
			TTL:          DefaultTTL,
			CacheDir:     internal.DefaultCacheDir,
			BuildWorkers: runtime.NumCPU(),
		},
		Walker: WalkerConfig{
			Threads:       DefaultWalkerThreads,
			IncludeHidden: true,
			IgnoreFiles:   []string{".gitignore", internal.DefaultIgnoreFile},
			SkipDirs:      []string{".git"},
		},
		Duplicates: DuplicatesConfig{PartialBytes: DefaultPartialBytes},
		Log:        LogConfig{Level: "info"},
	}
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath(internal.DefaultConfigPath)
		v.AddConfigPath(filepath.Join("/etc", internal.DefaultAppName))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	def := Default()
	v.SetDefault("index.ttl", def.Index.TTL)
	v.SetDefault("index.cacheDir", def.Index.CacheDir)
	v.SetDefault("index.buildWorkers", def.Index.BuildWorkers)
	v.SetDefault("index.disabled", def.Index.Disabled)
	v.SetDefault("walker.threads", def.Walker.Threads)
	v.SetDefault("walker.includeHidden", def.Walker.IncludeHidden)
	v.SetDefault("walker.ignoreFiles", def.Walker.IgnoreFiles)
	v.SetDefault("walker.skipDirs", def.Walker.SkipDirs)
	v.SetDefault("duplicates.partialBytes", def.Duplicates.PartialBytes)
	v.SetDefault("log.level", def.Log.Level)

	// FIQ_INDEX_TTL, FIQ_WALKER_THREADS, ...
	v.SetEnvPrefix(strings.ToUpper(internal.DefaultAppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// FIQ_THREADS predates the structured keys
	if err := v.BindEnv("walker.threads", "FIQ_WALKER_THREADS", "FIQ_THREADS"); err != nil {
		return nil, fmt.Errorf("failed to bind walker threads: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values no component can run with.
func (c *Config) Validate() error {
	if c.Index.TTL <= 0 {
		return fmt.Errorf("index.ttl must be positive, got %s", c.Index.TTL)
	}
	if strings.TrimSpace(c.Index.CacheDir) == "" {
		return fmt.Errorf("index.cacheDir cannot be empty")
	}
	if c.Walker.Threads < 1 {
		return fmt.Errorf("walker.threads must be at least 1, got %d", c.Walker.Threads)
	}
	if c.Index.BuildWorkers < 1 {
		c.Index.BuildWorkers = 1
	}
	if c.Duplicates.PartialBytes < 0 {
		return fmt.Errorf("duplicates.partialBytes cannot be negative")
	}
	return nil
}

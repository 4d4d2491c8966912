// Package config loads runtime settings from defaults, an optional YAML
// file, a .env file and BOOKSHELF_* environment variables, in increasing
// order of precedence. Command-line flags bound to the viper instance win
// over all of them.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Keys used in the config file, in the environment (upper-cased with the
// BOOKSHELF_ prefix) and by flag bindings.
const (
	KeyURI         = "uri"
	KeyDatabase    = "database"
	KeyCollection  = "collection"
	KeyPage        = "page"
	KeyPageSize    = "page_size"
	KeyAuthor      = "explain_author"
	KeyOutput      = "output"
	KeyLogFormat   = "log_format"
	KeyLogLevel    = "log_level"
	KeyTimeout     = "timeout"
	KeyMetricsFile = "metrics_file"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "BOOKSHELF"

// Config holds everything the CLI needs for one run.
type Config struct {
	URI           string        `mapstructure:"uri"`
	Database      string        `mapstructure:"database"`
	Collection    string        `mapstructure:"collection"`
	Page          int           `mapstructure:"page"`
	PageSize      int           `mapstructure:"page_size"`
	ExplainAuthor string        `mapstructure:"explain_author"`
	Output        string        `mapstructure:"output"`
	LogFormat     string        `mapstructure:"log_format"`
	LogLevel      string        `mapstructure:"log_level"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MetricsFile   string        `mapstructure:"metrics_file"`
}

// SetDefaults installs the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyURI, "mongodb://localhost:27017")
	v.SetDefault(KeyDatabase, "plp_bookstore")
	v.SetDefault(KeyCollection, "books")
	v.SetDefault(KeyPage, 1)
	v.SetDefault(KeyPageSize, 5)
	v.SetDefault(KeyAuthor, "Jane Austen")
	v.SetDefault(KeyOutput, "text")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyTimeout, 60*time.Second)
	v.SetDefault(KeyMetricsFile, "")
}

// Options controls where Load looks for input.
type Options struct {
	// File is an explicit config file. When empty, bookshelf.yaml is looked
	// up in the working directory and in $HOME/.bookshelf; not finding one
	// is fine.
	File string
	// DotEnv is the .env file to load. Defaults to ".env"; a missing file
	// is ignored.
	DotEnv string
}

// Load reads configuration into a Config using v, which may already carry
// flag bindings.
func Load(v *viper.Viper, opts Options) (Config, error) {
	dotenv := opts.DotEnv
	if dotenv == "" {
		dotenv = ".env"
	}
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load %s: %w", dotenv, err)
	}

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	// MONGODB_URI is the conventional name; BOOKSHELF_URI still wins.
	if err := v.BindEnv(KeyURI, EnvPrefix+"_URI", "MONGODB_URI"); err != nil {
		return Config{}, fmt.Errorf("config: bind env: %w", err)
	}

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", opts.File, err)
		}
	} else {
		v.SetConfigName("bookshelf")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".bookshelf"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail deep inside a run.
func (c Config) Validate() error {
	var problems []string
	if c.URI == "" {
		problems = append(problems, "uri is empty")
	}
	if c.Database == "" {
		problems = append(problems, "database is empty")
	}
	if c.Collection == "" {
		problems = append(problems, "collection is empty")
	}
	if c.Page < 1 {
		problems = append(problems, fmt.Sprintf("page must be at least 1, got %d", c.Page))
	}
	if c.PageSize < 1 {
		problems = append(problems, fmt.Sprintf("page_size must be at least 1, got %d", c.PageSize))
	}
	if c.Timeout <= 0 {
		problems = append(problems, fmt.Sprintf("timeout must be positive, got %s", c.Timeout))
	}
	if len(problems) > 0 {
		return fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/foomo/vacuumpartshub/service"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

const EnvPrefix = "VACUUMHUB"

// Config holds every setting of the site generator, server and MCP tools.
type Config struct {
	DataDir      string        `mapstructure:"data_dir"`
	Exclude      []string      `mapstructure:"exclude"`
	OutDir       string        `mapstructure:"out_dir"`
	BaseURL      string        `mapstructure:"base_url"`
	SiteName     string        `mapstructure:"site_name"`
	AffiliateTag string        `mapstructure:"affiliate_tag"`
	Listen       string        `mapstructure:"listen"`
	MCPEndpoint  string        `mapstructure:"mcp_endpoint"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	Concurrency  int           `mapstructure:"concurrency"`
	Debug        bool          `mapstructure:"debug"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "data")
	v.SetDefault("exclude", service.DefaultExclude)
	v.SetDefault("out_dir", "public")
	v.SetDefault("base_url", "https://vacuumpartshub.com")
	v.SetDefault("site_name", "VacuumPartsHub")
	v.SetDefault("affiliate_tag", "vacuumhub-20")
	v.SetDefault("listen", ":8080")
	v.SetDefault("mcp_endpoint", "/mcp")
	v.SetDefault("cache_ttl", 5*time.Minute)
	v.SetDefault("concurrency", 8)
	v.SetDefault("debug", false)
}

// LoadDotEnv loads variables from the given env files into the process
// environment. Missing files are ignored and set variables are kept.
func LoadDotEnv(files ...string) error {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return nil
}

// Load reads defaults, the config file, VACUUMHUB_* variables and any flags
// already bound to v, in increasing precedence. Without an explicit path an
// optional vacuumhub.yaml in the working directory is used.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("vacuumhub")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var err error
	if c.DataDir == "" {
		err = multierr.Append(err, errors.New("data_dir must not be empty"))
	}
	if u, parseErr := url.Parse(c.BaseURL); parseErr != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		err = multierr.Append(err, fmt.Errorf("base_url must be an absolute http(s) URL, got %q", c.BaseURL))
	}
	if c.AffiliateTag == "" {
		err = multierr.Append(err, errors.New("affiliate_tag must not be empty"))
	}
	if !strings.HasPrefix(c.MCPEndpoint, "/") {
		err = multierr.Append(err, fmt.Errorf("mcp_endpoint must start with /, got %q", c.MCPEndpoint))
	}
	if c.CacheTTL < 0 {
		err = multierr.Append(err, fmt.Errorf("cache_ttl must not be negative, got %s", c.CacheTTL))
	}
	if c.Concurrency <= 0 {
		err = multierr.Append(err, fmt.Errorf("concurrency must be positive, got %d", c.Concurrency))
	}
	return err
}

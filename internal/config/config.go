package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides, e.g.
// LABORWATCH_SERVER_ADDR.
const EnvPrefix = "LABORWATCH"

// Config is the top-level laborwatch configuration.
type Config struct {
	DBPath   string `mapstructure:"db_path"`
	Company  string `mapstructure:"company"`
	LogLevel string `mapstructure:"log_level"`
	Server   Server `mapstructure:"server"`
	Engine   Engine `mapstructure:"engine"`
	Watch    Watch  `mapstructure:"watch"`
	FRED     FRED   `mapstructure:"fred"`
	Output   Output `mapstructure:"output"`
}

// Server defines HTTP server settings.
type Server struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Engine defines insight engine settings.
type Engine struct {
	// EvidenceMode is "scoped" or "broad".
	EvidenceMode string `mapstructure:"evidence_mode"`

	// CatalogFile optionally replaces the built-in rules with a YAML catalog.
	CatalogFile string `mapstructure:"catalog_file"`
}

// Scope is a watched organizational scope. Empty fields fall back to the
// configured company and DefaultFunction.
type Scope struct {
	Company  string `mapstructure:"company"`
	Region   string `mapstructure:"region"`
	Function string `mapstructure:"function"`
}

// Watch defines the periodic regeneration settings.
type Watch struct {
	Interval time.Duration `mapstructure:"interval"`
	Scopes   []Scope       `mapstructure:"scopes"`
}

// Series maps a FRED series onto a metric observation. Transform is
// "level" (the latest value) or "yoy" (percent change over Periods).
type Series struct {
	ID        string `mapstructure:"id"`
	Metric    string `mapstructure:"metric"`
	Region    string `mapstructure:"region"`
	Function  string `mapstructure:"function"`
	Transform string `mapstructure:"transform"`
	Periods   int    `mapstructure:"periods"`
}

// FRED defines access to the Federal Reserve Economic Data API.
type FRED struct {
	APIKey  string   `mapstructure:"api_key"`
	BaseURL string   `mapstructure:"base_url"`
	Series  []Series `mapstructure:"series"`
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
	Width int  `mapstructure:"width"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location),
// applies LABORWATCH_* environment overrides, and returns a Config with all
// defaults applied.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	// Set defaults.
	v.SetDefault("db_path", DBPath())
	v.SetDefault("company", DefaultCompany)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("server.addr", DefaultServer.Addr)
	v.SetDefault("server.read_timeout", DefaultServer.ReadTimeout)
	v.SetDefault("server.write_timeout", DefaultServer.WriteTimeout)
	v.SetDefault("engine.evidence_mode", DefaultEngine.EvidenceMode)
	v.SetDefault("engine.catalog_file", "")
	v.SetDefault("watch.interval", DefaultWatch.Interval)
	v.SetDefault("fred.api_key", "")
	v.SetDefault("fred.base_url", DefaultFRED.BaseURL)
	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("output.width", DefaultOutput.Width)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// FRED's conventional variable name is honored without the prefix.
	if err := v.BindEnv("fred.api_key", EnvPrefix+"_FRED_API_KEY", "FRED_API_KEY"); err != nil {
		return nil, err
	}

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(ConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Read config file if it exists; missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Slices are not merged by viper defaults; fill them here.
	if len(cfg.Watch.Scopes) == 0 {
		cfg.Watch.Scopes = append([]Scope(nil), DefaultWatch.Scopes...)
	}
	if len(cfg.FRED.Series) == 0 {
		cfg.FRED.Series = append([]Series(nil), DefaultFRED.Series...)
	}

	cfg.DBPath = expandPath(cfg.DBPath)
	cfg.Engine.CatalogFile = expandPath(cfg.Engine.CatalogFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	switch c.Engine.EvidenceMode {
	case "scoped", "broad":
	default:
		return fmt.Errorf("engine.evidence_mode must be \"scoped\" or \"broad\", got %q", c.Engine.EvidenceMode)
	}
	if c.Watch.Interval <= 0 {
		return fmt.Errorf("watch.interval must be positive, got %s", c.Watch.Interval)
	}
	for i, s := range c.Watch.Scopes {
		if strings.TrimSpace(s.Region) == "" {
			return fmt.Errorf("watch.scopes[%d]: region is required", i)
		}
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	return nil
}

// ResolveScope fills empty scope fields from the configuration.
func (c *Config) ResolveScope(s Scope) Scope {
	if s.Company == "" {
		s.Company = c.Company
	}
	if s.Function == "" {
		s.Function = DefaultFunction
	}
	return s
}

// DBPath returns the default full path to the SQLite database.
func DBPath() string {
	return filepath.Join(expandPath(DefaultConfigDir), DefaultDBName)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}

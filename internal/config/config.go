package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Place     string          `yaml:"place" mapstructure:"place"`
	Roster    string          `yaml:"roster" mapstructure:"roster"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Overpass  OverpassConfig  `yaml:"overpass" mapstructure:"overpass"`
	Territory TerritoryConfig `yaml:"territory" mapstructure:"territory"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// OverpassConfig configures the OSM data source.
type OverpassConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// TerritoryConfig tunes the partitioning run.
type TerritoryConfig struct {
	Multiplier  int     `yaml:"multiplier" mapstructure:"multiplier"`
	AnchorBlend float64 `yaml:"anchor_blend" mapstructure:"anchor_blend"`
}

// OutputConfig configures where rendered artifacts land.
type OutputConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// ServerConfig configures the progress server.
type ServerConfig struct {
	Port       int    `yaml:"port" mapstructure:"port"`
	AdminToken string `yaml:"admin_token" mapstructure:"admin_token"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GEBIET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("roster", "zusteller.yaml")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "gebiet.db")
	v.SetDefault("overpass.base_url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("overpass.timeout_secs", 90)
	v.SetDefault("overpass.rate_per_sec", 0.5)
	v.SetDefault("territory.multiplier", 6)
	v.SetDefault("territory.anchor_blend", 0.9)
	v.SetDefault("output.dir", "out")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the fields a command actually needs. mode is the command
// name: "plan", "serve" or "streets".
func (c *Config) Validate(mode string) error {
	var missing []string

	check := func(ok bool, msg string) {
		if !ok {
			missing = append(missing, msg)
		}
	}

	switch c.Store.Driver {
	case "sqlite":
		check(c.Store.Path != "", "store.path is required for the sqlite driver")
	case "postgres":
		check(c.Store.DatabaseURL != "", "store.database_url is required for the postgres driver")
	default:
		check(false, "store.driver must be sqlite or postgres")
	}

	check(c.Territory.Multiplier >= 1 && c.Territory.Multiplier <= 50,
		"territory.multiplier must be between 1 and 50")
	check(c.Territory.AnchorBlend > 0 && c.Territory.AnchorBlend < 1,
		"territory.anchor_blend must be in (0, 1)")

	switch mode {
	case "plan":
		check(c.Place != "", "place is required")
		check(c.Roster != "", "roster is required")
		check(c.Overpass.BaseURL != "", "overpass.base_url is required")
	case "serve":
		check(c.Server.Port > 0, "server.port must be > 0")
	case "streets":
		check(c.Place != "", "place is required")
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(missing) > 0 {
		return eris.Errorf("config: %s", strings.Join(missing, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/Sergiu-D/dataforge/internal/engine"
	"github.com/Sergiu-D/dataforge/internal/sink"
	"github.com/Sergiu-D/dataforge/internal/web"
)

type DBConfig struct {
	Name   string `mapstructure:"name"`
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Active bool   `mapstructure:"active"`
}

type GenerateConfig struct {
	Rows        int      `mapstructure:"rows"`
	Format      string   `mapstructure:"format"`
	PreviewRows int      `mapstructure:"preview_rows"`
	OutputDir   string   `mapstructure:"output_dir"`
	Download    []string `mapstructure:"download"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Config is the full dataforge configuration (file > env > defaults, flags on top).
type Config struct {
	Engine   engine.Config  `mapstructure:"engine"`
	Generate GenerateConfig `mapstructure:"generate"`
	Server   web.Config     `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Sink     sink.Options   `mapstructure:"sink"`
}

func setDefaults() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.development", false)

	viper.SetDefault("engine.provider", engine.ProviderBuiltin)
	viper.SetDefault("engine.workers", engine.DefaultWorkers)
	viper.SetDefault("engine.seed", 0)

	viper.SetDefault("generate.rows", 100)
	viper.SetDefault("generate.format", "table")
	viper.SetDefault("generate.preview_rows", 20)
	viper.SetDefault("generate.output_dir", ".")

	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.request_timeout", 60*time.Second)
	viper.SetDefault("server.preview_rows", 20)
}

// LoadConfig decodes the merged viper state.
func LoadConfig() (*Config, error) {
	var c Config
	if err := viper.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &c, nil
}

// GetActiveDBConfig returns the currently active database configuration.
func GetActiveDBConfig() (*DBConfig, error) {
	var configs []DBConfig

	if err := viper.UnmarshalKey("databases", &configs); err != nil {
		return nil, fmt.Errorf("failed to parse databases config: %w", err)
	}

	var activeConfig *DBConfig
	count := 0

	for i := range configs {
		if configs[i].Active {
			activeConfig = &configs[i]
			count++
		}
	}

	if count == 0 {
		return nil, fmt.Errorf("no active database found in config (set active: true)")
	}
	if count > 1 {
		return nil, fmt.Errorf("multiple active databases found (only one can be active)")
	}

	return activeConfig, nil
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Provider names accepted in configuration.
const (
	ProviderBuiltin = "builtin"
	ProviderPlugin  = "plugin"
	ProviderNone    = "none"
)

// ErrNoModule is returned by the "none" loader.
var ErrNoModule = errors.New("no pluggable engine configured")

// Config selects and tunes the pluggable engine.
type Config struct {
	Provider   string `mapstructure:"provider"`
	PluginPath string `mapstructure:"plugin_path"`
	Workers    int    `mapstructure:"workers"`
	Seed       int64  `mapstructure:"seed"`
}

// NewLoader returns the Loader for cfg.Provider. An empty provider means builtin.
func NewLoader(cfg Config, log *zap.SugaredLogger) (Loader, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderBuiltin:
		return LoaderFunc(func(context.Context) (Module, error) {
			return NewNative(cfg.Workers, cfg.Seed, log), nil
		}), nil
	case ProviderPlugin:
		if cfg.PluginPath == "" {
			return nil, fmt.Errorf("engine.plugin_path is required for provider %q", ProviderPlugin)
		}
		return LoaderFunc(func(ctx context.Context) (Module, error) {
			return OpenPlugin(cfg.PluginPath)
		}), nil
	case ProviderNone:
		return LoaderFunc(func(context.Context) (Module, error) {
			return nil, ErrNoModule
		}), nil
	default:
		return nil, fmt.Errorf("unknown engine provider %q (want %s, %s or %s)",
			cfg.Provider, ProviderBuiltin, ProviderPlugin, ProviderNone)
	}
}

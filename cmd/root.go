package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Sergiu-D/dataforge/internal/dialect"
	"github.com/Sergiu-D/dataforge/internal/engine"
	"github.com/Sergiu-D/dataforge/internal/logging"
	"github.com/Sergiu-D/dataforge/internal/session"
)

var (
	cfgFile string
	dsn     string
	driver  string

	cfg    *Config
	logger *zap.SugaredLogger
)

var RootCmd = &cobra.Command{
	Use:   "dataforge",
	Short: "A schema-driven fake data generator",
	Long: `
  ____        _        _____                    
 |  _ \  __ _| |_ __ _|  ___|__  _ __ __ _  ___ 
 | | | |/ _` + "`" + ` | __/ _` + "`" + ` | |_ / _ \| '__/ _` + "`" + ` |/ _ \
 | |_| | (_| | || (_| |  _| (_) | | | (_| |  __/
 |____/ \__,_|\__\__,_|_|  \___/|_|  \__, |\___|
                                     |___/      
DATAFORGE ⚒️  - Schema-driven Fake Data Generator
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = LoadConfig()
		if err != nil {
			return err
		}

		base, err := logging.New(cfg.Log.Level, cfg.Log.Development)
		if err != nil {
			return err
		}
		logger = base.Sugar()
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debugw("using config file", "path", used)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	setDefaults()

	flags := RootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./dataforge.yaml)")
	flags.StringVar(&dsn, "dsn", "", "Database Source Name (DSN), used when no database is active in config")
	flags.StringVar(&driver, "driver", "", "database/sql driver for --dsn (detected when empty)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.Bool("dev", false, "human-friendly development logging")
	flags.String("engine", "", "engine provider (builtin, plugin, none)")
	flags.String("plugin", "", "path to an engine plugin (.so)")

	viper.BindPFlag("log.level", flags.Lookup("log-level"))
	viper.BindPFlag("log.development", flags.Lookup("dev"))
	viper.BindPFlag("engine.provider", flags.Lookup("engine"))
	viper.BindPFlag("engine.plugin_path", flags.Lookup("plugin"))
}

// initConfig reads .env, the config file and DATAFORGE_* environment variables.
func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "Warning: failed to load .env:", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Executable directory first, then the working directory.
		if ex, err := os.Executable(); err == nil {
			viper.AddConfigPath(filepath.Dir(ex))
		}
		viper.AddConfigPath(".")

		viper.SetConfigName("dataforge")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("DATAFORGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "Warning: failed to read config:", err)
		}
	}
}

// newSession builds the engine selector and the generation session around it.
func newSession() (*session.Session, *engine.Selector, error) {
	loader, err := engine.NewLoader(cfg.Engine, logger)
	if err != nil {
		return nil, nil, err
	}
	sel := engine.NewSelector(loader, engine.WithLogger(logger))
	return session.New(sel, logger), sel, nil
}

// openDatabase connects to the active configured database, or to --dsn when none is active.
func openDatabase(ctx context.Context) (*sql.DB, dialect.Dialect, string, error) {
	conf, err := GetActiveDBConfig()
	if err != nil {
		if dsn == "" {
			return nil, nil, "", fmt.Errorf("%w (or pass --dsn)", err)
		}
		d := driver
		if d == "" {
			d = dialect.DetectDriver(dsn)
		}
		conf = &DBConfig{Name: "CLI", Driver: d, DSN: dsn, Active: true}
	}

	db, err := sql.Open(conf.Driver, conf.DSN)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, "", fmt.Errorf("failed to connect to db: %w", err)
	}

	d := dialect.GetDialect(conf.Driver)
	schemaName := ""
	if d.Name() == "mysql" {
		if err := db.QueryRowContext(ctx, "SELECT DATABASE()").Scan(&schemaName); err != nil {
			db.Close()
			return nil, nil, "", fmt.Errorf("failed to get database name: %w", err)
		}
		if schemaName == "" {
			db.Close()
			return nil, nil, "", errors.New("no database selected in DSN")
		}
	}
	schemaName = d.GetSchemaName(schemaName)

	logger.Infow("connected to database", "name", conf.Name, "driver", conf.Driver, "schema", schemaName)
	return db, d, schemaName, nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ridoystarlord/migraview/utils"
)

var AppFs = afero.NewOsFs()

// FileName is the config file looked up in the working directory, $HOME
// and $HOME/.config/migraview.
const (
	FileName   = configName + ".yaml"
	configName = ".migraview"
)

const (
	DefaultMigrationsPath  = "database/migrations"
	DefaultMigrationsTable = "migrations"
)

// Config holds the application configuration
type Config struct {
	MigrationsPath  string
	MigrationsTable string
	DatabaseURL     string
	StateFile       string
	Debug           bool
	// ConfigFile is the file the values were read from, empty if none.
	ConfigFile string
}

// flag name for each config key
var flagKeys = map[string]string{
	"migrations_path":  "path",
	"migrations_table": "table",
	"state_file":       "state-file",
	"database_url":     "database-url",
	"debug":            "debug",
}

// Load reads configuration from flags, MIGRAVIEW_* environment variables,
// the config file and defaults, in that order of precedence. An explicit
// configFile must exist; the search path config is optional.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetFs(AppFs)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home)
			v.AddConfigPath(filepath.Join(home, ".config", "migraview"))
		}
	}

	v.SetEnvPrefix("MIGRAVIEW")
	v.AutomaticEnv()

	v.SetDefault("migrations_path", DefaultMigrationsPath)
	v.SetDefault("migrations_table", DefaultMigrationsTable)
	v.SetDefault("state_file", "")
	v.SetDefault("database_url", "")
	v.SetDefault("debug", false)

	if flags != nil {
		for key, name := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	utils.LoadEnv(AppFs)

	cfg := &Config{
		MigrationsPath:  v.GetString("migrations_path"),
		MigrationsTable: v.GetString("migrations_table"),
		DatabaseURL:     v.GetString("database_url"),
		StateFile:       v.GetString("state_file"),
		Debug:           v.GetBool("debug"),
		ConfigFile:      v.ConfigFileUsed(),
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	return cfg, nil
}

// Save writes cfg to path. DatabaseURL is left out so that credentials
// stay in .env.
func Save(cfg *Config, path string) error {
	v := viper.New()
	v.SetFs(AppFs)

	v.Set("migrations_path", cfg.MigrationsPath)
	v.Set("migrations_table", cfg.MigrationsTable)
	if cfg.StateFile != "" {
		v.Set("state_file", cfg.StateFile)
	}
	v.Set("debug", cfg.Debug)

	if dir := filepath.Dir(path); dir != "." {
		if err := AppFs.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	v.SetConfigType("yaml")
	return v.WriteConfigAs(path)
}

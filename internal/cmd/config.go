package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ha-middleware/mysqlz"
)

// configFlags maps connection flags to their configuration keys
var configFlags = map[string]string{
	"host":                 "host",
	"port":                 "port",
	"user":                 "user",
	"password":             "password",
	"database":             "database",
	"socket":               "socket",
	"charset":              "charset",
	"connect-timeout":      "connect_timeout",
	"no-backslash-escapes": "no_backslash_escapes",
}

func addConfigFlags(flags *pflag.FlagSet) {
	defaults := mysqlz.DefaultConfig()

	flags.String("host", defaults.Host, "Server host")
	flags.Int("port", defaults.Port, "Server port")
	flags.StringP("user", "u", "", "User name")
	flags.StringP("password", "p", "", "Password")
	flags.StringP("database", "D", "", "Database to use")
	flags.String("socket", "", "Unix socket path, overrides host and port")
	flags.String("charset", defaults.Charset, "Connection character set")
	flags.Duration("connect-timeout", defaults.ConnectTimeout, "Connect timeout")
	flags.Bool("no-backslash-escapes", false, "Escape values for the NO_BACKSLASH_ESCAPES SQL mode")
}

// loadConfig reads the connection configuration from, by increasing
// priority: defaults, the configuration file, MYSQLZ_* environment
// variables and flags that were set explicitly
func loadConfig(file string, flags *pflag.FlagSet) (mysqlz.Config, error) {
	v := viper.New()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(".mysqlz")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home)
			v.AddConfigPath(filepath.Join(home, ".config", "mysqlz"))
		}
	}

	v.SetEnvPrefix("MYSQLZ")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	defaults := mysqlz.DefaultConfig()
	v.SetDefault("host", defaults.Host)
	v.SetDefault("port", defaults.Port)
	v.SetDefault("user", "")
	v.SetDefault("password", "")
	v.SetDefault("database", "")
	v.SetDefault("socket", "")
	v.SetDefault("charset", defaults.Charset)
	v.SetDefault("connect_timeout", defaults.ConnectTimeout)
	v.SetDefault("no_backslash_escapes", false)

	for flag, key := range configFlags {
		if f := flags.Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return mysqlz.Config{}, fmt.Errorf("failed binding flag %s: %w", flag, err)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return mysqlz.Config{}, fmt.Errorf("failed reading configuration: %w", err)
		}
	}

	var cfg mysqlz.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return mysqlz.Config{}, fmt.Errorf("failed parsing configuration: %w", err)
	}

	return cfg, cfg.Validate()
}

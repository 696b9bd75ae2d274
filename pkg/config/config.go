// Package config layers defaults, a .daybook.yaml file, DAYBOOK_* env vars
// and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Keys.
const (
	KeyServer         = "server"
	KeySessionPath    = "session-path"
	KeyTimeout        = "timeout"
	KeyLogLevel       = "log-level"
	KeyLogFile        = "log-file"
	KeyHandoffTimeout = "handoff-timeout"
	KeyPageSize       = "page-size"
)

// Defaults.
const (
	DefaultServer         = "http://127.0.0.1:5001/api"
	DefaultSessionPath    = "~/.daybook/session"
	DefaultLogFile        = "~/.daybook/daybook.log"
	DefaultTimeout        = 15 * time.Second
	DefaultHandoffTimeout = 2 * time.Second
	DefaultPageSize       = 50
)

// Config is the resolved configuration.
type Config struct {
	Server         string        `json:"server"`
	SessionPath    string        `json:"sessionPath"`
	Timeout        time.Duration `json:"timeout"`
	LogLevel       string        `json:"logLevel"`
	LogFile        string        `json:"logFile"`
	HandoffTimeout time.Duration `json:"handoffTimeout"`
	PageSize       int           `json:"pageSize"`
}

// New returns a viper instance with defaults, env binding and search paths
// set. Nothing is read yet.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyServer, DefaultServer)
	v.SetDefault(KeySessionPath, DefaultSessionPath)
	v.SetDefault(KeyTimeout, DefaultTimeout)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFile, DefaultLogFile)
	v.SetDefault(KeyHandoffTimeout, DefaultHandoffTimeout)
	v.SetDefault(KeyPageSize, DefaultPageSize)

	v.SetConfigName(".daybook") // .yaml is implicit
	v.SetEnvPrefix("DAYBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if override := os.Getenv("DAYBOOK_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}
	return v
}

// BindFlags lets flags override file and env values.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for _, key := range []string{KeyServer, KeySessionPath, KeyTimeout, KeyLogLevel, KeyLogFile, KeyHandoffTimeout, KeyPageSize} {
		f := flags.Lookup(key)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("config: bind %s: %w", key, err)
		}
	}
	return nil
}

// AddFlags registers the persistent flags BindFlags knows about.
func AddFlags(flags *pflag.FlagSet) {
	flags.String(KeyServer, DefaultServer, "API base URL.")
	flags.String(KeySessionPath, DefaultSessionPath, "Directory holding the saved session.")
	flags.Duration(KeyTimeout, DefaultTimeout, "Timeout for a single request.")
	flags.String(KeyLogLevel, "info", "Log level: debug, info, warn or error.")
	flags.String(KeyLogFile, DefaultLogFile, "Log file used by the terminal UI.")
}

// Load reads the config file, if any, and resolves every key.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}

	c := &Config{
		Server:         strings.TrimRight(v.GetString(KeyServer), "/"),
		Timeout:        v.GetDuration(KeyTimeout),
		LogLevel:       v.GetString(KeyLogLevel),
		HandoffTimeout: v.GetDuration(KeyHandoffTimeout),
		PageSize:       v.GetInt(KeyPageSize),
	}

	var err error
	if c.SessionPath, err = homedir.Expand(v.GetString(KeySessionPath)); err != nil {
		return nil, fmt.Errorf("config: session path: %w", err)
	}
	if c.LogFile, err = homedir.Expand(v.GetString(KeyLogFile)); err != nil {
		return nil, fmt.Errorf("config: log file: %w", err)
	}
	return c, c.Validate()
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	if c.Server == "" {
		return errors.New("config: server is required")
	}
	if !strings.HasPrefix(c.Server, "http://") && !strings.HasPrefix(c.Server, "https://") {
		return fmt.Errorf("config: server %q must be an http(s) URL", c.Server)
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.HandoffTimeout <= 0 {
		c.HandoffTimeout = DefaultHandoffTimeout
	}
	if c.PageSize <= 0 || c.PageSize > 100 {
		c.PageSize = DefaultPageSize
	}
	return nil
}

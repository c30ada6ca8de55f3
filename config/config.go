package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. CELLTOP_INTERVAL_SEC.
const EnvPrefix = "CELLTOP"

// Config holds user-configurable defaults and integrations.
type Config struct {
	IntervalSec int          `mapstructure:"interval_sec"`
	AutoRefresh bool         `mapstructure:"auto_refresh"`
	Processes   []string     `mapstructure:"processes"`
	Seed        int64        `mapstructure:"seed"`
	LogLevel    string       `mapstructure:"log_level"`
	LogFile     string       `mapstructure:"log_file"`
	Server      ServerConfig `mapstructure:"server"`
	MQTT        MQTTConfig   `mapstructure:"mqtt"`
	Alerts      AlertConfig  `mapstructure:"alerts"`

	// ProcessesSet is true when processes came from the file or environment,
	// so that a saved empty filter stays empty instead of selecting all.
	ProcessesSet bool `mapstructure:"-"`
}

type ServerConfig struct {
	Listen string `mapstructure:"listen"`
}

type MQTTConfig struct {
	Broker      string `mapstructure:"broker"`
	ClientID    string `mapstructure:"client_id"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
}

type AlertConfig struct {
	Webhook string `mapstructure:"webhook"`
	Command string `mapstructure:"command"`
}

// Default returns a config with sensible defaults.
func Default() Config {
	return Config{
		IntervalSec: 5,
		AutoRefresh: true,
		LogLevel:    "info",
		Server: ServerConfig{
			Listen: "127.0.0.1:8085",
		},
		MQTT: MQTTConfig{
			ClientID:    "celltop",
			TopicPrefix: "celltop/cells",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("interval_sec", d.IntervalSec)
	v.SetDefault("auto_refresh", d.AutoRefresh)
	v.SetDefault("seed", d.Seed)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("server.listen", d.Server.Listen)
	v.SetDefault("mqtt.broker", d.MQTT.Broker)
	v.SetDefault("mqtt.client_id", d.MQTT.ClientID)
	v.SetDefault("mqtt.topic_prefix", d.MQTT.TopicPrefix)
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("alerts.webhook", "")
	v.SetDefault("alerts.command", "")
}

// Path returns ~/.config/celltop/config.json (or under XDG_CONFIG_HOME).
// Returns empty string if home directory cannot be determined.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "celltop", "config.json")
}

// Load layers defaults, the config file at path (Path() when empty), a .env
// file in the working directory and CELLTOP_* environment variables.
// A missing config file is not an error.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = Path()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
			return Default(), fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Default(), fmt.Errorf("decode config: %w", err)
	}
	cfg.ProcessesSet = v.IsSet("processes")
	if cfg.ProcessesSet && cfg.Processes == nil {
		cfg.Processes = []string{}
	}
	if cfg.IntervalSec <= 0 {
		cfg.IntervalSec = Default().IntervalSec
	}
	return cfg, nil
}

// SaveProcesses persists the default process filter, keeping other keys.
func SaveProcesses(path string, processes []string) error {
	if path == "" {
		path = Path()
	}
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if processes == nil {
		processes = []string{}
	}
	v.Set("processes", processes)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return v.WriteConfigAs(path)
}

func isNotExist(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.Is(err, fs.ErrNotExist) || errors.As(err, &nf)
}

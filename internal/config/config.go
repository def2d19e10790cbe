package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tejusbharadwaj/outagewatch/internal/models"
)

// EnvPrefix is prepended to environment variable overrides, e.g.
// OUTAGEWATCH_TELEGRAM_BOT_TOKEN overrides telegram.bot_token.
const EnvPrefix = "OUTAGEWATCH"

// Config holds all configuration for our application
type Config struct {
	Feed     FeedConfig     `mapstructure:"feed" yaml:"feed"`
	Monitor  MonitorConfig  `mapstructure:"monitor" yaml:"monitor"`
	Telegram TelegramConfig `mapstructure:"telegram" yaml:"telegram"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// FeedConfig points at the utility's public outage feed
type FeedConfig struct {
	OutagesURL        string        `mapstructure:"outages_url" yaml:"outages_url"`
	LastUpdateURL     string        `mapstructure:"last_update_url" yaml:"last_update_url"`
	Timeout           time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	Burst             int           `mapstructure:"burst" yaml:"burst"`
}

// MonitorConfig describes the watched location and polling cadence
type MonitorConfig struct {
	Longitude    float64       `mapstructure:"longitude" yaml:"longitude"`
	Latitude     float64       `mapstructure:"latitude" yaml:"latitude"`
	Radius       float64       `mapstructure:"radius" yaml:"radius"`
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	CycleTimeout time.Duration `mapstructure:"cycle_timeout" yaml:"cycle_timeout"`
	RunOnStart   bool          `mapstructure:"run_on_start" yaml:"run_on_start"`
}

// TelegramConfig holds the bot credentials. When BotToken is empty
// notifications are only logged.
type TelegramConfig struct {
	BotToken    string `mapstructure:"bot_token" yaml:"bot_token"`
	ChatID      string `mapstructure:"chat_id" yaml:"chat_id"`
	APIEndpoint string `mapstructure:"api_endpoint" yaml:"api_endpoint"`
}

// Enabled reports whether Telegram delivery is configured.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != ""
}

type ServerConfig struct {
	HTTPPort int `mapstructure:"http_port" yaml:"http_port"`
	GRPCPort int `mapstructure:"grpc_port" yaml:"grpc_port"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Area builds the validated monitored area from the monitor section.
func (c *Config) Area() (models.MonitoredArea, error) {
	return models.NewMonitoredArea(c.Monitor.Longitude, c.Monitor.Latitude, c.Monitor.Radius)
}

// Load reads configuration from file and environment variables.
//
// $VAR references inside scalar values of the file are expanded, and
// OUTAGEWATCH_* variables override individual keys. TELEGRAM_BOT_TOKEN and
// TELEGRAM_CHAT_ID are also read directly. An empty path loads defaults and
// environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The conventional Telegram variables are honoured without a prefix.
	for key, env := range map[string]string{
		"telegram.bot_token": "TELEGRAM_BOT_TOKEN",
		"telegram.chat_id":   "TELEGRAM_CHAT_ID",
	} {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		expanded, err := expandEnv(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}

		v.SetConfigType("yaml")
		if err := v.ReadConfig(bytes.NewReader(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// expandEnv substitutes $VAR references inside scalar values after the
// document has been parsed, so an expanded value is always a plain string
// no matter which YAML characters it contains.
func expandEnv(data []byte) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	expandNode(&doc)
	return yaml.Marshal(&doc)
}

func expandNode(node *yaml.Node) {
	if node.Kind == yaml.ScalarNode && strings.Contains(node.Value, "$") {
		node.Value = os.ExpandEnv(node.Value)
		node.Tag = "!!str"
		node.Style = yaml.DoubleQuotedStyle
	}
	for _, child := range node.Content {
		expandNode(child)
	}
}

// Validate checks the values that cannot be recovered from at runtime.
func (c *Config) Validate() error {
	var errs []error

	for name, raw := range map[string]string{
		"feed.outages_url":     c.Feed.OutagesURL,
		"feed.last_update_url": c.Feed.LastUpdateURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("%s: invalid URL %q", name, raw))
		}
	}
	if c.Feed.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("feed.timeout must be positive"))
	}
	if c.Feed.RequestsPerSecond <= 0 || c.Feed.Burst <= 0 {
		errs = append(errs, fmt.Errorf("feed.requests_per_second and feed.burst must be positive"))
	}

	if _, err := c.Area(); err != nil {
		errs = append(errs, fmt.Errorf("monitor: %w", err))
	}
	if c.Monitor.PollInterval < time.Second {
		errs = append(errs, fmt.Errorf("monitor.poll_interval must be at least 1s, got %s", c.Monitor.PollInterval))
	}
	if c.Monitor.CycleTimeout <= 0 {
		errs = append(errs, fmt.Errorf("monitor.cycle_timeout must be positive"))
	}

	if c.Telegram.Enabled() && c.Telegram.ChatID == "" {
		errs = append(errs, fmt.Errorf("telegram.chat_id is required when telegram.bot_token is set"))
	}

	if c.Server.HTTPPort < 0 || c.Server.GRPCPort < 0 {
		errs = append(errs, fmt.Errorf("server ports must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// Redacted renders the configuration as YAML with credentials masked.
func (c *Config) Redacted() string {
	masked := *c
	if masked.Telegram.BotToken != "" {
		masked.Telegram.BotToken = "****"
	}

	out, err := yaml.Marshal(masked)
	if err != nil {
		return fmt.Sprintf("<unrenderable config: %v>", err)
	}
	return string(out)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("feed.outages_url", "https://utilisocial.io/datacapable/v2/p/scl/map/events")
	v.SetDefault("feed.last_update_url", "https://utilisocial.io/datacapable/v2/p/scl/map/stats")
	v.SetDefault("feed.timeout", 30*time.Second)
	v.SetDefault("feed.requests_per_second", 1.0)
	v.SetDefault("feed.burst", 2)

	// Space Needle, Seattle
	v.SetDefault("monitor.longitude", -122.3507297)
	v.SetDefault("monitor.latitude", 47.6205405)
	v.SetDefault("monitor.radius", 0.000125)
	v.SetDefault("monitor.poll_interval", 5*time.Minute)
	v.SetDefault("monitor.cycle_timeout", 2*time.Minute)
	v.SetDefault("monitor.run_on_start", true)

	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")
	v.SetDefault("telegram.api_endpoint", "")

	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.grpc_port", 50051)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

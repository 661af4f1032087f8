// Package config provides YAML-based configuration loading for Ledgerdesk.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Ledgerdesk configuration, loaded from
// ledgerdesk.yaml.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Notify    NotifyConfig    `yaml:"notify"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Phases    PhasesConfig    `yaml:"phases"`
}

// DatabaseConfig holds connection settings for the backing store.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // mysql or sqlite
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Path     string `yaml:"path"` // sqlite file path
}

// SchedulerConfig controls the recurring-task daemon.
type SchedulerConfig struct {
	Cron string `yaml:"cron"` // 5-field cron expression
}

// NotifyConfig holds chat delivery settings; empty sections disable the
// corresponding platform.
type NotifyConfig struct {
	Slack   SlackConfig   `yaml:"slack"`
	Discord DiscordConfig `yaml:"discord"`
}

// SlackConfig holds Slack Web API credentials.
type SlackConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// DiscordConfig holds Discord bot credentials.
type DiscordConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// DashboardConfig holds ops dashboard settings.
type DashboardConfig struct {
	Port int `yaml:"port"`
}

// PhasesConfig overrides the phase classification sets. Empty lists keep
// the built-in defaults.
type PhasesConfig struct {
	Admin      []string `yaml:"admin"`
	Bookkeeper []string `yaml:"bookkeeper"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Host == "" {
		c.Database.Host = "127.0.0.1"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 3306
	}
	if c.Database.Name == "" {
		c.Database.Name = "ledgerdesk"
	}
	if c.Database.User == "" {
		c.Database.User = "root"
	}
	if c.Database.Path == "" {
		c.Database.Path = "ledgerdesk.db"
	}
	if c.Scheduler.Cron == "" {
		c.Scheduler.Cron = "0 6 * * *"
	}
	if c.Dashboard.Port == 0 {
		c.Dashboard.Port = 8080
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Database.Driver {
	case "mysql", "sqlite":
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q is not mysql or sqlite", c.Database.Driver))
	}
	if c.Notify.Slack.BotToken != "" && c.Notify.Slack.ChannelID == "" {
		errs = append(errs, "notify.slack.channel_id is required with a bot token")
	}
	if c.Notify.Discord.BotToken != "" && c.Notify.Discord.ChannelID == "" {
		errs = append(errs, "notify.discord.channel_id is required with a bot token")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// PhaseLists returns the configured admin and bookkeeper phase labels,
// normalized to lowercase.
func (c *Config) PhaseLists() (admin, bookkeeper []string) {
	for _, p := range c.Phases.Admin {
		admin = append(admin, strings.ToLower(strings.TrimSpace(p)))
	}
	for _, p := range c.Phases.Bookkeeper {
		bookkeeper = append(bookkeeper, strings.ToLower(strings.TrimSpace(p)))
	}
	return admin, bookkeeper
}

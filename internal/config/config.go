// Package config loads server settings from flags, HSE_* environment
// variables and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/erazemk/hsetracker/internal/model"
)

const envPrefix = "HSE"

// Config holds all server settings.
type Config struct {
	Addr           string        `mapstructure:"addr"`
	DB             string        `mapstructure:"db"`
	Log            string        `mapstructure:"log"`
	AdminUser      string        `mapstructure:"admin_user"`
	Timezone       string        `mapstructure:"timezone"`
	EquipmentTypes []string      `mapstructure:"equipment_types"`
	FetchTimeout   time.Duration `mapstructure:"fetch_timeout"`
	Metrics        bool          `mapstructure:"metrics"`
	Kafka          KafkaConfig   `mapstructure:"kafka"`
}

// KafkaConfig configures the push notification topic. With no brokers,
// push notifications are only logged.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// New returns a viper instance with defaults and environment binding set up.
// Nested keys map to variables like HSE_KAFKA_BROKERS.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("addr", ":8080")
	v.SetDefault("db", "hsetracker.sqlite3")
	v.SetDefault("log", "")
	v.SetDefault("admin_user", "Admin")
	v.SetDefault("timezone", "Local")
	v.SetDefault("equipment_types", model.DefaultEquipmentTypes)
	v.SetDefault("fetch_timeout", 5*time.Second)
	v.SetDefault("metrics", true)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "hse.notifications")
	return v
}

// Load reads the optional config file into v, then decodes and validates
// the merged settings.
func Load(v *viper.Viper, configPath string) (*Config, error) {
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %q: %w", configPath, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.EquipmentTypes = cleanList(cfg.EquipmentTypes)
	cfg.Kafka.Brokers = cleanList(cfg.Kafka.Brokers)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings for consistency.
func (c *Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if c.DB == "" {
		errs = append(errs, errors.New("db is required"))
	}
	if c.AdminUser == "" {
		errs = append(errs, errors.New("admin_user is required"))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("fetch_timeout must be positive, got %s", c.FetchTimeout))
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("kafka.topic is required when kafka.brokers is set"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Location resolves the configured time zone. Midnight and calendar days are
// computed in it.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func cleanList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/hsetracker/internal/model"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "hsetracker.sqlite3", cfg.DB)
	assert.Equal(t, "Admin", cfg.AdminUser)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, model.DefaultEquipmentTypes, cfg.EquipmentTypes)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.True(t, cfg.Metrics)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("HSE_ADDR", ":9090")
	t.Setenv("HSE_FETCH_TIMEOUT", "2s")
	t.Setenv("HSE_KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("HSE_EQUIPMENT_TYPES", "Helmet,Harness")

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 2*time.Second, cfg.FetchTimeout)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, []string{"Helmet", "Harness"}, cfg.EquipmentTypes)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hsetracker.yaml")
	content := `
addr: ":7070"
timezone: UTC
equipment_types: [Helmet, Gloves]
kafka:
  brokers: ["broker:9092"]
  topic: ppe.expiry
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Addr)
	assert.Equal(t, []string{"Helmet", "Gloves"}, cfg.EquipmentTypes)
	assert.Equal(t, "ppe.expiry", cfg.Kafka.Topic)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"empty addr", func(c *Config) { c.Addr = "" }, "addr is required"},
		{"zero timeout", func(c *Config) { c.FetchTimeout = 0 }, "fetch_timeout must be positive"},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, "unknown timezone"},
		{"kafka without topic", func(c *Config) {
			c.Kafka.Brokers = []string{"b:9092"}
			c.Kafka.Topic = ""
		}, "kafka.topic is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(New(), "")
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}
}

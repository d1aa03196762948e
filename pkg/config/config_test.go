package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Port     int           `env:"TEST_CFG_PORT" envDefault:"8080"`
	Name     string        `env:"TEST_CFG_NAME" envDefault:"ShopHub"`
	TTL      time.Duration `env:"TEST_CFG_TTL" envDefault:"30m"`
	Origins  []string      `env:"TEST_CFG_ORIGINS" envSeparator:","`
	Insecure bool          `env:"TEST_CFG_INSECURE" envDefault:"false"`
}

type requiredConfig struct {
	Secret string `env:"TEST_CFG_SECRET,required"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "ShopHub", cfg.Name)
	assert.Equal(t, 30*time.Minute, cfg.TTL)
	assert.Empty(t, cfg.Origins)
	assert.False(t, cfg.Insecure)
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "9090")
	t.Setenv("TEST_CFG_ORIGINS", "https://a.example.com,https://b.example.com")
	t.Setenv("TEST_CFG_INSECURE", "true")

	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Origins)
	assert.True(t, cfg.Insecure)
}

func TestLoad_InvalidType(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "not-a-number")

	var cfg testConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoadFrom_IgnoresProcessEnvironment(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "1111")

	var cfg testConfig
	require.NoError(t, LoadFrom(map[string]string{"TEST_CFG_TTL": "5m"}, &cfg))

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.TTL)
}

func TestLoadFrom_RequiredField(t *testing.T) {
	var cfg requiredConfig
	require.Error(t, LoadFrom(map[string]string{}, &cfg))

	require.NoError(t, LoadFrom(map[string]string{"TEST_CFG_SECRET": "s3cret"}, &cfg))
	assert.Equal(t, "s3cret", cfg.Secret)
}

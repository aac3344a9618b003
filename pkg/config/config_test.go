package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
environment: test
market:
  universe: [NVDA, AAPL]
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadAppliesDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "SPY", c.Market.Benchmark)
	assert.Equal(t, 2, c.Market.Stage)
	assert.Equal(t, 2, c.Market.MaxConcurrency)
	assert.Equal(t, 5, c.Market.NewsLimit)
	assert.Equal(t, "memory", c.Cache.Backend)
	assert.Equal(t, 60*time.Second, c.Cache.ScannerTTL)
	assert.Equal(t, "@every 60s", c.Refresh.Schedule)
	assert.Equal(t, 8080, c.Server.Port)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"no environment":   "market:\n  universe: [NVDA]\n",
		"empty universe":   "environment: test\n",
		"bad backend":      minimalYAML + "cache:\n  backend: disk\n",
		"redis no addr":    minimalYAML + "cache:\n  backend: redis\n",
		"layered no addr":  minimalYAML + "cache:\n  backend: layered\n",
		"kafka no brokers": minimalYAML + "kafka:\n  enabled: true\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("UNIVERSE", " msft, tsla ,,")
	t.Setenv("BENCHMARK", "qqq")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("LOG_LEVEL", "debug")

	c, err := LoadWithEnv(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"msft", "tsla"}, c.Market.Universe)
	assert.Equal(t, "QQQ", c.Market.Benchmark)
	assert.True(t, c.Kafka.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "redis", c.Cache.Backend)
	assert.Equal(t, "debug", c.Log.Level)
}

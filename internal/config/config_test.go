package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "http://localhost:5186/api/v1", cfg.APIBaseURL)
	assert.Equal(t, 8*time.Second, cfg.APITimeout)
	assert.Equal(t, KVMemory, cfg.KVBackend)
	assert.Equal(t, 650*time.Millisecond, cfg.SearchDebounce)
	assert.Equal(t, 20, cfg.SearchPageSize)
	assert.Equal(t, 30*time.Second, cfg.HealthInterval)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"KV_BACKEND":         "redis",
		"REDIS_ADDR":         "cache:6380",
		"SEARCH_PAGE_SIZE":   "50",
		"SYNC_PUSH_INTERVAL": "500ms",
		"KAFKA_ENABLED":      "true",
		"KAFKA_BROKERS":      "k1:9092,k2:9092",
	})
	require.NoError(t, err)

	assert.Equal(t, KVRedis, cfg.KVBackend)
	assert.Equal(t, "cache:6380", cfg.RedisAddr)
	assert.Equal(t, 50, cfg.SearchPageSize)
	assert.Equal(t, 500*time.Millisecond, cfg.SyncPushInterval)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{"unknown kv backend", map[string]string{"KV_BACKEND": "sqlite"}},
		{"relative base url", map[string]string{"STOREFRONT_API_BASE_URL": "/api"}},
		{"metrics port", map[string]string{"METRICS_PORT": "70000"}},
		{"page size", map[string]string{"SEARCH_PAGE_SIZE": "0"}},
		{"zero debounce", map[string]string{"SEARCH_DEBOUNCE": "0s"}},
		{"sample rate", map[string]string{"OTEL_SAMPLE_RATE": "1.5"}},
		{"not a duration", map[string]string{"SYNC_PUSH_INTERVAL": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(tt.vars)
			assert.Error(t, err)
		})
	}
}

func TestLoadMockAPIFrom(t *testing.T) {
	cfg, err := LoadMockAPIFrom(map[string]string{"MOCKAPI_SEED_PRODUCTS": "10"})
	require.NoError(t, err)
	assert.Equal(t, 5186, cfg.HTTPPort)
	assert.Equal(t, "/api/v1", cfg.BasePath)
	assert.Equal(t, 10, cfg.SeedProducts)

	_, err = LoadMockAPIFrom(map[string]string{"MOCKAPI_HTTP_PORT": "0"})
	assert.Error(t, err)

	_, err = LoadMockAPIFrom(map[string]string{"MOCKAPI_SEED_PRODUCTS": "-1"})
	assert.Error(t, err)
}

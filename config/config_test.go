package config

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webhookx-io/showgate/config/modules"
)

func TestRedisConfig(t *testing.T) {
	tests := []struct {
		desc                string
		cfg                 modules.RedisConfig
		expectedValidateErr error
	}{
		{
			desc: "sanity",
			cfg: modules.RedisConfig{
				Host:     "127.0.0.1",
				Port:     6379,
				Password: "",
			},
			expectedValidateErr: nil,
		},
		{
			desc: "invalid port",
			cfg: modules.RedisConfig{
				Host:     "127.0.0.1",
				Port:     65536,
				Password: "",
			},
			expectedValidateErr: errors.New("port must be in the range [0, 65535]"),
		},
	}
	for _, test := range tests {
		actualValidateErr := test.cfg.Validate()
		assert.Equal(t, test.expectedValidateErr, actualValidateErr, "expected %v got %v", test.expectedValidateErr, actualValidateErr)
	}
}

func TestLogConfig(t *testing.T) {
	tests := []struct {
		desc                string
		cfg                 modules.LogConfig
		expectedValidateErr error
	}{
		{
			desc: "sanity",
			cfg: modules.LogConfig{
				Level:  modules.LogLevelInfo,
				Format: modules.LogFormatText,
			},
			expectedValidateErr: nil,
		},
		{
			desc: "invalid level",
			cfg: modules.LogConfig{
				Level:  "",
				Format: modules.LogFormatText,
			},
			expectedValidateErr: errors.New("invalid level: "),
		},
		{
			desc: "invalid level: x",
			cfg: modules.LogConfig{
				Level:  "x",
				Format: modules.LogFormatText,
			},
			expectedValidateErr: errors.New("invalid level: x"),
		},
		{
			desc: "invalid format: x",
			cfg: modules.LogConfig{
				Level:  "info",
				Format: "x",
			},
			expectedValidateErr: errors.New("invalid format: x"),
		},
	}
	for _, test := range tests {
		actualValidateErr := test.cfg.Validate()
		assert.Equal(t, test.expectedValidateErr, actualValidateErr, "expected %v got %v", test.expectedValidateErr, actualValidateErr)
	}
}

func TestStoreConfig(t *testing.T) {
	tests := []struct {
		desc                string
		cfg                 modules.StoreConfig
		expectedValidateErr string
	}{
		{
			desc: "sanity",
			cfg: modules.StoreConfig{
				Driver: modules.StoreDriverMemory,
			},
		},
		{
			desc: "invalid driver",
			cfg: modules.StoreConfig{
				Driver: "mongo",
			},
			expectedValidateErr: "invalid driver: mongo",
		},
		{
			desc: "invalid file format",
			cfg: modules.StoreConfig{
				Driver: modules.StoreDriverFile,
				File:   modules.FileConfig{Path: "state", Format: "xml"},
			},
			expectedValidateErr: "invalid file: invalid format: xml",
		},
		{
			desc: "invalid cache size",
			cfg: modules.StoreConfig{
				Driver: modules.StoreDriverRedis,
				Cache:  modules.CacheConfig{Enabled: true},
			},
			expectedValidateErr: "invalid cache: l1_size must be positive",
		},
		{
			desc: "disabled cache is not validated",
			cfg: modules.StoreConfig{
				Driver: modules.StoreDriverRedis,
				Cache:  modules.CacheConfig{Enabled: false},
			},
		},
		{
			desc: "invalid lock expiry",
			cfg: modules.StoreConfig{
				Driver: modules.StoreDriverRedis,
				Lock:   modules.LockConfig{Enabled: true, Tries: 1},
			},
			expectedValidateErr: "invalid lock: expiry must be positive",
		},
	}
	for _, test := range tests {
		err := test.cfg.Validate()
		if test.expectedValidateErr == "" {
			assert.NoError(t, err, test.desc)
		} else {
			assert.EqualError(t, err, test.expectedValidateErr, test.desc)
		}
	}
}

func TestDefaults(t *testing.T) {
	cfg := New()
	assert.Equal(t, modules.StoreDriverFile, cfg.Store.Driver)
	assert.Equal(t, modules.FileFormatMsgPack, cfg.Store.File.Format)
	assert.Equal(t, time.Second*10, cfg.Store.Cache.L1TTL)
	assert.Equal(t, "showgate:", cfg.Redis.KeyPrefix)
	assert.Equal(t, uint32(5432), cfg.Database.Port)
	assert.NoError(t, cfg.Validate())
}

func TestConfig(t *testing.T) {
	cfg := New()
	content := `
log:
  level: debug
store:
  driver: sqlite
  lock:
    enabled: true
sqlite:
  path: /tmp/showgate.db
policies:
  rating:
    minimum_time_between_shows: 72h
    minimum_time_since_first_request: 24h
  paywall:
    key: paywall_v2
    mode: date
`
	err := NewLoader(cfg).WithFileContent([]byte(content)).Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, modules.LogLevelDebug, cfg.Log.Level)
	assert.Equal(t, modules.StoreDriverSqlite, cfg.Store.Driver)
	assert.False(t, cfg.Store.Lock.Enabled, "lock is only available for redis")
	assert.Equal(t, "/tmp/showgate.db", cfg.Sqlite.Path)

	rating, err := cfg.Policy("rating")
	require.NoError(t, err)
	assert.Equal(t, modules.PolicyConfig{
		Key:                          "rating",
		Mode:                         modules.PolicyModeSchedule,
		MinimumTimeBetweenShows:      72 * time.Hour,
		MinimumTimeSinceFirstRequest: 24 * time.Hour,
	}, rating)

	paywall, err := cfg.Policy("paywall")
	require.NoError(t, err)
	assert.Equal(t, "paywall_v2", paywall.Key)
	assert.Equal(t, modules.PolicyModeDate, paywall.Mode)

	_, err = cfg.Policy("unknown")
	assert.EqualError(t, err, "unknown policy: 'unknown'")
}

func TestInvalidPolicy(t *testing.T) {
	cfg := New()
	content := `
policies:
  rating:
    mode: weekly
`
	require.NoError(t, NewLoader(cfg).WithFileContent([]byte(content)).Load())
	err := cfg.Validate()
	assert.EqualError(t, err, "invalid policy 'rating': validation: mode: invalid value: weekly")
}

func TestClusterDrivers(t *testing.T) {
	cfg := New()
	cfg.EventBus.Cluster = true
	assert.EqualError(t, cfg.Validate(), "eventbus cluster requires the postgres or redis driver")
	cfg.Store.Driver = modules.StoreDriverPostgres
	assert.NoError(t, cfg.Validate())
	cfg.Store.Driver = modules.StoreDriverRedis
	assert.NoError(t, cfg.Validate())
}

func TestCacheRequiresCluster(t *testing.T) {
	tests := []struct {
		driver      modules.StoreDriver
		cluster     bool
		expectedErr string
	}{
		{driver: modules.StoreDriverMemory},
		{driver: modules.StoreDriverRedis, expectedErr: "store cache with the redis driver requires eventbus cluster"},
		{driver: modules.StoreDriverRedis, cluster: true},
		{driver: modules.StoreDriverPostgres, expectedErr: "store cache with the postgres driver requires eventbus cluster"},
		{driver: modules.StoreDriverPostgres, cluster: true},
		{driver: modules.StoreDriverFile, expectedErr: "store cache with the file driver requires eventbus cluster"},
		{driver: modules.StoreDriverSqlite, expectedErr: "store cache with the sqlite driver requires eventbus cluster"},
	}
	for _, test := range tests {
		cfg := New()
		cfg.Store.Driver = test.driver
		cfg.Store.Cache.Enabled = true
		cfg.EventBus.Cluster = test.cluster
		err := cfg.Validate()
		if test.expectedErr == "" {
			assert.NoError(t, err, test.driver)
		} else {
			assert.EqualError(t, err, test.expectedErr)
		}
	}
}

func TestEnv(t *testing.T) {
	cfg := New()
	content := `
store:
  driver: redis
redis:
  host: redis.local
`
	err := NewLoader(cfg).
		WithFileContent([]byte(content)).
		WithEnvPrefix("SHOWGATE").
		WithEnv(map[string]string{
			"SHOWGATE_LOG_FORMAT":          "json",
			"SHOWGATE_REDIS_PORT":          "6380",
			"SHOWGATE_REDIS_PASSWORD":      "secret",
			"SHOWGATE_STORE_CACHE_ENABLED": "true",
			"SHOWGATE_STORE_CACHE_L1_TTL":  "5s",
			"SHOWGATE_STORE_LOCK_ENABLED":  "true",
		}).
		Load()
	require.NoError(t, err)

	assert.Equal(t, modules.LogFormatJson, cfg.Log.Format)
	assert.Equal(t, modules.StoreDriverRedis, cfg.Store.Driver)
	assert.Equal(t, "redis.local", cfg.Redis.Host)
	assert.Equal(t, uint32(6380), cfg.Redis.Port)
	assert.EqualValues(t, "secret", cfg.Redis.Password)
	assert.True(t, cfg.Store.Cache.Enabled)
	assert.Equal(t, time.Second*5, cfg.Store.Cache.L1TTL)
	assert.Equal(t, 1000, cfg.Store.Cache.L1Size)
	assert.True(t, cfg.Store.Lock.Enabled)
}

func TestPasswordIsMasked(t *testing.T) {
	cfg := New()
	cfg.Redis.Password = "secret"
	cfg.Database.Password = "secret"

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(cfg.String()), &m))
	assert.Equal(t, "******", m["redis"].(map[string]interface{})["password"])
	assert.Equal(t, "******", m["database"].(map[string]interface{})["password"])
}

func TestLoadFile(t *testing.T) {
	cfg := New()
	err := Load("testdata/missing.yml", cfg)
	assert.Error(t, err)

	cfg = New()
	require.NoError(t, Load("testdata/showgate.yml", cfg))
	assert.Equal(t, modules.StoreDriverMemory, cfg.Store.Driver)
	assert.Len(t, cfg.Policies, 2)
}

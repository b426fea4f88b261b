package config

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/creasty/defaults"
	"github.com/webhookx-io/showgate/config/modules"
	"github.com/webhookx-io/showgate/config/types"
	"github.com/webhookx-io/showgate/utils"
)

var _ types.Config = &Config{}

// Config Configuration
type Config struct {
	Log      modules.LogConfig               `yaml:"log" json:"log"`
	Store    modules.StoreConfig             `yaml:"store" json:"store"`
	Redis    modules.RedisConfig             `yaml:"redis" json:"redis"`
	Database modules.DatabaseConfig          `yaml:"database" json:"database"`
	Sqlite   modules.SqliteConfig            `yaml:"sqlite" json:"sqlite"`
	EventBus modules.EventBusConfig          `yaml:"eventbus" json:"eventbus"`
	Policies map[string]modules.PolicyConfig `yaml:"policies" json:"policies"`
}

func (cfg *Config) PostProcess() error {
	for name, policy := range cfg.Policies {
		if err := defaults.Set(&policy); err != nil {
			return err
		}
		if policy.Key == "" {
			policy.Key = name
		}
		cfg.Policies[name] = policy
	}
	if cfg.Store.Driver != modules.StoreDriverRedis {
		// redis is the only lock backend
		cfg.Store.Lock.Enabled = false
	}
	return nil
}

func (cfg Config) String() string {
	bytes, err := json.Marshal(cfg)
	if err != nil {
		panic(err)
	}
	return string(bytes)
}

var clusterDrivers = []modules.StoreDriver{modules.StoreDriverPostgres, modules.StoreDriverRedis}

func (cfg Config) Validate() error {
	if err := cfg.Log.Validate(); err != nil {
		return err
	}
	if err := cfg.Store.Validate(); err != nil {
		return err
	}
	if err := cfg.Redis.Validate(); err != nil {
		return err
	}
	if err := cfg.Database.Validate(); err != nil {
		return err
	}
	if cfg.Store.Driver == modules.StoreDriverSqlite {
		if err := cfg.Sqlite.Validate(); err != nil {
			return err
		}
	}
	if cfg.EventBus.Cluster && !slices.Contains(clusterDrivers, cfg.Store.Driver) {
		return fmt.Errorf("eventbus cluster requires the postgres or redis driver")
	}
	// a cached state is only invalidated on other processes through the cluster
	if cfg.Store.Cache.Enabled && cfg.Store.Driver != modules.StoreDriverMemory && !cfg.EventBus.Cluster {
		return fmt.Errorf("store cache with the %s driver requires eventbus cluster", cfg.Store.Driver)
	}
	for name, policy := range cfg.Policies {
		if err := utils.Validate(&policy); err != nil {
			return fmt.Errorf("invalid policy '%s': %w", name, err)
		}
	}
	return nil
}

// Policy returns the named policy definition.
func (cfg Config) Policy(name string) (modules.PolicyConfig, error) {
	policy, ok := cfg.Policies[name]
	if !ok {
		return modules.PolicyConfig{}, fmt.Errorf("unknown policy: '%s'", name)
	}
	return policy, nil
}

func New() *Config {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		panic(err)
	}
	return &cfg
}

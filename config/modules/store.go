package modules

import (
	"fmt"
	"slices"
	"time"
)

type StoreDriver string

const (
	StoreDriverMemory   StoreDriver = "memory"
	StoreDriverFile     StoreDriver = "file"
	StoreDriverRedis    StoreDriver = "redis"
	StoreDriverPostgres StoreDriver = "postgres"
	StoreDriverSqlite   StoreDriver = "sqlite"
)

type FileFormat string

const (
	FileFormatMsgPack FileFormat = "msgpack"
	FileFormatJSON    FileFormat = "json"
)

type StoreConfig struct {
	Driver StoreDriver `yaml:"driver" json:"driver" default:"file"`
	File   FileConfig  `yaml:"file" json:"file"`
	Cache  CacheConfig `yaml:"cache" json:"cache"`
	Lock   LockConfig  `yaml:"lock" json:"lock"`
}

func (cfg StoreConfig) Validate() error {
	drivers := []StoreDriver{StoreDriverMemory, StoreDriverFile, StoreDriverRedis, StoreDriverPostgres, StoreDriverSqlite}
	if !slices.Contains(drivers, cfg.Driver) {
		return fmt.Errorf("invalid driver: %s", cfg.Driver)
	}
	if cfg.Driver == StoreDriverFile {
		if err := cfg.File.Validate(); err != nil {
			return fmt.Errorf("invalid file: %w", err)
		}
	}
	if err := cfg.Cache.Validate(); err != nil {
		return fmt.Errorf("invalid cache: %w", err)
	}
	if err := cfg.Lock.Validate(); err != nil {
		return fmt.Errorf("invalid lock: %w", err)
	}
	return nil
}

type FileConfig struct {
	Path   string     `yaml:"path" json:"path" default:"showgate.state"`
	Format FileFormat `yaml:"format" json:"format" default:"msgpack"`
}

func (cfg FileConfig) Validate() error {
	if cfg.Path == "" {
		return fmt.Errorf("path is required")
	}
	if !slices.Contains([]FileFormat{FileFormatMsgPack, FileFormatJSON}, cfg.Format) {
		return fmt.Errorf("invalid format: %s", cfg.Format)
	}
	return nil
}

// CacheConfig configures the read-through cache in front of remote drivers.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" json:"enabled" default:"false"`
	L1Size  int           `yaml:"l1_size" json:"l1_size" default:"1000"`
	L1TTL   time.Duration `yaml:"l1_ttl" json:"l1_ttl" default:"10s"`
	L2      bool          `yaml:"l2" json:"l2" default:"false"`
	L2TTL   time.Duration `yaml:"l2_ttl" json:"l2_ttl" default:"60s"`
}

func (cfg CacheConfig) Validate() error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.L1Size <= 0 {
		return fmt.Errorf("l1_size must be positive")
	}
	if cfg.L1TTL < 0 || cfg.L2TTL < 0 {
		return fmt.Errorf("ttl cannot be negative value")
	}
	return nil
}

// LockConfig configures the distributed per-key lock, redis driver only.
type LockConfig struct {
	Enabled bool          `yaml:"enabled" json:"enabled" default:"false"`
	Expiry  time.Duration `yaml:"expiry" json:"expiry" default:"8s"`
	Tries   int           `yaml:"tries" json:"tries" default:"32"`
}

func (cfg LockConfig) Validate() error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.Expiry <= 0 {
		return fmt.Errorf("expiry must be positive")
	}
	if cfg.Tries <= 0 {
		return fmt.Errorf("tries must be positive")
	}
	return nil
}

type EventBusConfig struct {
	Cluster bool `yaml:"cluster" json:"cluster" default:"false"`
}

package modules

import (
	"fmt"

	"github.com/webhookx-io/showgate/config/types"
)

type DatabaseConfig struct {
	Host        string         `yaml:"host" json:"host" default:"localhost"`
	Port        uint32         `yaml:"port" json:"port" default:"5432"`
	Username    string         `yaml:"username" json:"username" default:"showgate"`
	Password    types.Password `yaml:"password" json:"password" default:""`
	Database    string         `yaml:"database" json:"database" default:"showgate"`
	MaxPoolSize uint32         `yaml:"max_pool_size" json:"max_pool_size" default:"40"`
	MaxLifetime uint32         `yaml:"max_lifetime" json:"max_lifetime" default:"1800"`
}

func (cfg DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.Username,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
	)
}

func (cfg DatabaseConfig) Validate() error {
	if cfg.Port > 65535 {
		return fmt.Errorf("port must be in the range [0, 65535]")
	}
	return nil
}

type SqliteConfig struct {
	Path string `yaml:"path" json:"path" default:"showgate.db"`
}

func (cfg SqliteConfig) GetDSN() string {
	return "file:" + cfg.Path + "?_busy_timeout=5000&_journal_mode=WAL"
}

func (cfg SqliteConfig) Validate() error {
	if cfg.Path == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}

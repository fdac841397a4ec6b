// Package app wires the cinema bot: configuration, stores, caches, event
// publishing and the Telegram router.
package app

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/cinebot/core/config"
	coredatabase "github.com/m3rciful/cinebot/core/database"
)

const (
	defaultLanguage = "English"
	defaultStashTTL = 24 * time.Hour
	defaultCacheTTL = 5 * time.Minute
	defaultExchange = "cinebot.events"
)

// RedisConfig selects the Redis server backing the catalog cache and the
// payload stash. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string `yaml:"addr" envconfig:"REDIS_ADDR"`
	Password string `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" envconfig:"REDIS_DB"`
}

// BrokerConfig selects the RabbitMQ broker for favourite events. An empty URL
// disables publishing.
type BrokerConfig struct {
	URL      string `yaml:"url" envconfig:"AMQP_URL"`
	Exchange string `yaml:"exchange" envconfig:"AMQP_EXCHANGE"`
}

// CatalogConfig tunes catalog presentation and caching.
type CatalogConfig struct {
	// Language is shown for films without one.
	Language string        `yaml:"language" envconfig:"CATALOG_LANGUAGE"`
	StashTTL time.Duration `yaml:"stash_ttl" envconfig:"CATALOG_STASH_TTL"`
	CacheTTL time.Duration `yaml:"cache_ttl" envconfig:"CATALOG_CACHE_TTL"`
	// SeedFile, when set, is upserted into the store on every start.
	SeedFile string `yaml:"seed_file" envconfig:"CATALOG_SEED_FILE"`
}

// Config is the full bot configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Redis    RedisConfig         `yaml:"redis"`
	Broker   BrokerConfig        `yaml:"broker"`
	Catalog  CatalogConfig       `yaml:"catalog"`
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// LoadConfig reads path, overlays the environment and validates the result.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.LoadInto(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates every section and fills defaults.
func (c *Config) Normalize() error {
	if err := coreconfig.Normalize(&c.Config); err != nil {
		return err
	}
	if err := c.Database.Normalize(); err != nil {
		return err
	}
	return c.normalizeBot()
}

// normalizeBot handles the sections that do not need a Telegram token, so
// maintenance commands can use them on their own.
func (c *Config) normalizeBot() error {
	c.Redis.Addr = strings.TrimSpace(c.Redis.Addr)
	if c.Redis.DB < 0 {
		return fmt.Errorf("redis.db must be >= 0")
	}

	c.Broker.URL = strings.TrimSpace(c.Broker.URL)
	if c.Broker.Exchange = strings.TrimSpace(c.Broker.Exchange); c.Broker.Exchange == "" {
		c.Broker.Exchange = defaultExchange
	}

	if c.Catalog.Language = strings.TrimSpace(c.Catalog.Language); c.Catalog.Language == "" {
		c.Catalog.Language = defaultLanguage
	}
	if c.Catalog.StashTTL < 0 || c.Catalog.CacheTTL < 0 {
		return fmt.Errorf("catalog.stash_ttl and catalog.cache_ttl must be >= 0")
	}
	if c.Catalog.StashTTL == 0 {
		c.Catalog.StashTTL = defaultStashTTL
	}
	if c.Catalog.CacheTTL == 0 {
		c.Catalog.CacheTTL = defaultCacheTTL
	}
	c.Catalog.SeedFile = strings.TrimSpace(c.Catalog.SeedFile)
	return nil
}

// LoadStoreConfig reads path for maintenance commands that only touch the
// database, so no Telegram token is required.
func LoadStoreConfig(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.LoadInto(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Database.Normalize(); err != nil {
		return nil, err
	}
	if err := cfg.normalizeBot(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Package cacheopts provides answer cache configuration options.
package cacheopts

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// Options contains answer cache configuration, including the Redis
// connection it lives on.
type Options struct {
	// Enabled turns the answer cache on.
	Enabled bool `json:"enabled" mapstructure:"enabled"`

	// TTL is the cache entry lifetime.
	TTL time.Duration `json:"ttl" mapstructure:"ttl"`

	// KeyPrefix namespaces cache keys in Redis.
	KeyPrefix string `json:"key-prefix" mapstructure:"key-prefix"`

	// Addr is the Redis server address (host:port).
	Addr string `json:"addr" mapstructure:"addr"`

	// Password for Redis authentication.
	Password string `json:"password" mapstructure:"password"`

	// DB is the Redis database number.
	DB int `json:"db" mapstructure:"db"`
}

// NewOptions creates Options with defaults. The cache is off by default so
// the service runs without Redis.
func NewOptions() *Options {
	return &Options{
		Enabled:   false,
		TTL:       time.Hour,
		KeyPrefix: "rag:answer:",
		Addr:      "localhost:6379",
		DB:        0,
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefix string) {
	fs.BoolVar(&o.Enabled, prefix+"enabled", o.Enabled, "Enable the Redis answer cache")
	fs.DurationVar(&o.TTL, prefix+"ttl", o.TTL, "Cache entry TTL")
	fs.StringVar(&o.KeyPrefix, prefix+"key-prefix", o.KeyPrefix, "Cache key prefix")
	fs.StringVar(&o.Addr, prefix+"addr", o.Addr, "Redis server address (host:port)")
	fs.StringVar(&o.Password, prefix+"password", o.Password, "Redis password")
	fs.IntVar(&o.DB, prefix+"db", o.DB, "Redis database number")
}

// Validate validates the options.
func (o *Options) Validate() error {
	if !o.Enabled {
		return nil
	}
	if o.Addr == "" {
		return fmt.Errorf("cache addr is required when cache is enabled")
	}
	if o.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive")
	}
	return nil
}

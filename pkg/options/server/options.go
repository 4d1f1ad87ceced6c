// Package serveropts provides HTTP server configuration options.
package serveropts

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// Options contains HTTP server configuration.
type Options struct {
	// Addr is the listen address (host:port).
	Addr string `json:"addr" mapstructure:"addr"`

	// Mode is the gin mode: debug, release or test.
	Mode string `json:"mode" mapstructure:"mode"`

	// ReadTimeout is the maximum duration for reading a request.
	ReadTimeout time.Duration `json:"read-timeout" mapstructure:"read-timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `json:"shutdown-timeout" mapstructure:"shutdown-timeout"`
}

// NewOptions creates Options with defaults.
func NewOptions() *Options {
	return &Options{
		Addr:            ":8080",
		Mode:            "release",
		ReadTimeout:     30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefix string) {
	fs.StringVar(&o.Addr, prefix+"addr", o.Addr, "HTTP listen address (host:port)")
	fs.StringVar(&o.Mode, prefix+"mode", o.Mode, "Gin mode (debug|release|test)")
	fs.DurationVar(&o.ReadTimeout, prefix+"read-timeout", o.ReadTimeout, "HTTP read timeout")
	fs.DurationVar(&o.ShutdownTimeout, prefix+"shutdown-timeout", o.ShutdownTimeout, "Graceful shutdown timeout")
}

// Validate validates the options.
func (o *Options) Validate() error {
	if o.Addr == "" {
		return fmt.Errorf("server addr is required")
	}
	switch o.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid server mode: %s", o.Mode)
	}
	return nil
}

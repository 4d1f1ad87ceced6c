// Package rag assembles the RAG service: options, wiring and the HTTP
// server lifecycle.
package rag

import (
	"fmt"

	"github.com/spf13/pflag"

	cacheopts "github.com/barwojcik/local-chatbots/pkg/options/cache"
	logopts "github.com/barwojcik/local-chatbots/pkg/options/logger"
	milvusopts "github.com/barwojcik/local-chatbots/pkg/options/milvus"
	ollamaopts "github.com/barwojcik/local-chatbots/pkg/options/ollama"
	ragopts "github.com/barwojcik/local-chatbots/pkg/options/rag"
	serveropts "github.com/barwojcik/local-chatbots/pkg/options/server"
)

// Options aggregates all configuration for the RAG service.
type Options struct {
	Server *serveropts.Options `json:"server" mapstructure:"server"`
	Log    *logopts.Options    `json:"log" mapstructure:"log"`
	Milvus *milvusopts.Options `json:"milvus" mapstructure:"milvus"`
	Ollama *ollamaopts.Options `json:"ollama" mapstructure:"ollama"`
	RAG    *ragopts.Options    `json:"rag" mapstructure:"rag"`
	Cache  *cacheopts.Options  `json:"cache" mapstructure:"cache"`
}

// NewOptions creates Options with defaults.
func NewOptions() *Options {
	return &Options{
		Server: serveropts.NewOptions(),
		Log:    logopts.NewOptions(),
		Milvus: milvusopts.NewOptions(),
		Ollama: ollamaopts.NewOptions(),
		RAG:    ragopts.NewOptions(),
		Cache:  cacheopts.NewOptions(),
	}
}

// AddFlags adds all option flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.Server.AddFlags(fs, "server.")
	o.Log.AddFlags(fs)
	o.Milvus.AddFlags(fs, "milvus.")
	o.Ollama.AddFlags(fs, "ollama.")
	o.RAG.AddFlags(fs, "rag.")
	o.Cache.AddFlags(fs, "cache.")
}

// Validate validates all options.
func (o *Options) Validate() error {
	if err := o.Server.Validate(); err != nil {
		return fmt.Errorf("server options: %w", err)
	}
	if err := o.Log.Validate(); err != nil {
		return fmt.Errorf("log options: %w", err)
	}
	if err := o.Milvus.Validate(); err != nil {
		return fmt.Errorf("milvus options: %w", err)
	}
	if err := o.Ollama.Validate(); err != nil {
		return fmt.Errorf("ollama options: %w", err)
	}
	if err := o.RAG.Validate(); err != nil {
		return fmt.Errorf("rag options: %w", err)
	}
	if err := o.Cache.Validate(); err != nil {
		return fmt.Errorf("cache options: %w", err)
	}
	return nil
}

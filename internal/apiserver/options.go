package apiserver

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/Developer-atomic-amardeep/NeuralOps-Incident-IQ/pkg/options"
	archestraopts "github.com/Developer-atomic-amardeep/NeuralOps-Incident-IQ/pkg/options/archestra"
	httpopts "github.com/Developer-atomic-amardeep/NeuralOps-Incident-IQ/pkg/options/http"
	logopts "github.com/Developer-atomic-amardeep/NeuralOps-Incident-IQ/pkg/options/logger"
)

// Options contains all investigator service options.
type Options struct {
	// HTTP contains HTTP server configuration.
	HTTP *httpopts.Options `json:"http" mapstructure:"http"`

	// Log contains logger configuration.
	Log *logopts.Options `json:"log" mapstructure:"log"`

	// Archestra contains upstream backend configuration.
	Archestra *archestraopts.Options `json:"archestra" mapstructure:"archestra"`

	// Workers is the capacity of the agent fan-out worker pool.
	Workers int `json:"workers" mapstructure:"workers"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		HTTP:      httpopts.NewOptions(),
		Log:       logopts.NewOptions(),
		Archestra: archestraopts.NewOptions(),
		Workers:   32,
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.HTTP.AddFlags(fs)
	o.Log.AddFlags(fs)
	o.Archestra.AddFlags(fs, options.Join("archestra"))
	fs.IntVar(&o.Workers, "workers", o.Workers, "Agent fan-out worker pool capacity")
}

// Validate validates the options.
func (o *Options) Validate() error {
	if err := o.Log.Validate(); err != nil {
		return err
	}
	if err := o.HTTP.Validate(); err != nil {
		return err
	}
	if err := o.Archestra.Validate(); err != nil {
		return err
	}
	if o.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	return nil
}

// Complete completes the options.
func (o *Options) Complete() error {
	return o.Log.Complete()
}

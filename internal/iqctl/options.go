package iqctl

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	logopts "github.com/Developer-atomic-amardeep/NeuralOps-Incident-IQ/pkg/options/logger"
)

// Options contains all iqctl options.
type Options struct {
	// Server is the investigator service base URL.
	Server string `json:"server" mapstructure:"server"`

	// Token is the bearer token attached to requests, if any.
	Token string `json:"token" mapstructure:"token"`

	// HealthTimeout bounds the pre-stream health probe.
	HealthTimeout time.Duration `json:"health-timeout" mapstructure:"health-timeout"`

	// GitHubPrompt, SlackPrompt and CloudWatchPrompt are the per-agent
	// prompts, given inline or via the *-file variants.
	GitHubPrompt     string `json:"github-prompt" mapstructure:"github-prompt"`
	SlackPrompt      string `json:"slack-prompt" mapstructure:"slack-prompt"`
	CloudWatchPrompt string `json:"cloudwatch-prompt" mapstructure:"cloudwatch-prompt"`

	GitHubPromptFile     string `json:"github-prompt-file" mapstructure:"github-prompt-file"`
	SlackPromptFile      string `json:"slack-prompt-file" mapstructure:"slack-prompt-file"`
	CloudWatchPromptFile string `json:"cloudwatch-prompt-file" mapstructure:"cloudwatch-prompt-file"`

	// Log contains logger configuration.
	Log *logopts.Options `json:"log" mapstructure:"log"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		Server:        "http://localhost:8050",
		HealthTimeout: 10 * time.Second,
		Log:           logopts.NewOptions(),
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Server, "server", o.Server, "Investigator service base URL")
	fs.StringVar(&o.Token, "token", o.Token, "Bearer token for authentication")
	fs.DurationVar(&o.HealthTimeout, "health-timeout", o.HealthTimeout, "Timeout for the pre-stream health probe")

	fs.StringVar(&o.GitHubPrompt, "github-prompt", o.GitHubPrompt, "Prompt for the GitHub data agent")
	fs.StringVar(&o.SlackPrompt, "slack-prompt", o.SlackPrompt, "Prompt for the Slack data agent")
	fs.StringVar(&o.CloudWatchPrompt, "cloudwatch-prompt", o.CloudWatchPrompt, "Prompt for the AWS CloudWatch data agent")

	fs.StringVar(&o.GitHubPromptFile, "github-prompt-file", o.GitHubPromptFile, "File holding the GitHub agent prompt")
	fs.StringVar(&o.SlackPromptFile, "slack-prompt-file", o.SlackPromptFile, "File holding the Slack agent prompt")
	fs.StringVar(&o.CloudWatchPromptFile, "cloudwatch-prompt-file", o.CloudWatchPromptFile, "File holding the AWS CloudWatch agent prompt")

	o.Log.AddFlags(fs)
}

// Complete loads prompt files into the inline prompt fields.
func (o *Options) Complete() error {
	for _, p := range []struct {
		file   string
		target *string
	}{
		{o.GitHubPromptFile, &o.GitHubPrompt},
		{o.SlackPromptFile, &o.SlackPrompt},
		{o.CloudWatchPromptFile, &o.CloudWatchPrompt},
	} {
		if p.file == "" {
			continue
		}
		data, err := os.ReadFile(p.file)
		if err != nil {
			return fmt.Errorf("failed to read prompt file %s: %w", p.file, err)
		}
		*p.target = string(data)
	}
	return o.Log.Complete()
}

// Validate validates the options.
func (o *Options) Validate() error {
	if err := o.Log.Validate(); err != nil {
		return err
	}
	if o.Server == "" {
		return fmt.Errorf("server is required")
	}
	if o.GitHubPrompt == "" || o.SlackPrompt == "" || o.CloudWatchPrompt == "" {
		return fmt.Errorf("prompts for all three data agents are required")
	}
	return nil
}

// Package archestra provides options for the upstream Archestra backend.
package archestra

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// Options contains Archestra client configuration.
type Options struct {
	// BaseURL is the Archestra backend URL.
	BaseURL string `json:"base-url" mapstructure:"base-url"`

	// APIKey is the Archestra API key sent as the Authorization header.
	APIKey string `json:"api-key" mapstructure:"api-key"`

	// ChatAPIKeyID is the LLM API key ID used when creating conversations.
	ChatAPIKeyID string `json:"chat-api-key-id" mapstructure:"chat-api-key-id"`

	// Model is the LLM model to use.
	Model string `json:"model" mapstructure:"model"`

	// Provider is the LLM provider.
	Provider string `json:"provider" mapstructure:"provider"`

	// Timeout for streaming chat requests.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// MaxRetries is the maximum number of retries for failed connection attempts.
	MaxRetries int `json:"max-retries" mapstructure:"max-retries"`

	// GitHubAgentID is the Archestra agent ID for the GitHub data agent.
	GitHubAgentID string `json:"github-agent-id" mapstructure:"github-agent-id"`

	// CloudWatchAgentID is the Archestra agent ID for the AWS CloudWatch data agent.
	CloudWatchAgentID string `json:"cloudwatch-agent-id" mapstructure:"cloudwatch-agent-id"`

	// SlackAgentID is the Archestra agent ID for the Slack data agent.
	SlackAgentID string `json:"slack-agent-id" mapstructure:"slack-agent-id"`

	// ReasoningAgentID is the Archestra agent ID for the reasoning investigator.
	ReasoningAgentID string `json:"reasoning-agent-id" mapstructure:"reasoning-agent-id"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		BaseURL:    "http://localhost:9000",
		Model:      "gpt-5",
		Provider:   "openai",
		Timeout:    300 * time.Second,
		MaxRetries: 3,
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefix string) {
	fs.StringVar(&o.BaseURL, prefix+"base-url", o.BaseURL, "Archestra backend URL")
	fs.StringVar(&o.APIKey, prefix+"api-key", o.APIKey, "Archestra API key")
	fs.StringVar(&o.ChatAPIKeyID, prefix+"chat-api-key-id", o.ChatAPIKeyID, "LLM API key ID for conversations")
	fs.StringVar(&o.Model, prefix+"model", o.Model, "LLM model")
	fs.StringVar(&o.Provider, prefix+"provider", o.Provider, "LLM provider")
	fs.DurationVar(&o.Timeout, prefix+"timeout", o.Timeout, "Streaming chat request timeout")
	fs.IntVar(&o.MaxRetries, prefix+"max-retries", o.MaxRetries, "Max retries for failed connection attempts")
	fs.StringVar(&o.GitHubAgentID, prefix+"github-agent-id", o.GitHubAgentID, "GitHub data agent ID")
	fs.StringVar(&o.CloudWatchAgentID, prefix+"cloudwatch-agent-id", o.CloudWatchAgentID, "AWS CloudWatch data agent ID")
	fs.StringVar(&o.SlackAgentID, prefix+"slack-agent-id", o.SlackAgentID, "Slack data agent ID")
	fs.StringVar(&o.ReasoningAgentID, prefix+"reasoning-agent-id", o.ReasoningAgentID, "Reasoning investigator agent ID")
}

// Validate validates the options.
func (o *Options) Validate() error {
	if o.BaseURL == "" {
		return fmt.Errorf("archestra base-url is required")
	}
	if o.Timeout <= 0 {
		return fmt.Errorf("archestra timeout must be positive")
	}
	if o.GitHubAgentID == "" || o.CloudWatchAgentID == "" || o.SlackAgentID == "" || o.ReasoningAgentID == "" {
		return fmt.Errorf("all four archestra agent IDs are required")
	}
	return nil
}

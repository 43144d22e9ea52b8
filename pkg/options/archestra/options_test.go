package archestra

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOptions() *Options {
	o := NewOptions()
	o.GitHubAgentID = "gh"
	o.CloudWatchAgentID = "cw"
	o.SlackAgentID = "sl"
	o.ReasoningAgentID = "ri"
	return o
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validOptions().Validate())

	o := validOptions()
	o.BaseURL = ""
	assert.Error(t, o.Validate())

	o = validOptions()
	o.Timeout = 0
	assert.Error(t, o.Validate())

	o = validOptions()
	o.ReasoningAgentID = ""
	assert.Error(t, o.Validate())
}

func TestAddFlagsPrefix(t *testing.T) {
	o := NewOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.AddFlags(fs, "archestra.")

	require.NoError(t, fs.Parse([]string{
		"--archestra.base-url=http://archestra:9000",
		"--archestra.github-agent-id=gh-7",
	}))
	assert.Equal(t, "http://archestra:9000", o.BaseURL)
	assert.Equal(t, "gh-7", o.GitHubAgentID)
}

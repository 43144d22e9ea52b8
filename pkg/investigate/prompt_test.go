package investigate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildInvestigationPrompt(t *testing.T) {
	results := []AgentResult{
		{Agent: "GITHUB_AGENT", Status: StatusSuccess, Response: "3 commits in the window"},
		{Agent: "AWS_CLOUDWATCH_AGENT", Status: StatusError, Error: "query timed out"},
		{},
	}

	prompt := BuildInvestigationPrompt(results)

	assert.True(t, strings.HasPrefix(prompt, "# Incident Investigation Request"))
	assert.Contains(t, prompt, "### GITHUB_AGENT")
	assert.Contains(t, prompt, "**Findings:**\n3 commits in the window")
	assert.Contains(t, prompt, "### AWS_CLOUDWATCH_AGENT")
	assert.Contains(t, prompt, "**Error:** query timed out")
	assert.Contains(t, prompt, "### Unknown Agent")
	assert.Contains(t, prompt, "**Status:** unknown")
	assert.Contains(t, prompt, "### 1. Root Cause Identification")
}

func TestBuildInvestigationPromptNoResults(t *testing.T) {
	prompt := BuildInvestigationPrompt(nil)
	assert.Contains(t, prompt, "## Evidence from Data Sources")
	assert.Contains(t, prompt, "### 5. Prevention")
}

package investigate

import "strings"

// ToolCall records one tool invocation observed on an agent stream.
type ToolCall struct {
	Tool       string `json:"tool"`
	Input      any    `json:"input"`
	ToolCallID string `json:"toolCallId"`
}

// ToolOutput records one tool result observed on an agent stream.
type ToolOutput struct {
	ToolCallID string `json:"toolCallId"`
	Output     any    `json:"output"`
}

// AgentResult is the collected outcome of one data-gathering agent query.
type AgentResult struct {
	Agent       string       `json:"agent"`
	Status      string       `json:"status"`
	Response    string       `json:"response"`
	Error       string       `json:"error,omitempty"`
	ToolCalls   []ToolCall   `json:"tool_calls"`
	ToolOutputs []ToolOutput `json:"tool_outputs"`
	Errors      []string     `json:"errors"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

const promptHeader = `# Incident Investigation Request

You are an expert Site Reliability Engineer investigating a production incident.
Below are findings from three different data sources. Your task is to:

1. CORRELATE the evidence across all sources
2. IDENTIFY the root cause of the incident
3. EXPLAIN the chain of events that led to the issue
4. RECOMMEND specific remediation actions

---

## Evidence from Data Sources

`

const promptFooter = `## Your Analysis

Please provide:

### 1. Root Cause Identification
What is the primary cause of this incident? Be specific.

### 2. Evidence Correlation
How do the findings from CloudWatch, GitHub, and Slack connect?
Show the timeline and causal chain.

### 3. Timeline of Events
Reconstruct what happened in chronological order.

### 4. Recommended Actions
What specific steps should be taken to resolve this incident?
List in order of priority.

### 5. Prevention
How can similar incidents be prevented in the future?

---

Important: Base your analysis ONLY on the evidence provided. Be direct and actionable.
`

// BuildInvestigationPrompt assembles the reasoning-phase prompt from the
// data-gathering agents' findings.
func BuildInvestigationPrompt(results []AgentResult) string {
	var b strings.Builder
	b.WriteString(promptHeader)

	for _, r := range results {
		name := r.Agent
		if name == "" {
			name = "Unknown Agent"
		}
		status := r.Status
		if status == "" {
			status = "unknown"
		}

		b.WriteString("### " + name + "\n")
		b.WriteString("**Status:** " + status + "\n\n")

		if status == StatusSuccess {
			response := r.Response
			if response == "" {
				response = "No response"
			}
			b.WriteString("**Findings:**\n" + response + "\n\n")
		} else {
			errText := r.Error
			if errText == "" {
				errText = "Unknown error"
			}
			b.WriteString("**Error:** " + errText + "\n\n")
		}

		b.WriteString("---\n\n")
	}

	b.WriteString(promptFooter)
	return b.String()
}

// Package biz implements the investigation business logic: fanning the
// incident prompts out to the data-gathering agents, retagging their chat
// streams into the unified event schema, and running the reasoning phase
// over the collected findings.
package biz

import (
	"context"
	"fmt"
	"sync"

	"github.com/kart-io/logger"

	"github.com/Developer-atomic-amardeep/NeuralOps-Incident-IQ/internal/apiserver/metrics"
	"github.com/Developer-atomic-amardeep/NeuralOps-Incident-IQ/pkg/archestra"
	"github.com/Developer-atomic-amardeep/NeuralOps-Incident-IQ/pkg/investigate"
	archestraopts "github.com/Developer-atomic-amardeep/NeuralOps-Incident-IQ/pkg/options/archestra"
	"github.com/Developer-atomic-amardeep/NeuralOps-Incident-IQ/pkg/pool"
)

// AgentSpec names one Archestra agent and the message it receives.
type AgentSpec struct {
	Name    string
	AgentID string
	Message string
}

// Emit receives every stream event in order. The service serializes calls;
// an emit function never runs concurrently with itself.
type Emit func(ev *investigate.StreamEvent)

// Backend is the slice of the Archestra client the service needs.
type Backend interface {
	CreateConversation(ctx context.Context, agentID, title string) (string, error)
	StreamChat(ctx context.Context, conversationID, message string, fn func(archestra.Event) error) error
}

// InvestigationResult is the blocking invocation's outcome.
type InvestigationResult struct {
	DataResults         []investigate.AgentResult `json:"data_results"`
	InvestigationResult investigate.AgentResult   `json:"investigation_result"`
}

// Service orchestrates investigations against one Archestra backend.
type Service struct {
	backend Backend
	opts    *archestraopts.Options
	pool    *pool.Pool
}

// NewService creates the investigation service.
func NewService(backend Backend, opts *archestraopts.Options, p *pool.Pool) *Service {
	return &Service{backend: backend, opts: opts, pool: p}
}

func (s *Service) dataAgents(prompts investigate.PromptSet) []AgentSpec {
	return []AgentSpec{
		{Name: string(investigate.AgentGitHub), AgentID: s.opts.GitHubAgentID, Message: prompts.GitHub},
		{Name: string(investigate.AgentCloudWatch), AgentID: s.opts.CloudWatchAgentID, Message: prompts.CloudWatch},
		{Name: string(investigate.AgentSlack), AgentID: s.opts.SlackAgentID, Message: prompts.Slack},
	}
}

func (s *Service) reasoningAgent(results []investigate.AgentResult) AgentSpec {
	return AgentSpec{
		Name:    string(investigate.AgentReasoning),
		AgentID: s.opts.ReasoningAgentID,
		Message: investigate.BuildInvestigationPrompt(results),
	}
}

// Invoke runs a full investigation without streaming.
func (s *Service) Invoke(ctx context.Context, prompts investigate.PromptSet) (*InvestigationResult, error) {
	discard := func(*investigate.StreamEvent) {}

	dataResults := s.streamAll(ctx, s.dataAgents(prompts), 1, discard)
	verdict := s.streamAgent(ctx, s.reasoningAgent(dataResults), 2, discard)

	return &InvestigationResult{
		DataResults:         dataResults,
		InvestigationResult: verdict,
	}, nil
}

// StreamInvestigation runs both phases, delivering every event to emit. The
// event sequence ends with a phase-2 phase_complete; the transport sentinel
// is the handler's responsibility.
func (s *Service) StreamInvestigation(ctx context.Context, prompts investigate.PromptSet, emit Emit) error {
	m := metrics.Get()
	m.RecordStreamStart()

	dataResults := s.streamAll(ctx, s.dataAgents(prompts), 1, emit)
	emit(&investigate.StreamEvent{
		Event: investigate.EventPhaseComplete,
		Phase: 1,
		Data:  investigate.EventPayload{Extra: map[string]any{"results": dataResults}},
	})

	if err := ctx.Err(); err != nil {
		m.RecordStreamEnd(err)
		return err
	}

	s.streamAgent(ctx, s.reasoningAgent(dataResults), 2, emit)
	emit(&investigate.StreamEvent{
		Event: investigate.EventPhaseComplete,
		Phase: 2,
		Data:  investigate.EventPayload{},
	})

	m.RecordStreamEnd(ctx.Err())
	return ctx.Err()
}

// streamAll runs the agents concurrently on the worker pool and forwards
// their events to emit in arrival order.
func (s *Service) streamAll(ctx context.Context, specs []AgentSpec, phase int, emit Emit) []investigate.AgentResult {
	events := make(chan *investigate.StreamEvent, 64)
	results := make([]investigate.AgentResult, len(specs))

	var wg sync.WaitGroup
	for i, spec := range specs {
		i, spec := i, spec
		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			results[i] = s.streamAgent(ctx, spec, phase, func(ev *investigate.StreamEvent) {
				events <- ev
			})
		})
		if err != nil {
			wg.Done()
			logger.Errorw("Failed to schedule agent query", "agent", spec.Name, "error", err)
			results[i] = errorResult(spec, err)
		}
	}

	go func() {
		wg.Wait()
		close(events)
	}()

	for ev := range events {
		emit(ev)
	}
	return results
}

// streamAgent queries one agent, retagging its chat stream into unified
// events. Failures become error events plus an error-tagged result; they
// never abort the investigation.
func (s *Service) streamAgent(ctx context.Context, spec AgentSpec, phase int, emit Emit) investigate.AgentResult {
	m := metrics.Get()
	m.RecordAgentQuery()

	tag := func(kind investigate.EventKind, data investigate.EventPayload) *investigate.StreamEvent {
		return &investigate.StreamEvent{
			Event: kind,
			Agent: investigate.SourceAgent(spec.Name),
			Phase: phase,
			Data:  data,
		}
	}

	emit(tag(investigate.EventAgentStart, investigate.EventPayload{}))

	convID, err := s.backend.CreateConversation(ctx, spec.AgentID, spec.Name+" Query")
	if err != nil {
		return s.failAgent(spec, tag, emit, err)
	}

	var (
		text        string
		toolCalls   []investigate.ToolCall
		toolOutputs []investigate.ToolOutput
		errs        []string
	)

	err = s.backend.StreamChat(ctx, convID, spec.Message, func(ev archestra.Event) error {
		switch ev.Type {
		case archestra.TypeTextStart:
			emit(tag(investigate.EventTextStart, investigate.EventPayload{}))

		case archestra.TypeTextDelta:
			text += ev.Delta
			emit(tag(investigate.EventTextDelta, investigate.EventPayload{Delta: ev.Delta}))

		case archestra.TypeTextEnd:
			emit(tag(investigate.EventTextEnd, investigate.EventPayload{}))

		case archestra.TypeToolOutput:
			toolOutputs = append(toolOutputs, investigate.ToolOutput{
				ToolCallID: ev.ToolCallID,
				Output:     ev.Output,
			})
			emit(tag(investigate.EventToolOutput, toolOutputPayload(ev)))

		case archestra.TypeToolInput:
			toolCalls = append(toolCalls, investigate.ToolCall{
				Tool:       ev.ToolName,
				Input:      ev.Input,
				ToolCallID: ev.ToolCallID,
			})

		case archestra.TypeToolError:
			errs = append(errs, ev.ErrorText)
			emit(tag(investigate.EventError, investigate.EventPayload{Message: ev.ErrorText}))
		}
		return nil
	})
	if err != nil {
		return s.failAgent(spec, tag, emit, err)
	}

	emit(tag(investigate.EventAgentComplete, investigate.EventPayload{Response: text}))
	return investigate.AgentResult{
		Agent:       spec.Name,
		Status:      investigate.StatusSuccess,
		Response:    text,
		ToolCalls:   toolCalls,
		ToolOutputs: toolOutputs,
		Errors:      errs,
	}
}

func (s *Service) failAgent(spec AgentSpec, tag func(investigate.EventKind, investigate.EventPayload) *investigate.StreamEvent, emit Emit, err error) investigate.AgentResult {
	metrics.Get().RecordAgentError()
	logger.Errorw("Agent query failed", "agent", spec.Name, "error", err)

	emit(tag(investigate.EventError, investigate.EventPayload{Message: err.Error()}))
	emit(tag(investigate.EventAgentComplete, investigate.EventPayload{
		Extra: map[string]any{"response": nil, "error": err.Error()},
	}))
	return errorResult(spec, err)
}

func errorResult(spec AgentSpec, err error) investigate.AgentResult {
	return investigate.AgentResult{
		Agent:  spec.Name,
		Status: investigate.StatusError,
		Error:  fmt.Sprintf("%v", err),
	}
}

func toolOutputPayload(ev archestra.Event) investigate.EventPayload {
	p := investigate.EventPayload{
		Extra: map[string]any{"toolCallId": ev.ToolCallID},
	}
	if out, ok := ev.Output.(string); ok {
		p.Output = out
	} else if ev.Output != nil {
		p.Extra["output"] = ev.Output
	}
	return p
}

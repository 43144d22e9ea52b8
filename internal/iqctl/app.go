// Package iqctl implements the command-line client for the investigator
// service. It opens the event stream, renders the per-channel log entries as
// they arrive, and prints the aggregated analysis once the stream completes.
package iqctl

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/kart-io/logger"

	"github.com/Developer-atomic-amardeep/NeuralOps-Incident-IQ/pkg/app"
	"github.com/Developer-atomic-amardeep/NeuralOps-Incident-IQ/pkg/investigate"
)

const (
	appName        = "iqctl"
	appDescription = `Incident IQ CLI

Runs a streaming investigation against an Incident IQ server and renders the
per-source progress channels on the terminal.`
)

// NewApp creates a new application instance.
func NewApp() *app.App {
	opts := NewOptions()

	return app.NewApp(
		app.WithName(appName),
		app.WithDescription(appDescription),
		app.WithOptions(opts),
		app.WithRunFunc(func() error {
			return Run(opts)
		}),
	)
}

// renderer prints stream callbacks and keeps the final text per channel.
type renderer struct {
	mu      sync.Mutex
	byID    map[string]investigate.Channel
	finals  map[investigate.Channel]string
	failure error
}

func newRenderer() *renderer {
	return &renderer{
		byID:   make(map[string]investigate.Channel),
		finals: make(map[investigate.Channel]string),
	}
}

func (r *renderer) callbacks() investigate.Callbacks {
	return investigate.Callbacks{
		OnAdd: func(ch investigate.Channel, entry investigate.LogEntry) {
			r.mu.Lock()
			r.byID[entry.ID] = ch
			r.mu.Unlock()
			if entry.Message != "" {
				fmt.Printf("[%-10s] %s %-7s %s\n", ch, entry.Timestamp, entry.Level, entry.Message)
			}
		},
		OnUpdate: func(ch investigate.Channel, id, message string) {
			r.mu.Lock()
			r.finals[ch] = message
			r.mu.Unlock()
		},
		OnComplete: func(result string) {
			r.printFindings()
			fmt.Println("=== Investigation Analysis ===")
			if result == "" {
				fmt.Println("(no aggregated result produced)")
				return
			}
			fmt.Println(result)
		},
		OnError: func(err error) {
			r.mu.Lock()
			r.failure = err
			r.mu.Unlock()
		},
	}
}

func (r *renderer) printFindings() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ch := range investigate.Channels() {
		if text := r.finals[ch]; text != "" {
			fmt.Printf("--- %s findings ---\n%s\n\n", ch, text)
		}
	}
}

func (r *renderer) err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failure
}

// Run executes one streaming investigation.
func Run(opts *Options) error {
	if err := opts.Log.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	clientOpts := []investigate.ClientOption{}
	if opts.Token != "" {
		clientOpts = append(clientOpts, investigate.WithTokenSource(investigate.NewStaticTokenSource(opts.Token)))
	}
	client := investigate.NewClient(opts.Server, clientOpts...)

	healthCtx, cancelHealth := context.WithTimeout(context.Background(), opts.HealthTimeout)
	defer cancelHealth()
	if err := client.Health(healthCtx); err != nil {
		return fmt.Errorf("server is not healthy: %w", err)
	}
	logger.Infow("Server is healthy, starting investigation", "server", opts.Server)

	prompts := investigate.PromptSet{
		GitHub:     opts.GitHubPrompt,
		Slack:      opts.SlackPrompt,
		CloudWatch: opts.CloudWatchPrompt,
	}

	r := newRenderer()
	stream, err := client.Start(context.Background(), prompts, r.callbacks())
	if err != nil {
		return fmt.Errorf("failed to open investigation stream: %w", err)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-interrupt:
			fmt.Printf("\nReceived %s, canceling investigation...\n", sig)
			stream.Cancel()
		case <-stream.Done():
		}
	}()

	stream.Run()
	signal.Stop(interrupt)

	if stream.Canceled() {
		fmt.Println("Investigation canceled")
		return nil
	}
	if err := r.err(); err != nil {
		return fmt.Errorf("investigation stream failed: %w", err)
	}
	return nil
}

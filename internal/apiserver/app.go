// Package apiserver provides the Incident IQ investigator service.
package apiserver

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"
	"github.com/spf13/viper"

	"github.com/Developer-atomic-amardeep/NeuralOps-Incident-IQ/internal/apiserver/biz"
	"github.com/Developer-atomic-amardeep/NeuralOps-Incident-IQ/internal/apiserver/handler"
	"github.com/Developer-atomic-amardeep/NeuralOps-Incident-IQ/internal/apiserver/router"
	"github.com/Developer-atomic-amardeep/NeuralOps-Incident-IQ/pkg/app"
	"github.com/Developer-atomic-amardeep/NeuralOps-Incident-IQ/pkg/archestra"
	"github.com/Developer-atomic-amardeep/NeuralOps-Incident-IQ/pkg/config"
	"github.com/Developer-atomic-amardeep/NeuralOps-Incident-IQ/pkg/pool"
)

const (
	appName        = "incident-iq"
	appDescription = `Incident IQ Investigator Service

The multi-agent incident investigation backend.

This server provides:
  - Concurrent data gathering across GitHub, AWS CloudWatch, and Slack agents
  - Root cause analysis by a reasoning investigator agent
  - Streaming delivery of investigation progress over server-sent events`
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

// Run runs the investigator service with the given options.
func Run(opts *Options) error {
	fmt.Printf("Starting %s...\n", appName)

	opts.Log.AddInitialField("service.name", appName)
	opts.Log.AddInitialField("service.version", app.GetVersion())
	if err := opts.Log.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("Starting investigator service...")

	watchLogLevel(opts)

	archestraClient := archestra.New(opts.Archestra)
	logger.Infow("Archestra client initialized", "base_url", opts.Archestra.BaseURL)

	workerPool, err := pool.New("agent-fanout", &pool.Config{
		Capacity:       opts.Workers,
		ExpiryDuration: 30 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer workerPool.Release()

	service := biz.NewService(archestraClient, opts.Archestra, workerPool)
	logger.Info("Investigation service initialized")

	investigatorHandler := handler.NewInvestigatorHandler(service)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())
	router.Register(engine, investigatorHandler)

	logger.Info("Investigator service is ready")
	return NewServer(opts.HTTP, engine).Run()
}

// watchLogLevel reapplies the logger configuration when the config file
// changes, so the log level can be adjusted without a restart.
func watchLogLevel(opts *Options) {
	if viper.ConfigFileUsed() == "" {
		return
	}

	watcher := config.NewWatcher(viper.GetViper())
	watcher.Subscribe("logger", func(v *viper.Viper) error {
		if level := v.GetString("log.level"); level != "" && level != opts.Log.Level {
			opts.Log.Level = level
			if err := opts.Log.Init(); err != nil {
				return err
			}
			logger.Infow("Log level updated", "level", level)
		}
		return nil
	})
	watcher.Start()
}

// requestLogger logs each request after completion.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Infow("Request handled",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}

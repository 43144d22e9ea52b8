// Package router wires the investigator service routes.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/Developer-atomic-amardeep/NeuralOps-Incident-IQ/internal/apiserver/handler"
)

// Register registers all investigator routes on the engine.
func Register(engine *gin.Engine, h *handler.InvestigatorHandler) {
	logger.Info("Registering investigator routes...")

	engine.GET("/health_incident_iq", h.Health)
	engine.GET("/metrics", h.Metrics)

	engine.POST("/Investigator-Agent", h.Invoke)
	engine.POST("/Investigator-Agent/stream", h.Stream)

	logger.Info("HTTP routes registered")
}

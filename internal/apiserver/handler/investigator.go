// Package handler provides the HTTP handlers of the investigator service.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/Developer-atomic-amardeep/NeuralOps-Incident-IQ/internal/apiserver/biz"
	"github.com/Developer-atomic-amardeep/NeuralOps-Incident-IQ/internal/apiserver/metrics"
	"github.com/Developer-atomic-amardeep/NeuralOps-Incident-IQ/pkg/investigate"
	"github.com/Developer-atomic-amardeep/NeuralOps-Incident-IQ/pkg/utils/json"
)

// InvestigatorHandler serves the investigation endpoints.
type InvestigatorHandler struct {
	service *biz.Service
}

// NewInvestigatorHandler creates a handler backed by service.
func NewInvestigatorHandler(service *biz.Service) *InvestigatorHandler {
	return &InvestigatorHandler{service: service}
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type promptRequest struct {
	GitHub     string `json:"GITHUB_AGENT_PROMPT" binding:"required"`
	Slack      string `json:"SLACK_AGENT_PROMPT" binding:"required"`
	CloudWatch string `json:"AWS_CLOUDWATCH_AGENT_PROMPT" binding:"required"`
}

func (r promptRequest) toPromptSet() investigate.PromptSet {
	return investigate.PromptSet{
		GitHub:     r.GitHub,
		Slack:      r.Slack,
		CloudWatch: r.CloudWatch,
	}
}

// Health reports service liveness.
func (h *InvestigatorHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "app running successfully!"})
}

// Metrics returns the service counters.
func (h *InvestigatorHandler) Metrics(c *gin.Context) {
	c.JSON(http.StatusOK, metrics.Get().Snapshot())
}

// Invoke runs a full investigation and returns the aggregated results.
func (h *InvestigatorHandler) Invoke(c *gin.Context) {
	var req promptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: 400, Message: err.Error()})
		return
	}

	result, err := h.service.Invoke(c.Request.Context(), req.toPromptSet())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: 500, Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Stream runs an investigation, pushing every event to the client as
// server-sent events and terminating with the [DONE] sentinel.
func (h *InvestigatorHandler) Stream(c *gin.Context) {
	var req promptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: 400, Message: err.Error()})
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: 500, Message: "streaming unsupported"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	flusher.Flush()

	emit := func(ev *investigate.StreamEvent) {
		data, err := json.Marshal(ev)
		if err != nil {
			logger.Errorw("Failed to encode stream event", "error", err)
			return
		}
		c.Writer.Write([]byte("data: "))
		c.Writer.Write(data)
		c.Writer.Write([]byte("\n\n"))
		flusher.Flush()
	}

	if err := h.service.StreamInvestigation(c.Request.Context(), req.toPromptSet(), emit); err != nil {
		// The client went away; there is no one left to notify.
		logger.Warnw("Streaming investigation aborted", "error", err)
		return
	}

	c.Writer.Write([]byte("data: [DONE]\n\n"))
	flusher.Flush()
}

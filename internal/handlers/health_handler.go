package handlers

import (
	"context"
	"net/http"
	"time"

	"hireflow/interview/internal/config"
	"hireflow/interview/internal/llm"
	"hireflow/interview/internal/prompts"
	"hireflow/interview/internal/utils"
)

const (
	serviceName    = "interview"
	serviceVersion = "1.0.0"
	pingTimeout    = 2 * time.Second
)

type ReadinessCheck struct {
	Status  string `json:"status"` // "ok" | "failed"
	Message string `json:"message,omitempty"`
}

type ReadinessResponse struct {
	Status  string                    `json:"status"` // "ready" | "not_ready"
	Service string                    `json:"service"`
	Checks  map[string]ReadinessCheck `json:"checks"`
}

// Pinger is satisfied by *sql.DB
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	provider      llm.Provider
	promptManager prompts.PromptProvider
	config        *config.Config
	database      Pinger
}

func NewHealthHandler(provider llm.Provider, promptManager prompts.PromptProvider, cfg *config.Config, database Pinger) *HealthHandler {
	return &HealthHandler{
		provider:      provider,
		promptManager: promptManager,
		config:        cfg,
		database:      database,
	}
}

func (handler *HealthHandler) HealthzHandler(writer http.ResponseWriter, request *http.Request) {
	utils.JSON(writer, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": serviceName,
		"version": serviceVersion,
	})
}

func (handler *HealthHandler) ReadyzHandler(writer http.ResponseWriter, request *http.Request) {
	checks := map[string]ReadinessCheck{
		"provider":       handler.checkProvider(),
		"prompt_manager": handler.checkPrompts(),
		"configuration":  handler.checkConfig(),
		"database":       handler.checkDatabase(request.Context()),
	}

	response := ReadinessResponse{
		Status:  "ready",
		Service: serviceName,
		Checks:  checks,
	}
	for _, check := range checks {
		if check.Status != "ok" {
			response.Status = "not_ready"
			utils.JSON(writer, http.StatusServiceUnavailable, response)
			return
		}
	}
	utils.JSON(writer, http.StatusOK, response)
}

func (handler *HealthHandler) checkProvider() ReadinessCheck {
	if handler.provider == nil {
		return failed("AI provider not initialized")
	}
	return ReadinessCheck{Status: "ok"}
}

func (handler *HealthHandler) checkPrompts() ReadinessCheck {
	if handler.promptManager == nil {
		return failed("Prompt manager not initialized")
	}
	if len(handler.promptManager.GetTemplates()) == 0 {
		return failed("No prompt templates loaded")
	}
	return ReadinessCheck{Status: "ok"}
}

func (handler *HealthHandler) checkConfig() ReadinessCheck {
	if handler.config == nil {
		return failed("Configuration not loaded")
	}
	return ReadinessCheck{Status: "ok"}
}

func (handler *HealthHandler) checkDatabase(ctx context.Context) ReadinessCheck {
	if handler.database == nil {
		return failed("Database not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := handler.database.PingContext(ctx); err != nil {
		return failed("Database unreachable: " + err.Error())
	}
	return ReadinessCheck{Status: "ok"}
}

func failed(message string) ReadinessCheck {
	return ReadinessCheck{Status: "failed", Message: message}
}

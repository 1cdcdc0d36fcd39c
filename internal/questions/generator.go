package questions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"hireflow/interview/internal/llm"
	"hireflow/interview/internal/metrics"
	"hireflow/interview/internal/models"
	"hireflow/interview/internal/prompts"
	"hireflow/interview/internal/utils"
)

// ErrGenerationFailed is returned when the provider fails, times out or produces no usable text.
var ErrGenerationFailed = errors.New("question generation failed")

// Generator produces interview questions. Implementations never touch session state.
type Generator interface {
	GenerateFirst(ctx context.Context, resumeSummary, jobDescription string) (string, error)
	GenerateNext(ctx context.Context, resumeSummary, jobDescription, history string) (string, error)
}

// LLMGenerator renders prompt templates and performs one provider call per question
type LLMGenerator struct {
	provider llm.Provider
	prompts  prompts.PromptProvider
	logger   *zap.Logger
}

func NewLLMGenerator(provider llm.Provider, promptProvider prompts.PromptProvider, logger *zap.Logger) *LLMGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMGenerator{
		provider: provider,
		prompts:  promptProvider,
		logger:   logger,
	}
}

func (g *LLMGenerator) GenerateFirst(ctx context.Context, resumeSummary, jobDescription string) (string, error) {
	data := map[string]string{
		"ResumeSummary":  resumeSummary,
		"JobDescription": jobDescription,
	}
	return g.generate(ctx, prompts.FirstQuestion, models.GenerationFirst, data)
}

func (g *LLMGenerator) GenerateNext(ctx context.Context, resumeSummary, jobDescription, history string) (string, error) {
	data := map[string]string{
		"ResumeSummary":  resumeSummary,
		"JobDescription": jobDescription,
		"History":        history,
	}
	return g.generate(ctx, prompts.NextQuestion, models.GenerationNext, data)
}

func (g *LLMGenerator) generate(ctx context.Context, mode, kind string, data map[string]string) (string, error) {
	req, err := buildRequest(g.prompts, mode, data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	start := time.Now()
	text, err := complete(ctx, g.provider, req)
	metrics.ObserveGeneration(kind, time.Since(start), err)
	if err != nil {
		g.logger.Warn("question generation failed",
			zap.String("kind", kind),
			zap.String("provider", g.provider.GetProviderName()),
			zap.Error(err))
		return "", err
	}

	g.logger.Debug("question generated",
		zap.String("kind", kind),
		zap.String("question", utils.TruncateForLog(text, 120)),
		zap.Duration("elapsed", time.Since(start)))
	return text, nil
}

func buildRequest(pp prompts.PromptProvider, mode string, data map[string]string) (*models.GenerationRequest, error) {
	system, err := pp.BuildPrompt(mode, prompts.VariantSystem, data)
	if err != nil {
		return nil, err
	}
	user, err := pp.BuildPrompt(mode, prompts.VariantUser, data)
	if err != nil {
		return nil, err
	}
	return &models.GenerationRequest{SystemPrompt: system, UserPrompt: user}, nil
}

// complete performs exactly one provider call and cleans its output.
func complete(ctx context.Context, provider llm.Provider, req *models.GenerationRequest) (string, error) {
	resp, err := provider.GenerateContent(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	if resp == nil {
		return "", fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}

	text := Clean(resp.Content)
	if text == "" {
		return "", fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}
	return text, nil
}

// Clean trims model output and removes code fences and surrounding quotes.
func Clean(s string) string {
	return strings.TrimSpace(utils.StripQuotes(utils.StripFences(s)))
}

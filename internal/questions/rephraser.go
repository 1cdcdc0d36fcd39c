package questions

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"hireflow/interview/internal/llm"
	"hireflow/interview/internal/metrics"
	"hireflow/interview/internal/models"
	"hireflow/interview/internal/prompts"
)

// Rephraser rewrites a recruiter's job description into one polished version.
type Rephraser struct {
	provider llm.Provider
	prompts  prompts.PromptProvider
	logger   *zap.Logger
}

func NewRephraser(provider llm.Provider, promptProvider prompts.PromptProvider, logger *zap.Logger) *Rephraser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Rephraser{provider: provider, prompts: promptProvider, logger: logger}
}

func (r *Rephraser) RephraseJobDescription(ctx context.Context, description string) (string, error) {
	req, err := buildRequest(r.prompts, prompts.Rephrase, map[string]string{"Description": description})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	start := time.Now()
	text, err := complete(ctx, r.provider, req)
	metrics.ObserveGeneration(models.GenerationRephrase, time.Since(start), err)
	if err != nil {
		r.logger.Warn("rephrase failed", zap.String("provider", r.provider.GetProviderName()), zap.Error(err))
		return "", err
	}
	return text, nil
}

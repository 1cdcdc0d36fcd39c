package handlers

import (
	"context"
	"errors"

	"hireflow/interview/internal/interview"
	"hireflow/interview/internal/models"
	"hireflow/interview/internal/repositories"
)

type mockProvider struct {
	generateContentFn func(ctx context.Context, req *models.GenerationRequest) (*models.GenerationResponse, error)
}

func (m *mockProvider) GenerateContent(ctx context.Context, req *models.GenerationRequest) (*models.GenerationResponse, error) {
	if m.generateContentFn == nil {
		return &models.GenerationResponse{Content: "ok"}, nil
	}
	return m.generateContentFn(ctx, req)
}

func (m *mockProvider) GetProviderName() string { return "mock" }

type mockPromptManager struct {
	templates []string
}

func (m *mockPromptManager) BuildPrompt(mode, variant string, data any) (string, error) {
	return "mock prompt", nil
}

func (m *mockPromptManager) GetTemplates() []string {
	if m.templates == nil {
		return []string{"first_question"}
	}
	return m.templates
}

type mockPinger struct {
	err error
}

func (m *mockPinger) PingContext(ctx context.Context) error { return m.err }

type mockEngine struct {
	stateFn      func(ctx context.Context, applicationID string) (*interview.Snapshot, error)
	submitFn     func(ctx context.Context, applicationID, answer string, questionID uint) (*interview.Snapshot, error)
	transcriptFn func(ctx context.Context, applicationID string) (*interview.Snapshot, error)
}

func (m *mockEngine) State(ctx context.Context, applicationID string) (*interview.Snapshot, error) {
	return m.stateFn(ctx, applicationID)
}

func (m *mockEngine) SubmitAnswer(ctx context.Context, applicationID, answer string, questionID uint) (*interview.Snapshot, error) {
	return m.submitFn(ctx, applicationID, answer, questionID)
}

func (m *mockEngine) Transcript(ctx context.Context, applicationID string) (*interview.Snapshot, error) {
	return m.transcriptFn(ctx, applicationID)
}

// mockApplications stores applications by id
type mockApplications struct {
	apps map[string]*models.Application
	err  error
}

func (m *mockApplications) GetByID(ctx context.Context, applicationID string) (*models.Application, error) {
	if m.err != nil {
		return nil, m.err
	}
	app, ok := m.apps[applicationID]
	if !ok {
		return nil, repositories.ErrApplicationNotFound
	}
	return app, nil
}

func (m *mockApplications) GetForApplicant(ctx context.Context, jobID, applicantID string) (*models.Application, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, app := range m.apps {
		if app.JobID == jobID && app.ApplicantID == applicantID {
			return app, nil
		}
	}
	return nil, repositories.ErrApplicationNotFound
}

type mockRephraser struct {
	out string
	err error
}

func (m *mockRephraser) RephraseJobDescription(ctx context.Context, description string) (string, error) {
	return m.out, m.err
}

var errBoom = errors.New("boom")

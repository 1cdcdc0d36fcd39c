package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"hireflow/interview/internal/interview"
	"hireflow/interview/internal/middleware"
	"hireflow/interview/internal/models"
)

func testApplications() *mockApplications {
	return &mockApplications{apps: map[string]*models.Application{
		"app-1": {ID: "app-1", JobID: "job-1", ApplicantID: "applicant-1", Job: models.Job{ID: "job-1", RecruiterID: "recruiter-1"}},
	}}
}

func newInterviewRouter(engine InterviewEngine, apps ApplicationLookup, id *middleware.Identity) http.Handler {
	h := NewInterviewHandler(engine, apps, zap.NewNop())
	r := chi.NewRouter()
	if id != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(middleware.WithIdentity(r.Context(), *id)))
			})
		})
	}
	r.Get("/interviews/{applicationId}/qna", h.GetQnAHandler)
	r.With(middleware.ValidateRequest[*models.SubmitAnswerRequest]()).Post("/interviews/{applicationId}/qna", h.PostQnAHandler)
	r.Get("/interviews/{applicationId}/transcript", h.TranscriptHandler)
	return r
}

func applicant() *middleware.Identity {
	return &middleware.Identity{UserID: "applicant-1", Role: models.RoleApplicant}
}

func pendingSnapshot() *interview.Snapshot {
	pairs := []models.QnAPair{
		{ID: 1, Question: "Q1", Answer: "A1"},
		{ID: 2, Question: "Q2"},
	}
	current := pairs[1]
	return &interview.Snapshot{
		Status:   interview.StatusActivePending,
		QnAs:     pairs,
		Current:  &current,
		TimeLeft: 250,
	}
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) models.InterviewStateResponse {
	t.Helper()
	var resp models.InterviewStateResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestGetQnAHandler(t *testing.T) {
	engine := &mockEngine{stateFn: func(ctx context.Context, applicationID string) (*interview.Snapshot, error) {
		if applicationID != "app-1" {
			t.Fatalf("unexpected application id %s", applicationID)
		}
		return pendingSnapshot(), nil
	}}
	router := newInterviewRouter(engine, testApplications(), applicant())

	t.Run("all pairs", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/interviews/app-1/qna", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		resp := decodeState(t, rec)
		if len(resp.QnAs) != 2 || resp.CurrentQuestion == nil || *resp.CurrentQuestion != "Q2" {
			t.Fatalf("unexpected response %+v", resp)
		}
		if resp.CurrentQuestionID == nil || *resp.CurrentQuestionID != 2 {
			t.Fatalf("expected current question id 2, got %v", resp.CurrentQuestionID)
		}
		if resp.TimeLeft != 250 || resp.InterviewOver {
			t.Fatalf("unexpected timing %+v", resp)
		}
	})

	t.Run("answered only", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/interviews/app-1/qna?answered=true", nil))
		resp := decodeState(t, rec)
		if len(resp.QnAs) != 1 || resp.QnAs[0].Answer != "A1" {
			t.Fatalf("expected only answered pairs, got %+v", resp.QnAs)
		}
	})
}

func TestGetQnAHandler_Expired(t *testing.T) {
	engine := &mockEngine{stateFn: func(ctx context.Context, applicationID string) (*interview.Snapshot, error) {
		return &interview.Snapshot{Status: interview.StatusExpired, InterviewOver: true}, nil
	}}
	router := newInterviewRouter(engine, testApplications(), applicant())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/interviews/app-1/qna", nil))

	if rec.Body.String() == "" {
		t.Fatal("expected a body")
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if raw["interviewOver"] != true || raw["timeLeft"].(float64) != 0 || raw["currentQuestion"] != nil {
		t.Fatalf("unexpected expired body %s", rec.Body.String())
	}
	if qnas, ok := raw["qnas"].([]interface{}); !ok || len(qnas) != 0 {
		t.Fatalf("expected empty qnas array, got %v", raw["qnas"])
	}
}

func TestInterviewHandler_Ownership(t *testing.T) {
	engine := &mockEngine{stateFn: func(ctx context.Context, applicationID string) (*interview.Snapshot, error) {
		t.Fatal("engine must not be called")
		return nil, nil
	}}

	tests := []struct {
		name string
		id   *middleware.Identity
		path string
		code int
	}{
		{"other applicant", &middleware.Identity{UserID: "someone", Role: models.RoleApplicant}, "/interviews/app-1/qna", http.StatusNotFound},
		{"unknown application", applicant(), "/interviews/missing/qna", http.StatusNotFound},
		{"no identity", nil, "/interviews/app-1/qna", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newInterviewRouter(engine, testApplications(), tt.id)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
		})
	}

	t.Run("lookup failure", func(t *testing.T) {
		router := newInterviewRouter(engine, &mockApplications{err: errBoom}, applicant())
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/interviews/app-1/qna", nil))
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
	})
}

func TestPostQnAHandler(t *testing.T) {
	var gotAnswer string
	var gotQuestion uint
	engine := &mockEngine{submitFn: func(ctx context.Context, applicationID, answer string, questionID uint) (*interview.Snapshot, error) {
		gotAnswer, gotQuestion = answer, questionID
		return pendingSnapshot(), nil
	}}
	router := newInterviewRouter(engine, testApplications(), applicant())

	rec := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"answer":"  I built payment systems. ","questionId":1}`)
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/interviews/app-1/qna", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotAnswer != "I built payment systems." || gotQuestion != 1 {
		t.Fatalf("unexpected engine input %q %d", gotAnswer, gotQuestion)
	}
	if resp := decodeState(t, rec); *resp.CurrentQuestion != "Q2" {
		t.Fatalf("expected next question Q2, got %v", resp.CurrentQuestion)
	}
}

func TestPostQnAHandler_EmptyAnswerNeverReachesEngine(t *testing.T) {
	engine := &mockEngine{submitFn: func(ctx context.Context, applicationID, answer string, questionID uint) (*interview.Snapshot, error) {
		t.Fatal("engine must not be called")
		return nil, nil
	}}
	router := newInterviewRouter(engine, testApplications(), applicant())

	for _, body := range []string{`{"answer":""}`, `{"answer":"   "}`, `{}`, `not json`} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/interviews/app-1/qna", bytes.NewBufferString(body)))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestPostQnAHandler_InterviewOver(t *testing.T) {
	engine := &mockEngine{submitFn: func(ctx context.Context, applicationID, answer string, questionID uint) (*interview.Snapshot, error) {
		return &interview.Snapshot{Status: interview.StatusExpired, InterviewOver: true}, interview.ErrInterviewOver
	}}
	router := newInterviewRouter(engine, testApplications(), applicant())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/interviews/app-1/qna", bytes.NewBufferString(`{"answer":"late"}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeState(t, rec)
	if !resp.InterviewOver || resp.TimeLeft != 0 || resp.Error != "interview is over" || resp.CurrentQuestion != nil {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestPostQnAHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		body string
	}{
		{"no pending", interview.ErrNoPendingQuestion, http.StatusBadRequest, "invalid_input"},
		{"invalid", fmt.Errorf("%w: answer is required", interview.ErrInvalidInput), http.StatusBadRequest, "invalid_input"},
		{"not found", interview.ErrNotFound, http.StatusNotFound, "not_found"},
		{"conflict", fmt.Errorf("%w: taken", interview.ErrConcurrentModification), http.StatusConflict, "concurrent_modification"},
		{"generation", fmt.Errorf("wrap: %w", interview.ErrGenerationFailed), http.StatusInternalServerError, "generation_failed"},
		{"unknown", errBoom, http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &mockEngine{submitFn: func(ctx context.Context, applicationID, answer string, questionID uint) (*interview.Snapshot, error) {
				return nil, tt.err
			}}
			router := newInterviewRouter(engine, testApplications(), applicant())

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/interviews/app-1/qna", bytes.NewBufferString(`{"answer":"x"}`)))

			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
			var resp models.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Code != tt.body {
				t.Fatalf("expected code %s, got %s", tt.body, resp.Code)
			}
		})
	}
}

func TestTranscriptHandler(t *testing.T) {
	engine := &mockEngine{transcriptFn: func(ctx context.Context, applicationID string) (*interview.Snapshot, error) {
		snap := pendingSnapshot()
		return snap, nil
	}}

	t.Run("job recruiter", func(t *testing.T) {
		router := newInterviewRouter(engine, testApplications(), &middleware.Identity{UserID: "recruiter-1", Role: models.RoleRecruiter})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/interviews/app-1/transcript", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var resp models.TranscriptResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !resp.Started || len(resp.QnAs) != 1 || resp.QnAs[0].Question != "Q1" {
			t.Fatalf("unexpected transcript %+v", resp)
		}
	})

	t.Run("other recruiter", func(t *testing.T) {
		router := newInterviewRouter(engine, testApplications(), &middleware.Identity{UserID: "recruiter-2", Role: models.RoleRecruiter})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/interviews/app-1/transcript", nil))
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("unknown application", func(t *testing.T) {
		router := newInterviewRouter(engine, testApplications(), &middleware.Identity{UserID: "recruiter-1", Role: models.RoleRecruiter})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/interviews/missing/transcript", nil))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

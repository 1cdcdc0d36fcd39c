package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"hireflow/interview/internal/models"
)

type mockRequest struct {
	Value string `json:"value"`
}

func (m *mockRequest) Validate() error {
	switch m.Value {
	case "error_response":
		return &models.ErrorResponse{Code: "invalid", Message: "invalid"}
	case "generic_error":
		return errors.New("failed")
	default:
		return nil
	}
}

type taggedRequest struct {
	Name string `json:"name" validate:"required,max=3"`
}

func (t *taggedRequest) Validate() error { return nil }

func serve(handler http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/test", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp
}

func TestValidateRequestSuccess(t *testing.T) {
	called := false
	handler := ValidateRequest[*mockRequest]()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		req := GetValidatedRequest[*mockRequest](r)
		if req.Value != "ok" {
			t.Fatalf("expected value ok, got %s", req.Value)
		}
	}))

	rec := serve(handler, `{"value":"ok"}`)

	if !called {
		t.Fatal("expected handler to be called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestValidateRequestInvalidJSON(t *testing.T) {
	handler := ValidateRequest[*mockRequest]()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	}))

	rec := serve(handler, `{`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid json, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != "invalid_json" {
		t.Fatalf("expected invalid_json, got %s", resp.Code)
	}
}

func TestValidateRequestValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{"error response", `{"value":"error_response"}`, "invalid"},
		{"generic error", `{"value":"generic_error"}`, "validation_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := ValidateRequest[*mockRequest]()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
			rec := serve(handler, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 for validation error, got %d", rec.Code)
			}
			if resp := decodeError(t, rec); resp.Code != tt.code {
				t.Fatalf("expected code %s, got %s", tt.code, resp.Code)
			}
		})
	}
}

func TestValidateRequestStructTags(t *testing.T) {
	handler := ValidateRequest[*taggedRequest]()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	rec := serve(handler, `{"name":"toolong"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	resp := decodeError(t, rec)
	if len(resp.Details) != 1 || resp.Details[0].Field != "name" || resp.Details[0].Reason != "max" {
		t.Fatalf("unexpected details %+v", resp.Details)
	}

	rec = serve(handler, `{"name":"ok"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestValidateSubmitAnswerRequest(t *testing.T) {
	var got *models.SubmitAnswerRequest
	handler := ValidateRequest[*models.SubmitAnswerRequest]()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetValidatedRequest[*models.SubmitAnswerRequest](r)
	}))

	rec := serve(handler, `{"answer":"   "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank answer, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != "missing_answer" {
		t.Fatalf("expected missing_answer, got %s", resp.Code)
	}

	rec = serve(handler, `{"answer":"  hello  ","questionId":7}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got == nil || got.Answer != "hello" || got.QuestionID != 7 {
		t.Fatalf("unexpected validated request %+v", got)
	}
}

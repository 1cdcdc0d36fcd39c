package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"hireflow/interview/internal/interview"
	"hireflow/interview/internal/middleware"
	"hireflow/interview/internal/models"
	"hireflow/interview/internal/repositories"
	"hireflow/interview/internal/utils"
)

// InterviewEngine is the part of the interview engine the handlers use
type InterviewEngine interface {
	State(ctx context.Context, applicationID string) (*interview.Snapshot, error)
	SubmitAnswer(ctx context.Context, applicationID, answer string, questionID uint) (*interview.Snapshot, error)
	Transcript(ctx context.Context, applicationID string) (*interview.Snapshot, error)
}

// ApplicationLookup resolves applications for ownership checks
type ApplicationLookup interface {
	GetByID(ctx context.Context, applicationID string) (*models.Application, error)
	GetForApplicant(ctx context.Context, jobID, applicantID string) (*models.Application, error)
}

type InterviewHandler struct {
	engine       InterviewEngine
	applications ApplicationLookup
	logger       *zap.Logger
}

func NewInterviewHandler(engine InterviewEngine, applications ApplicationLookup, logger *zap.Logger) *InterviewHandler {
	return &InterviewHandler{
		engine:       engine,
		applications: applications,
		logger:       logger,
	}
}

// GetQnAHandler polls the interview, creating the next question when none is pending.
func (h *InterviewHandler) GetQnAHandler(w http.ResponseWriter, r *http.Request) {
	applicationID := chi.URLParam(r, "applicationId")
	if !h.authorizeApplicant(w, r, applicationID) {
		return
	}

	snap, err := h.engine.State(r.Context(), applicationID)
	if err != nil {
		h.writeEngineError(w, err, applicationID)
		return
	}

	answeredOnly := r.URL.Query().Get("answered") == "true"
	utils.JSON(w, http.StatusOK, stateResponse(snap, answeredOnly))
}

// PostQnAHandler records the answer to the pending question and returns the next one.
func (h *InterviewHandler) PostQnAHandler(w http.ResponseWriter, r *http.Request) {
	applicationID := chi.URLParam(r, "applicationId")
	if !h.authorizeApplicant(w, r, applicationID) {
		return
	}

	req := middleware.GetValidatedRequest[*models.SubmitAnswerRequest](r)

	snap, err := h.engine.SubmitAnswer(r.Context(), applicationID, req.Answer, req.QuestionID)
	if errors.Is(err, interview.ErrInterviewOver) {
		resp := models.InterviewStateResponse{QnAs: []models.QnAView{}, InterviewOver: true, TimeLeft: 0}
		if snap != nil {
			resp = stateResponse(snap, true)
		}
		resp.Error = interview.ErrInterviewOver.Error()
		utils.JSON(w, http.StatusOK, resp)
		return
	}
	if err != nil {
		h.writeEngineError(w, err, applicationID)
		return
	}

	utils.JSON(w, http.StatusOK, stateResponse(snap, false))
}

// TranscriptHandler lets the job's recruiter review the answered questions.
func (h *InterviewHandler) TranscriptHandler(w http.ResponseWriter, r *http.Request) {
	applicationID := chi.URLParam(r, "applicationId")
	id, _ := middleware.GetIdentity(r)

	app, err := h.applications.GetByID(r.Context(), applicationID)
	if errors.Is(err, repositories.ErrApplicationNotFound) {
		writeNotFound(w)
		return
	}
	if err != nil {
		h.writeInternalError(w, err, applicationID)
		return
	}
	if app.Job.RecruiterID != id.UserID {
		utils.JSON(w, http.StatusForbidden, models.ErrorResponse{
			Code:    "forbidden",
			Message: "Only the job's recruiter can view this transcript",
		})
		return
	}

	snap, err := h.engine.Transcript(r.Context(), applicationID)
	if err != nil {
		h.writeEngineError(w, err, applicationID)
		return
	}

	utils.JSON(w, http.StatusOK, models.TranscriptResponse{
		ApplicationID: applicationID,
		Started:       snap.Status != interview.StatusUninitialized,
		InterviewOver: snap.InterviewOver,
		QnAs:          toViews(snap.Answered()),
	})
}

// authorizeApplicant writes 404 unless the caller owns the application.
func (h *InterviewHandler) authorizeApplicant(w http.ResponseWriter, r *http.Request, applicationID string) bool {
	id, ok := middleware.GetIdentity(r)
	if !ok {
		utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{Code: "unauthorized", Message: "Unauthorized"})
		return false
	}

	app, err := h.applications.GetByID(r.Context(), applicationID)
	if errors.Is(err, repositories.ErrApplicationNotFound) || (err == nil && app.ApplicantID != id.UserID) {
		writeNotFound(w)
		return false
	}
	if err != nil {
		h.writeInternalError(w, err, applicationID)
		return false
	}
	return true
}

func (h *InterviewHandler) writeEngineError(w http.ResponseWriter, err error, applicationID string) {
	log := h.logger.With(zap.String("application_id", applicationID), zap.Error(err))

	switch {
	case errors.Is(err, interview.ErrInvalidInput):
		log.Info("rejected interview request")
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{Code: "invalid_input", Message: err.Error()})
	case errors.Is(err, interview.ErrNotFound):
		writeNotFound(w)
	case errors.Is(err, interview.ErrConcurrentModification):
		log.Warn("concurrent interview modification")
		utils.JSON(w, http.StatusConflict, models.ErrorResponse{
			Code:    "concurrent_modification",
			Message: "The interview changed; fetch the current state and retry",
		})
	case errors.Is(err, interview.ErrGenerationFailed):
		log.Error("question generation failed")
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "generation_failed",
			Message: "Failed to generate the next question",
		})
	default:
		h.writeInternalError(w, err, applicationID)
	}
}

func (h *InterviewHandler) writeInternalError(w http.ResponseWriter, err error, applicationID string) {
	h.logger.Error("interview request failed", zap.String("application_id", applicationID), zap.Error(err))
	utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
		Code:    "internal_error",
		Message: "Internal server error",
	})
}

func writeNotFound(w http.ResponseWriter) {
	utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
		Code:    "not_found",
		Message: "Interview not found",
	})
}

func stateResponse(snap *interview.Snapshot, answeredOnly bool) models.InterviewStateResponse {
	pairs := snap.QnAs
	if answeredOnly {
		pairs = snap.Answered()
	}

	resp := models.InterviewStateResponse{
		QnAs:          toViews(pairs),
		InterviewOver: snap.InterviewOver,
		TimeLeft:      snap.TimeLeft,
	}
	if snap.Current != nil && !snap.InterviewOver {
		question := snap.Current.Question
		id := snap.Current.ID
		resp.CurrentQuestion = &question
		resp.CurrentQuestionID = &id
	}
	return resp
}

func toViews(pairs []models.QnAPair) []models.QnAView {
	views := make([]models.QnAView, 0, len(pairs))
	for _, pair := range pairs {
		views = append(views, models.QnAView{ID: pair.ID, Question: pair.Question, Answer: pair.Answer})
	}
	return views
}

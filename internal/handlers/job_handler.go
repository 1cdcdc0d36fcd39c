package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"hireflow/interview/internal/middleware"
	"hireflow/interview/internal/models"
	"hireflow/interview/internal/repositories"
	"hireflow/interview/internal/utils"
)

type Rephraser interface {
	RephraseJobDescription(ctx context.Context, description string) (string, error)
}

type JobHandler struct {
	applications ApplicationLookup
	rephraser    Rephraser
	logger       *zap.Logger
}

func NewJobHandler(applications ApplicationLookup, rephraser Rephraser, logger *zap.Logger) *JobHandler {
	return &JobHandler{
		applications: applications,
		rephraser:    rephraser,
		logger:       logger,
	}
}

// MyApplicationHandler returns the caller's application id for a job.
func (h *JobHandler) MyApplicationHandler(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")
	id, _ := middleware.GetIdentity(r)

	app, err := h.applications.GetForApplicant(r.Context(), jobID, id.UserID)
	if errors.Is(err, repositories.ErrApplicationNotFound) {
		utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
			Code:    "not_found",
			Message: "No application found for this job",
		})
		return
	}
	if err != nil {
		h.logger.Error("failed to look up application", zap.String("job_id", jobID), zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "internal_error",
			Message: "Internal server error",
		})
		return
	}

	utils.JSON(w, http.StatusOK, models.MyApplicationResponse{ApplicationID: app.ID})
}

// RephraseHandler rewrites a job description with the LLM.
func (h *JobHandler) RephraseHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.RephraseRequest](r)

	rephrased, err := h.rephraser.RephraseJobDescription(r.Context(), req.Description)
	if err != nil {
		h.logger.Error("failed to rephrase job description", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "generation_failed",
			Message: "Failed to rephrase description",
		})
		return
	}

	utils.JSON(w, http.StatusOK, models.RephraseResponse{Rephrased: rephrased})
}

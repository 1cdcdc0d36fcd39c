package routers

import (
	"hireflow/interview/internal/handlers"
	"hireflow/interview/internal/middleware"
	"hireflow/interview/internal/models"

	"github.com/go-chi/chi/v5"
)

func InterviewRoutes(router *chi.Mux, jwtSecret string, interviewHandler *handlers.InterviewHandler, jobHandler *handlers.JobHandler) {
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))

		r.Route("/interviews/{applicationId}", func(r chi.Router) {
			r.With(middleware.RequireRole(models.RoleApplicant)).Get("/qna", interviewHandler.GetQnAHandler)
			r.With(
				middleware.RequireRole(models.RoleApplicant),
				middleware.ValidateRequest[*models.SubmitAnswerRequest](),
			).Post("/qna", interviewHandler.PostQnAHandler)
			r.With(middleware.RequireRole(models.RoleRecruiter)).Get("/transcript", interviewHandler.TranscriptHandler)
		})

		r.Route("/jobs", func(r chi.Router) {
			r.With(middleware.RequireRole(models.RoleApplicant)).Get("/{jobId}/my-application", jobHandler.MyApplicationHandler)
			r.With(
				middleware.RequireRole(models.RoleRecruiter),
				middleware.ValidateRequest[*models.RephraseRequest](),
			).Post("/rephrase", jobHandler.RephraseHandler)
		})
	})
}

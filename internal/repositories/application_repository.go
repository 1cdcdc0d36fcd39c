package repositories

import (
	"context"
	"errors"

	"hireflow/interview/internal/models"

	"gorm.io/gorm"
)

var ErrApplicationNotFound = errors.New("application not found")

type ApplicationRepository struct {
	DB *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{DB: db}
}

// GetByID loads an application with its job.
func (r *ApplicationRepository) GetByID(ctx context.Context, applicationID string) (*models.Application, error) {
	var app models.Application
	err := r.DB.WithContext(ctx).Preload("Job").First(&app, "id = ?", applicationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrApplicationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// GetForApplicant returns the applicant's most recent application to a job.
func (r *ApplicationRepository) GetForApplicant(ctx context.Context, jobID, applicantID string) (*models.Application, error) {
	var app models.Application
	err := r.DB.WithContext(ctx).
		Where("job_id = ? AND applicant_id = ?", jobID, applicantID).
		Order("created_at DESC").
		First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrApplicationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

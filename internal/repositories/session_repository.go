package repositories

import (
	"context"
	"errors"
	"time"

	"hireflow/interview/internal/models"

	"gorm.io/gorm"
)

var (
	ErrSessionNotFound       = errors.New("interview session not found")
	ErrPendingQuestionExists = errors.New("session already has a pending question")
	ErrAlreadyAnswered       = errors.New("question already answered")
)

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

func orderedQnAs(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

// GetByApplicationID loads the session with its Q&A pairs in creation order and its job.
func (r *SessionRepository) GetByApplicationID(ctx context.Context, applicationID string) (*models.InterviewSession, error) {
	var session models.InterviewSession
	err := r.DB.WithContext(ctx).
		Preload("QnAs", orderedQnAs).
		Preload("Application.Job").
		First(&session, "application_id = ?", applicationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// MarkStarted sets the start time only if it is unset and returns the effective start time.
// started is true when this call was the one that set it.
func (r *SessionRepository) MarkStarted(ctx context.Context, sessionID string, at time.Time) (start time.Time, started bool, err error) {
	result := r.DB.WithContext(ctx).
		Model(&models.InterviewSession{}).
		Where("id = ? AND start_time IS NULL", sessionID).
		Update("start_time", at)
	if result.Error != nil {
		return time.Time{}, false, result.Error
	}

	var session models.InterviewSession
	if err := r.DB.WithContext(ctx).Select("id", "start_time").First(&session, "id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, false, ErrSessionNotFound
		}
		return time.Time{}, false, err
	}
	if session.StartTime == nil {
		return time.Time{}, false, errors.New("start time not persisted")
	}
	return *session.StartTime, result.RowsAffected == 1, nil
}

// AppendQuestion adds a pending pair. It fails if the session already has one.
func (r *SessionRepository) AppendQuestion(ctx context.Context, sessionID, question string, createdAt time.Time) (*models.QnAPair, error) {
	var pair *models.QnAPair
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pending int64
		if err := tx.Model(&models.QnAPair{}).
			Where("session_id = ? AND answer = ''", sessionID).
			Count(&pending).Error; err != nil {
			return err
		}
		if pending > 0 {
			return ErrPendingQuestionExists
		}

		created, err := createPair(tx, sessionID, question, createdAt)
		if err != nil {
			return err
		}
		pair = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// AnswerAndAppend fills the pending pair's answer and appends the next question in one transaction.
// ErrAlreadyAnswered means the pair was answered concurrently and nothing was written.
func (r *SessionRepository) AnswerAndAppend(ctx context.Context, sessionID string, pendingID uint, answer string, answeredAt time.Time, nextQuestion string) (*models.QnAPair, error) {
	var pair *models.QnAPair
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.QnAPair{}).
			Where("id = ? AND session_id = ? AND answer = ''", pendingID, sessionID).
			Updates(map[string]interface{}{"answer": answer, "answered_at": answeredAt})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAlreadyAnswered
		}

		// created after the answer so it sorts last even with a coarse clock
		created, err := createPair(tx, sessionID, nextQuestion, answeredAt)
		if err != nil {
			return err
		}
		pair = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

func createPair(tx *gorm.DB, sessionID, question string, createdAt time.Time) (*models.QnAPair, error) {
	pair := &models.QnAPair{
		SessionID: sessionID,
		Question:  question,
		CreatedAt: createdAt,
	}
	if err := tx.Create(pair).Error; err != nil {
		return nil, err
	}
	return pair, nil
}

// ListUnexportedStartedBefore returns started sessions with start_time <= cutoff that have no export record.
func (r *SessionRepository) ListUnexportedStartedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.InterviewSession, error) {
	exported := r.DB.Model(&models.TranscriptExport{}).Select("session_id")

	var sessions []models.InterviewSession
	query := r.DB.WithContext(ctx).
		Preload("QnAs", orderedQnAs).
		Preload("Application.Job").
		Where("start_time IS NOT NULL AND start_time <= ?", cutoff).
		Where("id NOT IN (?)", exported).
		Order("start_time ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// RecordExport marks a session as exported to file.
func (r *SessionRepository) RecordExport(ctx context.Context, sessionID, file string, at time.Time) error {
	return r.DB.WithContext(ctx).Create(&models.TranscriptExport{
		SessionID:  sessionID,
		File:       file,
		ExportedAt: at,
	}).Error
}

package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"hireflow/interview/internal/deadline"
	"hireflow/interview/internal/metrics"
	"hireflow/interview/internal/models"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// TranscriptSource is the slice of the session store the exporter needs.
type TranscriptSource interface {
	ListUnexportedStartedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.InterviewSession, error)
	RecordExport(ctx context.Context, sessionID, file string, at time.Time) error
}

// ExporterConfig contains configuration for the exporter job
type ExporterConfig struct {
	Schedule  string // Cron schedule (e.g., "0 2 * * *" for 2 AM daily)
	ExportDir string // Directory to store exported files
	Enabled   bool
	BatchSize int // Sessions per run, 0 means no limit
}

// TranscriptExporter writes finished interview transcripts to JSONL files on a schedule.
type TranscriptExporter struct {
	source TranscriptSource
	policy deadline.Policy
	config *ExporterConfig
	cron   *cron.Cron
	logger *zap.Logger
	now    func() time.Time
}

// NewTranscriptExporter creates a new exporter job
func NewTranscriptExporter(source TranscriptSource, policy deadline.Policy, config *ExporterConfig, logger *zap.Logger) *TranscriptExporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranscriptExporter{
		source: source,
		policy: policy,
		config: config,
		cron:   cron.New(),
		logger: logger,
		now:    time.Now,
	}
}

// Start begins the scheduled export job
func (te *TranscriptExporter) Start() error {
	if !te.config.Enabled {
		te.logger.Info("transcript export is disabled, skipping scheduler")
		return nil
	}

	te.logger.Info("starting transcript exporter", zap.String("schedule", te.config.Schedule))

	_, err := te.cron.AddFunc(te.config.Schedule, func() {
		if _, err := te.RunExport(context.Background()); err != nil {
			te.logger.Error("transcript export failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule export job: %w", err)
	}

	te.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running export to finish.
func (te *TranscriptExporter) Stop() {
	if te.cron != nil {
		<-te.cron.Stop().Done()
		te.logger.Info("transcript exporter stopped")
	}
}

// RunExport performs a single export run and returns the number of sessions written.
// Only sessions whose deadline has passed are exported, each at most once.
func (te *TranscriptExporter) RunExport(ctx context.Context) (int, error) {
	now := te.now().UTC()
	cutoff := now.Add(-te.policy.Duration)

	sessions, err := te.source.ListUnexportedStartedBefore(ctx, cutoff, te.config.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list finished sessions: %w", err)
	}
	if len(sessions) == 0 {
		te.logger.Debug("no finished transcripts to export")
		return 0, nil
	}

	data, err := encodeTranscripts(sessions)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(te.config.ExportDir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create export directory: %w", err)
	}

	// runs within the same second (scheduled and manual) must not share a file
	filename := fmt.Sprintf("transcripts_export_%s_%s.jsonl", now.Format("20060102_150405"), uuid.NewString()[:8])
	path := filepath.Join(te.config.ExportDir, filename)
	if err := writeNewFile(path, data); err != nil {
		return 0, fmt.Errorf("failed to write export file: %w", err)
	}

	for _, s := range sessions {
		if err := te.source.RecordExport(ctx, s.ID, filename, now); err != nil {
			return 0, fmt.Errorf("failed to record export for session %s: %w", s.ID, err)
		}
	}

	metrics.TranscriptsExported(len(sessions))
	te.logger.Info("exported transcripts",
		zap.Int("sessions", len(sessions)),
		zap.String("file", path),
	)
	return len(sessions), nil
}

// RunManual runs an export on demand.
func (te *TranscriptExporter) RunManual(ctx context.Context) (int, error) {
	return te.RunExport(ctx)
}

// writeNewFile fails if path already exists.
func writeNewFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func encodeTranscripts(sessions []models.InterviewSession) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, s := range sessions {
		if err := enc.Encode(toRecord(s)); err != nil {
			return nil, fmt.Errorf("failed to encode transcript %s: %w", s.ID, err)
		}
	}
	return buf.Bytes(), nil
}

// toRecord keeps answered turns only; a question left pending at the deadline was never answered.
func toRecord(s models.InterviewSession) models.TranscriptRecord {
	record := models.TranscriptRecord{
		ApplicationID: s.ApplicationID,
		SessionID:     s.ID,
		JobTitle:      s.Application.Job.Title,
		Turns:         []models.TranscriptTurn{},
	}
	if s.StartTime != nil {
		record.StartedAt = s.StartTime.UTC()
	}
	for _, q := range s.QnAs {
		if q.IsPending() {
			continue
		}
		record.Turns = append(record.Turns, models.TranscriptTurn{Question: q.Question, Answer: q.Answer})
	}
	return record
}

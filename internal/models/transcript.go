package models

import "time"

// TranscriptRecord is one line of a JSONL transcript export.
type TranscriptRecord struct {
	ApplicationID string           `json:"application_id"`
	SessionID     string           `json:"session_id"`
	JobTitle      string           `json:"job_title"`
	StartedAt     time.Time        `json:"started_at"`
	Turns         []TranscriptTurn `json:"turns"`
}

// TranscriptTurn is a single answered question.
type TranscriptTurn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

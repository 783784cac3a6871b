package store

import (
	"context"
	"time"
)

// EventWriter defines persistence for render and validation events.
type EventWriter interface {
	SaveRender(ctx context.Context, rec *RenderRecord) error
	SaveValidation(ctx context.Context, rec *ValidationRecord) error
}

// EventReader defines read access to recorded history.
type EventReader interface {
	ListRenders(ctx context.Context, filter HistoryFilter) ([]*RenderRecord, error)
	ListValidations(ctx context.Context, filter HistoryFilter) ([]*ValidationRecord, error)
}

// Store defines persistence for pack usage history.
type Store interface {
	EventWriter
	EventReader
	Close() error
}

// RenderRecord stores one prompt resolution event.
type RenderRecord struct {
	ID          string
	PackID      string
	PackVersion string
	PromptName  string
	Model       string
	Strict      bool
	Variables   map[string]any // Resolved variable mapping
	OutputChars int
	DurationMs  int64
	CreatedAt   time.Time
}

// ValidationRecord stores one guardrail batch outcome.
type ValidationRecord struct {
	ID           string
	PackID       string
	PromptName   string
	ContentChars int
	IsValid      bool
	Blocking     bool
	Violations   []ViolationRecord // JSON serialized
	CreatedAt    time.Time
}

// ViolationRecord is a persisted guardrail violation.
type ViolationRecord struct {
	ValidatorType   string `json:"validator_type"`
	Message         string `json:"message"`
	FailOnViolation bool   `json:"fail_on_violation"`
}

// HistoryFilter filters history listings.
type HistoryFilter struct {
	PackID     string
	PromptName string
	Since      time.Time
	Limit      int
}

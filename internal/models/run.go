package models

import "time"

// Run statuses, in lifecycle order.
const (
	RunStatusQueued  = "queued"
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
)

// TrackingRun is one execution of the tracker for a single spec number.
type TrackingRun struct {
	ID         int64      `json:"id"`
	SpecNumber string     `json:"spec_number"`
	Status     string     `json:"status"`
	Progress   int        `json:"progress"` // 0..100
	Message    string     `json:"message"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

package models

import "time"

// Subscription marks a spec number that is re-tracked on a schedule.
type Subscription struct {
	ID            int64      `json:"id"`
	SpecNumber    string     `json:"spec_number"`
	CreatedAt     time.Time  `json:"created_at"`
	LastCheckedAt *time.Time `json:"last_checked_at,omitempty"`
}

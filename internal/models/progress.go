package models

type ProgressUpdate struct {
	RunID      int64   `json:"run_id"`
	SpecNumber string  `json:"spec_number"`
	Message    string  `json:"message"`
	Progress   float64 `json:"progress"`
	Status     string  `json:"status"` // e.g. "running", "success", "failed"
	Done       bool    `json:"done"`
}

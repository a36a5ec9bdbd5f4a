package models

import "time"

// Run statuses
const (
	RunSucceeded = "succeeded"
	RunFailed    = "failed"
	// RunSkipped extraction returned no rows and nothing was written
	RunSkipped = "skipped"
)

// RunSummary outcome of one export run, published to the notifiers
type RunSummary struct {
	RunID      string    `json:"run_id"`
	Trigger    string    `json:"trigger"`
	Status     string    `json:"status"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Events      int `json:"events"`
	Categories  int `json:"categories"`
	Offices     int `json:"offices"`
	Subsystems  int `json:"subsystems"`
	Suggestions int `json:"suggestions"`

	DataDir string `json:"data_dir"`
	Error   string `json:"error,omitempty"`
}

// Duration returns the wall time of the run
func (s *RunSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

package domain

import "time"

// Run kinds reported in a RunSummary.
const (
	RunKindProfile = "profile"
	RunKindGrid    = "grid"
)

// RunSummary describes a finished multi-request run.
type RunSummary struct {
	Kind       string    `json:"kind"`
	Name       string    `json:"name"`
	Total      int       `json:"total"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	Output     string    `json:"output,omitempty"`
	Files      []string  `json:"files,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Duration returns how long the run took.
func (s RunSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

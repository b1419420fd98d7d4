package http

import (
	"context"
	"sync"

	"github.com/couchcryptid/nespreso-client/internal/domain"
)

// DefaultRunLogSize is the number of summaries kept when NewRunLog gets a
// non-positive size.
const DefaultRunLogSize = 20

// RunLog keeps the most recent run summaries in memory for the /runs route.
// It implements pipeline.SummaryPublisher.
type RunLog struct {
	mu   sync.Mutex
	runs []domain.RunSummary
	size int
}

// NewRunLog creates a RunLog holding at most size summaries.
func NewRunLog(size int) *RunLog {
	if size <= 0 {
		size = DefaultRunLogSize
	}
	return &RunLog{size: size}
}

// PublishSummary records s, evicting the oldest summary when full.
func (l *RunLog) PublishSummary(_ context.Context, s domain.RunSummary) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.runs = append(l.runs, s)
	if len(l.runs) > l.size {
		l.runs = l.runs[len(l.runs)-l.size:]
	}
	return nil
}

// Recent returns a copy of the recorded summaries, newest first.
func (l *RunLog) Recent() []domain.RunSummary {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.RunSummary, len(l.runs))
	for i, s := range l.runs {
		out[len(l.runs)-1-i] = s
	}
	return out
}

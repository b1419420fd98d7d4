package pipeline

import (
	"context"
	"errors"

	"github.com/couchcryptid/nespreso-client/internal/domain"
)

// Publishers fans a summary out to every publisher it holds. Every publisher
// is attempted; their errors are joined.
type Publishers []SummaryPublisher

// PublishSummary implements SummaryPublisher.
func (ps Publishers) PublishSummary(ctx context.Context, s domain.RunSummary) error {
	var errs []error
	for _, p := range ps {
		if err := p.PublishSummary(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

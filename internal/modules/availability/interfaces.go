package availability

import (
	"context"

	"parkshare/internal/domain"
	"parkshare/internal/pkg/timerange"
)

// BlockReader is the read access to blocked periods the checker needs.
// Non-recurring and recurring blocks come from two explicit queries
// and are combined here, in memory.
type BlockReader interface {
	ListNonRecurringOverlapping(ctx context.Context, placeID int64, q timerange.Range) ([]domain.BlockedPeriod, error)
	ListRecurring(ctx context.Context, placeID int64) ([]domain.BlockedPeriod, error)
}

type PlaceReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Place, error)
}

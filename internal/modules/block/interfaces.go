package block

import (
	"context"

	"parkshare/internal/domain"
	"parkshare/internal/pkg/timerange"
)

type BlockRepository interface {
	Create(ctx context.Context, b *domain.BlockedPeriod) error
	GetByID(ctx context.Context, id int64) (*domain.BlockedPeriod, error)
	Update(ctx context.Context, b *domain.BlockedPeriod) error
	Delete(ctx context.Context, id int64) error
	ListForPlace(ctx context.Context, placeID int64) ([]domain.BlockedPeriod, error)
	ListNonRecurringOverlapping(ctx context.Context, placeID int64, q timerange.Range) ([]domain.BlockedPeriod, error)
	ListRecurring(ctx context.Context, placeID int64) ([]domain.BlockedPeriod, error)
	ListMergeCandidates(ctx context.Context, placeID int64, q timerange.Range) ([]domain.BlockedPeriod, error)
	ReplaceOverlapping(ctx context.Context, deleteIDs []int64, b *domain.BlockedPeriod) error
}

// BookingGuard answers "does an active booking overlap this range?".
// Bookings always win: a manual block may never cover a live booking.
type BookingGuard interface {
	HasOverlapping(ctx context.Context, placeID int64, q timerange.Range, excludeID int64) (bool, error)
}

type PlaceReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Place, error)
}

type EventPublisher interface {
	Publish(placeID int64, eventType string, payload any)
}

package booking

import (
	"context"
	"time"

	"parkshare/internal/domain"
	"parkshare/internal/pkg/timerange"
	"parkshare/internal/repository"
)

type BookingRepository interface {
	CreateWithBlock(ctx context.Context, b *domain.Booking, blockReason string) error
	SaveWithBlock(ctx context.Context, b *domain.Booking, blockReason string) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	HasOverlapping(ctx context.Context, placeID int64, q timerange.Range, excludeID int64) (bool, error)
	ListForUser(ctx context.Context, userID int64, f repository.BookingFilter) ([]domain.Booking, error)
	ListForPlace(ctx context.Context, placeID int64, f repository.BookingFilter) ([]domain.Booking, error)
}

// AvailabilityChecker is the availability module's contract: bookings
// are only created when it approves.
type AvailabilityChecker interface {
	IsAvailable(ctx context.Context, placeID int64, start, end time.Time) (bool, string, error)
}

// BlockReader supplies block state for re-validating time edits, where
// the booking's own derived block has to be ignored.
type BlockReader interface {
	ListNonRecurringOverlapping(ctx context.Context, placeID int64, q timerange.Range) ([]domain.BlockedPeriod, error)
	ListRecurring(ctx context.Context, placeID int64) ([]domain.BlockedPeriod, error)
}

type PlaceReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Place, error)
}

type UserReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type EventPublisher interface {
	Publish(placeID int64, eventType string, payload any)
}

package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"parkshare/internal/domain"
	"parkshare/internal/pkg/timerange"
	"parkshare/internal/repository"
)

type Service struct {
	bookings BookingRepository
	blocks   BlockReader
	places   PlaceReader
	users    UserReader
	avail    AvailabilityChecker
	events   EventPublisher

	now func() time.Time
}

func NewService(bookings BookingRepository, blocks BlockReader, places PlaceReader, users UserReader, avail AvailabilityChecker, events EventPublisher) *Service {
	return &Service{
		bookings: bookings,
		blocks:   blocks,
		places:   places,
		users:    users,
		avail:    avail,
		events:   events,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type CreateBookingInput struct {
	PlaceID   int64
	StartTime time.Time
	EndTime   time.Time
}

// CreateBooking books the place for [start, end) if the availability
// checker approves. The booking and its derived block are written in
// one transaction; a concurrent writer that slips past the check is
// caught by the database constraint and reported as ErrOverbooking.
func (s *Service) CreateBooking(ctx context.Context, userID int64, in CreateBookingInput) (*domain.Booking, error) {
	place, err := s.places.GetByID(ctx, in.PlaceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlaceNotFound
		}
		return nil, err
	}

	q, err := timerange.New(in.StartTime, in.EndTime)
	if err != nil {
		return nil, ErrValidation
	}

	ok, reason, err := s.avail.IsAvailable(ctx, in.PlaceID, q.Start, q.End)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &NotAvailableError{Reason: reason}
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	b := &domain.Booking{
		PlaceID:         in.PlaceID,
		UserID:          userID,
		StartTime:       q.Start,
		EndTime:         q.End,
		Status:          domain.BookingPending,
		TotalPriceCents: place.PriceFor(q),
	}

	if err := s.bookings.CreateWithBlock(ctx, b, blockReason(user)); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && (pgErr.Code == "23505" || pgErr.Code == "23P01") {
			return nil, ErrOverbooking
		}
		return nil, err
	}

	s.publish(b.PlaceID, "booking_created", b)
	return b, nil
}

// Confirm moves a pending booking to confirmed.
func (s *Service) Confirm(ctx context.Context, actorID, bookingID int64) (*domain.Booking, error) {
	b, err := s.getAuthorized(ctx, actorID, bookingID)
	if err != nil {
		return nil, err
	}

	if b.Status != domain.BookingPending {
		return nil, &TransitionError{Message: fmt.Sprintf("Cannot confirm booking with status '%s'", b.Status.Display())}
	}

	b.Status = domain.BookingConfirmed
	if err := s.save(ctx, b); err != nil {
		return nil, err
	}
	s.publish(b.PlaceID, "booking_confirmed", b)
	return b, nil
}

// Cancel cancels an active booking, at least 24 hours before start.
// The derived block is deleted in the same transaction.
func (s *Service) Cancel(ctx context.Context, actorID, bookingID int64) (*domain.Booking, error) {
	b, err := s.getAuthorized(ctx, actorID, bookingID)
	if err != nil {
		return nil, err
	}

	if b.Status == domain.BookingCancelled {
		return nil, &TransitionError{Message: "Booking is already cancelled"}
	}
	if !b.CanBeCancelled(s.now()) {
		return nil, &TransitionError{Message: "Booking cannot be cancelled at this time"}
	}

	b.Status = domain.BookingCancelled
	if err := s.save(ctx, b); err != nil {
		return nil, err
	}
	s.publish(b.PlaceID, "booking_cancelled", b)
	return b, nil
}

// Complete marks the booking completed and releases its block.
func (s *Service) Complete(ctx context.Context, actorID, bookingID int64) (*domain.Booking, error) {
	b, err := s.getAuthorized(ctx, actorID, bookingID)
	if err != nil {
		return nil, err
	}

	if b.Status == domain.BookingCompleted {
		return nil, &TransitionError{Message: "Booking is already completed"}
	}
	if b.Status == domain.BookingCancelled {
		return nil, &TransitionError{Message: "Cannot complete a cancelled booking"}
	}

	b.Status = domain.BookingCompleted
	if err := s.save(ctx, b); err != nil {
		return nil, err
	}
	s.publish(b.PlaceID, "booking_completed", b)
	return b, nil
}

// UpdateStatus dispatches a requested status to the matching
// transition.
func (s *Service) UpdateStatus(ctx context.Context, actorID, bookingID int64, newStatus domain.BookingStatus) (*domain.Booking, error) {
	if !newStatus.Valid() {
		return nil, &TransitionError{Message: fmt.Sprintf("Invalid status: %s", newStatus)}
	}

	b, err := s.getAuthorized(ctx, actorID, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status == newStatus {
		return nil, &TransitionError{Message: fmt.Sprintf("Booking is already %s", b.Status.Display())}
	}

	switch newStatus {
	case domain.BookingConfirmed:
		return s.Confirm(ctx, actorID, bookingID)
	case domain.BookingCancelled:
		return s.Cancel(ctx, actorID, bookingID)
	case domain.BookingCompleted:
		return s.Complete(ctx, actorID, bookingID)
	default:
		return nil, &TransitionError{Message: fmt.Sprintf("Cannot change booking status to '%s'", newStatus.Display())}
	}
}

type UpdateTimesInput struct {
	StartTime time.Time
	EndTime   time.Time
}

// UpdateTimes moves an active booking to a new interval. The new
// interval is re-validated against other bookings and blocks; the
// booking's own derived block is excluded from the check, price is
// recomputed, and the block is re-synchronized.
func (s *Service) UpdateTimes(ctx context.Context, actorID, bookingID int64, in UpdateTimesInput) (*domain.Booking, error) {
	b, err := s.getAuthorized(ctx, actorID, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.IsActive() {
		return nil, &TransitionError{Message: fmt.Sprintf("Cannot reschedule booking with status '%s'", b.Status.Display())}
	}

	q, err := timerange.New(in.StartTime, in.EndTime)
	if err != nil {
		return nil, ErrValidation
	}

	if reason, blocked, err := s.conflictExcludingSelf(ctx, b, q); err != nil {
		return nil, err
	} else if blocked {
		return nil, &NotAvailableError{Reason: reason}
	}

	place, err := s.places.GetByID(ctx, b.PlaceID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, b.UserID)
	if err != nil {
		return nil, err
	}

	b.StartTime = q.Start
	b.EndTime = q.End
	b.TotalPriceCents = place.PriceFor(q)
	if err := s.bookings.SaveWithBlock(ctx, b, blockReason(user)); err != nil {
		return nil, err
	}
	s.publish(b.PlaceID, "booking_rescheduled", b)
	return b, nil
}

// conflictExcludingSelf runs the availability rules against q but
// ignores the booking's own rows.
func (s *Service) conflictExcludingSelf(ctx context.Context, b *domain.Booking, q timerange.Range) (string, bool, error) {
	overlapping, err := s.bookings.HasOverlapping(ctx, b.PlaceID, q, b.ID)
	if err != nil {
		return "", false, err
	}
	if overlapping {
		return "Space is unavailable: Booking", true, nil
	}

	blocks, err := s.blocks.ListNonRecurringOverlapping(ctx, b.PlaceID, q)
	if err != nil {
		return "", false, err
	}
	for i := range blocks {
		if blocks[i].BookingID != nil && *blocks[i].BookingID == b.ID {
			continue
		}
		return "Space is unavailable: " + blocks[i].ReasonOrLabel(), true, nil
	}

	recurring, err := s.blocks.ListRecurring(ctx, b.PlaceID)
	if err != nil {
		return "", false, err
	}
	for i := range recurring {
		if recurring[i].ActiveDuring(q) {
			return "Space is unavailable due to recurring block: " + recurring[i].ReasonOrLabel(), true, nil
		}
	}

	return "", false, nil
}

func (s *Service) GetBooking(ctx context.Context, actorID, bookingID int64) (*domain.Booking, error) {
	return s.getAuthorized(ctx, actorID, bookingID)
}

func (s *Service) MyBookings(ctx context.Context, userID int64, f repository.BookingFilter) ([]domain.Booking, error) {
	return s.bookings.ListForUser(ctx, userID, f)
}

// PlaceBookings lists a place's bookings for its owner.
func (s *Service) PlaceBookings(ctx context.Context, actorID, placeID int64, f repository.BookingFilter) ([]domain.Booking, error) {
	place, err := s.places.GetByID(ctx, placeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlaceNotFound
		}
		return nil, err
	}
	if place.OwnerID != actorID {
		return nil, ErrForbidden
	}
	return s.bookings.ListForPlace(ctx, placeID, f)
}

// getAuthorized loads the booking and verifies the actor is the
// booker or the place owner.
func (s *Service) getAuthorized(ctx context.Context, actorID, bookingID int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if b.UserID == actorID {
		return b, nil
	}
	place, err := s.places.GetByID(ctx, b.PlaceID)
	if err != nil {
		return nil, err
	}
	if place.OwnerID != actorID {
		return nil, ErrForbidden
	}
	return b, nil
}

func (s *Service) save(ctx context.Context, b *domain.Booking) error {
	// Inactive statuses delete the derived block, so no reason is
	// needed; active saves go through paths that supply one.
	return s.bookings.SaveWithBlock(ctx, b, "")
}

func blockReason(u *domain.User) string {
	return fmt.Sprintf("Booked by %s", u.Email)
}

func (s *Service) publish(placeID int64, eventType string, payload any) {
	if s.events != nil {
		s.events.Publish(placeID, eventType, payload)
	}
}

package block

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parkshare/internal/domain"
	"parkshare/internal/pkg/timerange"
	"parkshare/internal/repository"
)

type Service struct {
	blocks   BlockRepository
	bookings BookingGuard
	places   PlaceReader
	events   EventPublisher
}

func NewService(blocks BlockRepository, bookings BookingGuard, places PlaceReader, events EventPublisher) *Service {
	return &Service{blocks: blocks, bookings: bookings, places: places, events: events}
}

// CreateBlockInput is the typed, parsed form of a block-create call.
type CreateBlockInput struct {
	PlaceID          int64
	Start            time.Time
	End              time.Time
	BlockType        domain.BlockType
	Reason           string
	IsRecurring      bool
	RecurringPattern domain.RecurringPattern
	RecurringEndDate *time.Time
}

// CreateBlock creates a blocked period for the owner's place, merging
// it with any overlapping or touching manual blocks.
//
// Order matters: bookings are checked first and always win; then
// containment short-circuits without a write; then overlapping blocks
// are absorbed into one row covering the union, atomically.
func (s *Service) CreateBlock(ctx context.Context, userID int64, in CreateBlockInput) (*domain.BlockedPeriod, *MergeOutcome, error) {
	place, err := s.places.GetByID(ctx, in.PlaceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrPlaceNotFound
		}
		return nil, nil, err
	}
	if place.OwnerID != userID {
		return nil, nil, ErrPlaceNotFound
	}

	q, err := timerange.New(in.Start, in.End)
	if err != nil {
		return nil, nil, ErrInvalidRange
	}

	if in.BlockType == "" {
		in.BlockType = domain.BlockOwner
	}
	if !in.BlockType.Valid() {
		return nil, nil, ErrValidation
	}
	if in.IsRecurring && !in.RecurringPattern.Valid() {
		return nil, nil, ErrMissingPattern
	}

	conflict, err := s.bookings.HasOverlapping(ctx, in.PlaceID, q, 0)
	if err != nil {
		return nil, nil, err
	}
	if conflict {
		return nil, nil, ErrBookingConflict
	}

	nb := &domain.BlockedPeriod{
		PlaceID:          in.PlaceID,
		StartDatetime:    q.Start,
		EndDatetime:      q.End,
		BlockType:        in.BlockType,
		Reason:           in.Reason,
		IsRecurring:      in.IsRecurring,
		RecurringPattern: in.RecurringPattern,
		RecurringEndDate: in.RecurringEndDate,
	}

	// Recurring blocks never participate in merging; the merge
	// algebra is defined over concrete date ranges only.
	if in.IsRecurring {
		if err := s.blocks.Create(ctx, nb); err != nil {
			return nil, nil, err
		}
		s.publish(in.PlaceID, "block_created", nb)
		return nb, &MergeOutcome{Message: "Block created successfully"}, nil
	}

	candidates, err := s.blocks.ListMergeCandidates(ctx, in.PlaceID, q)
	if err != nil {
		return nil, nil, err
	}

	for i := range candidates {
		if candidates[i].Range().Contains(q) {
			return &candidates[i], &MergeOutcome{
				Contained: true,
				Message:   "This time period is already blocked",
			}, nil
		}
	}

	if len(candidates) > 0 {
		union := q
		deletedIDs := make([]int64, 0, len(candidates))
		reasons := make([]string, 0, len(candidates)+1)
		for i := range candidates {
			union = union.Union(candidates[i].Range())
			deletedIDs = append(deletedIDs, candidates[i].ID)
			if candidates[i].Reason != "" {
				reasons = append(reasons, candidates[i].Reason)
			}
		}
		if in.Reason != "" {
			reasons = append(reasons, in.Reason)
		}

		nb.StartDatetime = union.Start
		nb.EndDatetime = union.End
		nb.Reason = joinReasons(reasons)

		if err := s.blocks.ReplaceOverlapping(ctx, deletedIDs, nb); err != nil {
			return nil, nil, err
		}
		s.publish(in.PlaceID, "block_created", nb)
		return nb, &MergeOutcome{
			Merged:     true,
			DeletedIDs: deletedIDs,
			Message:    fmt.Sprintf("Merged with %d existing block(s)", len(deletedIDs)),
		}, nil
	}

	if err := s.blocks.Create(ctx, nb); err != nil {
		return nil, nil, err
	}
	s.publish(in.PlaceID, "block_created", nb)
	return nb, &MergeOutcome{Message: "Block created successfully"}, nil
}

// joinReasons concatenates non-empty reasons verbatim; no
// deduplication.
func joinReasons(reasons []string) string {
	out := ""
	for _, r := range reasons {
		if out != "" {
			out += "; "
		}
		out += r
	}
	return out
}

// ListBlocks returns the blocks of a place the caller owns. With a
// date range it returns non-recurring blocks overlapping the range
// plus every recurring block, combined from two explicit queries.
func (s *Service) ListBlocks(ctx context.Context, userID, placeID int64, rng *timerange.Range) ([]domain.BlockedPeriod, error) {
	place, err := s.places.GetByID(ctx, placeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlaceNotFound
		}
		return nil, err
	}
	if place.OwnerID != userID {
		return nil, ErrForbidden
	}

	if rng == nil {
		return s.blocks.ListForPlace(ctx, placeID)
	}

	nonRecurring, err := s.blocks.ListNonRecurringOverlapping(ctx, placeID, *rng)
	if err != nil {
		return nil, err
	}
	recurring, err := s.blocks.ListRecurring(ctx, placeID)
	if err != nil {
		return nil, err
	}
	return append(nonRecurring, recurring...), nil
}

func (s *Service) GetBlock(ctx context.Context, userID, id int64) (*domain.BlockedPeriod, error) {
	return s.getModifiable(ctx, userID, id)
}

type UpdateBlockInput struct {
	Start  *time.Time
	End    *time.Time
	Reason *string
}

// UpdateBlock changes a manual block's interval or reason. Interval
// changes are re-checked against active bookings.
func (s *Service) UpdateBlock(ctx context.Context, userID, id int64, in UpdateBlockInput) (*domain.BlockedPeriod, error) {
	b, err := s.getModifiable(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.Start != nil || in.End != nil {
		start := b.StartDatetime
		end := b.EndDatetime
		if in.Start != nil {
			start = *in.Start
		}
		if in.End != nil {
			end = *in.End
		}
		q, err := timerange.New(start, end)
		if err != nil {
			return nil, ErrInvalidRange
		}

		conflict, err := s.bookings.HasOverlapping(ctx, b.PlaceID, q, 0)
		if err != nil {
			return nil, err
		}
		if conflict {
			return nil, ErrBookingConflict
		}
		b.StartDatetime = q.Start
		b.EndDatetime = q.End
	}

	if in.Reason != nil {
		b.Reason = *in.Reason
	}

	if err := s.blocks.Update(ctx, b); err != nil {
		return nil, err
	}
	s.publish(b.PlaceID, "block_updated", b)
	return b, nil
}

// DeleteBlock removes a manual block. Booking-derived blocks are
// refused: they go away only when their booking is cancelled or
// completed.
func (s *Service) DeleteBlock(ctx context.Context, userID, id int64) error {
	b, err := s.getModifiable(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.blocks.Delete(ctx, b.ID); err != nil {
		return err
	}
	s.publish(b.PlaceID, "block_deleted", b)
	return nil
}

func (s *Service) getModifiable(ctx context.Context, userID, id int64) (*domain.BlockedPeriod, error) {
	b, err := s.blocks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if b.IsBookingBlock() {
		return nil, ErrBookingManaged
	}
	place, err := s.places.GetByID(ctx, b.PlaceID)
	if err != nil {
		return nil, err
	}
	if place.OwnerID != userID {
		return nil, ErrForbidden
	}
	return b, nil
}

func (s *Service) publish(placeID int64, eventType string, payload any) {
	if s.events != nil {
		s.events.Publish(placeID, eventType, payload)
	}
}

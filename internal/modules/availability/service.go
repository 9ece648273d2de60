package availability

import (
	"context"
	"errors"
	"sort"
	"time"

	"parkshare/internal/pkg/timerange"
	"parkshare/internal/repository"
)

type Service struct {
	blocks BlockReader
	places PlaceReader
}

func NewService(blocks BlockReader, places PlaceReader) *Service {
	return &Service{blocks: blocks, places: places}
}

const (
	msgInvalidRange = "End time must be after start time"

	reasonPrefix          = "Space is unavailable: "
	recurringReasonPrefix = "Space is unavailable due to recurring block: "
)

// IsAvailable decides whether the place is free over [start, end).
// When it is not, the returned reason names the blocking period. A
// pure read: calling it twice with no intervening writes yields the
// same answer.
func (s *Service) IsAvailable(ctx context.Context, placeID int64, start, end time.Time) (bool, string, error) {
	q, err := timerange.New(start, end)
	if err != nil {
		return false, msgInvalidRange, nil
	}

	// Non-recurring blocks first. Strict overlap: a query starting
	// exactly when a block ends is not blocked by it.
	blocks, err := s.blocks.ListNonRecurringOverlapping(ctx, placeID, q)
	if err != nil {
		return false, "", err
	}
	if len(blocks) > 0 {
		return false, reasonPrefix + blocks[0].ReasonOrLabel(), nil
	}

	recurring, err := s.blocks.ListRecurring(ctx, placeID)
	if err != nil {
		return false, "", err
	}
	for i := range recurring {
		if recurring[i].ActiveDuring(q) {
			return false, recurringReasonPrefix + recurring[i].ReasonOrLabel(), nil
		}
	}

	return true, "", nil
}

// AvailableSlots partitions the calendar day of date into the free
// sub-intervals left between the place's blocks. Recurring blocks are
// expanded for the target date and subtracted as well.
func (s *Service) AvailableSlots(ctx context.Context, placeID int64, date time.Time) ([]timerange.Range, error) {
	if _, err := s.places.GetByID(ctx, placeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlaceNotFound
		}
		return nil, err
	}

	day := timerange.Day(date)

	blocks, err := s.blocks.ListNonRecurringOverlapping(ctx, placeID, day)
	if err != nil {
		return nil, err
	}
	busy := make([]timerange.Range, 0, len(blocks))
	for i := range blocks {
		busy = append(busy, blocks[i].Range())
	}

	recurring, err := s.blocks.ListRecurring(ctx, placeID)
	if err != nil {
		return nil, err
	}
	for i := range recurring {
		if occ, ok := recurring[i].AppliesOn(day.Start); ok && occ.Overlaps(day) {
			busy = append(busy, occ)
		}
	}

	sort.Slice(busy, func(i, j int) bool { return busy[i].Start.Before(busy[j].Start) })

	free := []timerange.Range{day}
	for _, b := range busy {
		next := make([]timerange.Range, 0, len(free))
		for _, f := range free {
			next = append(next, f.Subtract(b)...)
		}
		free = next
	}
	return free, nil
}

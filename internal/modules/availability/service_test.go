package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"parkshare/internal/domain"
	"parkshare/internal/pkg/timerange"
	"parkshare/internal/repository"
)

type MockBlockReader struct {
	mock.Mock
}

func (m *MockBlockReader) ListNonRecurringOverlapping(ctx context.Context, placeID int64, q timerange.Range) ([]domain.BlockedPeriod, error) {
	args := m.Called(ctx, placeID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BlockedPeriod), args.Error(1)
}

func (m *MockBlockReader) ListRecurring(ctx context.Context, placeID int64) ([]domain.BlockedPeriod, error) {
	args := m.Called(ctx, placeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BlockedPeriod), args.Error(1)
}

type MockPlaceReader struct {
	mock.Mock
}

func (m *MockPlaceReader) GetByID(ctx context.Context, id int64) (*domain.Place, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Place), args.Error(1)
}

func TestService_IsAvailable_FreePlace(t *testing.T) {
	blocks := new(MockBlockReader)
	places := new(MockPlaceReader)
	blocks.On("ListNonRecurringOverlapping", mock.Anything, int64(1), mock.Anything).Return([]domain.BlockedPeriod{}, nil)
	blocks.On("ListRecurring", mock.Anything, int64(1)).Return([]domain.BlockedPeriod{}, nil)

	service := NewService(blocks, places)

	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	ok, reason, err := service.IsAvailable(context.Background(), 1, start, start.Add(2*time.Hour))

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, reason)
}

func TestService_IsAvailable_InvalidRange(t *testing.T) {
	service := NewService(new(MockBlockReader), new(MockPlaceReader))

	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	ok, reason, err := service.IsAvailable(context.Background(), 1, at, at)

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "End time must be after start time", reason)
}

func TestService_IsAvailable_BlockedWithReason(t *testing.T) {
	blocks := new(MockBlockReader)
	blocks.On("ListNonRecurringOverlapping", mock.Anything, int64(1), mock.Anything).Return([]domain.BlockedPeriod{
		{ID: 7, BlockType: domain.BlockMaintenance, Reason: "Repaving"},
	}, nil)

	service := NewService(blocks, new(MockPlaceReader))

	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	ok, reason, err := service.IsAvailable(context.Background(), 1, start, start.Add(time.Hour))

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "Space is unavailable: Repaving", reason)
}

func TestService_IsAvailable_RecurringBlock(t *testing.T) {
	// 2026-03-09 is a Monday; query hits the following Monday morning.
	blocks := new(MockBlockReader)
	blocks.On("ListNonRecurringOverlapping", mock.Anything, int64(1), mock.Anything).Return([]domain.BlockedPeriod{}, nil)
	blocks.On("ListRecurring", mock.Anything, int64(1)).Return([]domain.BlockedPeriod{
		{
			StartDatetime:    time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC),
			EndDatetime:      time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC),
			BlockType:        domain.BlockOwner,
			IsRecurring:      true,
			RecurringPattern: domain.RecurWeekly,
		},
	}, nil)

	service := NewService(blocks, new(MockPlaceReader))

	start := time.Date(2026, 3, 16, 9, 30, 0, 0, time.UTC)
	ok, reason, err := service.IsAvailable(context.Background(), 1, start, start.Add(time.Hour))

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "Space is unavailable due to recurring block: Owner Block", reason)

	// idempotent: asking again gives the same answer
	ok2, reason2, err := service.IsAvailable(context.Background(), 1, start, start.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, ok, ok2)
	assert.Equal(t, reason, reason2)
}

func TestService_AvailableSlots_PartitionsDay(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	blocks := new(MockBlockReader)
	places := new(MockPlaceReader)
	places.On("GetByID", mock.Anything, int64(1)).Return(&domain.Place{ID: 1}, nil)
	blocks.On("ListNonRecurringOverlapping", mock.Anything, int64(1), mock.Anything).Return([]domain.BlockedPeriod{
		{StartDatetime: day.Add(9 * time.Hour), EndDatetime: day.Add(10 * time.Hour), BlockType: domain.BlockOwner},
	}, nil)
	blocks.On("ListRecurring", mock.Anything, int64(1)).Return([]domain.BlockedPeriod{}, nil)

	service := NewService(blocks, places)

	slots, err := service.AvailableSlots(context.Background(), 1, day)
	require.NoError(t, err)

	require.Len(t, slots, 2)
	assert.Equal(t, timerange.Range{Start: day, End: day.Add(9 * time.Hour)}, slots[0])
	assert.Equal(t, timerange.Range{Start: day.Add(10 * time.Hour), End: day.Add(24 * time.Hour)}, slots[1])
}

func TestService_AvailableSlots_SubtractsRecurringOccurrence(t *testing.T) {
	day := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC) // Monday

	blocks := new(MockBlockReader)
	places := new(MockPlaceReader)
	places.On("GetByID", mock.Anything, int64(1)).Return(&domain.Place{ID: 1}, nil)
	blocks.On("ListNonRecurringOverlapping", mock.Anything, int64(1), mock.Anything).Return([]domain.BlockedPeriod{}, nil)
	blocks.On("ListRecurring", mock.Anything, int64(1)).Return([]domain.BlockedPeriod{
		{
			StartDatetime:    time.Date(2026, 3, 9, 18, 0, 0, 0, time.UTC),
			EndDatetime:      time.Date(2026, 3, 9, 20, 0, 0, 0, time.UTC),
			BlockType:        domain.BlockOwner,
			IsRecurring:      true,
			RecurringPattern: domain.RecurWeekly,
		},
	}, nil)

	service := NewService(blocks, places)

	slots, err := service.AvailableSlots(context.Background(), 1, day)
	require.NoError(t, err)

	require.Len(t, slots, 2)
	assert.Equal(t, day.Add(18*time.Hour), slots[0].End)
	assert.Equal(t, day.Add(20*time.Hour), slots[1].Start)
}

func TestService_AvailableSlots_UnknownPlace(t *testing.T) {
	places := new(MockPlaceReader)
	places.On("GetByID", mock.Anything, int64(99)).Return(nil, repository.ErrNotFound)

	service := NewService(new(MockBlockReader), places)

	_, err := service.AvailableSlots(context.Background(), 99, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrPlaceNotFound)
}

func TestService_AvailableSlots_FullyBlockedDay(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	blocks := new(MockBlockReader)
	places := new(MockPlaceReader)
	places.On("GetByID", mock.Anything, int64(1)).Return(&domain.Place{ID: 1}, nil)
	blocks.On("ListNonRecurringOverlapping", mock.Anything, int64(1), mock.Anything).Return([]domain.BlockedPeriod{
		{StartDatetime: day.Add(-time.Hour), EndDatetime: day.Add(25 * time.Hour), BlockType: domain.BlockMaintenance},
	}, nil)
	blocks.On("ListRecurring", mock.Anything, int64(1)).Return([]domain.BlockedPeriod{}, nil)

	service := NewService(blocks, places)

	slots, err := service.AvailableSlots(context.Background(), 1, day)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

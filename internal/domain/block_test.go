package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkshare/internal/pkg/timerange"
)

// 2026-03-09 is a Monday.
func weeklyMondayBlock() *BlockedPeriod {
	return &BlockedPeriod{
		PlaceID:          1,
		StartDatetime:    time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC),
		EndDatetime:      time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC),
		BlockType:        BlockOwner,
		IsRecurring:      true,
		RecurringPattern: RecurWeekly,
	}
}

func TestAppliesOn_WeeklyMatchesAnchorWeekday(t *testing.T) {
	b := weeklyMondayBlock()

	// next Monday
	occ, ok := b.AppliesOn(time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 16, 9, 0, 0, 0, time.UTC), occ.Start)
	assert.Equal(t, time.Date(2026, 3, 16, 10, 0, 0, 0, time.UTC), occ.End)

	// Tuesday does not match
	_, ok = b.AppliesOn(time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}

func TestAppliesOn_RecurringEndDateStopsOccurrences(t *testing.T) {
	b := weeklyMondayBlock()
	end := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	b.RecurringEndDate = &end

	_, ok := b.AppliesOn(time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC))
	assert.True(t, ok)

	_, ok = b.AppliesOn(time.Date(2026, 3, 23, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}

func TestAppliesOn_WeekdaysAndWeekends(t *testing.T) {
	b := weeklyMondayBlock()
	b.RecurringPattern = RecurWeekdays

	_, ok := b.AppliesOn(time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC)) // Friday
	assert.True(t, ok)
	_, ok = b.AppliesOn(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)) // Saturday
	assert.False(t, ok)

	b.RecurringPattern = RecurWeekends
	_, ok = b.AppliesOn(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC))
	assert.True(t, ok)
	_, ok = b.AppliesOn(time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}

func TestActiveDuring_QuerySpanningMidnight(t *testing.T) {
	b := weeklyMondayBlock()

	// Sunday 23:00 through Monday 09:30 crosses into the occurrence
	q := timerange.Range{
		Start: time.Date(2026, 3, 15, 23, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 16, 9, 30, 0, 0, time.UTC),
	}
	assert.True(t, b.ActiveDuring(q))

	// the same span a day earlier touches no Monday occurrence
	q = timerange.Range{
		Start: time.Date(2026, 3, 14, 23, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC),
	}
	assert.False(t, b.ActiveDuring(q))

	// touching the occurrence start exactly is not an overlap
	q = timerange.Range{
		Start: time.Date(2026, 3, 16, 8, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 16, 9, 0, 0, 0, time.UTC),
	}
	assert.False(t, b.ActiveDuring(q))
}

func TestReasonOrLabel(t *testing.T) {
	b := &BlockedPeriod{BlockType: BlockMaintenance}
	assert.Equal(t, "Maintenance", b.ReasonOrLabel())

	b.Reason = "Repaving"
	assert.Equal(t, "Repaving", b.ReasonOrLabel())

	assert.Equal(t, "Owner Block", (&BlockedPeriod{BlockType: BlockOwner}).ReasonOrLabel())
	assert.Equal(t, "Booking", (&BlockedPeriod{BlockType: BlockBooking}).ReasonOrLabel())
}

package domain

import (
	"time"

	"parkshare/internal/pkg/timerange"
)

// BlockType tags why a period is blocked.
type BlockType string

const (
	BlockOwner       BlockType = "owner-block"
	BlockMaintenance BlockType = "maintenance"
	BlockBooking     BlockType = "booking"
)

// Label returns the human-readable form used in availability reasons.
func (t BlockType) Label() string {
	switch t {
	case BlockOwner:
		return "Owner Block"
	case BlockMaintenance:
		return "Maintenance"
	case BlockBooking:
		return "Booking"
	default:
		return string(t)
	}
}

func (t BlockType) Valid() bool {
	switch t {
	case BlockOwner, BlockMaintenance, BlockBooking:
		return true
	}
	return false
}

type RecurringPattern string

const (
	RecurDaily    RecurringPattern = "daily"
	RecurWeekly   RecurringPattern = "weekly"
	RecurWeekdays RecurringPattern = "weekdays"
	RecurWeekends RecurringPattern = "weekends"
)

func (p RecurringPattern) Valid() bool {
	switch p {
	case RecurDaily, RecurWeekly, RecurWeekdays, RecurWeekends:
		return true
	}
	return false
}

// BlockedPeriod marks [StartDatetime, EndDatetime) as unavailable for
// a place. Spaces are always available unless blocked.
//
// For a recurring block the stored datetimes supply only the
// time-of-day component (and, for the weekly pattern, the anchor
// weekday); the date component is not meaningful for future dates.
type BlockedPeriod struct {
	ID            int64     `json:"id"`
	PlaceID       int64     `json:"place_id" gorm:"not null;index"`
	StartDatetime time.Time `json:"start_datetime" gorm:"not null;index"`
	EndDatetime   time.Time `json:"end_datetime" gorm:"not null"`
	BlockType     BlockType `json:"block_type" gorm:"not null"`
	Reason        string    `json:"reason,omitempty"`

	// Set only for block_type=booking: the booking this block is
	// derived from.
	BookingID *int64 `json:"booking_id,omitempty" gorm:"uniqueIndex"`

	IsRecurring      bool             `json:"is_recurring"`
	RecurringPattern RecurringPattern `json:"recurring_pattern,omitempty"`
	RecurringEndDate *time.Time       `json:"recurring_end_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *BlockedPeriod) Range() timerange.Range {
	return timerange.Range{Start: b.StartDatetime, End: b.EndDatetime}
}

// IsBookingBlock reports whether this block is derived from a booking.
func (b *BlockedPeriod) IsBookingBlock() bool {
	return b.BlockType == BlockBooking && b.BookingID != nil
}

// ReasonOrLabel is the string surfaced to callers when this block
// makes a place unavailable.
func (b *BlockedPeriod) ReasonOrLabel() string {
	if b.Reason != "" {
		return b.Reason
	}
	return b.BlockType.Label()
}

// AppliesOn evaluates a recurring block against one concrete calendar
// date. When the pattern is active on that date it returns the
// occurrence, the block's time-of-day projected onto the date.
func (b *BlockedPeriod) AppliesOn(date time.Time) (timerange.Range, bool) {
	if !b.IsRecurring {
		return timerange.Range{}, false
	}
	if b.RecurringEndDate != nil && date.After(*b.RecurringEndDate) {
		return timerange.Range{}, false
	}

	wd := date.Weekday()
	active := false
	switch b.RecurringPattern {
	case RecurDaily:
		active = true
	case RecurWeekly:
		active = wd == b.StartDatetime.Weekday()
	case RecurWeekdays:
		active = wd >= time.Monday && wd <= time.Friday
	case RecurWeekends:
		active = wd == time.Saturday || wd == time.Sunday
	}
	if !active {
		return timerange.Range{}, false
	}

	start := combine(date, b.StartDatetime)
	end := combine(date, b.EndDatetime)
	return timerange.Range{Start: start, End: end}, true
}

// ActiveDuring reports whether a recurring block has an occurrence
// overlapping q. Every calendar date q touches is evaluated; one
// applicable overlapping date is enough.
func (b *BlockedPeriod) ActiveDuring(q timerange.Range) bool {
	hit := false
	q.EachDate(func(date time.Time) bool {
		occ, ok := b.AppliesOn(date)
		if ok && occ.Overlaps(q) {
			hit = true
		}
		return hit
	})
	return hit
}

func combine(date, timeOfDay time.Time) time.Time {
	t := timeOfDay.UTC()
	return time.Date(date.Year(), date.Month(), date.Day(),
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

package domain

import (
	"time"

	"parkshare/internal/pkg/timerange"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// Display is the capitalized human-readable form used in status
// transition messages.
func (s BookingStatus) Display() string {
	switch s {
	case BookingPending:
		return "Pending"
	case BookingConfirmed:
		return "Confirmed"
	case BookingCancelled:
		return "Cancelled"
	case BookingCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

// CancellationNotice is the minimum lead time before start for a
// booking to be cancellable.
const CancellationNotice = 24 * time.Hour

type Booking struct {
	ID              int64         `json:"id"`
	PlaceID         int64         `json:"place_id" gorm:"not null;index" validate:"required"`
	UserID          int64         `json:"user_id" gorm:"not null;index" validate:"required"`
	StartTime       time.Time     `json:"start_time" gorm:"not null" validate:"required"`
	EndTime         time.Time     `json:"end_time" gorm:"not null" validate:"required"`
	Status          BookingStatus `json:"status" gorm:"not null;index"`
	TotalPriceCents int64         `json:"total_price_cents"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

func (b *Booking) Range() timerange.Range {
	return timerange.Range{Start: b.StartTime, End: b.EndTime}
}

// IsActive reports whether the booking still occupies its slot. An
// active booking keeps exactly one derived BlockedPeriod alive.
func (b *Booking) IsActive() bool {
	return b.Status == BookingPending || b.Status == BookingConfirmed
}

func (b *Booking) IsUpcoming(now time.Time) bool {
	return b.StartTime.After(now)
}

func (b *Booking) IsInProgress(now time.Time) bool {
	return !b.StartTime.After(now) && b.EndTime.After(now)
}

func (b *Booking) IsPast(now time.Time) bool {
	return !b.EndTime.After(now)
}

func (b *Booking) CancellationDeadline() time.Time {
	return b.StartTime.Add(-CancellationNotice)
}

// CanBeCancelled: active bookings only, and only up to 24h before
// start.
func (b *Booking) CanBeCancelled(now time.Time) bool {
	if !b.IsActive() {
		return false
	}
	return now.Before(b.CancellationDeadline())
}

package booking

import (
	"time"

	"parkshare/internal/domain"
)

type CreateBookingRequest struct {
	PlaceID   int64  `json:"place_id" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

type UpdateBookingRequest struct {
	Status    string  `json:"status"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
}

// StatusInfo is the derived view of where a booking stands in its
// lifecycle.
type StatusInfo struct {
	Status               domain.BookingStatus `json:"status"`
	StatusDisplay        string               `json:"status_display"`
	IsActive             bool                 `json:"is_active"`
	IsUpcoming           bool                 `json:"is_upcoming"`
	IsInProgress         bool                 `json:"is_in_progress"`
	IsPast               bool                 `json:"is_past"`
	CanBeCancelled       bool                 `json:"can_be_cancelled"`
	CancellationDeadline time.Time            `json:"cancellation_deadline"`
}

func NewStatusInfo(b *domain.Booking, now time.Time) StatusInfo {
	return StatusInfo{
		Status:               b.Status,
		StatusDisplay:        b.Status.Display(),
		IsActive:             b.IsActive(),
		IsUpcoming:           b.IsUpcoming(now),
		IsInProgress:         b.IsInProgress(now),
		IsPast:               b.IsPast(now),
		CanBeCancelled:       b.CanBeCancelled(now),
		CancellationDeadline: b.CancellationDeadline(),
	}
}

type BookingDetail struct {
	Booking    *domain.Booking `json:"booking"`
	StatusInfo StatusInfo      `json:"status_info"`
}

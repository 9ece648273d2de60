package booking

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"parkshare/internal/domain"
	"parkshare/internal/middleware"
	"parkshare/internal/pkg/response"
	"parkshare/internal/pkg/timerange"
	"parkshare/internal/repository"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.CreateBooking)
	rg.GET("/bookings/my", h.MyBookings)
	rg.GET("/bookings/:id", h.GetBooking)
	rg.PATCH("/bookings/:id", h.UpdateBooking)
	rg.DELETE("/bookings/:id", h.CancelBooking)
	rg.GET("/places/:id/bookings", h.PlaceBookings)
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "place_id, start_time, and end_time are required")
		return
	}

	start, err := timerange.ParseDateTime(req.StartTime)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid datetime format")
		return
	}
	end, err := timerange.ParseDateTime(req.EndTime)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid datetime format")
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), middleware.UserID(c), CreateBookingInput{
		PlaceID:   req.PlaceID,
		StartTime: start,
		EndTime:   end,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, BookingDetail{
		Booking:    b,
		StatusInfo: NewStatusInfo(b, time.Now().UTC()),
	})
}

func (h *Handler) MyBookings(c *gin.Context) {
	f := repository.BookingFilter{
		Status:       domain.BookingStatus(c.Query("status")),
		UpcomingOnly: c.Query("upcoming") == "true",
		PastOnly:     c.Query("past") == "true",
	}

	bookings, err := h.service.MyBookings(c.Request.Context(), middleware.UserID(c), f)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": bookings})
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking id")
		return
	}

	b, err := h.service.GetBooking(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, BookingDetail{
		Booking:    b,
		StatusInfo: NewStatusInfo(b, time.Now().UTC()),
	})
}

// UpdateBooking handles status transitions and reschedules: a body
// with "status" runs the matching transition, a body with start/end
// times moves the booking.
func (h *Handler) UpdateBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking id")
		return
	}

	var req UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	userID := middleware.UserID(c)

	switch {
	case req.Status != "":
		b, err := h.service.UpdateStatus(c.Request.Context(), userID, id, domain.BookingStatus(req.Status))
		if err != nil {
			h.writeError(c, err)
			return
		}
		response.Success(c, http.StatusOK, BookingDetail{Booking: b, StatusInfo: NewStatusInfo(b, time.Now().UTC())})

	case req.StartTime != nil && req.EndTime != nil:
		start, err := timerange.ParseDateTime(*req.StartTime)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid datetime format")
			return
		}
		end, err := timerange.ParseDateTime(*req.EndTime)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid datetime format")
			return
		}
		b, err := h.service.UpdateTimes(c.Request.Context(), userID, id, UpdateTimesInput{StartTime: start, EndTime: end})
		if err != nil {
			h.writeError(c, err)
			return
		}
		response.Success(c, http.StatusOK, BookingDetail{Booking: b, StatusInfo: NewStatusInfo(b, time.Now().UTC())})

	default:
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Status or start_time/end_time is required")
	}
}

// CancelBooking: DELETE cancels rather than removing the row.
func (h *Handler) CancelBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking id")
		return
	}

	if _, err := h.service.Cancel(c.Request.Context(), middleware.UserID(c), id); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Booking cancelled successfully"})
}

func (h *Handler) PlaceBookings(c *gin.Context) {
	placeID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid place id")
		return
	}

	f := repository.BookingFilter{
		Status:       domain.BookingStatus(c.Query("status")),
		UpcomingOnly: c.Query("upcoming") == "true",
		PastOnly:     c.Query("past") == "true",
	}

	bookings, err := h.service.PlaceBookings(c.Request.Context(), middleware.UserID(c), placeID, f)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": bookings})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var na *NotAvailableError
	var te *TransitionError

	switch {
	case errors.As(err, &na):
		response.Error(c, http.StatusBadRequest, "NOT_AVAILABLE", na.Reason)
	case errors.As(err, &te):
		response.Error(c, http.StatusBadRequest, "INVALID_TRANSITION", te.Message)
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "End time must be after start time")
	case errors.Is(err, ErrOverbooking):
		response.Error(c, http.StatusConflict, "BOOKING_CONFLICT", "Space is not available for the selected time")
	case errors.Is(err, ErrPlaceNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Parking space not found")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You do not have permission to access this booking")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process booking")
	}
}

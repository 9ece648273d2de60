package availability

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

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
	rg.GET("/places/availability", h.CheckAvailability)
	rg.GET("/places/:id/slots", h.AvailableSlots)
}

// CheckAvailability answers GET /places/availability?place_id=&start=&end=.
func (h *Handler) CheckAvailability(c *gin.Context) {
	placeID, err := strconv.ParseInt(c.Query("place_id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "place_id is required")
		return
	}

	start, err := timerange.ParseDateTime(c.Query("start"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid datetime format. Use ISO format (YYYY-MM-DDTHH:MM:SS)")
		return
	}
	end, err := timerange.ParseDateTime(c.Query("end"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid datetime format. Use ISO format (YYYY-MM-DDTHH:MM:SS)")
		return
	}

	if _, err := h.service.places.GetByID(c.Request.Context(), placeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Parking space not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to check availability")
		return
	}

	available, reason, err := h.service.IsAvailable(c.Request.Context(), placeID, start, end)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to check availability")
		return
	}

	resp := CheckResponse{Available: available}
	if !available {
		resp.Reason = &reason
	}
	response.Success(c, http.StatusOK, resp)
}

// AvailableSlots answers GET /places/:id/slots?date=YYYY-MM-DD.
func (h *Handler) AvailableSlots(c *gin.Context) {
	placeID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid place id")
		return
	}

	dateStr := c.Query("date")
	date, err := timerange.ParseDate(dateStr)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid date format. Use YYYY-MM-DD")
		return
	}

	free, err := h.service.AvailableSlots(c.Request.Context(), placeID, date)
	if err != nil {
		if errors.Is(err, ErrPlaceNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Parking space not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to compute available slots")
		return
	}

	slots := make([]Slot, 0, len(free))
	for _, r := range free {
		slots = append(slots, Slot{Start: r.Start, End: r.End})
	}
	response.Success(c, http.StatusOK, SlotsResponse{PlaceID: placeID, Date: dateStr, Slots: slots})
}

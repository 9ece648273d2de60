package block

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
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/blocks", h.CreateBlock)
	rg.GET("/blocks", h.ListBlocks)
	rg.GET("/blocks/:id", h.GetBlock)
	rg.PATCH("/blocks/:id", h.UpdateBlock)
	rg.DELETE("/blocks/:id", h.DeleteBlock)
}

func (h *Handler) CreateBlock(c *gin.Context) {
	var req CreateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	start, err := timerange.ParseDateTime(req.StartDatetime)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid datetime format. Use ISO format (YYYY-MM-DDTHH:MM:SS)")
		return
	}
	end, err := timerange.ParseDateTime(req.EndDatetime)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid datetime format. Use ISO format (YYYY-MM-DDTHH:MM:SS)")
		return
	}

	var recurringEnd *time.Time
	if req.RecurringEndDate != "" {
		d, err := timerange.ParseDate(req.RecurringEndDate)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid recurring_end_date format. Use YYYY-MM-DD")
			return
		}
		recurringEnd = &d
	}

	b, outcome, err := h.service.CreateBlock(c.Request.Context(), middleware.UserID(c), CreateBlockInput{
		PlaceID:          req.PlaceID,
		Start:            start,
		End:              end,
		BlockType:        domain.BlockType(req.BlockType),
		Reason:           req.Reason,
		IsRecurring:      req.IsRecurring,
		RecurringPattern: domain.RecurringPattern(req.RecurringPattern),
		RecurringEndDate: recurringEnd,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	status := http.StatusCreated
	if outcome.Contained {
		// Nothing was written; the period was already covered.
		status = http.StatusOK
	}
	response.Success(c, status, BlockResponse{Block: b, MergeOutcome: *outcome})
}

func (h *Handler) ListBlocks(c *gin.Context) {
	placeID, err := strconv.ParseInt(c.Query("place_id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "place_id is required")
		return
	}

	var rng *timerange.Range
	startStr, endStr := c.Query("start_date"), c.Query("end_date")
	if startStr != "" && endStr != "" {
		start, err := timerange.ParseDateTime(startStr)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid date format")
			return
		}
		end, err := timerange.ParseDateTime(endStr)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid date format")
			return
		}
		rng = &timerange.Range{Start: start, End: end}
	}

	blocks, err := h.service.ListBlocks(c.Request.Context(), middleware.UserID(c), placeID, rng)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"blocks": blocks})
}

func (h *Handler) GetBlock(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid block id")
		return
	}

	b, err := h.service.GetBlock(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"block": b})
}

func (h *Handler) UpdateBlock(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid block id")
		return
	}

	var req UpdateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	var in UpdateBlockInput
	if req.StartDatetime != nil {
		t, err := timerange.ParseDateTime(*req.StartDatetime)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid datetime format")
			return
		}
		in.Start = &t
	}
	if req.EndDatetime != nil {
		t, err := timerange.ParseDateTime(*req.EndDatetime)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid datetime format")
			return
		}
		in.End = &t
	}
	in.Reason = req.Reason

	b, err := h.service.UpdateBlock(c.Request.Context(), middleware.UserID(c), id, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"block": b})
}

func (h *Handler) DeleteBlock(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid block id")
		return
	}

	if err := h.service.DeleteBlock(c.Request.Context(), middleware.UserID(c), id); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Blocked period deleted successfully"})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidRange):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "End time must be after start time")
	case errors.Is(err, ErrMissingPattern):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Recurring pattern must be provided for recurring blocks")
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid block type")
	case errors.Is(err, ErrBookingConflict):
		response.Error(c, http.StatusBadRequest, "BOOKING_CONFLICT", "This time period overlaps with existing bookings")
	case errors.Is(err, ErrBookingManaged):
		response.Error(c, http.StatusBadRequest, "BOOKING_MANAGED", "This blocked period is associated with a booking and cannot be modified directly")
	case errors.Is(err, ErrPlaceNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Parking space not found or you do not have permission")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Blocked period not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You do not have permission to access this blocked period")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process blocked period")
	}
}

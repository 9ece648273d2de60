package place

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"parkshare/internal/middleware"
	"parkshare/internal/pkg/response"
)

const maxImageBytes = 10 << 20

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/places/search", h.Search)
	rg.GET("/places/:id", h.GetPlace)
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/places", h.CreatePlace)
	rg.GET("/places", h.MyPlaces)
	rg.PATCH("/places/:id", h.UpdatePlace)
	rg.DELETE("/places/:id", h.DeletePlace)
	rg.POST("/places/:id/images", h.UploadImage)
	rg.DELETE("/places/:id/images/:image_id", h.DeleteImage)
}

func (h *Handler) CreatePlace(c *gin.Context) {
	var req CreatePlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Name, address, city, and a positive hourly price are required")
		return
	}

	p, err := h.service.CreatePlace(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, p)
}

func (h *Handler) GetPlace(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid place id")
		return
	}

	p, err := h.service.GetPlace(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

func (h *Handler) MyPlaces(c *gin.Context) {
	places, err := h.service.MyPlaces(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"places": places})
}

func (h *Handler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "lat and lng query parameters are required")
		return
	}

	places, err := h.service.Search(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"places": places})
}

func (h *Handler) UpdatePlace(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid place id")
		return
	}

	var req UpdatePlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	p, err := h.service.UpdatePlace(c.Request.Context(), middleware.UserID(c), id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

func (h *Handler) DeletePlace(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid place id")
		return
	}

	if err := h.service.DeletePlace(c.Request.Context(), middleware.UserID(c), id); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Place deleted successfully"})
}

func (h *Handler) UploadImage(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid place id")
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "An image file is required")
		return
	}
	if fileHeader.Size > maxImageBytes {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Image must be 10MB or smaller")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Could not read uploaded file")
		return
	}
	defer file.Close()

	isPrimary := c.PostForm("is_primary") == "true"

	img, err := h.service.UploadImage(c.Request.Context(), middleware.UserID(c), id, file, fileHeader.Filename, isPrimary)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, img)
}

func (h *Handler) DeleteImage(c *gin.Context) {
	placeID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid place id")
		return
	}
	imageID, err := strconv.ParseInt(c.Param("image_id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid image id")
		return
	}

	if err := h.service.DeleteImage(c.Request.Context(), middleware.UserID(c), placeID, imageID); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Image deleted successfully"})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid place data")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Parking space not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You do not own this parking space")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process place")
	}
}

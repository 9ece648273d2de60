package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"parkshare/internal/database"
	"parkshare/internal/middleware"
	"parkshare/internal/modules/auth"
	"parkshare/internal/modules/availability"
	"parkshare/internal/modules/block"
	"parkshare/internal/modules/booking"
	"parkshare/internal/modules/events"
	"parkshare/internal/modules/place"
	jwtsvc "parkshare/internal/pkg/jwt"
	"parkshare/internal/pkg/storage"
	"parkshare/internal/repository"
)

type E2ETestSuite struct {
	router *gin.Engine
	db     *gorm.DB
}

type TestResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *ErrorDetail           `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func setupTestSuite(t *testing.T) *E2ETestSuite {
	db, err := database.Connect(":memory:")
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, database.Migrate(db), "Failed to migrate test database")

	userRepo := repository.NewUserRepository(db)
	placeRepo := repository.NewPlaceRepository(db)
	blockRepo := repository.NewBlockRepository(db)
	bookingRepo := repository.NewBookingRepository(db)

	jwtService := jwtsvc.New("test_secret_key_32_characters_min", 24*time.Hour)
	objects := storage.NewLocal(t.TempDir(), "/static/uploads")
	hub := events.NewHub()

	authHandler := auth.NewHandler(auth.NewService(userRepo, jwtService))
	placeHandler := place.NewHandler(place.NewService(placeRepo, objects))
	availabilityService := availability.NewService(blockRepo, placeRepo)
	availabilityHandler := availability.NewHandler(availabilityService)
	blockHandler := block.NewHandler(block.NewService(blockRepo, bookingRepo, placeRepo, hub))
	bookingHandler := booking.NewHandler(booking.NewService(bookingRepo, blockRepo, placeRepo, userRepo, availabilityService, hub))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())

	v1 := r.Group("/api/v1")

	authHandler.RegisterPublicRoutes(v1)
	placeHandler.RegisterPublicRoutes(v1)
	availabilityHandler.RegisterRoutes(v1)

	protected := v1.Group("")
	protected.Use(middleware.Auth(jwtService))
	{
		authHandler.RegisterRoutes(protected)
		placeHandler.RegisterRoutes(protected)
		blockHandler.RegisterRoutes(protected)
		bookingHandler.RegisterRoutes(protected)
	}

	return &E2ETestSuite{router: r, db: db}
}

func (s *E2ETestSuite) makeRequest(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var bodyBytes []byte
	if body != nil {
		var err error
		bodyBytes, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) *TestResponse {
	t.Helper()

	var resp TestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "Body: %s", w.Body.String())
	return &resp
}

func (s *E2ETestSuite) registerUser(t *testing.T, email string) string {
	t.Helper()

	w := s.makeRequest(t, "POST", "/api/v1/auth/register", map[string]interface{}{
		"name":     "Test User",
		"email":    email,
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, "Body: %s", w.Body.String())

	resp := parseResponse(t, w)
	token, _ := resp.Data["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func (s *E2ETestSuite) createPlace(t *testing.T, token string) int64 {
	t.Helper()

	w := s.makeRequest(t, "POST", "/api/v1/places", map[string]interface{}{
		"name":                 "Test Driveway",
		"address":              "123 Test St",
		"city":                 "Testville",
		"price_per_hour_cents": 500,
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, "Body: %s", w.Body.String())

	resp := parseResponse(t, w)
	return int64(resp.Data["id"].(float64))
}

func TestFlow_AuthAndPlaces(t *testing.T) {
	suite := setupTestSuite(t)

	ownerToken := suite.registerUser(t, "owner@test.com")
	placeID := suite.createPlace(t, ownerToken)
	assert.Positive(t, placeID)

	// duplicate email is refused
	w := suite.makeRequest(t, "POST", "/api/v1/auth/register", map[string]interface{}{
		"name": "Dup", "email": "owner@test.com", "password": "password123",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	// login works
	w = suite.makeRequest(t, "POST", "/api/v1/auth/login", map[string]interface{}{
		"email": "owner@test.com", "password": "password123",
	}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	// public detail
	w = suite.makeRequest(t, "GET", fmt.Sprintf("/api/v1/places/%d", placeID), nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	// a stranger cannot edit the place
	strangerToken := suite.registerUser(t, "stranger@test.com")
	w = suite.makeRequest(t, "PATCH", fmt.Sprintf("/api/v1/places/%d", placeID), map[string]interface{}{
		"name": "Hijacked",
	}, strangerToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestFlow_BlockMerging(t *testing.T) {
	suite := setupTestSuite(t)
	token := suite.registerUser(t, "owner@test.com")
	placeID := suite.createPlace(t, token)

	createBlock := func(start, end string) *httptest.ResponseRecorder {
		return suite.makeRequest(t, "POST", "/api/v1/blocks", map[string]interface{}{
			"place_id":       placeID,
			"start_datetime": start,
			"end_datetime":   end,
		}, token)
	}

	// first block stands alone
	w := createBlock("2026-06-01T01:00:00", "2026-06-01T03:00:00")
	require.Equal(t, http.StatusCreated, w.Code, "Body: %s", w.Body.String())
	resp := parseResponse(t, w)
	assert.Equal(t, false, resp.Data["merged"])

	// overlapping block merges into one row covering the union
	w = createBlock("2026-06-01T02:00:00", "2026-06-01T05:00:00")
	require.Equal(t, http.StatusCreated, w.Code, "Body: %s", w.Body.String())
	resp = parseResponse(t, w)
	assert.Equal(t, true, resp.Data["merged"])
	assert.Len(t, resp.Data["deleted_block_ids"], 1)

	// touching block also merges
	w = createBlock("2026-06-01T05:00:00", "2026-06-01T07:00:00")
	require.Equal(t, http.StatusCreated, w.Code, "Body: %s", w.Body.String())
	resp = parseResponse(t, w)
	assert.Equal(t, true, resp.Data["merged"])

	// contained period is a no-op
	w = createBlock("2026-06-01T02:00:00", "2026-06-01T03:00:00")
	require.Equal(t, http.StatusOK, w.Code, "Body: %s", w.Body.String())
	resp = parseResponse(t, w)
	assert.Equal(t, true, resp.Data["contained"])

	// disjoint block stands alone again
	w = createBlock("2026-06-02T01:00:00", "2026-06-02T03:00:00")
	require.Equal(t, http.StatusCreated, w.Code, "Body: %s", w.Body.String())
	resp = parseResponse(t, w)
	assert.Equal(t, false, resp.Data["merged"])

	// exactly two rows remain: [01,07) on day one and day two's block
	w = suite.makeRequest(t, "GET", fmt.Sprintf("/api/v1/blocks?place_id=%d", placeID), nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	resp = parseResponse(t, w)
	assert.Len(t, resp.Data["blocks"], 2)
}

func TestFlow_AvailabilityAndSlots(t *testing.T) {
	suite := setupTestSuite(t)
	token := suite.registerUser(t, "owner@test.com")
	placeID := suite.createPlace(t, token)

	// free place is available
	w := suite.makeRequest(t, "GET", fmt.Sprintf(
		"/api/v1/places/availability?place_id=%d&start=2026-06-01T09:00:00&end=2026-06-01T11:00:00", placeID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := parseResponse(t, w)
	assert.Equal(t, true, resp.Data["available"])

	// block 09:00-10:00
	w = suite.makeRequest(t, "POST", "/api/v1/blocks", map[string]interface{}{
		"place_id":       placeID,
		"start_datetime": "2026-06-01T09:00:00",
		"end_datetime":   "2026-06-01T10:00:00",
		"reason":         "Street cleaning",
	}, token)
	require.Equal(t, http.StatusCreated, w.Code)

	// now blocked, with the stored reason surfaced
	w = suite.makeRequest(t, "GET", fmt.Sprintf(
		"/api/v1/places/availability?place_id=%d&start=2026-06-01T09:30:00&end=2026-06-01T11:00:00", placeID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	resp = parseResponse(t, w)
	assert.Equal(t, false, resp.Data["available"])
	assert.Equal(t, "Space is unavailable: Street cleaning", resp.Data["reason"])

	// a query starting exactly when the block ends is fine
	w = suite.makeRequest(t, "GET", fmt.Sprintf(
		"/api/v1/places/availability?place_id=%d&start=2026-06-01T10:00:00&end=2026-06-01T11:00:00", placeID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	resp = parseResponse(t, w)
	assert.Equal(t, true, resp.Data["available"])

	// the day partitions into [00,09) and [10,24)
	w = suite.makeRequest(t, "GET", fmt.Sprintf("/api/v1/places/%d/slots?date=2026-06-01", placeID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	resp = parseResponse(t, w)
	slots := resp.Data["slots"].([]interface{})
	require.Len(t, slots, 2)

	// unknown place is a 404
	w = suite.makeRequest(t, "GET", "/api/v1/places/99999/slots?date=2026-06-01", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFlow_BookingLifecycle(t *testing.T) {
	suite := setupTestSuite(t)
	ownerToken := suite.registerUser(t, "owner@test.com")
	renterToken := suite.registerUser(t, "renter@test.com")
	placeID := suite.createPlace(t, ownerToken)

	start := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Hour)
	end := start.Add(2 * time.Hour)

	// renter books 2 hours
	w := suite.makeRequest(t, "POST", "/api/v1/bookings", map[string]interface{}{
		"place_id":   placeID,
		"start_time": start.Format(time.RFC3339),
		"end_time":   end.Format(time.RFC3339),
	}, renterToken)
	require.Equal(t, http.StatusCreated, w.Code, "Body: %s", w.Body.String())
	resp := parseResponse(t, w)
	bookingData := resp.Data["booking"].(map[string]interface{})
	bookingID := int64(bookingData["id"].(float64))
	assert.Equal(t, float64(1000), bookingData["total_price_cents"])

	// the interval is now unavailable, reported as a booking block
	w = suite.makeRequest(t, "GET", fmt.Sprintf(
		"/api/v1/places/availability?place_id=%d&start=%s&end=%s",
		placeID, start.Format("2006-01-02T15:04:05"), end.Format("2006-01-02T15:04:05")), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	resp = parseResponse(t, w)
	assert.Equal(t, false, resp.Data["available"])

	// a second overlapping booking is refused
	w = suite.makeRequest(t, "POST", "/api/v1/bookings", map[string]interface{}{
		"place_id":   placeID,
		"start_time": start.Add(time.Hour).Format(time.RFC3339),
		"end_time":   end.Add(time.Hour).Format(time.RFC3339),
	}, renterToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// the owner cannot block over the booking
	w = suite.makeRequest(t, "POST", "/api/v1/blocks", map[string]interface{}{
		"place_id":       placeID,
		"start_datetime": start.Format(time.RFC3339),
		"end_datetime":   end.Format(time.RFC3339),
	}, ownerToken)
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp = parseResponse(t, w)
	assert.Equal(t, "BOOKING_CONFLICT", resp.Error.Code)

	// the derived block cannot be deleted directly
	w = suite.makeRequest(t, "GET", fmt.Sprintf("/api/v1/blocks?place_id=%d", placeID), nil, ownerToken)
	require.Equal(t, http.StatusOK, w.Code)
	resp = parseResponse(t, w)
	blocks := resp.Data["blocks"].([]interface{})
	require.Len(t, blocks, 1)
	derivedID := int64(blocks[0].(map[string]interface{})["id"].(float64))
	w = suite.makeRequest(t, "DELETE", fmt.Sprintf("/api/v1/blocks/%d", derivedID), nil, ownerToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// owner confirms
	w = suite.makeRequest(t, "PATCH", fmt.Sprintf("/api/v1/bookings/%d", bookingID), map[string]interface{}{
		"status": "confirmed",
	}, ownerToken)
	require.Equal(t, http.StatusOK, w.Code, "Body: %s", w.Body.String())

	// renter cancels with 72h notice; the slot frees up
	w = suite.makeRequest(t, "DELETE", fmt.Sprintf("/api/v1/bookings/%d", bookingID), nil, renterToken)
	require.Equal(t, http.StatusOK, w.Code, "Body: %s", w.Body.String())

	w = suite.makeRequest(t, "GET", fmt.Sprintf(
		"/api/v1/places/availability?place_id=%d&start=%s&end=%s",
		placeID, start.Format("2006-01-02T15:04:05"), end.Format("2006-01-02T15:04:05")), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	resp = parseResponse(t, w)
	assert.Equal(t, true, resp.Data["available"])

	// cancelling again reports the terminal state
	w = suite.makeRequest(t, "DELETE", fmt.Sprintf("/api/v1/bookings/%d", bookingID), nil, renterToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFlow_RecurringBlocks(t *testing.T) {
	suite := setupTestSuite(t)
	token := suite.registerUser(t, "owner@test.com")
	placeID := suite.createPlace(t, token)

	// weekly Monday 09:00-10:00 anchored on 2026-06-01 (a Monday)
	w := suite.makeRequest(t, "POST", "/api/v1/blocks", map[string]interface{}{
		"place_id":          placeID,
		"start_datetime":    "2026-06-01T09:00:00",
		"end_datetime":      "2026-06-01T10:00:00",
		"is_recurring":      true,
		"recurring_pattern": "weekly",
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, "Body: %s", w.Body.String())

	// two Mondays later the pattern still blocks
	w = suite.makeRequest(t, "GET", fmt.Sprintf(
		"/api/v1/places/availability?place_id=%d&start=2026-06-15T09:00:00&end=2026-06-15T09:30:00", placeID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := parseResponse(t, w)
	assert.Equal(t, false, resp.Data["available"])

	// Tuesday is free
	w = suite.makeRequest(t, "GET", fmt.Sprintf(
		"/api/v1/places/availability?place_id=%d&start=2026-06-16T09:00:00&end=2026-06-16T09:30:00", placeID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	resp = parseResponse(t, w)
	assert.Equal(t, true, resp.Data["available"])

	// recurring without a pattern is rejected
	w = suite.makeRequest(t, "POST", "/api/v1/blocks", map[string]interface{}{
		"place_id":       placeID,
		"start_datetime": "2026-06-01T12:00:00",
		"end_datetime":   "2026-06-01T13:00:00",
		"is_recurring":   true,
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMain(m *testing.M) {
	os.Exit(m.Run())
}

package events

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"parkshare/internal/domain"
	"parkshare/internal/pkg/jwt"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type PlaceReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Place, error)
}

type WSHandler struct {
	hub    *Hub
	jwt    *jwt.Service
	places PlaceReader
}

func NewWSHandler(hub *Hub, jwtService *jwt.Service, places PlaceReader) *WSHandler {
	return &WSHandler{hub: hub, jwt: jwtService, places: places}
}

// HandleWebSocket streams availability events for a place to its owner.
//
// Endpoint: GET /ws/places/:id?token=JWT_TOKEN
//
// Browsers cannot set headers on websocket dials, so the token rides in
// the query string.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	placeID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid place id"})
		return
	}

	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is required. Use ?token=YOUR_JWT_TOKEN"})
		return
	}

	claims, err := h.jwt.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	place, err := h.places.GetByID(c.Request.Context(), placeID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Parking space not found"})
		return
	}
	if place.OwnerID != claims.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the owner can subscribe to this feed"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("events: websocket upgrade failed: %v", err)
		return
	}

	h.hub.Subscribe(placeID, conn)
	defer h.hub.Unsubscribe(placeID, conn)

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	})
	go h.pingLoop(conn)

	// Drain client frames until the peer goes away. Subscribers only
	// listen; anything they send is ignored.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *WSHandler) pingLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
			return
		}
	}
}

package clients

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"cockpityara/internal/pkg/jwt"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins for dev; restrict in production
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler upgrades authenticated connections and hands them to the hub
type WSHandler struct {
	hub        *Hub
	jwtService *jwt.Service
	service    *Service
}

func NewWSHandler(hub *Hub, jwtService *jwt.Service, service *Service) *WSHandler {
	return &WSHandler{hub: hub, jwtService: jwtService, service: service}
}

// HandleWebSocket serves GET /ws?token=JWT. Auth goes through a query
// parameter because browsers cannot set headers on WebSocket upgrades.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   gin.H{"code": "UNAUTHORIZED", "message": "Token is required"},
		})
		return
	}

	if _, err := h.jwtService.ValidateToken(token); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   gin.H{"code": "UNAUTHORIZED", "message": "Invalid or expired token"},
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	// Seed this tab with the resolved state and current snapshot before the
	// live feed takes over
	conn.WriteJSON(&WSEvent{
		Type:    EventSyncState,
		Payload: map[string]interface{}{"sync_state": h.service.State()},
	})
	if list, err := h.service.UnifiedList(c.Request.Context()); err == nil {
		conn.WriteJSON(&WSEvent{
			Type: EventUnifiedList,
			Payload: map[string]interface{}{
				"clients":    list,
				"sync_state": h.service.State(),
				"stats":      computeStats(list),
			},
		})
	}

	h.hub.ServeWS(conn)
}

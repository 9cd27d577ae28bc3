package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/havenapp/haven/internal/app"
	"github.com/havenapp/haven/internal/domain"
	"github.com/havenapp/haven/internal/store"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Relay *app.Relay
	Store store.Store
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"connections": h.Relay.Registry.Count(),
	})
}

// ListRooms exposes the live presence snapshot for ops.
func (h *Handlers) ListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": h.Relay.Presence.Rooms()})
}

// MessagesForUser reads whisper history back from the store. This is the
// only way an offline recipient ever sees a whisper.
func (h *Handlers) MessagesForUser(c *gin.Context) {
	userID := domain.UserID(c.Param("userId"))
	if err := domain.ValidateUserID(userID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msgs, err := h.Store.QueryMessagesForUser(c.Request.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("query messages")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (h *Handlers) RecentEchoes(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	echoes, err := h.Store.QueryEchoesRecent(c.Request.Context(), limit)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("query echoes")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"echoes": echoes})
}

func (h *Handlers) CreateEcho(c *gin.Context) {
	var req struct {
		AuthorID   domain.UserID `json:"authorId"`
		AuthorName string        `json:"authorName"`
		Body       string        `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Body == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid body"})
		return
	}
	if err := domain.ValidateUserID(req.AuthorID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	echo := domain.Echo{
		ID:         uuid.NewString(),
		AuthorID:   req.AuthorID,
		AuthorName: req.AuthorName,
		Body:       req.Body,
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.Store.AppendEcho(c.Request.Context(), echo); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("append echo")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
		return
	}
	c.JSON(http.StatusCreated, echo)
}

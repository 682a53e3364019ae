package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// ListRooms returns the calling user's rooms, soft-left ones included.
func (h *Handler) ListRooms(c *gin.Context) {
	rooms, err := h.Chat.ListRooms(c.Request.Context(), currentUserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// JoinRoom reactivates the calling user's membership in the room.
func (h *Handler) JoinRoom(c *gin.Context) {
	if err := h.Chat.Join(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// LeaveRoom soft-leaves the room.
func (h *Handler) LeaveRoom(c *gin.Context) {
	if err := h.Chat.Leave(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetMessages pages through room history, newest first. "before" is an
// RFC 3339 timestamp cursor.
func (h *Handler) GetMessages(c *gin.Context) {
	take, _ := strconv.Atoi(c.DefaultQuery("take", "50"))

	var before *time.Time
	if raw := c.Query("before"); raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "before must be RFC 3339"})
			return
		}
		before = &t
	}

	msgs, err := h.Chat.GetMessages(c.Request.Context(), c.Param("id"), currentUserID(c), take, before)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

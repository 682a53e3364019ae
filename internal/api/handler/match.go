package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type matchRequestBody struct {
	TargetUserID string `json:"target_user_id" binding:"required"`
	MovieID      int64  `json:"movie_id" binding:"required"`
}

// GetCandidates returns the ranked candidate list for the calling user.
func (h *Handler) GetCandidates(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	candidates, err := h.Match.GetCandidates(c.Request.Context(), currentUserID(c), limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"candidates": candidates})
}

// RequestMatch runs the handshake for the calling user against the target.
func (h *Handler) RequestMatch(c *gin.Context) {
	var body matchRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Match.RequestMatch(c.Request.Context(), currentUserID(c), body.TargetUserID, body.MovieID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// LikeMovie marks the movie liked for the calling user. The movie id is
// validated against the catalog before the like is stored.
func (h *Handler) LikeMovie(c *gin.Context) {
	movieID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || movieID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid movie id"})
		return
	}

	if h.Catalog != nil {
		movie, err := h.Catalog.GetMovie(c.Request.Context(), movieID)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "catalog lookup failed"})
			return
		}
		if movie == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown movie id"})
			return
		}
	}

	if err := h.Storage.SetLike(c.Request.Context(), currentUserID(c), movieID, true); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"movie_id": movieID, "liked": true})
}

// UnlikeMovie takes a like back. No catalog round trip: unliking an id that
// was never liked is harmless.
func (h *Handler) UnlikeMovie(c *gin.Context) {
	movieID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || movieID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid movie id"})
		return
	}

	if err := h.Storage.SetLike(c.Request.Context(), currentUserID(c), movieID, false); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"movie_id": movieID, "liked": false})
}

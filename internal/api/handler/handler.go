package handler

import (
	"cinematch/backend/internal/catalog"
	"cinematch/backend/internal/chat"
	"cinematch/backend/internal/chathub"
	"cinematch/backend/internal/match"
	"cinematch/backend/internal/models"
	"cinematch/backend/internal/storage"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler holds the services the HTTP API dispatches into.
type Handler struct {
	Match     *match.Engine
	Chat      *chat.Service
	Hub       *chathub.Manager
	Storage   storage.Storage
	Catalog   *catalog.Client
	JWTSecret []byte
}

func NewHandler(engine *match.Engine, chatSvc *chat.Service, hub *chathub.Manager, s storage.Storage, cat *catalog.Client, jwtSecret string) *Handler {
	return &Handler{
		Match:     engine,
		Chat:      chatSvc,
		Hub:       hub,
		Storage:   s,
		Catalog:   cat,
		JWTSecret: []byte(jwtSecret),
	}
}

// abortWithError maps the shared error taxonomy onto HTTP statuses.
func abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrMembership):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bitcourse/backend/internal/middleware"
	"github.com/bitcourse/backend/internal/service"
	"github.com/bitcourse/backend/pkg/response"
)

type AuthHandler struct {
	service  service.AuthService
	sessions *middleware.SessionManager
	started  time.Time
	log      *zap.Logger
}

func NewAuthHandler(service service.AuthService, sessions *middleware.SessionManager, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service:  service,
		sessions: sessions,
		started:  time.Now(),
		log:      log,
	}
}

func (h *AuthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(h.started).String(),
	})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input service.RegisterInput
	if !bindJSON(c, &input) {
		return
	}

	user, err := h.service.Register(c.Request.Context(), input)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, user.Viewable())
}

func (h *AuthHandler) Login(c *gin.Context) {
	if _, ok := h.sessions.LiveUser(c); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "already logged in"})
		return
	}

	var input service.LoginInput
	if !bindJSON(c, &input) {
		return
	}

	user, err := h.service.Login(c.Request.Context(), input)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	if err := h.sessions.SetUser(c, user.ID); err != nil {
		response.Error(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, user.Viewable())
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.sessions.Clear(c); err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

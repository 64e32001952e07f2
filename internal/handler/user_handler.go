package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bitcourse/backend/internal/middleware"
	"github.com/bitcourse/backend/internal/service"
	"github.com/bitcourse/backend/pkg/response"
)

type UserHandler struct {
	service  service.UserService
	sessions *middleware.SessionManager
	log      *zap.Logger
}

func NewUserHandler(service service.UserService, sessions *middleware.SessionManager, log *zap.Logger) *UserHandler {
	return &UserHandler{service: service, sessions: sessions, log: log}
}

func (h *UserHandler) List(c *gin.Context) {
	params, ok := bindListParams(c)
	if !ok {
		return
	}

	users, err := h.service.List(c.Request.Context(), params)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	user, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	requesterID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	var input service.UpdateUserInput
	if !bindJSON(c, &input) {
		return
	}

	user, err := h.service.Update(c.Request.Context(), requesterID, id, input)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	requesterID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	user, err := h.service.Delete(c.Request.Context(), requesterID, id)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	// The account behind the session is gone; the cookie goes with it.
	if err := h.sessions.Clear(c); err != nil {
		h.log.Warn("failed to clear session after account deletion", zap.Error(err))
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) ListCourses(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	params, ok := bindListParams(c)
	if !ok {
		return
	}

	courses, err := h.service.ListCourses(c.Request.Context(), id, params)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, courses)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bitcourse/backend/internal/service"
	"github.com/bitcourse/backend/pkg/response"
)

type FeedbackHandler struct {
	service service.FeedbackService
	log     *zap.Logger
}

func NewFeedbackHandler(service service.FeedbackService, log *zap.Logger) *FeedbackHandler {
	return &FeedbackHandler{service: service, log: log}
}

func (h *FeedbackHandler) ListByVideo(c *gin.Context) {
	videoID, ok := parseID(c, "id")
	if !ok {
		return
	}
	requesterID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	params, ok := bindListParams(c)
	if !ok {
		return
	}

	feedback, err := h.service.ListByVideo(c.Request.Context(), requesterID, videoID, params)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, feedback)
}

func (h *FeedbackHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	requesterID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	feedback, err := h.service.Get(c.Request.Context(), requesterID, id)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, feedback)
}

func (h *FeedbackHandler) Create(c *gin.Context) {
	videoID, ok := parseID(c, "id")
	if !ok {
		return
	}
	requesterID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	var input service.CreateFeedbackInput
	if !bindJSON(c, &input) {
		return
	}

	feedback, err := h.service.Create(c.Request.Context(), requesterID, videoID, input)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, feedback)
}

func (h *FeedbackHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	requesterID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	var input service.UpdateFeedbackInput
	if !bindJSON(c, &input) {
		return
	}

	feedback, err := h.service.Update(c.Request.Context(), requesterID, id, input)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, feedback)
}

func (h *FeedbackHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	requesterID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	feedback, err := h.service.Delete(c.Request.Context(), requesterID, id)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, feedback)
}

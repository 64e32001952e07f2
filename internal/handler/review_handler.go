package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bitcourse/backend/internal/service"
	"github.com/bitcourse/backend/pkg/response"
)

type ReviewHandler struct {
	service service.ReviewService
	log     *zap.Logger
}

func NewReviewHandler(service service.ReviewService, log *zap.Logger) *ReviewHandler {
	return &ReviewHandler{service: service, log: log}
}

func (h *ReviewHandler) ListByCourse(c *gin.Context) {
	courseID, ok := parseID(c, "id")
	if !ok {
		return
	}
	params, ok := bindListParams(c)
	if !ok {
		return
	}

	reviews, err := h.service.ListByCourse(c.Request.Context(), courseID, params)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *ReviewHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	review, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

func (h *ReviewHandler) Create(c *gin.Context) {
	courseID, ok := parseID(c, "id")
	if !ok {
		return
	}
	requesterID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	var input service.CreateReviewInput
	if !bindJSON(c, &input) {
		return
	}

	review, err := h.service.Create(c.Request.Context(), requesterID, courseID, input)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	requesterID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	var input service.UpdateReviewInput
	if !bindJSON(c, &input) {
		return
	}

	review, err := h.service.Update(c.Request.Context(), requesterID, id, input)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	requesterID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	review, err := h.service.Delete(c.Request.Context(), requesterID, id)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

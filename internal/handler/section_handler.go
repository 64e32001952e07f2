package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bitcourse/backend/internal/service"
	"github.com/bitcourse/backend/pkg/response"
)

type SectionHandler struct {
	service service.SectionService
	log     *zap.Logger
}

func NewSectionHandler(service service.SectionService, log *zap.Logger) *SectionHandler {
	return &SectionHandler{service: service, log: log}
}

func (h *SectionHandler) ListByCourse(c *gin.Context) {
	courseID, ok := parseID(c, "id")
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

	sections, err := h.service.ListByCourse(c.Request.Context(), requesterID, courseID, params)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, sections)
}

func (h *SectionHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	requesterID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	section, err := h.service.Get(c.Request.Context(), requesterID, id)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, section)
}

func (h *SectionHandler) Create(c *gin.Context) {
	courseID, ok := parseID(c, "id")
	if !ok {
		return
	}
	requesterID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	var input service.CreateSectionInput
	if !bindJSON(c, &input) {
		return
	}

	section, err := h.service.Create(c.Request.Context(), requesterID, courseID, input)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, section)
}

func (h *SectionHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	requesterID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	var input service.UpdateSectionInput
	if !bindJSON(c, &input) {
		return
	}

	section, err := h.service.Update(c.Request.Context(), requesterID, id, input)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, section)
}

func (h *SectionHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	requesterID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	section, err := h.service.Delete(c.Request.Context(), requesterID, id)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, section)
}

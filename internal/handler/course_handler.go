package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bitcourse/backend/internal/service"
	"github.com/bitcourse/backend/pkg/response"
)

type CourseHandler struct {
	service service.CourseService
	log     *zap.Logger
}

func NewCourseHandler(service service.CourseService, log *zap.Logger) *CourseHandler {
	return &CourseHandler{service: service, log: log}
}

func (h *CourseHandler) List(c *gin.Context) {
	params, ok := bindListParams(c)
	if !ok {
		return
	}

	courses, err := h.service.List(c.Request.Context(), params)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, courses)
}

func (h *CourseHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	course, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *CourseHandler) Create(c *gin.Context) {
	requesterID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	var input service.CreateCourseInput
	if !bindJSON(c, &input) {
		return
	}

	course, err := h.service.Create(c.Request.Context(), requesterID, input)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

func (h *CourseHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	requesterID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	var input service.UpdateCourseInput
	if !bindJSON(c, &input) {
		return
	}

	course, err := h.service.Update(c.Request.Context(), requesterID, id, input)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *CourseHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	requesterID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	course, err := h.service.Delete(c.Request.Context(), requesterID, id)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *CourseHandler) Enroll(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	requesterID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	enrollment, err := h.service.Enroll(c.Request.Context(), requesterID, id)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, enrollment)
}

func (h *CourseHandler) Unenroll(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	requesterID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	enrollment, err := h.service.Unenroll(c.Request.Context(), requesterID, id)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, enrollment)
}

func (h *CourseHandler) ListMembers(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	params, ok := bindListParams(c)
	if !ok {
		return
	}

	members, err := h.service.ListMembers(c.Request.Context(), id, params)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

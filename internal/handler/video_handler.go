package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bitcourse/backend/internal/service"
	"github.com/bitcourse/backend/pkg/response"
)

type VideoHandler struct {
	service service.VideoService
	log     *zap.Logger
}

func NewVideoHandler(service service.VideoService, log *zap.Logger) *VideoHandler {
	return &VideoHandler{service: service, log: log}
}

func (h *VideoHandler) ListBySection(c *gin.Context) {
	sectionID, ok := parseID(c, "id")
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

	videos, err := h.service.ListBySection(c.Request.Context(), requesterID, sectionID, params)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, videos)
}

func (h *VideoHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	requesterID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	video, err := h.service.Get(c.Request.Context(), requesterID, id)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, video)
}

// Upload expects a multipart form with the content under "file", an
// optional "name" (the file name is used when absent) and an optional
// "duration" in Go duration syntax.
func (h *VideoHandler) Upload(c *gin.Context) {
	sectionID, ok := parseID(c, "id")
	if !ok {
		return
	}
	requesterID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no video uploaded"})
		return
	}

	name := c.PostForm("name")
	if name == "" {
		name = file.Filename
	}

	var duration time.Duration
	if raw := c.PostForm("duration"); raw != "" {
		duration, err = time.ParseDuration(raw)
		if err != nil || duration <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid duration"})
			return
		}
	}

	content, err := readUpload(file)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	video, err := h.service.Upload(c.Request.Context(), requesterID, sectionID, service.UploadVideoInput{
		Name:     name,
		Duration: duration,
		Content:  content,
	})
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, video)
}

func (h *VideoHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	requesterID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	var input service.UpdateVideoInput
	if !bindJSON(c, &input) {
		return
	}

	video, err := h.service.Update(c.Request.Context(), requesterID, id, input)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, video)
}

func (h *VideoHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	requesterID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	video, err := h.service.Delete(c.Request.Context(), requesterID, id)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, video)
}

func readUpload(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

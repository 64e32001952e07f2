package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bitcourse/backend/internal/service"
	"github.com/bitcourse/backend/pkg/response"
)

type AttachmentHandler struct {
	service service.AttachmentService
	log     *zap.Logger
}

func NewAttachmentHandler(service service.AttachmentService, log *zap.Logger) *AttachmentHandler {
	return &AttachmentHandler{service: service, log: log}
}

func (h *AttachmentHandler) ListByVideo(c *gin.Context) {
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

	attachments, err := h.service.ListByVideo(c.Request.Context(), requesterID, videoID, params)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, attachments)
}

func (h *AttachmentHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	requesterID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	attachment, err := h.service.Get(c.Request.Context(), requesterID, id)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, attachment)
}

// Upload expects a multipart form with the content under "file". The stored
// file name defaults to the uploaded file's name.
func (h *AttachmentHandler) Upload(c *gin.Context) {
	videoID, ok := parseID(c, "id")
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
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return
	}

	name := c.PostForm("file_name")
	if name == "" {
		name = file.Filename
	}

	content, err := readUpload(file)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	attachment, err := h.service.Upload(c.Request.Context(), requesterID, videoID, service.UploadAttachmentInput{
		FileName: name,
		Content:  content,
	})
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, attachment)
}

func (h *AttachmentHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	requesterID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	var input service.UpdateAttachmentInput
	if !bindJSON(c, &input) {
		return
	}

	attachment, err := h.service.Update(c.Request.Context(), requesterID, id, input)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, attachment)
}

func (h *AttachmentHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	requesterID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	attachment, err := h.service.Delete(c.Request.Context(), requesterID, id)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, attachment)
}

package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bitcourse/backend/pkg/apperror"
)

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(userIDStr.(string))
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// Error writes a standardized error response
func Error(c *gin.Context, log *zap.Logger, err error) {
	code := apperror.MapErrorToStatus(err)

	if code == http.StatusInternalServerError && log != nil {
		log.Error("internal error",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}

	c.JSON(code, gin.H{"error": err.Error()})
}

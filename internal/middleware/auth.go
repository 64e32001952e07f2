package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/bitcourse/backend/internal/repository"
	"github.com/bitcourse/backend/pkg/apperror"
)

// SessionName is the cookie the backend issues after login.
const SessionName = "bitcourse_session"

const sessionUserKey = "user_id"

// SessionManager issues and validates the signed session cookie. The user
// ID is the only thing stored in the session; everything else is looked up
// fresh so deleted accounts lose access immediately.
type SessionManager struct {
	store *sessions.CookieStore
	users repository.UserRepository
	log   *zap.Logger
}

func NewSessionManager(secret string, maxAge time.Duration, users repository.UserRepository, log *zap.Logger) *SessionManager {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{store: store, users: users, log: log}
}

// RequireAuth rejects requests without a valid session whose user still
// exists, and exposes the user ID on the gin context for handlers.
func (m *SessionManager) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := m.store.Get(c.Request, SessionName)
		if err != nil {
			// A tampered or stale cookie decodes to an error; treat it
			// the same as no session at all.
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		raw, ok := session.Values[sessionUserKey].(string)
		if !ok || raw == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		userID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		if _, err := m.users.FindByID(c.Request.Context(), userID); err != nil {
			// A missing row means the session is stale; anything else is
			// a backend failure and must not masquerade as bad auth.
			if errors.Is(err, apperror.ErrNotFound) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			} else {
				m.log.Error("session user lookup failed", zap.Error(err))
				c.JSON(apperror.MapErrorToStatus(err), gin.H{"error": err.Error()})
			}
			c.Abort()
			return
		}

		c.Set(sessionUserKey, raw)
		c.Next()
	}
}

// LiveUser reports the user behind the request's session cookie, but only
// when the session resolves to an existing account.
func (m *SessionManager) LiveUser(c *gin.Context) (uuid.UUID, bool) {
	session, err := m.store.Get(c.Request, SessionName)
	if err != nil {
		return uuid.Nil, false
	}
	raw, ok := session.Values[sessionUserKey].(string)
	if !ok || raw == "" {
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	if _, err := m.users.FindByID(c.Request.Context(), userID); err != nil {
		return uuid.Nil, false
	}
	return userID, true
}

// SetUser writes the user ID into a fresh session cookie on the response.
func (m *SessionManager) SetUser(c *gin.Context, userID uuid.UUID) error {
	session, _ := m.store.Get(c.Request, SessionName)
	session.Values[sessionUserKey] = userID.String()
	return session.Save(c.Request, c.Writer)
}

// Clear expires the session cookie.
func (m *SessionManager) Clear(c *gin.Context) error {
	session, _ := m.store.Get(c.Request, SessionName)
	delete(session.Values, sessionUserKey)
	session.Options.MaxAge = -1
	return session.Save(c.Request, c.Writer)
}

package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-hub-api/internal/models"
	appErrors "github.com/noah-isme/campus-hub-api/pkg/errors"
	"github.com/noah-isme/campus-hub-api/pkg/logger"
	"github.com/noah-isme/campus-hub-api/pkg/response"
)

// ContextSessionKey is the gin context key storing the acting models.Session.
const ContextSessionKey = "currentSession"

type sessionResolver interface {
	ValidateToken(token string) (*models.Session, error)
	Stored(ctx context.Context) (*models.Session, error)
}

// Session requires a bearer token carrying a session. When allowStored is set
// a request without an Authorization header falls back to the stored session.
func Session(sessions sessionResolver, allowStored bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			if !allowStored {
				response.Error(c, appErrors.ErrUnauthorized)
				c.Abort()
				return
			}
			session, err := sessions.Stored(c.Request.Context())
			if err != nil {
				response.Error(c, err)
				c.Abort()
				return
			}
			attach(c, *session)
			c.Next()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		session, err := sessions.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		attach(c, *session)
		c.Next()
	}
}

func attach(c *gin.Context, session models.Session) {
	c.Set(ContextSessionKey, session)
	c.Set(logger.ContextUserKey, session.Email)
}

// SessionFrom returns the session attached by Session.
func SessionFrom(c *gin.Context) (models.Session, bool) {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return models.Session{}, false
	}
	session, ok := value.(models.Session)
	return session, ok
}

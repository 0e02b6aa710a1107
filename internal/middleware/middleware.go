package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lshigami/examroom/internal/apperror"
	"github.com/lshigami/examroom/internal/controller/respond"
	"github.com/lshigami/examroom/internal/model"
	"github.com/lshigami/examroom/internal/service"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	identityKey     = "identity"
)

// RequestLogger tags each request with an id and logs it once it completes.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= 500:
			event = log.Error()
		case status >= 400:
			event = log.Warn()
		default:
			event = log.Info()
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}
		event.
			Str("request_id", id).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

// RequireAuth resolves the bearer token into a service.Identity.
func RequireAuth(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			respond.Error(c, apperror.Unauthenticated("missing bearer token"))
			c.Abort()
			return
		}
		id, err := auth.ParseToken(strings.TrimSpace(token))
		if err != nil {
			respond.Error(c, err)
			c.Abort()
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// RequireRole must run after RequireAuth.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := Identity(c)
		for _, r := range roles {
			if id.Role == r {
				c.Next()
				return
			}
		}
		respond.Error(c, apperror.Forbidden("your role may not access this resource"))
		c.Abort()
	}
}

// Identity returns the caller set by RequireAuth, or the zero Identity.
func Identity(c *gin.Context) service.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(service.Identity); ok {
			return id
		}
	}
	return service.Identity{}
}

// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides the request correlation ID, panic recovery, and access to
// the request-scoped logger:
//
//   - RequestID() reuses an inbound X-Request-ID or mints a UUIDv4, stores it
//     in the Gin context and echoes it on the response.
//   - Recovery() turns panics into the standard JSON 500 envelope and logs the
//     stack with the correlation ID.
//   - LoggerFrom() returns the logger attached by AccessLog, or the global
//     logger when none is attached.
//
// Recommended order: RequestID, AccessLog, Recovery, so that panics are logged
// with the correlation ID already in place.
package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// requestIDKey is the Gin context key under which the request ID is stored.
	requestIDKey = "requestID"
	// loggerKey holds the request-scoped *zerolog.Logger.
	loggerKey = "logger"

	// HeaderRequestID propagates the correlation ID.
	HeaderRequestID = "X-Request-ID"
)

// RequestID attaches (or propagates) a correlation identifier per request.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if rid == "" || len(rid) > 128 {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(HeaderRequestID, rid)
		c.Next()
	}
}

// RequestIDFrom returns the correlation ID set by RequestID, or "".
func RequestIDFrom(c *gin.Context) string {
	if v, ok := c.Get(requestIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return c.Writer.Header().Get(HeaderRequestID)
}

// Recovery intercepts panics, logs a stack trace, and returns a JSON 500 error
// unless a response was already started.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			rid := RequestIDFrom(c)
			LoggerFrom(c).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("request_id", rid).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			c.Header(HeaderRequestID, rid)
			c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody(rid, "internal_error", "internal server error"))
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped zerolog.Logger. Callers can use the
// result without nil checks.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if c != nil {
		if v, ok := c.Get(loggerKey); ok {
			if lg, ok := v.(*zerolog.Logger); ok {
				return lg
			}
		}
	}
	l := log.With().Logger()
	return &l
}

// errorBody mirrors the handlers' ErrorResponse envelope for responses
// written from middleware.
func errorBody(requestID, code, msg string) gin.H {
	return gin.H{"request_id": requestID, "code": code, "message": msg}
}

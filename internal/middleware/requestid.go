package middleware

import (
	"encoding/hex"
	"log/slog"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/simp-lee/logger"
)

const (
	requestIDHeader     = "X-Request-ID"
	requestIDContextKey = "request_id"
	// requestIDLength is the byte length of a generated ID; it is rendered as hex.
	requestIDLength = 16
)

// Upstream IDs must be short and header-safe before they are echoed back.
var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,64}$`)

// RequestIDConfig controls request-id reuse behavior.
type RequestIDConfig struct {
	// TrustUpstream reuses a well-formed X-Request-ID sent by a proxy.
	TrustUpstream bool
}

// RequestID tags every request with a freshly generated ID.
func RequestID() gin.HandlerFunc {
	return RequestIDWithConfig(RequestIDConfig{})
}

// RequestIDWithConfig tags every request with an ID, exposes it in the
// X-Request-ID response header and attaches it to the request context so
// slog records emitted with that context carry a request_id attribute.
func RequestIDWithConfig(cfg RequestIDConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := upstreamRequestID(c, cfg.TrustUpstream)
		if id == "" {
			id = newRequestID()
		}

		c.Set(requestIDContextKey, id)
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(
			logger.WithContextAttrs(c.Request.Context(), slog.String("request_id", id)),
		)

		c.Next()
	}
}

func upstreamRequestID(c *gin.Context, trusted bool) string {
	if !trusted {
		return ""
	}
	id := c.GetHeader(requestIDHeader)
	if !requestIDPattern.MatchString(id) {
		return ""
	}
	return id
}

// GetRequestID returns the ID assigned by RequestID, or "" outside of it.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDContextKey)
}

// newRequestID renders a random UUID as dashless hex.
func newRequestID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

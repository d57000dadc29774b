package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/didip/tollbooth/v6"
	"github.com/didip/tollbooth/v6/limiter"
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/companyemployees/internal/pkg"
)

// RateLimitConfig holds the per-client-IP token bucket settings.
type RateLimitConfig struct {
	// RPS is the refill rate in requests per second.
	RPS float64
	// Burst is the bucket size.
	Burst int
}

// DefaultRateLimitConfig admits 30 requests per 5 minutes per client IP.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{RPS: 30.0 / 300.0, Burst: 30}
}

// RateLimit returns a gin middleware that limits requests per client IP.
// Rejected requests get 429 with the standard JSON envelope.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.RPS <= 0 {
		cfg.RPS = DefaultRateLimitConfig().RPS
	}
	if cfg.Burst < 1 {
		cfg.Burst = int(math.Max(1, cfg.RPS))
	}

	// Idle buckets are dropped once they would have refilled completely.
	ttl := time.Duration(float64(cfg.Burst)/cfg.RPS*float64(time.Second)) + time.Minute

	lmt := tollbooth.NewLimiter(cfg.RPS, &limiter.ExpirableOptions{DefaultExpirationTTL: ttl})
	lmt.SetBurst(cfg.Burst).
		SetIPLookups([]string{"RemoteAddr"}).
		SetIgnoreURL(true).
		SetMessage(http.StatusText(http.StatusTooManyRequests)).
		SetStatusCode(http.StatusTooManyRequests)

	return func(c *gin.Context) {
		if httpErr := tollbooth.LimitByRequest(lmt, c.Writer, c.Request); httpErr != nil {
			c.Header("Retry-After", retryAfterSeconds(cfg.RPS))
			c.AbortWithStatusJSON(httpErr.StatusCode, pkg.Response{
				Code:    httpErr.StatusCode,
				Message: httpErr.Message,
				Data:    nil,
			})
			return
		}
		c.Next()
	}
}

func retryAfterSeconds(rps float64) string {
	secs := int(math.Ceil(1 / rps))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

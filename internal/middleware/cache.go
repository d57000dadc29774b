package middleware

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const cacheStatusHeader = "X-Cache"

// cachedHeaders are the response headers replayed on a cache hit.
var cachedHeaders = []string{"Content-Type", "X-Pagination"}

// CacheConfig holds the response cache settings.
type CacheConfig struct {
	TTL     time.Duration
	MaxSize int
}

// DefaultCacheConfig caches up to 1000 responses for 60 seconds.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{TTL: 60 * time.Second, MaxSize: 1000}
}

type cachedResponse struct {
	status int
	header http.Header
	body   []byte
}

// ResponseCache is a server-side cache of successful GET responses keyed by
// request URI. It sits behind authentication and serves the same body to
// every caller. A nil *ResponseCache caches nothing.
type ResponseCache struct {
	entries *expirable.LRU[string, cachedResponse]
	maxAge  string
}

// NewResponseCache creates a ResponseCache. Zero fields take the defaults.
func NewResponseCache(cfg CacheConfig) *ResponseCache {
	def := DefaultCacheConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = def.MaxSize
	}
	return &ResponseCache{
		entries: expirable.NewLRU[string, cachedResponse](cfg.MaxSize, nil, cfg.TTL),
		maxAge:  strconv.Itoa(int(cfg.TTL.Seconds())),
	}
}

// Cache serves GET requests from the cache and stores 200 responses.
// Only 200 responses carry Cache-Control: public, max-age=TTL.
func (rc *ResponseCache) Cache() gin.HandlerFunc {
	if rc == nil {
		return passThrough
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.URL.RequestURI()
		if hit, ok := rc.entries.Get(key); ok {
			for k, vs := range hit.header {
				for _, v := range vs {
					c.Writer.Header().Add(k, v)
				}
			}
			c.Header("Cache-Control", "public, max-age="+rc.maxAge)
			c.Header(cacheStatusHeader, "HIT")
			c.Writer.WriteHeader(hit.status)
			_, _ = c.Writer.Write(hit.body)
			c.Abort()
			return
		}

		c.Header(cacheStatusHeader, "MISS")

		rec := &recordingWriter{ResponseWriter: c.Writer, cacheControl: "public, max-age=" + rc.maxAge}
		c.Writer = rec
		c.Next()
		c.Writer = rec.ResponseWriter

		if rec.Status() != http.StatusOK || c.IsAborted() {
			return
		}
		header := make(http.Header, len(cachedHeaders))
		for _, h := range cachedHeaders {
			if v := rec.Header().Values(h); len(v) > 0 {
				header[h] = append([]string(nil), v...)
			}
		}
		rc.entries.Add(key, cachedResponse{
			status: rec.Status(),
			header: header,
			body:   bytes.Clone(rec.body.Bytes()),
		})
	}
}

// Invalidate drops every cached response after a successful mutating request.
func (rc *ResponseCache) Invalidate() gin.HandlerFunc {
	if rc == nil {
		return passThrough
	}

	return func(c *gin.Context) {
		c.Next()
		if c.Request.Method != http.MethodGet && c.Writer.Status() < http.StatusBadRequest {
			rc.entries.Purge()
		}
	}
}

// Len returns the number of live entries.
func (rc *ResponseCache) Len() int {
	if rc == nil {
		return 0
	}
	return rc.entries.Len()
}

// recordingWriter tees the response body into a buffer and marks 200
// responses cacheable just before the headers go out.
type recordingWriter struct {
	gin.ResponseWriter
	body         bytes.Buffer
	cacheControl string
}

func (w *recordingWriter) beforeWrite() {
	if !w.Written() && w.Status() == http.StatusOK {
		w.Header().Set("Cache-Control", w.cacheControl)
	}
}

func (w *recordingWriter) WriteHeaderNow() {
	w.beforeWrite()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.beforeWrite()
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *recordingWriter) WriteString(s string) (int, error) {
	w.beforeWrite()
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

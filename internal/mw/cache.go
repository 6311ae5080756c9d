package mw

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

// snapshot is a recorded GET answer.
type snapshot struct {
	status  int
	headers http.Header
	body    []byte
}

// recorder tees the response body so it can be stored after the handler ran.
type recorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w recorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w recorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// responseKey scopes a cached answer to the station user who asked for it.
// Requests without an actor share the anonymous slot.
func responseKey(c *gin.Context) string {
	return ActorFrom(c) + "|" + c.Request.RequestURI
}

// Cache serves repeated dispatch board reads from memory for ttl. It must run
// after Actor so answers are never shared between users.
func Cache(responses *cache.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := responseKey(c)
		if v, found := responses.Get(key); found {
			snap := v.(snapshot)
			for k, vals := range snap.headers {
				c.Writer.Header()[k] = vals
			}
			c.Writer.Header().Set("X-Cache", "HIT")
			c.Writer.WriteHeader(snap.status)
			_, _ = c.Writer.Write(snap.body)
			c.Abort()
			return
		}

		rec := &recorder{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = rec
		c.Next()

		// Errors are never replayed.
		if status := rec.Status(); status >= 200 && status < 300 {
			responses.Set(key, snapshot{
				status:  status,
				headers: rec.Header().Clone(),
				body:    rec.body.Bytes(),
			}, ttl)
		}
	}
}

// FlushOnWrite drops every cached GET response after a successful write,
// so lists never show a record older than the last accepted change.
func FlushOnWrite(responses *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return
		}
		if status := c.Writer.Status(); status >= 200 && status < 300 {
			responses.Flush()
		}
	}
}

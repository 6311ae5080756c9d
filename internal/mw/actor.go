package mw

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// Actor copies the authenticated caller id from header into the request
// context. Authentication itself happens upstream of this service.
func Actor(header string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor := strings.TrimSpace(c.GetHeader(header)); actor != "" {
			c.Set(actorKey, actor)
		}
		c.Next()
	}
}

// ActorFrom returns the caller id set by Actor, or "" when none was sent.
func ActorFrom(c *gin.Context) string {
	return c.GetString(actorKey)
}

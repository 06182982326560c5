package mw

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Header carrying the authenticated actor, set by the fronting auth layer.
// This service does not authenticate; it only stamps the actor into writes.
const ActorHeader = "X-Actor-Id"

// Header carrying the print agent's pre-shared key.
const AgentKeyHeader = "X-Print-Key"

const actorContextKey = "actor"

// Actor requires an actor identity on the request and stores it in the
// context for handlers.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := c.GetHeader(ActorHeader)
		if actor == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing actor identity"})
			return
		}
		c.Set(actorContextKey, actor)
		c.Next()
	}
}

// ActorFrom returns the actor stored by Actor.
func ActorFrom(c *gin.Context) string {
	return c.GetString(actorContextKey)
}

// AgentKey gates the print-queue claim/complete endpoints on the shared
// secret. An empty configured key locks the endpoints entirely.
func AgentKey(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(AgentKeyHeader)
		if expected == "" || subtle.ConstantTimeCompare([]byte(key), []byte(expected)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

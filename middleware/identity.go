package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"hotel-ops/services"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserName = "X-User-Name"

	actorKey = "actor"
)

// Identity records the acting user from the X-User-ID and X-User-Name
// headers. Authenticating those headers is left to the gateway.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := services.Actor{
			ID:   strings.TrimSpace(c.GetHeader(HeaderUserID)),
			Name: strings.TrimSpace(c.GetHeader(HeaderUserName)),
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

// ActorFrom returns the actor stored by Identity.
func ActorFrom(c *gin.Context) (services.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return services.Actor{}, false
	}
	actor, ok := v.(services.Actor)
	return actor, ok
}

// CurrentActor returns the actor or a zero Actor.
func CurrentActor(c *gin.Context) services.Actor {
	actor, _ := ActorFrom(c)
	return actor
}

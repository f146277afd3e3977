package middleware

import (
	"LearnSphere/pkg/logger"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ActorIDCtx    = "actor_id"
	ActorRolesCtx = "actor_roles"
)

type ActorParser interface {
	ParseActor(token string) (uuid.UUID, []string, error)
}

// ActorMiddlewareProvider resolves the authenticated actor from the bearer
// token issued by the external auth service and exposes id + roles to the
// handlers.
type ActorMiddlewareProvider struct {
	log    logger.Log
	parser ActorParser
}

func NewActorMiddlewareProvider(log logger.Log, parser ActorParser) *ActorMiddlewareProvider {
	return &ActorMiddlewareProvider{
		log:    log,
		parser: parser,
	}
}

func (p *ActorMiddlewareProvider) ActorMiddleware(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	var token string
	if parts := strings.Split(authHeader, "Bearer "); len(parts) == 2 {
		token = parts[1]
	}
	if token == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	actorID, roles, err := p.parser.ParseActor(token)
	if err != nil {
		p.log.Info("failed to parse actor token", "error", err.Error())
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid actor token"})
		return
	}

	c.Set(ActorIDCtx, actorID)
	c.Set(ActorRolesCtx, roles)
	c.Next()
}

// ActorID pulls the authenticated actor id out of the gin context.
func ActorID(c *gin.Context) (uuid.UUID, bool) {
	raw, ok := c.Get(ActorIDCtx)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := raw.(uuid.UUID)
	return id, ok
}

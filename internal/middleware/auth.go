package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"

	"storefront/internal/auth"
)

const actorKey = "actor"

// ActorFromContext returns the actor injected by UserAuth, or a zero Actor
// when the request was not authenticated.
func ActorFromContext(c *gin.Context) auth.Actor {
	value, ok := c.Get(actorKey)
	if !ok {
		return auth.Actor{}
	}
	actor, _ := value.(auth.Actor)
	return actor
}

func actorFromHeader(header, secret string) (auth.Actor, error) {
	raw := strings.TrimSpace(header)
	if raw == "" {
		return auth.Actor{}, errors.New("missing token")
	}

	parts := strings.Split(raw, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return auth.Actor{}, errors.New("invalid token format")
	}

	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return auth.Actor{}, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return auth.Actor{}, errors.New("invalid token claims")
	}

	userID, _ := claims["userId"].(string)
	if strings.TrimSpace(userID) == "" {
		return auth.Actor{}, errors.New("userId claim missing")
	}
	role, _ := claims["role"].(string)

	return auth.Actor{ID: userID, Role: role}, nil
}

// UserAuth validates the access token and injects the actor into the
// request context.
func UserAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := actorFromHeader(c.GetHeader("Authorization"), secret)
		if err != nil {
			log.WithError(err).Warn("auth: token rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// AdminAuth validates the token and asks the injected policy whether the
// actor holds admin capability.
func AdminAuth(secret string, policy auth.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := actorFromHeader(c.GetHeader("Authorization"), secret)
		if err != nil {
			log.WithError(err).Warn("auth: token rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if !policy.IsAdmin(actor) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// OptionalUserAuth injects the actor when a valid token is present but
// lets anonymous requests through. Used by cart routes, where anonymous
// actors are keyed by session instead.
func OptionalUserAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.TrimSpace(c.GetHeader("Authorization")) == "" {
			c.Next()
			return
		}

		actor, err := actorFromHeader(c.GetHeader("Authorization"), secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

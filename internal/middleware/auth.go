package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/greenleaf/plant-store-api/internal/model"
	"github.com/greenleaf/plant-store-api/internal/service"
)

// AuthMiddleware requires a valid bearer token and stores the caller identity
// on the request context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := parseBearer(c, secret)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			return
		}
		setActor(c, actor)
		c.Next()
	}
}

// OptionalAuth attaches the caller identity when a valid token is present but
// lets anonymous requests through. Used on routes that serve guests, like
// order placement and capability-style order retrieval.
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor, ok := parseBearer(c, secret); ok {
			setActor(c, actor)
		}
		c.Next()
	}
}

func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := GetActor(c)
		if actor == nil || actor.Role != model.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "admin only"})
			return
		}
		c.Next()
	}
}

func parseBearer(c *gin.Context, secret string) (*service.Actor, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, false
	}

	token, err := jwt.Parse(header[7:], func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, false
	}

	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, false
	}

	role, _ := claims["role"].(string)
	return &service.Actor{ID: userID, Role: model.Role(role)}, true
}

func setActor(c *gin.Context, actor *service.Actor) {
	c.Set("actor", actor)
}

// GetActor returns the authenticated caller, or nil for anonymous requests.
func GetActor(c *gin.Context) *service.Actor {
	v, ok := c.Get("actor")
	if !ok {
		return nil
	}
	actor, _ := v.(*service.Actor)
	return actor
}

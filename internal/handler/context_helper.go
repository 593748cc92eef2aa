package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/laboserve/laboserve-api/internal/middleware"
	"github.com/laboserve/laboserve-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func actorFromContext(c *gin.Context) (models.UserInfo, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		return models.UserInfo{}, false
	}
	return models.UserInfo{ID: claims.UserID, Email: claims.Email, FullName: claims.FullName, Role: claims.Role}, true
}

package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/propertydesk/property-broker/constants"
	"github.com/propertydesk/property-broker/internal/common"
	"github.com/propertydesk/property-broker/internal/entity"
)

const ctxUserKey = "current_user"

// Authenticate verifies the bearer token and loads the account behind
// it. The account must still exist and be active.
func (s *Server) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "NO_TOKEN", "message": "authentication required"})
			return
		}
		claims, err := s.tokens.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "BAD_TOKEN", "message": "invalid or expired token"})
			return
		}
		id, err := primitive.ObjectIDFromHex(claims.Subject)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "BAD_TOKEN", "message": "invalid token subject"})
			return
		}
		u, err := s.users.GetByID(c.Request.Context(), id)
		if err != nil || !u.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "BAD_TOKEN", "message": "account not found or inactive"})
			return
		}
		c.Set(ctxUserKey, u)
		c.Next()
	}
}

// RequireAdmin gates a route to admin accounts.
func (s *Server) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		if u == nil || u.Role != constants.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"code": "FORBIDDEN", "message": "admin access required"})
			return
		}
		c.Next()
	}
}

// RequireActiveSubscription gates listing access behind a live
// subscription. Admins bypass the check. An expired subscription gets
// its own code so the client can route to the renewal page.
func (s *Server) RequireActiveSubscription() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		if u == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "NO_TOKEN", "message": "authentication required"})
			return
		}
		if u.Role == constants.RoleAdmin {
			c.Next()
			return
		}
		_, err := s.subSvc.Current(c.Request.Context(), u.ID)
		if err != nil {
			var appErr *common.AppError
			if errors.As(err, &appErr) && appErr.Code == "SUBSCRIPTION_EXPIRED" {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"code": "SUBSCRIPTION_EXPIRED", "message": "subscription has expired"})
				return
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"code": "NO_SUBSCRIPTION", "message": "active subscription required"})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *entity.User {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*entity.User)
	return u
}

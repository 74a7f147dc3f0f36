package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"time-ledger/internal/identity"
	"time-ledger/internal/models"
)

const callerKey = "Caller"

// InjectCaller resolves the caller from a Bearer token, falling back to the
// session cookie. Requests with neither pass through anonymous.
func InjectCaller(issuer identity.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
			caller, err := issuer.Parse(strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
			c.Set(callerKey, caller)
			c.Next()
			return
		}

		sess := sessions.Default(c)
		if uid, ok := sess.Get("user_id").(uint); ok && uid > 0 {
			role, _ := sess.Get("role").(string)
			c.Set(callerKey, identity.Caller{
				UserID:   uid,
				Elevated: models.User{Role: models.UserRole(role)}.Elevated(),
			})
		}
		c.Next()
	}
}

// CurrentCaller returns the caller put in the context by InjectCaller.
func CurrentCaller(c *gin.Context) (identity.Caller, bool) {
	v, ok := c.Get(callerKey)
	if !ok {
		return identity.Caller{}, false
	}
	caller, ok := v.(identity.Caller)
	return caller, ok && caller.Valid()
}

func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentCaller(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

func RequireElevated() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := CurrentCaller(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if !caller.Elevated {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
		c.Next()
	}
}

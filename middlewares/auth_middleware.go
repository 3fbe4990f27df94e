package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/food-listing-dashboard/utils"
)

// AuthDisabledKey is set on the context when AuthMiddleware let a request
// through because operator auth is switched off.
const AuthDisabledKey = "auth_disabled"

// AuthMiddleware requires a bearer token issued by tokens. A nil manager
// means operator auth is switched off and every request passes.
func AuthMiddleware(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokens == nil {
			c.Set(AuthDisabledKey, true)
			c.Next()
			return
		}

		tokenString := bearerToken(c)
		if tokenString == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("authorization header missing"))
			c.Abort()
			return
		}

		claims, err := tokens.ParseToken(tokenString)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, err)
			c.Abort()
			return
		}

		c.Set("username", claims.Username)
		c.Set("role", claims.Role)
		c.Set("token", tokenString)
		c.Set("token_expiry", claims.ExpiresAt.Time)
		c.Next()
	}
}

// bearerToken reads "Authorization: Bearer <t>", falling back to ?token=
// for clients such as browsers opening a websocket.
func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if !strings.HasPrefix(h, "Bearer ") {
			return ""
		}
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return c.Query("token")
}

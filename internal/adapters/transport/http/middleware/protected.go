package middleware

import (
	"net/http"
	"strings"

	authErrors "github.com/Velarin/ChatHaven/auth-service/internal/domain/auth/errors"
	"github.com/Velarin/ChatHaven/auth-service/internal/domain/auth/model"
	"github.com/gin-gonic/gin"
)

// UserKey is the gin context key the protected middleware stores the
// resolved account under.
const UserKey = "auth.user"

// Protected gates a route behind a bearer access token. Invalid and
// expired tokens get the same response body; the distinction lives in
// logs and metrics only.
func Protected(validate func(c *gin.Context, accessToken string) (model.User, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "missing access token",
				"type":    "MissingToken",
			})
			return
		}

		user, err := validate(c, token)
		if err != nil {
			if authErrors.IsInvalidToken(err) || authErrors.IsExpiredToken(err) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"message": "invalid token",
					"type":    "InvalidToken",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"message": "internal server error",
				"type":    "InternalFailure",
			})
			return
		}

		c.Set(UserKey, user)
		c.Next()
	}
}

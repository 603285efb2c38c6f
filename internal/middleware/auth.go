package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/promptdeck/promptdeck/internal/modules/model"
	"github.com/promptdeck/promptdeck/internal/modules/serializer"
	"github.com/promptdeck/promptdeck/internal/modules/service"
)

const userContextKey = "currentUser"

// Auth resolves the session cookie into the current user. All failures
// produce the same 401 so callers cannot distinguish a missing cookie from
// a bad token or a deleted account.
func Auth(users service.UserService, auth service.AuthService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("not authenticated"))
			return
		}
		email, err := auth.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("not authenticated"))
			return
		}
		user, err := users.GetByEmail(c.Request.Context(), email)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("not authenticated"))
			return
		}
		c.Set(userContextKey, user)
		c.Next()
	}
}

// CurrentUser returns the user resolved by Auth for this request.
func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok
}

package middlewares

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bitbucket.org/mmagritech/farm_backend/config"
	"bitbucket.org/mmagritech/farm_backend/models"
	"bitbucket.org/mmagritech/farm_backend/utils"
)

// SessionMiddleware validates the redis-backed session token and stamps the
// actor's identity into the request context. A request without a token passes
// through unauthenticated; handlers that require an actor reject it
// themselves.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Request.Header.Get("token")
		if token == "" {
			c.Next()
			return
		}
		username, exists, err := config.GetRedisValue("Token:" + token)
		if err != nil || !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		user, err := sessionUser(c, username)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		ctx := utils.SetTokenInContext(c.Request.Context(), token)
		ctx = utils.SetUsernameInContext(ctx, username)
		ctx = utils.SetUserIdInContext(ctx, user.ID)
		ctx = utils.SetUserNameInContext(ctx, user.Name)
		ctx = utils.SetRoleInContext(ctx, string(user.Role))
		if user.Role == models.RoleAdmin {
			ctx = utils.SetIsAdminInContext(ctx, true)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// sessionUser resolves the logged-in user, redis first, DB on a miss.
func sessionUser(c *gin.Context, username string) (*models.User, error) {
	var user models.User
	exists, err := config.GetRedisObject("User:"+username, &user)
	if err == nil && exists {
		return &user, nil
	}

	found, err := models.GetUserByUsername(c.Request.Context(), username)
	if err != nil {
		return nil, err
	}
	_ = config.SetRedisObject("User:"+username, found, 30*time.Minute)
	return found, nil
}

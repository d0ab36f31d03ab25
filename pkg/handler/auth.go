package handler

import (
	"net/http"

	"github.com/devsapp/tiled-upscale-console/pkg/config"
	"github.com/devsapp/tiled-upscale-console/pkg/utils"
	"github.com/gin-gonic/gin"
)

// ApiAuth basic auth against the configured operator, password checked with bcrypt
func ApiAuth(user, passwordHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		name, password, ok := c.Request.BasicAuth()
		if !ok || name != user || !utils.MatchPassword(password, passwordHash) {
			c.Header("WWW-Authenticate", `Basic realm="console"`)
			handleError(c, http.StatusUnauthorized, config.UNAUTHORIZED)
			c.Abort()
			return
		}
		c.Set(userKey, name)
		c.Next()
	}
}

package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/devsapp/tiled-upscale-console/pkg/client"
	"github.com/devsapp/tiled-upscale-console/pkg/module"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"
)

const userKey = "username"

func getBindResult(c *gin.Context, in interface{}) error {
	if err := binding.JSON.Bind(c.Request, in); err != nil {
		return err
	}
	return nil
}

func handleError(c *gin.Context, code int, err string) {
	c.JSON(code, gin.H{"message": err})
}

// handleModuleError operator input errors are 400, everything the backend failed is 502
func handleModuleError(c *gin.Context, err error) {
	var statusErr *client.StatusError
	switch {
	case errors.Is(err, module.ErrNoImage):
		handleError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, module.ErrJobRunning), errors.Is(err, module.ErrNoActiveJob):
		handleError(c, http.StatusConflict, err.Error())
	case module.IsValidation(err):
		handleError(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &statusErr):
		logrus.Warnf("backend answered %d: %s", statusErr.Code, statusErr.Body)
		handleError(c, http.StatusBadGateway, err.Error())
	default:
		handleError(c, http.StatusBadGateway, err.Error())
	}
}

// Stat request latency at debug level
func Stat() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logrus.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
			"status": c.Writer.Status(),
			"user":   c.GetString(userKey),
		}).Debugf("request cost %s", time.Since(start))
	}
}

package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type healthResponse struct {
	Status string `json:"status"`
}

func (a *api) health(c *gin.Context) {
	if err := a.handlers.Health.Ping(c.Request.Context()); err != nil {
		a.logError(c, logMsgRequestFailed, err)
		abortWithDetail(c, http.StatusServiceUnavailable, detailDatabaseDown)

		return
	}

	c.JSON(http.StatusOK, healthResponse{Status: "ok"})
}

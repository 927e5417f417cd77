package httpx

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const RequestTimeout = 5 * time.Second

// NewRouter returns a gin engine with the shared middleware chain plus
// /healthz and /metrics.
func NewRouter(service string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), Logger(), Metrics(service), Timeout(RequestTimeout))
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

package handlers

import (
	"doghouse/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes mounts the public API on r.
func RegisterRoutes(r *gin.Engine) {
	r.Use(metrics.Middleware())

	r.GET("/dog", GetDog)
	r.POST("/save", SaveDog)
	r.GET("/data", GetData)
	r.GET("/healthz", Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
}

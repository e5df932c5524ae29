package http

import (
	"log/slog"

	"github.com/K-Gaydukov/marketplace/internal/adapter/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(h *OrderHandler, authn *middleware.Authn, httpLog *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.MetricsMiddleware(), middleware.Logging(httpLog))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	// Prometheus endpoint (scraped by Prometheus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1", authn.Require())
	{
		v1.GET("/orders", h.ListOrders)
		v1.POST("/orders", h.CreateOrder)
		v1.GET("/orders/:id", h.GetOrder)
		v1.PUT("/orders/:id", h.UpdateOrder)
		v1.DELETE("/orders/:id", h.DeleteOrder)
		v1.PUT("/orders/:id/status", h.UpdateStatus)
		v1.POST("/orders/:id/items", h.AddOrderItem)
		v1.PUT("/orders/:id/items/:itemId", h.UpdateOrderItem)
		v1.DELETE("/orders/:id/items/:itemId", h.DeleteOrderItem)
	}

	return r
}

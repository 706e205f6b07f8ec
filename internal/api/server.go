// Package api exposes the rule management and scan trigger HTTP surface.
package api

import (
	"github.com/gin-gonic/gin"
)

// NewServer creates the HTTP router with all routes configured.
func NewServer(handler *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", handler.GetHealth)

	api := r.Group("/api")
	{
		api.POST("/alerts", handler.CreateAlert)
		api.GET("/alerts", handler.ListAlerts)
		api.POST("/alerts/:id/deactivate", handler.DeactivateAlert)
		api.POST("/scan", handler.RunScan)
		api.GET("/matches", handler.ListMatches)
	}

	return r
}

package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *ClassHandler, authMiddleware gin.HandlerFunc) {
	// Public day schedule, shared with the organization routes' :id parameter.
	g.GET("/organizations/:id/schedule", h.Schedule)

	classes := g.Group("/class-instances")
	classes.Use(authMiddleware)
	{
		classes.GET("", h.List)
		classes.GET("/:id", h.Get)
		classes.POST("", h.Create)
		classes.PATCH("/:id", h.Update)
		classes.POST("/:id/cancel", h.Cancel)
		classes.DELETE("/:id", h.Delete)
	}
}

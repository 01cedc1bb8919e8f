package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *VenueHandler, authMiddleware gin.HandlerFunc) {
	venues := g.Group("/venues")
	venues.Use(authMiddleware)
	{
		venues.GET("", h.List)
		venues.GET("/:id", h.Get)
		venues.POST("", h.Create)
		venues.PATCH("/:id", h.Update)
		venues.DELETE("/:id", h.Delete)
	}
}

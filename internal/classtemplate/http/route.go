package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *TemplateHandler, authMiddleware gin.HandlerFunc) {
	templates := g.Group("/class-templates")
	templates.Use(authMiddleware)
	{
		templates.GET("", h.List)
		templates.GET("/:id", h.Get)
		templates.POST("", h.Create)
		templates.PATCH("/:id", h.Update)
		templates.DELETE("/:id", h.Delete)
		templates.PUT("/:id/cover", h.UploadCover)
	}
}

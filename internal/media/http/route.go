package http

import "github.com/gin-gonic/gin"

// RegisterRoutes registers media routes. Files are public so clients can embed covers.
func RegisterRoutes(r gin.IRouter, handler *Handler, authMiddleware gin.HandlerFunc) {
	group := r.Group("/media")

	group.GET("/:id", handler.ServeFile)
	group.GET("/:id/thumbnail", handler.ServeThumbnail)
	group.GET("/:id/info", handler.Get)

	group.POST("", authMiddleware, handler.Upload)
	group.DELETE("/:id", authMiddleware, handler.Delete)
}

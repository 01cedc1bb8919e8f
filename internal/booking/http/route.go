package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	r.GET("/me/bookings", authMiddleware, h.Mine)
	r.GET("/class-instances/:id/bookings", authMiddleware, h.Roster)

	bookings := r.Group("/bookings")
	bookings.Use(authMiddleware)
	{
		bookings.GET("", h.List)
		bookings.POST("", h.Create)
		bookings.GET("/:id", h.Get)
		bookings.GET("/:id/cancellation", h.CancellationPreview)
		bookings.POST("/:id/cancel", h.Cancel)
		bookings.POST("/:id/confirm", h.Confirm)
		bookings.PUT("/:id/free-cancel", h.GrantFreeCancel)
	}
}

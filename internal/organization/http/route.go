package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers organization-related routes.
func RegisterRoutes(g *gin.RouterGroup, h *OrganizationHandler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	orgGroup := g.Group("/organizations")

	// === Authenticated Routes ===
	orgGroup.Use(authMiddleware)
	{
		orgGroup.GET("", h.List)
		orgGroup.GET("/:id", h.Get)
		orgGroup.POST("/onboard", h.Onboard)
		orgGroup.PATCH("/:id", h.Update)

		// --- Member Management (role checked per handler) ---
		orgGroup.GET("/:id/members", h.ListMembers)
		orgGroup.POST("/:id/members", h.AddMember)
		orgGroup.PATCH("/:id/members/:user_id", h.UpdateMemberRole)
		orgGroup.DELETE("/:id/members/:user_id", h.RemoveMember)
	}

	// === Administration Routes (System Admin Only) ===
	adminGroup := orgGroup.Group("")
	adminGroup.Use(adminMiddleware)
	{
		adminGroup.POST("", h.Create)
		adminGroup.DELETE("/:id", h.Delete)
	}
}

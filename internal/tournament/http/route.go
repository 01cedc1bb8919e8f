package http

import "github.com/gin-gonic/gin"

func RegisterRoutes(g *gin.RouterGroup, h *TournamentHandler, authMiddleware gin.HandlerFunc) {
	g.GET("/class-instances/:id/tournament", authMiddleware, h.GetByClass)

	tournaments := g.Group("/tournaments")
	tournaments.Use(authMiddleware)
	{
		tournaments.POST("", h.Create)
		tournaments.GET("/:id", h.Get)
		tournaments.DELETE("/:id", h.Delete)
		tournaments.POST("/:id/participants", h.AddParticipant)
		tournaments.DELETE("/:id/participants/:participant_id", h.RemoveParticipant)
		tournaments.POST("/:id/import", h.Import)
		tournaments.POST("/:id/start", h.Start)
		tournaments.PUT("/:id/matches/:match_id/result", h.RecordResult)
		tournaments.POST("/:id/advance", h.Advance)
	}
}

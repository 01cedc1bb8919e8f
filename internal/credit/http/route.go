package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *CreditHandler, authMiddleware gin.HandlerFunc) {
	g.GET("/me/credits", authMiddleware, h.MyBalances)

	credits := g.Group("/credits")
	credits.Use(authMiddleware)
	{
		credits.GET("/balance", h.Balance)
		credits.GET("/transactions", h.ListTransactions)
		credits.POST("/purchase", h.Purchase)
		credits.POST("/adjust", h.Adjust)
	}
}

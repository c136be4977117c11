package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	api := router.Group("/api")
	{
		api.POST("/valuations", handler.EvaluateProperty)
		api.GET("/valuations/:property_id/history", handler.GetValuationHistory)
	}
}

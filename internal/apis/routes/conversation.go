package routes

import (
	"resumebot-ai/internal/apis/handlers"
	"resumebot-ai/internal/di"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func SetupConversationRoutes(router *gin.Engine) {
	conversationHandler, err := di.GetConversationHandler()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get conversation handler")
	}
	RegisterConversationRoutes(router, conversationHandler)
}

func RegisterConversationRoutes(router gin.IRouter, h *handlers.ConversationHandler) {
	api := router.Group("/api")
	{
		api.POST("/process", h.Process)
		api.POST("/chat", h.Chat)
		api.POST("/update", h.UpdateDocument)
		api.GET("/documents/:conversationId", h.GetDocuments)

		api.GET("/conversations", h.List)
		api.GET("/conversations/:conversationId", h.GetByID)
		api.DELETE("/conversations/:conversationId", h.Delete)

		api.GET("/document_history/:conversationId/:documentType", h.GetDocumentHistory)
	}
}

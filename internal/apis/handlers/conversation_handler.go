package handlers

import (
	"net/http"
	"strconv"

	"resumebot-ai/internal/apis/dtos"
	"resumebot-ai/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type ConversationHandler struct {
	conversationService services.ConversationService
}

func NewConversationHandler(conversationService services.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversationService: conversationService}
}

// @Summary Create a conversation from a job description and resume
// @Accept json
// @Produce json
// @Param processRequest body dtos.ProcessRequest true "Source inputs"
// @Success 200 {object} dtos.ConversationResponse

func (h *ConversationHandler) Process(c *gin.Context) {
	var req dtos.ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithDetail(c, http.StatusBadRequest, err)
		return
	}

	response, statusCode, err := h.conversationService.Process(c.Request.Context(), &req)
	if err != nil {
		abortWithDetail(c, int(statusCode), err)
		return
	}
	c.JSON(int(statusCode), response)
}

// @Summary Run one chat turn
// @Accept json
// @Produce json
// @Param chatRequest body dtos.ChatRequest true "Chat message"
// @Success 200 {object} dtos.ConversationResponse

func (h *ConversationHandler) Chat(c *gin.Context) {
	var req dtos.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithDetail(c, http.StatusBadRequest, err)
		return
	}

	response, statusCode, err := h.conversationService.Chat(c.Request.Context(), &req)
	if err != nil {
		if response != nil {
			// the turn ran but was not persisted
			c.JSON(int(statusCode), dtos.ChatErrorResponse{Detail: err.Error(), Response: response.Response})
			return
		}
		abortWithDetail(c, int(statusCode), err)
		return
	}
	c.JSON(int(statusCode), response)
}

// @Summary Replace a document directly
// @Accept json
// @Produce json
// @Param updateDocumentRequest body dtos.UpdateDocumentRequest true "Document update"
// @Success 200 {object} dtos.ConversationResponse

func (h *ConversationHandler) UpdateDocument(c *gin.Context) {
	var req dtos.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithDetail(c, http.StatusBadRequest, err)
		return
	}

	response, statusCode, err := h.conversationService.UpdateDocument(c.Request.Context(), &req)
	if err != nil {
		abortWithDetail(c, int(statusCode), err)
		return
	}
	c.JSON(int(statusCode), response)
}

func (h *ConversationHandler) GetDocuments(c *gin.Context) {
	response, statusCode, err := h.conversationService.GetDocuments(c.Request.Context(), c.Param("conversationId"))
	if err != nil {
		abortWithDetail(c, int(statusCode), err)
		return
	}
	c.JSON(int(statusCode), response)
}

// @Summary List conversations, most recently updated first
// @Produce json
// @Param limit query int false "Page size" default(100)
// @Param offset query int false "Offset" default(0)

func (h *ConversationHandler) List(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(services.DefaultListLimit)))
	if err != nil {
		abortWithDetail(c, http.StatusBadRequest, err)
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		abortWithDetail(c, http.StatusBadRequest, err)
		return
	}

	response, statusCode, err := h.conversationService.List(c.Request.Context(), limit, offset)
	if err != nil {
		abortWithDetail(c, int(statusCode), err)
		return
	}
	c.JSON(int(statusCode), response)
}

func (h *ConversationHandler) GetByID(c *gin.Context) {
	response, statusCode, err := h.conversationService.GetByID(c.Request.Context(), c.Param("conversationId"))
	if err != nil {
		abortWithDetail(c, int(statusCode), err)
		return
	}
	c.JSON(int(statusCode), response)
}

func (h *ConversationHandler) Delete(c *gin.Context) {
	response, statusCode, err := h.conversationService.Delete(c.Request.Context(), c.Param("conversationId"))
	if err != nil {
		abortWithDetail(c, int(statusCode), err)
		return
	}
	c.JSON(int(statusCode), response)
}

// @Summary Revision history of one document, oldest first
// @Produce json
// @Param conversationId path string true "Conversation ID"
// @Param documentType path string true "resume or cover_letter"

func (h *ConversationHandler) GetDocumentHistory(c *gin.Context) {
	response, statusCode, err := h.conversationService.GetDocumentHistory(
		c.Request.Context(),
		c.Param("conversationId"),
		c.Param("documentType"),
	)
	if err != nil {
		abortWithDetail(c, int(statusCode), err)
		return
	}
	c.JSON(int(statusCode), response)
}

func abortWithDetail(c *gin.Context, statusCode int, err error) {
	if statusCode >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
	}
	c.AbortWithStatusJSON(statusCode, dtos.ErrorResponse{Detail: err.Error()})
}

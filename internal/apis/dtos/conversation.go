package dtos

import "time"

type ProcessRequest struct {
	JobDescription  string `json:"jobDescription" binding:"required"`
	Resume          string `json:"resume" binding:"required"`
	PersonalSummary string `json:"personalSummary"`
}

type ChatRequest struct {
	Message        string `json:"message" binding:"required"`
	ConversationID string `json:"conversationId" binding:"required"`
}

type UpdateDocumentRequest struct {
	ConversationID string `json:"conversationId" binding:"required"`
	DocumentType   string `json:"documentType" binding:"required"`
	Content        string `json:"content"`
}

// ConversationResponse is returned by process, chat and update.
type ConversationResponse struct {
	ConversationID  string `json:"conversationId"`
	Response        string `json:"response"`
	OptimizedResume string `json:"optimizedResume"`
	CoverLetter     string `json:"coverLetter"`
}

type DocumentsResponse struct {
	OptimizedResume string `json:"optimizedResume"`
	CoverLetter     string `json:"coverLetter"`
}

type ConversationSummary struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ConversationListResponse struct {
	Conversations []ConversationSummary `json:"conversations"`
}

type DeleteConversationResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type ConversationDocuments struct {
	JobDescription  string `json:"jobDescription"`
	Resume          string `json:"resume"`
	PersonalSummary string `json:"personalSummary"`
	OptimizedResume string `json:"optimizedResume"`
	CoverLetter     string `json:"coverLetter"`
}

type ConversationDetailResponse struct {
	ConversationID string                `json:"conversationId"`
	Messages       []MessageResponse     `json:"messages"`
	Documents      ConversationDocuments `json:"documents"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
}

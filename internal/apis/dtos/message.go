package dtos

import "time"

type MessageResponse struct {
	ID        uint                   `json:"id"`
	Role      string                 `json:"role"`
	Content   string                 `json:"content"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// RevisionMessage is the back-referenced message attached to a revision.
type RevisionMessage struct {
	Content   string    `json:"content"`
	Role      string    `json:"role"`
	Timestamp time.Time `json:"timestamp"`
}

type RevisionResponse struct {
	ID        uint             `json:"id"`
	Content   string           `json:"content"`
	Timestamp time.Time        `json:"timestamp"`
	Feedback  string           `json:"feedback"`
	MessageID *uint            `json:"messageId,omitempty"`
	Message   *RevisionMessage `json:"message,omitempty"`
}

type DocumentHistoryResponse struct {
	ConversationID string             `json:"conversationId"`
	DocumentType   string             `json:"documentType"`
	Revisions      []RevisionResponse `json:"revisions"`
}

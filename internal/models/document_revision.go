package models

import "time"

// DocumentRevision is an append-only snapshot of one document kind. MessageID points at the
// message of the turn that produced it; bootstrap revisions point at the bootstrap reply.
type DocumentRevision struct {
	ID             uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ConversationID string    `gorm:"column:conversation_id;size:64;not null;index:idx_revisions_conversation_kind" json:"conversation_id"`
	DocumentType   string    `gorm:"column:document_type;size:32;not null;index:idx_revisions_conversation_kind" json:"document_type"`
	Content        string    `gorm:"column:content;type:text" json:"content"`
	Timestamp      time.Time `gorm:"column:timestamp;not null" json:"timestamp"`
	Feedback       string    `gorm:"column:feedback;type:text" json:"feedback"`
	MessageID      *uint     `gorm:"column:message_id" json:"message_id,omitempty"`
}

func (DocumentRevision) TableName() string {
	return "document_revisions"
}

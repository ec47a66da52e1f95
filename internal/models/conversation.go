package models

import "resumebot-ai/internal/constants"

// Conversation is the persisted row. The three source inputs never change after creation.
type Conversation struct {
	ID              string `gorm:"column:id;primaryKey;size:64" json:"id"`
	JobDescription  string `gorm:"column:job_description;type:text" json:"job_description"`
	SourceResume    string `gorm:"column:resume;type:text" json:"resume"`
	PersonalSummary string `gorm:"column:personal_summary;type:text" json:"personal_summary"`
	OptimizedResume string `gorm:"column:optimized_resume;type:text" json:"optimized_resume"`
	CoverLetter     string `gorm:"column:cover_letter;type:text" json:"cover_letter"`
	Base
}

func (Conversation) TableName() string {
	return "conversations"
}

// SourceInputs are the user-supplied inputs a conversation is bootstrapped from.
type SourceInputs struct {
	JobDescription  string
	Resume          string
	PersonalSummary string
}

// InitialDocuments is what the bootstrap procedure produced.
type InitialDocuments struct {
	OptimizedResume string
	CoverLetter     string
	Summary         string
}

func NewConversation(id string, inputs SourceInputs, docs InitialDocuments) *Conversation {
	return &Conversation{
		ID:              id,
		JobDescription:  inputs.JobDescription,
		SourceResume:    inputs.Resume,
		PersonalSummary: inputs.PersonalSummary,
		OptimizedResume: docs.OptimizedResume,
		CoverLetter:     docs.CoverLetter,
		Base:            NewBase(),
	}
}

// Document returns the current text for a document kind.
func (c *Conversation) Document(kind string) string {
	switch kind {
	case constants.DocumentTypeCoverLetter:
		return c.CoverLetter
	default:
		return c.OptimizedResume
	}
}

// SetDocument overwrites exactly one document field.
func (c *Conversation) SetDocument(kind, content string) {
	switch kind {
	case constants.DocumentTypeCoverLetter:
		c.CoverLetter = content
	case constants.DocumentTypeResume:
		c.OptimizedResume = content
	}
}

// ConversationState is the in-memory unit a turn operates on: the row plus its message log.
type ConversationState struct {
	Conversation
	Messages []*Message
}

// Clone deep-copies the state so a turn never mutates the caller's copy.
func (s *ConversationState) Clone() *ConversationState {
	out := &ConversationState{Conversation: s.Conversation}
	out.Messages = make([]*Message, 0, len(s.Messages))
	for _, m := range s.Messages {
		out.Messages = append(out.Messages, m.Clone())
	}
	return out
}

// LatestUserMessage returns the newest user message, or nil.
func (s *ConversationState) LatestUserMessage() *Message {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == constants.MessageRoleUser {
			return s.Messages[i]
		}
	}
	return nil
}

func (s *ConversationState) Append(msgs ...*Message) {
	s.Messages = append(s.Messages, msgs...)
}

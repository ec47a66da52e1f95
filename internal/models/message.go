package models

import (
	"maps"
	"strings"
	"time"

	"resumebot-ai/internal/constants"

	"gorm.io/datatypes"
)

// Message is one role-tagged entry of a conversation log. Role is the discriminant; ToolCalls is
// only set on assistant replies and ToolCallID/ToolName only on tool results.
type Message struct {
	ID         uint // zero until persisted
	Role       constants.MessageRole
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
	ToolName   string
	Metadata   map[string]interface{}
	CreatedAt  time.Time
}

func newMessage(role constants.MessageRole, content string) *Message {
	return &Message{
		Role:      role,
		Content:   content,
		Metadata:  map[string]interface{}{},
		CreatedAt: Now(),
	}
}

func NewUserMessage(content string) *Message {
	return newMessage(constants.MessageRoleUser, content)
}

func NewAssistantMessage(content string) *Message {
	return newMessage(constants.MessageRoleAssistant, content)
}

func NewSystemContextMessage(content string) *Message {
	return newMessage(constants.MessageRoleSystemContext, content)
}

func NewToolResultMessage(toolCallID, toolName, content string) *Message {
	m := newMessage(constants.MessageRoleToolResult, content)
	m.ToolCallID = toolCallID
	m.ToolName = toolName
	return m
}

// Clone copies the message; metadata values are shared.
func (m *Message) Clone() *Message {
	out := *m
	out.Metadata = maps.Clone(m.Metadata)
	if m.ToolCalls != nil {
		out.ToolCalls = make([]ToolCall, len(m.ToolCalls))
		for i, tc := range m.ToolCalls {
			out.ToolCalls[i] = ToolCall{ID: tc.ID, Name: tc.Name, Arguments: maps.Clone(tc.Arguments)}
		}
	}
	return &out
}

// HasToolCallMarker reports a structured tool call, a tool_calls side-channel entry or a legacy
// function-call descriptor.
func (m *Message) HasToolCallMarker() bool {
	if len(m.ToolCalls) > 0 {
		return true
	}
	if _, ok := m.Metadata[constants.MetadataKeyToolCalls]; ok {
		return true
	}
	_, ok := m.Metadata[constants.MetadataKeyFunctionCall]
	return ok
}

// WantsTool is the branch predicate for an assistant reply. Besides an explicit tool-call
// marker, an empty reply with any side-channel metadata also counts. That fallback can catch a
// genuinely empty advisory reply; the orchestrator then finds no resolvable tool and answers
// with fixed guidance.
func (m *Message) WantsTool() bool {
	if m.HasToolCallMarker() {
		return true
	}
	return strings.TrimSpace(m.Content) == "" && len(m.Metadata) > 0
}

func (m *Message) IsMalformedCall() bool {
	reason, _ := m.Metadata[constants.MetadataKeyFinishReason].(string)
	return reason == constants.FinishReasonMalformedFunctionCall
}

// IsNoise marks assistant messages with neither visible text nor a tool-call marker.
func (m *Message) IsNoise() bool {
	return m.Role == constants.MessageRoleAssistant &&
		strings.TrimSpace(m.Content) == "" &&
		!m.HasToolCallMarker()
}

// IsToolChannel reports entries internal to tool dispatch: tool results and assistant
// messages whose only purpose is to carry a tool call.
func (m *Message) IsToolChannel() bool {
	switch m.Role {
	case constants.MessageRoleToolResult:
		return true
	case constants.MessageRoleAssistant:
		return m.HasToolCallMarker()
	}
	return false
}

// RequestedToolCall returns the first structured tool call, falling back to the tool_calls
// side channel and then the legacy function-call descriptor in metadata. Nil when none is usable.
func (m *Message) RequestedToolCall() *ToolCall {
	if len(m.ToolCalls) > 0 {
		tc := m.ToolCalls[0]
		return &tc
	}
	if first, ok := firstSideChannelCall(m.Metadata[constants.MetadataKeyToolCalls]); ok {
		if tc, ok := toolCallFromValue(first); ok {
			return &tc
		}
	}
	raw, ok := m.Metadata[constants.MetadataKeyFunctionCall]
	if !ok {
		return nil
	}
	tc, ok := toolCallFromValue(raw)
	if !ok {
		return nil
	}
	return &tc
}

func firstSideChannelCall(raw interface{}) (interface{}, bool) {
	switch calls := raw.(type) {
	case []interface{}:
		if len(calls) > 0 {
			return calls[0], true
		}
	case []map[string]interface{}:
		if len(calls) > 0 {
			return calls[0], true
		}
	}
	return nil, false
}

// MessageRecord is the persisted form of a Message. Tool-call descriptors and tool-result
// identifiers are folded into the metadata column.
type MessageRecord struct {
	ID             uint              `gorm:"column:id;primaryKey;autoIncrement"`
	ConversationID string            `gorm:"column:conversation_id;size:64;not null;index"`
	Timestamp      time.Time         `gorm:"column:timestamp;not null"`
	Role           string            `gorm:"column:role;size:32;not null"`
	Content        string            `gorm:"column:content;type:text"`
	Metadata       datatypes.JSONMap `gorm:"column:metadata"`
}

func (MessageRecord) TableName() string {
	return "messages"
}

func (m *Message) ToRecord(conversationID string) *MessageRecord {
	meta := datatypes.JSONMap{}
	for k, v := range m.Metadata {
		meta[k] = v
	}
	if len(m.ToolCalls) > 0 {
		calls := make([]interface{}, 0, len(m.ToolCalls))
		for _, tc := range m.ToolCalls {
			calls = append(calls, tc.toMap())
		}
		meta[constants.MetadataKeyToolCalls] = calls
	}
	if m.Role == constants.MessageRoleToolResult {
		meta[constants.MetadataKeyToolCallID] = m.ToolCallID
		meta[constants.MetadataKeyToolName] = m.ToolName
	}

	ts := m.CreatedAt
	if ts.IsZero() {
		ts = Now()
	}
	return &MessageRecord{
		ID:             m.ID,
		ConversationID: conversationID,
		Timestamp:      ts,
		Role:           string(m.Role),
		Content:        m.Content,
		Metadata:       meta,
	}
}

// ToMessage rebuilds the role-typed message, lifting reserved keys back out of metadata.
func (r *MessageRecord) ToMessage() *Message {
	m := &Message{
		ID:        r.ID,
		Role:      constants.MessageRole(r.Role),
		Content:   r.Content,
		Metadata:  map[string]interface{}{},
		CreatedAt: r.Timestamp,
	}
	for k, v := range r.Metadata {
		m.Metadata[k] = v
	}

	if raw, ok := m.Metadata[constants.MetadataKeyToolCalls].([]interface{}); ok {
		for _, v := range raw {
			if tc, ok := toolCallFromValue(v); ok {
				m.ToolCalls = append(m.ToolCalls, tc)
			}
		}
		delete(m.Metadata, constants.MetadataKeyToolCalls)
	}
	if m.Role == constants.MessageRoleToolResult {
		m.ToolCallID, _ = m.Metadata[constants.MetadataKeyToolCallID].(string)
		m.ToolName, _ = m.Metadata[constants.MetadataKeyToolName].(string)
		delete(m.Metadata, constants.MetadataKeyToolCallID)
		delete(m.Metadata, constants.MetadataKeyToolName)
	}
	return m
}

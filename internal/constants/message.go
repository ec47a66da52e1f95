package constants

type MessageRole string

const (
	MessageRoleUser          MessageRole = "user"
	MessageRoleAssistant     MessageRole = "assistant"
	MessageRoleToolResult    MessageRole = "tool_result"
	MessageRoleSystemContext MessageRole = "system_context" // transient, never persisted
)

// Side-channel metadata keys.
const (
	MetadataKeyToolCalls    = "tool_calls"
	MetadataKeyFunctionCall = "function_call"
	MetadataKeyFinishReason = "finish_reason"
	MetadataKeyToolCallID   = "tool_call_id"
	MetadataKeyToolName     = "name"
)

const (
	BootstrapUserMessage = "I need help optimizing my resume and creating a cover letter for this job. Can you please help me with that?"

	BootstrapAssistantMessageFormat = "I've created an optimized version of your resume and a cover letter tailored to the job description. Here's a summary of the optimizations: \n\n%s\n\nHow would you like to proceed? Would you like to make any specific changes to either document?"
)

// Fixed replies used when the model gives nothing usable.
const (
	MalformedCallFallbackReply = "I'm having trouble processing your request. Let me try a different approach."
	UnusableReplyFallback      = "I couldn't process your request properly. Please try with different wording."
	GenericUpdateConfirmation  = "I've updated the document as requested."
)

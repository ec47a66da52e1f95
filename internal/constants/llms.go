package constants

const (
	OpenAI = "openai"
	Gemini = "gemini"
)

const (
	OpenAIModel               = "gpt-4o"
	OpenAITemperature         = 0.7
	OpenAIMaxCompletionTokens = 8192
)

const (
	GeminiModel               = "gemini-2.0-flash"
	GeminiTemperature         = 0.7
	GeminiMaxCompletionTokens = 8192
)

// Finish reasons recorded in a reply's side channel under MetadataKeyFinishReason.
const (
	FinishReasonStop                  = "STOP"
	FinishReasonToolCalls             = "TOOL_CALLS"
	FinishReasonMaxTokens             = "MAX_TOKENS"
	FinishReasonSafety                = "SAFETY"
	FinishReasonMalformedFunctionCall = "MALFORMED_FUNCTION_CALL"
	FinishReasonOther                 = "OTHER"
)

package constants

const (
	DocumentTypeResume      = "resume"
	DocumentTypeCoverLetter = "cover_letter"
)

// InitialRevisionFeedback marks the revision written when a conversation is created.
const InitialRevisionFeedback = "Initial version"

const (
	ToolUpdateResume      = "update_resume"
	ToolUpdateCoverLetter = "update_cover_letter"
)

const (
	ToolArgResume      = "resume"
	ToolArgCoverLetter = "cover_letter"
	ToolArgFeedback    = "feedback"
)

// Bootstrap step names, reported by BootstrapError.
const (
	BootstrapStepOptimizeResume   = "optimize_resume"
	BootstrapStepDraftCoverLetter = "draft_cover_letter"
	BootstrapStepSummarize        = "summarize_optimizations"
)

func IsValidDocumentType(documentType string) bool {
	return documentType == DocumentTypeResume || documentType == DocumentTypeCoverLetter
}

// DocumentTypeTitle returns the human readable name, ex: cover_letter -> Cover Letter
func DocumentTypeTitle(documentType string) string {
	switch documentType {
	case DocumentTypeResume:
		return "Resume"
	case DocumentTypeCoverLetter:
		return "Cover Letter"
	}
	return documentType
}

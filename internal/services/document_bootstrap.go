package services

import (
	"context"
	"fmt"

	"resumebot-ai/internal/apperrors"
	"resumebot-ai/internal/constants"
	"resumebot-ai/internal/metrics"
	"resumebot-ai/internal/models"
	"resumebot-ai/pkg/llm"

	"github.com/rs/zerolog/log"
)

// DocumentBootstrap produces the first optimized resume, cover letter and change summary.
type DocumentBootstrap interface {
	Run(ctx context.Context, inputs models.SourceInputs) (*models.InitialDocuments, error)
}

type documentBootstrap struct {
	llmClient llm.Client
}

func NewDocumentBootstrap(llmClient llm.Client) DocumentBootstrap {
	return &documentBootstrap{llmClient: llmClient}
}

// Run attempts all three prompts in order even when an earlier one fails. Any failure yields an
// *apperrors.BootstrapError naming every failed step.
func (b *documentBootstrap) Run(ctx context.Context, inputs models.SourceInputs) (*models.InitialDocuments, error) {
	var failures []apperrors.BootstrapStepFailure
	step := func(name, prompt string) string {
		text, err := llm.GenerateText(ctx, b.llmClient, prompt)
		if err != nil {
			log.Error().Err(err).Str("step", name).Msg("Bootstrap step failed")
			metrics.RecordBootstrapFailure(name)
			failures = append(failures, apperrors.BootstrapStepFailure{Step: name, Err: err})
			return ""
		}
		return text
	}

	docs := &models.InitialDocuments{}
	docs.OptimizedResume = step(constants.BootstrapStepOptimizeResume,
		fmt.Sprintf(constants.OptimizeResumePrompt, inputs.JobDescription, inputs.Resume, inputs.PersonalSummary))
	docs.CoverLetter = step(constants.BootstrapStepDraftCoverLetter,
		fmt.Sprintf(constants.DraftCoverLetterPrompt, inputs.JobDescription, inputs.Resume, inputs.PersonalSummary))
	docs.Summary = step(constants.BootstrapStepSummarize,
		fmt.Sprintf(constants.SummarizeOptimizationsPrompt, inputs.Resume, docs.OptimizedResume, docs.CoverLetter, inputs.JobDescription))

	if len(failures) > 0 {
		return nil, &apperrors.BootstrapError{Failures: failures}
	}
	return docs, nil
}

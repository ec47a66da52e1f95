// Package apperrors holds the error taxonomy shared by the store, the orchestrator and the
// HTTP layer. Callers wrap these sentinels with fmt.Errorf("...: %w") and classify with errors.Is.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrGenerationFailure is returned when the generation backend errored or returned nothing usable.
	ErrGenerationFailure = errors.New("generation failure")
	// ErrMalformedCall marks a reply whose structured tool invocation could not be parsed.
	ErrMalformedCall = errors.New("malformed structured call")
	ErrNotFound      = errors.New("not found")
	// ErrInvalidArgument is used for bad discriminators such as an unknown document type.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrDuplicateConversation is returned by create when the ID is already taken.
	ErrDuplicateConversation = errors.New("duplicate conversation")
	// ErrConversationWrite wraps any storage I/O failure during save, create or delete.
	ErrConversationWrite = errors.New("conversation write error")
	// ErrConversationRead wraps storage I/O failures during load and list operations.
	ErrConversationRead = errors.New("conversation read error")
)

// BootstrapStepFailure names one failed bootstrap prompt.
type BootstrapStepFailure struct {
	Step string
	Err  error
}

// BootstrapError is returned when one or more of the bootstrap prompts failed.
type BootstrapError struct {
	Failures []BootstrapStepFailure
}

func (e *BootstrapError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.Step, f.Err))
	}
	return "document bootstrap failed: " + strings.Join(parts, "; ")
}

func (e *BootstrapError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// FailedSteps returns the step names in the order they were attempted.
func (e *BootstrapError) FailedSteps() []string {
	steps := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		steps = append(steps, f.Step)
	}
	return steps
}

// HTTPStatus maps an error onto the status code the API should answer with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies pipeline failures. The HTTP layer maps kinds to status
// codes; callers historically only see the message, so the kind is internal.
type ErrorKind string

const (
	// ErrKindConfiguration means a required credential or setting is missing.
	ErrKindConfiguration ErrorKind = "configuration"
	// ErrKindValidation means the source reference itself is unusable
	// (malformed URL, wrong provider, empty spreadsheet, no review column).
	ErrKindValidation ErrorKind = "validation"
	// ErrKindUpstreamJob means the scraping-job service failed, aborted or
	// timed out for this source.
	ErrKindUpstreamJob ErrorKind = "upstream_job"
	// ErrKindExtractionEmpty means zero reviews survived every
	// normalization fallback.
	ErrKindExtractionEmpty ErrorKind = "extraction_empty"
)

// PipelineError is the typed error surfaced by source fetchers and the
// pipeline. Analysis-service failures never produce one: they are absorbed
// locally with defaults.
type PipelineError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *PipelineError) Unwrap() error { return e.Err }

// NewConfigurationError reports a missing credential or setting.
func NewConfigurationError(msg string) *PipelineError {
	return &PipelineError{Kind: ErrKindConfiguration, Message: msg}
}

// NewValidationError reports an unusable source reference.
func NewValidationError(format string, args ...any) *PipelineError {
	return &PipelineError{Kind: ErrKindValidation, Message: fmt.Sprintf(format, args...)}
}

// NewUpstreamJobError reports a scraping-run failure.
func NewUpstreamJobError(msg string, err error) *PipelineError {
	return &PipelineError{Kind: ErrKindUpstreamJob, Message: msg, Err: err}
}

// NewExtractionEmptyError reports that a source yielded no reviews.
func NewExtractionEmptyError(provider string) *PipelineError {
	return &PipelineError{
		Kind:    ErrKindExtractionEmpty,
		Message: fmt.Sprintf("no reviews found for %s source", provider),
	}
}

// KindOf returns the error kind, or "" for untyped errors.
func KindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

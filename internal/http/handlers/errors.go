package handlers

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/reviewlens/reviewlens-api/internal/models"
)

// NewAPIError maps a pipeline error to the appropriate HTTP status error.
// Callers receive the human-readable message; the kind picks the code.
func NewAPIError(err error) error {
	switch models.KindOf(err) {
	case models.ErrKindConfiguration:
		return huma.Error503ServiceUnavailable(err.Error())
	case models.ErrKindValidation:
		return huma.Error422UnprocessableEntity(err.Error())
	case models.ErrKindUpstreamJob:
		return huma.Error502BadGateway(err.Error())
	case models.ErrKindExtractionEmpty:
		return huma.Error404NotFound(err.Error())
	default:
		return huma.Error500InternalServerError("internal error", err)
	}
}

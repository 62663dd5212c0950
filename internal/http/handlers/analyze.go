package handlers

import (
	"context"
	"time"

	"github.com/reviewlens/reviewlens-api/internal/models"
	"github.com/reviewlens/reviewlens-api/internal/service"
)

// AnalyzeHandler runs the review analysis pipeline.
type AnalyzeHandler struct {
	pipeline *service.PipelineService
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(pipeline *service.PipelineService) *AnalyzeHandler {
	return &AnalyzeHandler{pipeline: pipeline}
}

// AnalyzeInput represents an analyze request. Exactly one of url, text or
// file is expected depending on kind.
type AnalyzeInput struct {
	Body struct {
		Kind string `json:"kind" enum:"text,spreadsheet,web,maps,hospitality,booking" doc:"Source kind"`
		URL  string `json:"url,omitempty" doc:"Source URL (web, maps, hospitality, booking)"`
		Text string `json:"text,omitempty" doc:"Pasted review text, one review per line (text kind)"`
		File []byte `json:"file,omitempty" doc:"Base64-encoded spreadsheet content (spreadsheet kind)"`
	}
}

// AnalyzeOutput represents an analyze response.
type AnalyzeOutput struct {
	Body AnalyzeResponseBody
}

// AnalyzeResponseBody wraps the aggregate report with run metadata.
type AnalyzeResponseBody struct {
	ReportID   string                  `json:"report_id" doc:"ID for later retrieval via GET /v1/reports/{id}"`
	DurationMs int64                   `json:"duration_ms" doc:"End-to-end pipeline duration"`
	CreatedAt  time.Time               `json:"created_at"`
	Report     *models.AggregateReport `json:"report"`
}

// Analyze runs the full pipeline for one source reference.
func (h *AnalyzeHandler) Analyze(ctx context.Context, input *AnalyzeInput) (*AnalyzeOutput, error) {
	ref := models.SourceReference{
		Kind:      models.SourceKind(input.Body.Kind),
		URL:       input.Body.URL,
		RawText:   input.Body.Text,
		FileBytes: input.Body.File,
	}

	stored, err := h.pipeline.Analyze(ctx, ref)
	if err != nil {
		return nil, NewAPIError(err)
	}

	return &AnalyzeOutput{Body: AnalyzeResponseBody{
		ReportID:   stored.ID,
		DurationMs: stored.DurationMs,
		CreatedAt:  stored.CreatedAt,
		Report:     stored.Report,
	}}, nil
}

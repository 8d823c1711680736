package client

import (
	"context"

	"github.com/dmitrijs2005/seowatch/internal/client/models"
)

// AuditResult is the validated payload of a successful audit. Score is
// rounded to a whole number.
type AuditResult struct {
	Score       int
	Positives   []string
	Negatives   []string
	Suggestions []string
	Data        models.ReportData
}

// Auditor runs one SEO audit. Any failure is reported as ErrNoData.
type Auditor interface {
	Audit(ctx context.Context, url string) (*AuditResult, error)
}

// ContentClient talks to the suggestion and content generation service.
// The plan is passed through; the service decides what it allows.
type ContentClient interface {
	Suggestions(ctx context.Context, url string, plan models.Plan) ([]string, error)
	Generate(ctx context.Context, platform, prompt string, plan models.Plan) (string, error)
}

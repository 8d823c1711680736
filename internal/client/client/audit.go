package client

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/dmitrijs2005/seowatch/internal/client/models"
	"github.com/dmitrijs2005/seowatch/internal/netx"
	"github.com/go-playground/validator/v10"
)

type auditRequest struct {
	URL string `json:"url"`
}

type auditResponse struct {
	OK     bool         `json:"ok"`
	Report *auditReport `json:"report"`
}

// auditReport is the report as sent on the wire; the service may send a
// fractional score.
type auditReport struct {
	Score       float64           `json:"score" validate:"gte=0,lte=100"`
	Positives   []string          `json:"positives"`
	Negatives   []string          `json:"negatives"`
	Suggestions []string          `json:"suggestions"`
	Data        models.ReportData `json:"reportData"`
}

type HTTPAuditClient struct {
	endpoint string
	http     *http.Client
	validate *validator.Validate
}

func NewHTTPAuditClient(endpoint string, timeout time.Duration) *HTTPAuditClient {
	return &HTTPAuditClient{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Audit posts the URL to the audit service. Transport errors, non-2xx
// statuses, malformed bodies, ok=false and payloads failing validation all
// come back wrapped in ErrNoData.
func (c *HTTPAuditClient) Audit(ctx context.Context, url string) (*AuditResult, error) {
	var resp auditResponse
	if err := netx.PostJSON(ctx, c.http, c.endpoint, auditRequest{URL: url}, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoData, err)
	}
	if !resp.OK || resp.Report == nil {
		return nil, fmt.Errorf("%w: audit not ok", ErrNoData)
	}
	if resp.Report.Data.SchemaVersion == 0 {
		// reportData absent from the payload
		resp.Report.Data = models.DefaultReportData()
	}
	if err := c.validate.Struct(resp.Report); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoData, err)
	}

	r := resp.Report
	return &AuditResult{
		Score:       models.ClampScore(int(math.Round(r.Score))),
		Positives:   orEmpty(r.Positives),
		Negatives:   orEmpty(r.Negatives),
		Suggestions: orEmpty(r.Suggestions),
		Data:        r.Data,
	}, nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

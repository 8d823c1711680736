package models

import (
	"encoding/json"
	"time"
)

// ReportDataVersion is the current reportData schema version.
const ReportDataVersion = 1

// ReportData is the fixed-shape technical summary attached to a scan report.
// Missing fields decode to their defaults.
type ReportData struct {
	SchemaVersion         int      `json:"schemaVersion" validate:"gte=1"`
	HasTitle              bool     `json:"hasTitle"`
	HasMetaDescription    bool     `json:"hasMetaDescription"`
	HasH1                 bool     `json:"hasH1"`
	HasCanonical          bool     `json:"hasCanonical"`
	HasRobotsTxt          bool     `json:"hasRobotsTxt"`
	HasSitemap            bool     `json:"hasSitemap"`
	IsHTTPS               bool     `json:"isHttps"`
	IsMobileFriendly      bool     `json:"isMobileFriendly"`
	TitleLength           int      `json:"titleLength" validate:"gte=0"`
	MetaDescriptionLength int      `json:"metaDescriptionLength" validate:"gte=0"`
	WordCount             int      `json:"wordCount" validate:"gte=0"`
	ImagesWithoutAlt      int      `json:"imagesWithoutAlt" validate:"gte=0"`
	LoadTimeMs            int      `json:"loadTimeMs" validate:"gte=0"`
	MissingKeywords       []string `json:"missingKeywords"`
	BrokenLinks           []string `json:"brokenLinks"`
}

// DefaultReportData returns the zero report with the current version and
// empty (non-nil) lists.
func DefaultReportData() ReportData {
	return ReportData{
		SchemaVersion:   ReportDataVersion,
		MissingKeywords: []string{},
		BrokenLinks:     []string{},
	}
}

func (d *ReportData) UnmarshalJSON(b []byte) error {
	type plain ReportData
	v := plain(DefaultReportData())
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v.SchemaVersion == 0 {
		v.SchemaVersion = ReportDataVersion
	}
	if v.MissingKeywords == nil {
		v.MissingKeywords = []string{}
	}
	if v.BrokenLinks == nil {
		v.BrokenLinks = []string{}
	}
	*d = ReportData(v)
	return nil
}

// ScanReport is the immutable result of one audit run.
type ScanReport struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"ownerId"`
	ResourceURL string     `json:"resourceUrl"`
	Score       int        `json:"score"`
	Positives   []string   `json:"positives"`
	Negatives   []string   `json:"negatives"`
	Suggestions []string   `json:"suggestions"`
	CreatedAt   time.Time  `json:"createdAt"`
	Data        ReportData `json:"reportData"`
	// Fallback marks reports synthesized when the audit service gave no data.
	Fallback bool `json:"fallback,omitempty"`
}

// ClampScore keeps a score inside [0,100].
func ClampScore(s int) int {
	switch {
	case s < 0:
		return 0
	case s > 100:
		return 100
	default:
		return s
	}
}

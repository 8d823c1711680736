package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/seowatch/internal/client/models"
)

const timeLayout = "2006-01-02 15:04"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func activeLabel(active bool) string {
	if active {
		return "active"
	}
	return "paused"
}

func (a *App) printIdentity(i *models.Identity) {
	a.printf("User:    %s\n", i.Username)
	if i.Email != "" {
		a.printf("Email:   %s\n", i.Email)
	}
	a.printf("Plan:    %s\n", i.Plan)
	if i.Capabilities().RequiresCredit {
		a.printf("Credit:  %d\n", i.Credit)
	} else {
		a.printf("Credit:  unlimited\n")
	}
	a.printf("Since:   %s\n", formatTime(i.CreatedAt))
}

func (a *App) printResources(list []models.TrackedResource) {
	tw := tabwriter.NewWriter(a.out, 0, 2, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tURL\tFREQ\tSTATUS\tSTATE\tLAST SCAN\tNEXT SCAN")
	for _, r := range list {
		last := "-"
		if r.LastScanAt != nil {
			last = formatTime(*r.LastScanAt)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(r.ID), r.URL, r.Frequency, activeLabel(r.Active),
			a.scanner.State(r.ID), last, formatTime(r.NextScanAt))
	}
	_ = tw.Flush()
}

func (a *App) printReport(r *models.ScanReport) {
	marker := ""
	if r.Fallback {
		marker = " (estimated, audit service gave no data)"
	}
	a.printf("=== %s  score %d/100  %s%s\n", r.ResourceURL, r.Score, formatTime(r.CreatedAt), marker)
	for _, p := range r.Positives {
		a.printf("  + %s\n", p)
	}
	for _, n := range r.Negatives {
		a.printf("  - %s\n", n)
	}
	for _, s := range r.Suggestions {
		a.printf("  > %s\n", s)
	}
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/seowatch/internal/client/models"
	"github.com/dmitrijs2005/seowatch/internal/client/services"
)

var errAmbiguous = errors.New("ambiguous resource reference")

const minIDPrefix = 4

func (a *App) Add(ctx context.Context, args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return usage("add <url> [weekly|biweekly|monthly]")
	}
	freq := models.FrequencyWeekly
	if len(args) == 2 {
		f, err := models.ParseScanFrequency(args[1])
		if err != nil {
			return err
		}
		freq = f
	}

	r, err := a.resources.Add(ctx, args[0], freq)
	if err != nil {
		return err
	}
	a.printf("Tracking %s (%s), first scan %s. id=%s\n", r.URL, r.Frequency, formatTime(r.NextScanAt), shortID(r.ID))
	return nil
}

func (a *App) Remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("remove <id|url>")
	}
	r, err := a.resolveResource(ctx, args[0])
	if err != nil {
		return err
	}
	if err := a.resources.Remove(ctx, r.ID); err != nil {
		return err
	}
	a.printf("Stopped tracking %s.\n", r.URL)
	return nil
}

func (a *App) List(ctx context.Context) error {
	list, err := a.resources.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.printf("No tracked resources. Use 'add <url>'.\n")
		return nil
	}
	a.printResources(list)
	return nil
}

func (a *App) SetActive(ctx context.Context, args []string, active bool) error {
	if len(args) != 1 {
		if active {
			return usage("activate <id|url>")
		}
		return usage("deactivate <id|url>")
	}
	r, err := a.resolveResource(ctx, args[0])
	if err != nil {
		return err
	}
	updated, err := a.resources.SetActive(ctx, r.ID, active)
	if err != nil {
		return err
	}
	a.printf("%s is now %s.\n", updated.URL, activeLabel(updated.Active))
	return nil
}

func (a *App) Frequency(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("freq <id|url> <weekly|biweekly|monthly>")
	}
	freq, err := models.ParseScanFrequency(args[1])
	if err != nil {
		return err
	}
	r, err := a.resolveResource(ctx, args[0])
	if err != nil {
		return err
	}
	updated, err := a.resources.SetFrequency(ctx, r.ID, freq)
	if err != nil {
		return err
	}
	a.printf("%s is now scanned %s, next scan %s.\n", updated.URL, updated.Frequency, formatTime(updated.NextScanAt))
	return nil
}

func (a *App) Scan(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return usage("scan [id|url]")
	}
	id := ""
	if len(args) == 1 {
		r, err := a.resolveResource(ctx, args[0])
		if err != nil {
			return err
		}
		id = r.ID
	}

	a.printf("Scanning...\n")
	report, err := a.scanner.ScanNow(ctx, id)
	if err != nil {
		return err
	}
	a.printReport(report)
	return nil
}

func (a *App) Reports(ctx context.Context, args []string) error {
	limit := 5
	if len(args) > 1 {
		return usage("reports [n]")
	}
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return usage("reports [n]")
		}
		limit = n
	}

	reports, err := a.resources.Reports(ctx)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		a.printf("No scan reports yet.\n")
		return nil
	}
	if len(reports) > limit {
		reports = reports[:limit]
	}
	for i := range reports {
		a.printReport(&reports[i])
	}
	return nil
}

// resolveResource accepts a full id, a unique id prefix or a URL.
func (a *App) resolveResource(ctx context.Context, ref string) (*models.TrackedResource, error) {
	list, err := a.resources.List(ctx)
	if err != nil {
		return nil, err
	}

	normalized, _ := models.NormalizeURL(ref)
	var matches []models.TrackedResource
	for _, r := range list {
		switch {
		case r.ID == ref, normalized != "" && r.URL == normalized:
			return &r, nil
		case len(ref) >= minIDPrefix && strings.HasPrefix(r.ID, ref):
			matches = append(matches, r)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", services.ErrResourceNotFound, ref)
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", errAmbiguous, ref)
	}
}

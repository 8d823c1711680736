package models

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ScanFrequency is how often a tracked resource is scanned.
type ScanFrequency string

const (
	FrequencyWeekly   ScanFrequency = "weekly"
	FrequencyBiweekly ScanFrequency = "biweekly"
	FrequencyMonthly  ScanFrequency = "monthly"
)

const day = 24 * time.Hour

var (
	ErrUnknownFrequency = errors.New("unknown scan frequency")
	ErrInvalidURL       = errors.New("invalid url")
)

// ParseScanFrequency maps user input onto a known frequency.
func ParseScanFrequency(s string) (ScanFrequency, error) {
	switch f := ScanFrequency(strings.ToLower(strings.TrimSpace(s))); f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFrequency, s)
	}
}

// Interval returns the scan period. Unknown values are treated as weekly.
func (f ScanFrequency) Interval() time.Duration {
	switch f {
	case FrequencyBiweekly:
		return 14 * day
	case FrequencyMonthly:
		return 30 * day
	default:
		return 7 * day
	}
}

// TrackedResource is a website under periodic scan monitoring.
type TrackedResource struct {
	ID         string        `json:"id"`
	OwnerID    string        `json:"ownerId"`
	URL        string        `json:"url"`
	Active     bool          `json:"active"`
	Frequency  ScanFrequency `json:"scanFrequency"`
	LastScanAt *time.Time    `json:"lastScanAt,omitempty"`
	NextScanAt time.Time     `json:"nextScanAt"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// NewTrackedResource creates an active resource whose first scan is due one
// interval after creation.
func NewTrackedResource(ownerID, rawURL string, freq ScanFrequency, now time.Time) (*TrackedResource, error) {
	u, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}
	now = now.UTC()
	return &TrackedResource{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		URL:        u,
		Active:     true,
		Frequency:  freq,
		NextScanAt: now.Add(freq.Interval()),
		CreatedAt:  now,
	}, nil
}

// Due reports whether an active resource should be scanned at now.
func (r *TrackedResource) Due(now time.Time) bool {
	return r.Active && !now.Before(r.NextScanAt)
}

// MarkScanned records a completed run at the given time.
func (r *TrackedResource) MarkScanned(at time.Time) {
	at = at.UTC()
	r.LastScanAt = &at
	r.NextScanAt = at.Add(r.Frequency.Interval())
}

// SetFrequency changes the period and recomputes the next due date from the
// last run, or from creation when it never ran.
func (r *TrackedResource) SetFrequency(f ScanFrequency) {
	r.Frequency = f
	base := r.CreatedAt
	if r.LastScanAt != nil {
		base = *r.LastScanAt
	}
	r.NextScanAt = base.Add(f.Interval())
}

// NormalizeURL turns user input into the canonical form used for
// de-duplication: https by default, lowercase host, no fragment, no trailing
// slash.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidURL
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" || strings.ContainsAny(u.Host, " \t") {
		return "", fmt.Errorf("%w: missing host", ErrInvalidURL)
	}

	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""

	return u.String(), nil
}

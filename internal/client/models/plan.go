package models

import (
	"errors"
	"fmt"
	"strings"
)

// Plan is a subscription tier.
type Plan string

const (
	// PlanMetered pays per scan with credits.
	PlanMetered Plan = "metered"
	// PlanPro is unlimited scanning.
	PlanPro Plan = "pro"
	// PlanAgency is unlimited scanning with every feature enabled.
	PlanAgency Plan = "agency"
)

var ErrUnknownPlan = errors.New("unknown plan")

// ParsePlan maps user input onto a known plan.
func ParsePlan(s string) (Plan, error) {
	switch p := Plan(strings.ToLower(strings.TrimSpace(s))); p {
	case PlanMetered, PlanPro, PlanAgency:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPlan, s)
	}
}

// Feature names a capability that can be switched on per plan.
type Feature string

const (
	FeatureScan              Feature = "scan"
	FeatureAutoScan          Feature = "auto_scan"
	FeatureSuggestions       Feature = "suggestions"
	FeatureContentGeneration Feature = "content_generation"
	FeatureBulkContent       Feature = "bulk_content"
)

// Capability describes what a plan allows.
type Capability struct {
	RequiresCredit bool
	Features       map[Feature]struct{}
}

// Allows reports whether f is enabled.
func (c Capability) Allows(f Feature) bool {
	_, ok := c.Features[f]
	return ok
}

func featureSet(fs ...Feature) map[Feature]struct{} {
	m := make(map[Feature]struct{}, len(fs))
	for _, f := range fs {
		m[f] = struct{}{}
	}
	return m
}

// capabilities is the single place plan gating is decided.
var capabilities = map[Plan]Capability{
	PlanMetered: {
		RequiresCredit: true,
		Features:       featureSet(FeatureScan, FeatureAutoScan, FeatureSuggestions),
	},
	PlanPro: {
		Features: featureSet(FeatureScan, FeatureAutoScan, FeatureSuggestions, FeatureContentGeneration),
	},
	PlanAgency: {
		Features: featureSet(FeatureScan, FeatureAutoScan, FeatureSuggestions, FeatureContentGeneration, FeatureBulkContent),
	},
}

// Capabilities returns the capability row for p. Unknown plans get the
// metered row.
func Capabilities(p Plan) Capability {
	if c, ok := capabilities[p]; ok {
		return c
	}
	return capabilities[PlanMetered]
}

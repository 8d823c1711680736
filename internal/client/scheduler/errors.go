package scheduler

import (
	"errors"

	"github.com/dmitrijs2005/seowatch/internal/common"
)

var (
	ErrNoCredit          = errors.New("no scan credit left")
	ErrNoTrackedResource = errors.New("no tracked resource")
	ErrScanInProgress    = errors.New("scan already in progress")

	ErrNotLoggedIn         = common.ErrNotLoggedIn
	ErrFeatureNotAvailable = common.ErrFeatureNotAvailable

	// errNotDue means another context scanned the resource between the due
	// check and the lease.
	errNotDue = errors.New("resource no longer due")
)

// declineReason is the metrics label for a refused trigger.
func declineReason(err error) string {
	switch {
	case errors.Is(err, ErrNoCredit):
		return "no_credit"
	case errors.Is(err, ErrScanInProgress):
		return "in_progress"
	case errors.Is(err, ErrNoTrackedResource):
		return "no_resource"
	case errors.Is(err, ErrFeatureNotAvailable):
		return "feature"
	case errors.Is(err, ErrNotLoggedIn):
		return "logged_out"
	default:
		return ""
	}
}

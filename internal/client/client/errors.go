package client

import (
	"errors"

	"github.com/dmitrijs2005/seowatch/internal/common"
)

var (
	ErrUnavailable = errors.New("collaborator unavailable")
	ErrNoData      = errors.New("audit returned no data")

	// ErrFeatureNotAvailable is returned when the content service refuses the
	// caller's plan.
	ErrFeatureNotAvailable = common.ErrFeatureNotAvailable
)

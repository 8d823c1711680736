// Package services contains the application services driven by the CLI:
// account, billing, tracked resources and generated content. Each service
// works on the identity named by the device session pointer and writes
// through the hybrid gateway.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/seowatch/internal/client/models"
	"github.com/dmitrijs2005/seowatch/internal/client/store"
	"github.com/dmitrijs2005/seowatch/internal/common"
)

var (
	ErrNotLoggedIn         = common.ErrNotLoggedIn
	ErrFeatureNotAvailable = common.ErrFeatureNotAvailable

	ErrInvalidUsername   = errors.New("username must not be empty")
	ErrUsernameTaken     = errors.New("username already registered")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrDuplicateResource = errors.New("resource already tracked")
	ErrResourceNotFound  = errors.New("resource not found")
	ErrEmptyPrompt       = errors.New("platform and prompt are required")
	ErrBatchTooLarge     = errors.New("too many prompts in one batch")
)

// ScanNotifier is told when something the scheduler depends on has changed.
type ScanNotifier interface {
	Notify()
}

type nopNotifier struct{}

func (nopNotifier) Notify() {}

func notifierOrNop(n ScanNotifier) ScanNotifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

func currentIdentity(ctx context.Context, st *store.Store) (*models.Identity, error) {
	identity, err := st.CurrentIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, ErrNotLoggedIn
	}
	return identity, nil
}

func nowUTC() time.Time { return time.Now().UTC() }

package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/seowatch/internal/client/gateway"
	"github.com/dmitrijs2005/seowatch/internal/client/models"
	"github.com/dmitrijs2005/seowatch/internal/client/state"
	"github.com/dmitrijs2005/seowatch/internal/client/store"
	"github.com/dmitrijs2005/seowatch/internal/logging"
)

// AuthService manages the device session.
//
// Contract:
//   - Register: create a new identity, index it by username and make it current.
//   - Login: make an existing identity current; an unknown username is
//     registered on the spot with the metered plan.
//   - Logout: forget the session pointer. Identity data stays on the device.
//   - Current: the identity named by the session pointer, or nil.
//   - Resume: make the session left by a previous run current again and
//     push its cached data to the remote store if that never happened.
type AuthService interface {
	Register(ctx context.Context, username, email string, plan models.Plan) (*models.Identity, error)
	Login(ctx context.Context, username string) (*models.Identity, error)
	Logout(ctx context.Context) error
	Current(ctx context.Context) (*models.Identity, error)
	Resume(ctx context.Context) (*models.Identity, error)
}

type authService struct {
	store    *store.Store
	gw       gateway.Gateway
	holder   *state.Holder
	notifier ScanNotifier
	log      logging.Logger
	now      func() time.Time
}

// NewAuthService constructs an AuthService. notifier may be nil.
func NewAuthService(st *store.Store, gw gateway.Gateway, holder *state.Holder, notifier ScanNotifier, log logging.Logger) AuthService {
	return &authService{
		store:    st,
		gw:       gw,
		holder:   holder,
		notifier: notifierOrNop(notifier),
		log:      log,
		now:      nowUTC,
	}
}

func (a *authService) Register(ctx context.Context, username, email string, plan models.Plan) (*models.Identity, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrInvalidUsername
	}

	index, err := a.store.UserIndex(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := index[username]; ok {
		return nil, fmt.Errorf("%w: %s", ErrUsernameTaken, username)
	}

	identity := models.NewIdentity(username, strings.TrimSpace(email), plan, a.now())
	if err := a.gw.SaveIdentity(ctx, identity); err != nil {
		return nil, fmt.Errorf("save identity: %w", err)
	}

	index[username] = identity.ID
	if err := a.store.SetUserIndex(ctx, index); err != nil {
		return nil, fmt.Errorf("update user index: %w", err)
	}

	a.log.Info(ctx, "identity registered", "id", identity.ID, "username", username, "plan", string(identity.Plan))
	return identity, a.activate(ctx, identity)
}

func (a *authService) Login(ctx context.Context, username string) (*models.Identity, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrInvalidUsername
	}

	index, err := a.store.UserIndex(ctx)
	if err != nil {
		return nil, err
	}

	id, ok := index[username]
	if !ok {
		return a.Register(ctx, username, "", models.PlanMetered)
	}

	identity := a.gw.GetIdentity(ctx, id)
	if identity == nil {
		// The index outlived the record it pointed to.
		a.log.Warn(ctx, "user index points at a missing identity", "username", username, "id", id)
		delete(index, username)
		if err := a.store.SetUserIndex(ctx, index); err != nil {
			return nil, err
		}
		return a.Register(ctx, username, "", models.PlanMetered)
	}

	a.log.Info(ctx, "logged in", "id", identity.ID, "username", username)
	return identity, a.activate(ctx, identity)
}

// activate points the session at identity and pushes its cached data to the
// remote store if that never happened for this owner.
func (a *authService) activate(ctx context.Context, identity *models.Identity) error {
	if err := a.store.SetSessionPointer(ctx, identity.ID); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	a.holder.Set(identity)
	a.notifier.Notify()

	if err := a.gw.Backfill(ctx, identity.ID); err != nil {
		a.log.Warn(ctx, "backfill not completed", "id", identity.ID, "error", err)
	}
	return nil
}

func (a *authService) Logout(ctx context.Context) error {
	if err := a.store.SetSessionPointer(ctx, ""); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	a.holder.Set(nil)
	a.notifier.Notify()
	a.log.Info(ctx, "logged out")
	return nil
}

func (a *authService) Current(ctx context.Context) (*models.Identity, error) {
	return a.store.CurrentIdentity(ctx)
}

// Resume returns nil when no session was left on the device. A failed
// backfill is logged; the gateway retries it before its next remote read.
func (a *authService) Resume(ctx context.Context) (*models.Identity, error) {
	identity, err := a.store.CurrentIdentity(ctx)
	if err != nil || identity == nil {
		return nil, err
	}
	a.holder.Set(identity)
	a.notifier.Notify()

	if err := a.gw.Backfill(ctx, identity.ID); err != nil {
		a.log.Warn(ctx, "backfill not completed", "id", identity.ID, "error", err)
	}
	a.log.Info(ctx, "session resumed", "id", identity.ID, "username", identity.Username)
	return identity, nil
}

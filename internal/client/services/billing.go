package services

import (
	"context"

	"github.com/dmitrijs2005/seowatch/internal/client/gateway"
	"github.com/dmitrijs2005/seowatch/internal/client/models"
	"github.com/dmitrijs2005/seowatch/internal/client/state"
	"github.com/dmitrijs2005/seowatch/internal/client/store"
	"github.com/dmitrijs2005/seowatch/internal/logging"
)

// BillingService changes what the current identity may spend. Payments are
// simulated: a purchase always succeeds.
type BillingService interface {
	BuyCredits(ctx context.Context, n int) (*models.Identity, error)
	ChangePlan(ctx context.Context, plan models.Plan) (*models.Identity, error)
}

type billingService struct {
	store    *store.Store
	gw       gateway.Gateway
	holder   *state.Holder
	notifier ScanNotifier
	log      logging.Logger
}

func NewBillingService(st *store.Store, gw gateway.Gateway, holder *state.Holder, notifier ScanNotifier, log logging.Logger) BillingService {
	return &billingService{store: st, gw: gw, holder: holder, notifier: notifierOrNop(notifier), log: log}
}

func (b *billingService) BuyCredits(ctx context.Context, n int) (*models.Identity, error) {
	if n <= 0 {
		return nil, ErrInvalidAmount
	}
	identity, err := b.update(ctx, func(i *models.Identity) error {
		i.AddCredits(n)
		return nil
	})
	if err != nil {
		return nil, err
	}
	b.log.Info(ctx, "credits purchased", "id", identity.ID, "amount", n, "credit", identity.Credit)
	return identity, nil
}

func (b *billingService) ChangePlan(ctx context.Context, plan models.Plan) (*models.Identity, error) {
	if _, err := models.ParsePlan(string(plan)); err != nil {
		return nil, err
	}
	identity, err := b.update(ctx, func(i *models.Identity) error {
		i.Plan = plan
		return nil
	})
	if err != nil {
		return nil, err
	}
	b.log.Info(ctx, "plan changed", "id", identity.ID, "plan", string(plan))
	return identity, nil
}

func (b *billingService) update(ctx context.Context, fn func(*models.Identity) error) (*models.Identity, error) {
	current, err := currentIdentity(ctx, b.store)
	if err != nil {
		return nil, err
	}
	identity, err := b.gw.UpdateIdentity(ctx, current.ID, fn)
	if err != nil {
		return nil, err
	}
	b.holder.Set(identity)
	b.notifier.Notify()
	return identity, nil
}

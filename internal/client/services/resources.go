package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/seowatch/internal/client/gateway"
	"github.com/dmitrijs2005/seowatch/internal/client/models"
	"github.com/dmitrijs2005/seowatch/internal/client/store"
	"github.com/dmitrijs2005/seowatch/internal/logging"
)

// ResourceService manages the websites tracked by the current identity and
// exposes their scan history.
type ResourceService interface {
	Add(ctx context.Context, rawURL string, freq models.ScanFrequency) (*models.TrackedResource, error)
	Remove(ctx context.Context, id string) error
	SetActive(ctx context.Context, id string, active bool) (*models.TrackedResource, error)
	SetFrequency(ctx context.Context, id string, freq models.ScanFrequency) (*models.TrackedResource, error)
	List(ctx context.Context) ([]models.TrackedResource, error)
	Reports(ctx context.Context) ([]models.ScanReport, error)
}

type resourceService struct {
	store    *store.Store
	gw       gateway.Gateway
	notifier ScanNotifier
	log      logging.Logger
	now      func() time.Time
}

func NewResourceService(st *store.Store, gw gateway.Gateway, notifier ScanNotifier, log logging.Logger) ResourceService {
	return &resourceService{store: st, gw: gw, notifier: notifierOrNop(notifier), log: log, now: nowUTC}
}

func (s *resourceService) Add(ctx context.Context, rawURL string, freq models.ScanFrequency) (*models.TrackedResource, error) {
	identity, err := currentIdentity(ctx, s.store)
	if err != nil {
		return nil, err
	}
	if freq == "" {
		freq = models.FrequencyWeekly
	}
	if _, err := models.ParseScanFrequency(string(freq)); err != nil {
		return nil, err
	}

	r, err := models.NewTrackedResource(identity.ID, rawURL, freq, s.now())
	if err != nil {
		return nil, err
	}
	for _, existing := range s.gw.GetTrackedResources(ctx, identity.ID) {
		if existing.URL == r.URL {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateResource, r.URL)
		}
	}

	if err := s.gw.SaveTrackedResource(ctx, *r); err != nil {
		return nil, err
	}
	s.notifier.Notify()
	s.log.Info(ctx, "resource added", "id", r.ID, "url", r.URL, "frequency", string(freq))
	return r, nil
}

func (s *resourceService) Remove(ctx context.Context, id string) error {
	identity, r, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.gw.DeleteTrackedResource(ctx, identity.ID, r.ID); err != nil {
		return err
	}
	s.notifier.Notify()
	s.log.Info(ctx, "resource removed", "id", r.ID, "url", r.URL)
	return nil
}

func (s *resourceService) SetActive(ctx context.Context, id string, active bool) (*models.TrackedResource, error) {
	return s.modify(ctx, id, func(r *models.TrackedResource) {
		r.Active = active
	})
}

func (s *resourceService) SetFrequency(ctx context.Context, id string, freq models.ScanFrequency) (*models.TrackedResource, error) {
	if _, err := models.ParseScanFrequency(string(freq)); err != nil {
		return nil, err
	}
	return s.modify(ctx, id, func(r *models.TrackedResource) {
		r.SetFrequency(freq)
	})
}

func (s *resourceService) List(ctx context.Context) ([]models.TrackedResource, error) {
	identity, err := currentIdentity(ctx, s.store)
	if err != nil {
		return nil, err
	}
	return s.gw.GetTrackedResources(ctx, identity.ID), nil
}

func (s *resourceService) Reports(ctx context.Context) ([]models.ScanReport, error) {
	identity, err := currentIdentity(ctx, s.store)
	if err != nil {
		return nil, err
	}
	return s.gw.GetScanReports(ctx, identity.ID), nil
}

func (s *resourceService) modify(ctx context.Context, id string, fn func(*models.TrackedResource)) (*models.TrackedResource, error) {
	_, r, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	fn(r)
	if err := s.gw.SaveTrackedResource(ctx, *r); err != nil {
		return nil, err
	}
	s.notifier.Notify()
	return r, nil
}

func (s *resourceService) find(ctx context.Context, id string) (*models.Identity, *models.TrackedResource, error) {
	identity, err := currentIdentity(ctx, s.store)
	if err != nil {
		return nil, nil, err
	}
	for _, r := range s.gw.GetTrackedResources(ctx, identity.ID) {
		if r.ID == id {
			return identity, &r, nil
		}
	}
	return nil, nil, fmt.Errorf("%w: %s", ErrResourceNotFound, id)
}

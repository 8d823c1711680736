// Package scheduler decides when a tracked resource is scanned and runs the
// scan.
//
// Each resource moves Idle -> Due -> Running -> Cooldown -> Idle. Entry into
// Running is a compare-and-set under the scheduler mutex, so overlapping
// evaluations in one context never run a resource twice, and it is backed
// by a lease row in the device store so that schedulers in other contexts
// sharing the device skip it as well. Credit is reserved at acceptance:
// concurrent scans for one metered owner cannot spend more than the balance.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/dmitrijs2005/seowatch/internal/client/client"
	"github.com/dmitrijs2005/seowatch/internal/client/gateway"
	"github.com/dmitrijs2005/seowatch/internal/client/metrics"
	"github.com/dmitrijs2005/seowatch/internal/client/models"
	"github.com/dmitrijs2005/seowatch/internal/client/state"
	"github.com/dmitrijs2005/seowatch/internal/client/store"
	"github.com/dmitrijs2005/seowatch/internal/logging"
	"github.com/google/uuid"
)

const (
	defaultCheckInterval = time.Minute
	defaultLeaseTTL      = 2 * time.Minute
)

type Options struct {
	// CheckInterval is how often Run re-evaluates due resources.
	CheckInterval time.Duration
	// LeaseTTL bounds how long a crashed context can block a resource.
	LeaseTTL time.Duration
	Now      func() time.Time
	// Rand drives fallback scores; seeded randomly when nil.
	Rand    *rand.Rand
	Metrics *metrics.Metrics
}

type Scheduler struct {
	gw      gateway.Gateway
	store   *store.Store
	holder  *state.Holder
	auditor client.Auditor
	log     logging.Logger
	metrics *metrics.Metrics

	now           func() time.Time
	checkInterval time.Duration
	leaseTTL      time.Duration

	rngMu sync.Mutex
	rng   *rand.Rand

	mu       sync.Mutex
	states   map[string]State
	reserved map[string]int

	notify chan struct{}
}

func New(gw gateway.Gateway, st *store.Store, holder *state.Holder, auditor client.Auditor, log logging.Logger, opts Options) *Scheduler {
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = defaultCheckInterval
	}
	if opts.LeaseTTL <= 0 {
		opts.LeaseTTL = defaultLeaseTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return &Scheduler{
		gw:            gw,
		store:         st,
		holder:        holder,
		auditor:       auditor,
		log:           log.With("component", "scheduler"),
		metrics:       opts.Metrics,
		now:           opts.Now,
		checkInterval: opts.CheckInterval,
		leaseTTL:      opts.LeaseTTL,
		rng:           opts.Rand,
		states:        make(map[string]State),
		reserved:      make(map[string]int),
		notify:        make(chan struct{}, 1),
	}
}

// State reports where resourceID is in the scan cycle.
func (s *Scheduler) State(resourceID string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[resourceID]
}

// Notify asks Run for an evaluation soon. It never blocks; several calls
// before Run wakes collapse into one evaluation.
func (s *Scheduler) Notify() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Run evaluates on every tick and every Notify until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	s.evaluateAndLog(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case <-s.notify:
		}
		s.evaluateAndLog(ctx)
	}
}

func (s *Scheduler) evaluateAndLog(ctx context.Context) {
	n, err := s.Evaluate(ctx)
	if err != nil {
		s.log.Warn(ctx, "scan evaluation failed", "error", err)
		return
	}
	if n > 0 {
		s.log.Info(ctx, "automatic scans completed", "count", n)
	}
}

// Evaluate runs every active resource of the current identity whose next
// scan time has passed. It returns how many scans ran. Declined resources
// are skipped, not reported as errors.
func (s *Scheduler) Evaluate(ctx context.Context) (int, error) {
	identity, err := s.store.CurrentIdentity(ctx)
	if err != nil {
		return 0, err
	}
	if identity == nil || !identity.Capabilities().Allows(models.FeatureAutoScan) {
		return 0, nil
	}

	now := s.now()
	ran := 0
	for _, r := range s.gw.GetTrackedResources(ctx, identity.ID) {
		if !r.Active || !r.Due(now) || !s.markDue(r.ID) {
			continue
		}

		_, err := s.run(ctx, r, TriggerAuto)
		switch {
		case err == nil:
			ran++
		case errors.Is(err, errNotDue), errors.Is(err, ErrScanInProgress):
		case errors.Is(err, ErrNoCredit):
			return ran, nil
		default:
			return ran, err
		}
	}
	return ran, nil
}

// ScanNow runs resourceID right away, or the first tracked resource when
// resourceID is empty.
func (s *Scheduler) ScanNow(ctx context.Context, resourceID string) (*models.ScanReport, error) {
	identity, err := s.store.CurrentIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, ErrNotLoggedIn
	}

	resources := s.gw.GetTrackedResources(ctx, identity.ID)
	if len(resources) == 0 {
		s.metrics.ScanDeclined(declineReason(ErrNoTrackedResource))
		return nil, ErrNoTrackedResource
	}

	target := resources[0]
	if resourceID != "" {
		found := false
		for _, r := range resources {
			if r.ID == resourceID {
				target, found = r, true
				break
			}
		}
		if !found {
			s.metrics.ScanDeclined(declineReason(ErrNoTrackedResource))
			return nil, fmt.Errorf("%w: %s", ErrNoTrackedResource, resourceID)
		}
	}

	return s.run(ctx, target, TriggerManual)
}

// markDue moves an idle resource to Due. It reports false when the resource
// is already past Due.
func (s *Scheduler) markDue(resourceID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.states[resourceID] {
	case Idle, Due:
		s.states[resourceID] = Due
		return true
	default:
		return false
	}
}

// accept performs the Due -> Running compare-and-set and reserves one credit
// for metered owners.
func (s *Scheduler) accept(ctx context.Context, r models.TrackedResource, trigger Trigger) (metered bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.states[r.ID] {
	case Idle, Due:
	default:
		return false, ErrScanInProgress
	}

	identity, err := s.store.LoadIdentity(ctx, r.OwnerID)
	if err != nil {
		return false, err
	}
	if identity == nil {
		return false, ErrNotLoggedIn
	}

	caps := identity.Capabilities()
	feature := models.FeatureScan
	if trigger == TriggerAuto {
		feature = models.FeatureAutoScan
	}
	if !caps.Allows(feature) {
		return false, ErrFeatureNotAvailable
	}
	if !identity.CanScan(s.reserved[r.OwnerID]) {
		return false, ErrNoCredit
	}

	s.states[r.ID] = Running
	if caps.RequiresCredit {
		s.reserved[r.OwnerID]++
	}
	return caps.RequiresCredit, nil
}

// abort undoes accept for a scan that never started.
func (s *Scheduler) abort(r models.TrackedResource, metered bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, r.ID)
	if metered {
		s.release(r.OwnerID)
	}
}

// clearDue returns a declined resource to Idle. A resource some other
// trigger has moved past Due is left alone.
func (s *Scheduler) clearDue(resourceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.states[resourceID] == Due {
		delete(s.states, resourceID)
	}
}

func (s *Scheduler) release(owner string) {
	if s.reserved[owner] <= 1 {
		delete(s.reserved, owner)
		return
	}
	s.reserved[owner]--
}

func (s *Scheduler) run(ctx context.Context, r models.TrackedResource, trigger Trigger) (*models.ScanReport, error) {
	ctx = logging.ContextWith(ctx, "resource", r.ID, "trigger", string(trigger))
	metered, err := s.accept(ctx, r, trigger)
	if err != nil {
		if reason := declineReason(err); reason != "" {
			s.metrics.ScanDeclined(reason)
			s.log.Debug(ctx, "scan declined", "reason", reason)
		}
		if trigger == TriggerAuto {
			s.clearDue(r.ID)
		}
		return nil, err
	}

	token := uuid.NewString()
	held, err := s.store.AcquireScanLease(ctx, r.ID, token, s.leaseTTL)
	if err != nil || !held {
		s.abort(r, metered)
		if err != nil {
			return nil, fmt.Errorf("acquire scan lease: %w", err)
		}
		s.metrics.ScanDeclined(declineReason(ErrScanInProgress))
		return nil, ErrScanInProgress
	}

	// The scan cannot be cancelled once started; only the HTTP timeout
	// bounds it.
	runCtx := context.WithoutCancel(ctx)
	defer func() {
		if err := s.store.ReleaseScanLease(runCtx, r.ID, token); err != nil {
			s.log.Warn(runCtx, "scan lease release failed", "error", err)
		}
	}()

	if trigger == TriggerAuto {
		if !s.stillDue(runCtx, r) {
			s.abort(r, metered)
			return nil, errNotDue
		}
	}

	report, err := s.execute(runCtx, r, trigger, metered)
	if err != nil {
		s.abort(r, metered)
		return nil, err
	}
	return report, nil
}

// stillDue re-reads the cached resource after the lease is held, since
// another context may have finished the same scan moments earlier.
func (s *Scheduler) stillDue(ctx context.Context, r models.TrackedResource) bool {
	current, err := s.store.TrackedResources(ctx, r.OwnerID)
	if err != nil {
		return false
	}
	for _, c := range current {
		if c.ID == r.ID {
			return c.Active && c.Due(s.now())
		}
	}
	return false
}

func (s *Scheduler) execute(ctx context.Context, r models.TrackedResource, trigger Trigger, metered bool) (*models.ScanReport, error) {
	started := s.now()

	report := models.ScanReport{
		ID:          uuid.NewString(),
		OwnerID:     r.OwnerID,
		ResourceURL: r.URL,
	}

	result, auditErr := s.auditor.Audit(ctx, r.URL)
	if auditErr != nil {
		s.log.Warn(ctx, "audit returned no data, using fallback report", "error", auditErr)
		report.Score, report.Positives, report.Negatives, report.Suggestions, report.Data = s.fallbackReport(r.URL)
		report.Fallback = true
	} else {
		report.Score = models.ClampScore(result.Score)
		report.Positives = result.Positives
		report.Negatives = result.Negatives
		report.Suggestions = result.Suggestions
		report.Data = result.Data
	}

	completed := s.now()
	report.CreatedAt = completed.UTC()

	if err := s.gw.SaveScanReport(ctx, report); err != nil {
		return nil, fmt.Errorf("save scan report: %w", err)
	}

	s.mu.Lock()
	s.states[r.ID] = Cooldown
	s.mu.Unlock()

	if err := s.charge(ctx, r.OwnerID, metered); err != nil {
		s.log.Error(ctx, "charging scan credit failed", "owner", r.OwnerID, "error", err)
	}
	if err := s.reschedule(ctx, r, completed); err != nil {
		s.log.Error(ctx, "rescheduling resource failed", "error", err)
	}

	s.mu.Lock()
	delete(s.states, r.ID)
	s.mu.Unlock()

	resultLabel := "ok"
	if report.Fallback {
		resultLabel = "fallback"
	}
	s.metrics.ScanExecuted(string(trigger), resultLabel, completed.Sub(started))
	s.log.Info(ctx, "scan completed", "score", report.Score, "fallback", report.Fallback)

	return &report, nil
}

// charge takes the reserved credit. The identity is re-read so that credit
// bought while the scan ran is not lost.
func (s *Scheduler) charge(ctx context.Context, owner string, metered bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !metered {
		return nil
	}
	defer s.release(owner)

	identity, err := s.gw.UpdateIdentity(ctx, owner, func(i *models.Identity) error {
		i.ConsumeCredit()
		return nil
	})
	if err != nil {
		return err
	}
	if cur := s.holder.Current(); cur != nil && cur.ID == owner {
		s.holder.Set(identity)
	}
	return nil
}

// reschedule stamps the completion time on the cached resource. A resource
// removed while it was scanned stays removed.
func (s *Scheduler) reschedule(ctx context.Context, r models.TrackedResource, completed time.Time) error {
	current, err := s.store.TrackedResources(ctx, r.OwnerID)
	if err != nil {
		return err
	}
	for _, c := range current {
		if c.ID == r.ID {
			c.MarkScanned(completed)
			return s.gw.SaveTrackedResource(ctx, c)
		}
	}
	return nil
}

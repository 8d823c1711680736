package gateway

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/seowatch/internal/client/models"
)

var errRemoteDown = errors.New("remote down")

// fakeRemote is an in-memory Remote. Writes can be slowed down to expose
// ordering bugs, any operation can be made to fail, and hang makes every
// call block until its context ends.
type fakeRemote struct {
	mu sync.Mutex

	pingErr    error
	pings      int
	writeDelay time.Duration
	hang       bool
	failOps    map[string]bool
	calls      map[string]int

	identities map[string]models.Identity
	reports    map[string]models.ScanReport
	resources  map[string]models.TrackedResource
	content    map[string]models.GeneratedContentItem
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		failOps:    map[string]bool{},
		calls:      map[string]int{},
		identities: map[string]models.Identity{},
		reports:    map[string]models.ScanReport{},
		resources:  map[string]models.TrackedResource{},
		content:    map[string]models.GeneratedContentItem{},
	}
}

func (f *fakeRemote) fail(op string, on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failOps[op] = on
}

func (f *fakeRemote) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeRemote) setHang(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hang = on
}

func (f *fakeRemote) enter(ctx context.Context, op string, write bool) error {
	f.mu.Lock()
	delay := f.writeDelay
	hang := f.hang
	f.calls[op]++
	failed := f.failOps[op]
	f.mu.Unlock()

	if hang {
		<-ctx.Done()
		return ctx.Err()
	}
	if write && delay > 0 {
		time.Sleep(delay)
	}
	if failed {
		return errRemoteDown
	}
	return nil
}

func (f *fakeRemote) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pings++
	return f.pingErr
}

func (f *fakeRemote) UpsertIdentity(ctx context.Context, i *models.Identity) error {
	if err := f.enter(ctx, "upsert_identity", true); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.identities[i.ID] = *i
	return nil
}

func (f *fakeRemote) GetIdentity(ctx context.Context, id string) (*models.Identity, error) {
	if err := f.enter(ctx, "get_identity", false); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.identities[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &i, nil
}

func (f *fakeRemote) UpsertScanReport(ctx context.Context, r *models.ScanReport) error {
	if err := f.enter(ctx, "upsert_report", true); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports[r.ID] = *r
	return nil
}

func (f *fakeRemote) ListScanReports(ctx context.Context, owner string) ([]models.ScanReport, error) {
	if err := f.enter(ctx, "list_reports", false); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ScanReport
	for _, r := range f.reports {
		if r.OwnerID == owner {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > 50 {
		out = out[:50]
	}
	return out, nil
}

func (f *fakeRemote) UpsertTrackedResource(ctx context.Context, r *models.TrackedResource) error {
	if err := f.enter(ctx, "upsert_resource", true); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resources[r.ID] = *r
	return nil
}

func (f *fakeRemote) ListTrackedResources(ctx context.Context, owner string) ([]models.TrackedResource, error) {
	if err := f.enter(ctx, "list_resources", false); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.TrackedResource
	for _, r := range f.resources {
		if r.OwnerID == owner {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeRemote) DeleteTrackedResource(ctx context.Context, owner, id string) error {
	if err := f.enter(ctx, "delete_resource", true); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.resources[id]; ok && r.OwnerID == owner {
		delete(f.resources, id)
	}
	return nil
}

func (f *fakeRemote) UpsertContentItem(ctx context.Context, it *models.GeneratedContentItem) error {
	if err := f.enter(ctx, "upsert_content", true); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.content[it.ID] = *it
	return nil
}

func (f *fakeRemote) ListContentItems(ctx context.Context, owner string) ([]models.GeneratedContentItem, error) {
	if err := f.enter(ctx, "list_content", false); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.GeneratedContentItem
	for _, it := range f.content {
		if it.OwnerID == owner {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

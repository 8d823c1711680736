package services

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/seowatch/internal/client/client"
	"github.com/dmitrijs2005/seowatch/internal/client/gateway"
	"github.com/dmitrijs2005/seowatch/internal/client/models"
	"github.com/dmitrijs2005/seowatch/internal/client/state"
	"github.com/dmitrijs2005/seowatch/internal/client/store"
	"github.com/dmitrijs2005/seowatch/internal/logging"
	"github.com/stretchr/testify/require"
)

type countingNotifier struct{ n atomic.Int32 }

func (c *countingNotifier) Notify() { c.n.Add(1) }

type fakeContent struct {
	generated   string
	suggestions []string
	err         error

	calls    int
	lastPlan models.Plan
	lastURL  string
}

func (f *fakeContent) Suggestions(_ context.Context, url string, plan models.Plan) ([]string, error) {
	f.calls++
	f.lastPlan = plan
	f.lastURL = url
	return f.suggestions, f.err
}

func (f *fakeContent) Generate(_ context.Context, _, _ string, plan models.Plan) (string, error) {
	f.calls++
	f.lastPlan = plan
	return f.generated, f.err
}

type env struct {
	store    *store.Store
	gw       gateway.Gateway
	holder   *state.Holder
	notifier *countingNotifier
	content  *fakeContent

	auth      AuthService
	billing   BillingService
	resources ResourceService
	contents  ContentService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	db, err := client.InitDatabase(ctx, filepath.Join(t.TempDir(), "device.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logging.Nop()
	st := store.New(db, nil, "test", log)
	gw := gateway.New(ctx, st, nil, log, gateway.Options{})
	t.Cleanup(func() { _ = gw.Close() })

	e := &env{
		store:    st,
		gw:       gw,
		holder:   state.NewHolder(),
		notifier: &countingNotifier{},
		content:  &fakeContent{generated: "hello", suggestions: []string{"add a title"}},
	}
	e.auth = NewAuthService(st, gw, e.holder, e.notifier, log)
	e.billing = NewBillingService(st, gw, e.holder, e.notifier, log)
	e.resources = NewResourceService(st, gw, e.notifier, log)
	e.contents = NewContentService(st, gw, e.content, log)
	return e
}

func TestAuth_RegisterMeteredStartsWithCredit(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	alice, err := e.auth.Register(ctx, "alice", "alice@example.com", models.PlanMetered)
	require.NoError(t, err)
	require.Equal(t, models.InitialCredit, alice.Credit)

	ptr, err := e.store.SessionPointer(ctx)
	require.NoError(t, err)
	require.Equal(t, alice.ID, ptr)

	index, err := e.store.UserIndex(ctx)
	require.NoError(t, err)
	require.Equal(t, alice.ID, index["alice"])

	require.Equal(t, alice.ID, e.holder.Current().ID)
	require.Positive(t, e.notifier.n.Load())
}

func TestAuth_RegisterRejectsDuplicatesAndBlankNames(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.auth.Register(ctx, "alice", "", models.PlanPro)
	require.NoError(t, err)

	_, err = e.auth.Register(ctx, "alice", "", models.PlanPro)
	require.ErrorIs(t, err, ErrUsernameTaken)

	_, err = e.auth.Register(ctx, "  ", "", models.PlanPro)
	require.ErrorIs(t, err, ErrInvalidUsername)
}

func TestAuth_LoginUnknownCreatesIdentity(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	bob, err := e.auth.Login(ctx, "bob")
	require.NoError(t, err)
	require.Equal(t, models.PlanMetered, bob.Plan)
	require.Equal(t, models.InitialCredit, bob.Credit)

	again, err := e.auth.Login(ctx, "bob")
	require.NoError(t, err)
	require.Equal(t, bob.ID, again.ID)
}

func TestAuth_LogoutPreservesData(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	alice, err := e.auth.Register(ctx, "alice", "", models.PlanMetered)
	require.NoError(t, err)
	r, err := e.resources.Add(ctx, "Example.com/", models.FrequencyWeekly)
	require.NoError(t, err)

	require.NoError(t, e.auth.Logout(ctx))

	cur, err := e.auth.Current(ctx)
	require.NoError(t, err)
	require.Nil(t, cur)
	require.Nil(t, e.holder.Current())

	_, err = e.resources.List(ctx)
	require.ErrorIs(t, err, ErrNotLoggedIn)

	stored, err := e.store.LoadIdentity(ctx, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)

	back, err := e.auth.Login(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, alice.ID, back.ID)

	list, err := e.resources.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, r.ID, list[0].ID)
}

func TestBilling_BuyCreditsAndChangePlan(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.billing.BuyCredits(ctx, 5)
	require.ErrorIs(t, err, ErrNotLoggedIn)

	alice, err := e.auth.Register(ctx, "alice", "", models.PlanMetered)
	require.NoError(t, err)

	_, err = e.billing.BuyCredits(ctx, 0)
	require.ErrorIs(t, err, ErrInvalidAmount)

	before := e.notifier.n.Load()
	updated, err := e.billing.BuyCredits(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, models.InitialCredit+5, updated.Credit)
	require.Equal(t, updated.Credit, e.holder.Current().Credit)
	require.Greater(t, e.notifier.n.Load(), before)

	updated, err = e.billing.ChangePlan(ctx, models.PlanAgency)
	require.NoError(t, err)
	require.Equal(t, models.PlanAgency, updated.Plan)

	stored, err := e.store.LoadIdentity(ctx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, models.PlanAgency, stored.Plan)
	require.Equal(t, models.InitialCredit+5, stored.Credit)

	_, err = e.billing.ChangePlan(ctx, models.Plan("gold"))
	require.ErrorIs(t, err, models.ErrUnknownPlan)
}

func TestResources_AddNormalizesAndRejectsDuplicates(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.auth.Register(ctx, "alice", "", models.PlanPro)
	require.NoError(t, err)

	r, err := e.resources.Add(ctx, "Example.COM/blog/#top", models.FrequencyMonthly)
	require.NoError(t, err)
	require.Equal(t, "https://example.com/blog", r.URL)
	require.True(t, r.Active)
	require.Equal(t, r.CreatedAt.Add(30*24*time.Hour), r.NextScanAt)

	_, err = e.resources.Add(ctx, "https://example.com/blog/", models.FrequencyWeekly)
	require.ErrorIs(t, err, ErrDuplicateResource)

	_, err = e.resources.Add(ctx, "ftp://example.com", models.FrequencyWeekly)
	require.ErrorIs(t, err, models.ErrInvalidURL)

	_, err = e.resources.Add(ctx, "other.com", models.ScanFrequency("daily"))
	require.ErrorIs(t, err, models.ErrUnknownFrequency)
}

func TestResources_SetActiveRemoveAndFrequency(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.auth.Register(ctx, "alice", "", models.PlanPro)
	require.NoError(t, err)
	r, err := e.resources.Add(ctx, "example.com", models.FrequencyWeekly)
	require.NoError(t, err)

	off, err := e.resources.SetActive(ctx, r.ID, false)
	require.NoError(t, err)
	require.False(t, off.Active)

	bi, err := e.resources.SetFrequency(ctx, r.ID, models.FrequencyBiweekly)
	require.NoError(t, err)
	require.Equal(t, r.CreatedAt.Add(14*24*time.Hour), bi.NextScanAt)

	list, err := e.resources.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.False(t, list[0].Active)
	require.Equal(t, models.FrequencyBiweekly, list[0].Frequency)

	require.NoError(t, e.resources.Remove(ctx, r.ID))
	require.ErrorIs(t, e.resources.Remove(ctx, r.ID), ErrResourceNotFound)

	list, err = e.resources.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestContent_GenerateIsGatedByPlan(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.auth.Register(ctx, "alice", "", models.PlanMetered)
	require.NoError(t, err)

	_, err = e.contents.Generate(ctx, "twitter", "launch post")
	require.ErrorIs(t, err, ErrFeatureNotAvailable)
	require.Zero(t, e.content.calls)

	_, err = e.billing.ChangePlan(ctx, models.PlanPro)
	require.NoError(t, err)

	item, err := e.contents.Generate(ctx, "twitter", "launch post")
	require.NoError(t, err)
	require.Equal(t, "hello", item.Content)
	require.Equal(t, models.PlanPro, e.content.lastPlan)

	items, err := e.contents.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, item.ID, items[0].ID)

	_, err = e.contents.Generate(ctx, "", "x")
	require.ErrorIs(t, err, ErrEmptyPrompt)
}

func TestContent_GenerateBatchNeedsAgency(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.auth.Register(ctx, "alice", "", models.PlanPro)
	require.NoError(t, err)

	_, err = e.contents.GenerateBatch(ctx, "twitter", []string{"one", "two"})
	require.ErrorIs(t, err, ErrFeatureNotAvailable)
	require.Zero(t, e.content.calls)

	_, err = e.billing.ChangePlan(ctx, models.PlanAgency)
	require.NoError(t, err)

	items, err := e.contents.GenerateBatch(ctx, "twitter", []string{"one", "  ", "two"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "two", items[1].Prompt)
	require.Equal(t, 2, e.content.calls)

	stored, err := e.contents.List(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 2)

	_, err = e.contents.GenerateBatch(ctx, "twitter", []string{" "})
	require.ErrorIs(t, err, ErrEmptyPrompt)

	tooMany := make([]string, MaxBatchPrompts+1)
	for i := range tooMany {
		tooMany[i] = "p"
	}
	_, err = e.contents.GenerateBatch(ctx, "twitter", tooMany)
	require.ErrorIs(t, err, ErrBatchTooLarge)
}

func TestContent_CollaboratorRefusalPassesThrough(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.auth.Register(ctx, "alice", "", models.PlanAgency)
	require.NoError(t, err)

	e.content.err = client.ErrFeatureNotAvailable
	_, err = e.contents.Generate(ctx, "blog", "intro")
	require.ErrorIs(t, err, ErrFeatureNotAvailable)

	items, err := e.contents.List(ctx)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestContent_SuggestionsPassPlanThrough(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.contents.Suggestions(ctx, "example.com")
	require.ErrorIs(t, err, ErrNotLoggedIn)

	_, err = e.auth.Register(ctx, "alice", "", models.PlanMetered)
	require.NoError(t, err)

	got, err := e.contents.Suggestions(ctx, "Example.com/")
	require.NoError(t, err)
	require.Equal(t, []string{"add a title"}, got)
	require.Equal(t, models.PlanMetered, e.content.lastPlan)
	require.Equal(t, "https://example.com", e.content.lastURL)
}

package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/seowatch/internal/client/bus"
	"github.com/dmitrijs2005/seowatch/internal/client/client"
	"github.com/dmitrijs2005/seowatch/internal/client/config"
	"github.com/dmitrijs2005/seowatch/internal/client/gateway"
	"github.com/dmitrijs2005/seowatch/internal/client/metrics"
	"github.com/dmitrijs2005/seowatch/internal/client/models"
	"github.com/dmitrijs2005/seowatch/internal/client/scheduler"
	"github.com/dmitrijs2005/seowatch/internal/client/services"
	"github.com/dmitrijs2005/seowatch/internal/client/state"
	"github.com/dmitrijs2005/seowatch/internal/client/store"
	"github.com/dmitrijs2005/seowatch/internal/client/tabsync"
	"github.com/dmitrijs2005/seowatch/internal/logging"
	"github.com/dmitrijs2005/seowatch/internal/remote"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

const defaultRemoteSetupTimeout = 5 * time.Second

// Runtime is one client context: the device store, the change bus, the
// gateway, the scheduler and the REPL on top of them.
type Runtime struct {
	App *App

	cfg      *config.Config
	log      logging.Logger
	db       *sql.DB
	bus      bus.Bus
	remote   *remote.Store
	gw       *gateway.Hybrid
	sched    *scheduler.Scheduler
	syncer   *tabsync.Synchronizer
	registry *prometheus.Registry
}

// NewRuntime opens and migrates the device store, connects the optional
// remote store and builds every service. in and out feed the REPL; nil
// means stdin and stdout.
func NewRuntime(ctx context.Context, cfg *config.Config, log logging.Logger, in io.Reader, out io.Writer) (*Runtime, error) {
	r := &Runtime{cfg: cfg, log: log}
	ok := false
	defer func() {
		if !ok {
			_ = r.Close()
		}
	}()

	db, err := client.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open device store: %w", err)
	}
	r.db = db

	r.bus, err = openBus(ctx, cfg)
	if err != nil {
		return nil, err
	}

	st := store.New(db, r.bus, uuid.NewString(), log)
	if err := st.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate device store: %w", err)
	}

	r.registry = prometheus.NewRegistry()
	r.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(r.registry)

	var rem gateway.Remote
	if cfg.RemoteDSN != "" {
		r.remote = r.openRemote(ctx)
		if r.remote != nil {
			rem = r.remote
		}
	}

	r.gw = gateway.New(ctx, st, rem, log, gateway.Options{
		ProbeTimeout: cfg.RemoteProbeTimeout,
		Metrics:      m,
	})

	holder := state.NewHolder()
	auditor := client.NewHTTPAuditClient(cfg.AuditEndpoint, cfg.HTTPTimeout)
	content := client.NewHTTPContentClient(cfg.ContentEndpoint, cfg.HTTPTimeout)

	r.sched = scheduler.New(r.gw, st, holder, auditor, log, scheduler.Options{
		CheckInterval: cfg.ScanCheckInterval,
		Metrics:       m,
	})

	r.syncer = tabsync.NewSynchronizer(st, r.bus, holder, log)
	r.syncer.OnReload = func(*models.Identity) { r.sched.Notify() }

	r.App = NewApp(Deps{
		Auth:      services.NewAuthService(st, r.gw, holder, r.sched, log),
		Billing:   services.NewBillingService(st, r.gw, holder, r.sched, log),
		Resources: services.NewResourceService(st, r.gw, r.sched, log),
		Contents:  services.NewContentService(st, r.gw, content, log),
		Scanner:   r.sched,
		Holder:    holder,
		In:        in,
		Out:       out,
	})

	ok = true
	return r, nil
}

// openRemote returns nil when the remote store cannot be used; the gateway
// then runs local-only.
func (r *Runtime) openRemote(ctx context.Context) *remote.Store {
	rs, err := remote.Open(r.cfg.RemoteDSN)
	if err != nil {
		r.log.Warn(ctx, "remote store disabled", "error", err)
		return nil
	}

	timeout := r.cfg.RemoteProbeTimeout
	if timeout <= 0 {
		timeout = defaultRemoteSetupTimeout
	}
	mctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := rs.Migrate(mctx); err != nil {
		r.log.Warn(ctx, "remote store disabled", "error", err)
		_ = rs.Close()
		return nil
	}
	return rs
}

func openBus(ctx context.Context, cfg *config.Config) (bus.Bus, error) {
	switch cfg.Bus {
	case config.BusMemory:
		return bus.NewMemoryBus(), nil
	case config.BusRedis:
		b, err := bus.ConnectRedis(ctx, bus.RedisConfig{Addr: cfg.RedisAddr})
		if err != nil {
			return nil, fmt.Errorf("connect change bus: %w", err)
		}
		return b, nil
	case config.BusFile, "":
		return bus.NewFileBus(cfg.DatabasePath), nil
	default:
		return nil, fmt.Errorf("unknown bus %q", cfg.Bus)
	}
}

// Run serves the REPL until the user exits or ctx is done. The scheduler,
// the synchronizer and the metrics endpoint run alongside it and are stopped
// before Run returns.
func (r *Runtime) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.sched.Run(gctx) })
	g.Go(func() error { return r.syncer.Run(gctx) })
	if r.cfg.MetricsAddr != "" {
		g.Go(func() error {
			r.log.Info(gctx, "serving metrics", "addr", r.cfg.MetricsAddr)
			return metrics.Serve(gctx, r.cfg.MetricsAddr, r.registry)
		})
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		r.App.Run(gctx)
	}()

	select {
	case <-done:
	case <-gctx.Done():
	}
	cancel()

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close drains queued remote writes and releases every resource.
func (r *Runtime) Close() error {
	var errs []error
	if r.gw != nil {
		errs = append(errs, r.gw.Close())
	}
	if r.remote != nil {
		errs = append(errs, r.remote.Close())
	}
	if r.bus != nil {
		errs = append(errs, r.bus.Close())
	}
	if r.db != nil {
		errs = append(errs, r.db.Close())
	}
	return errors.Join(errs...)
}

package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/matchpoint-app/matchpoint/internal/client/api"
	"github.com/matchpoint-app/matchpoint/internal/client/authflow"
	"github.com/matchpoint-app/matchpoint/internal/client/bootstrap"
	"github.com/matchpoint-app/matchpoint/internal/client/config"
	"github.com/matchpoint-app/matchpoint/internal/client/guard"
	"github.com/matchpoint-app/matchpoint/internal/client/localdb"
	"github.com/matchpoint-app/matchpoint/internal/client/reflex"
	"github.com/matchpoint-app/matchpoint/internal/client/session"
	"github.com/matchpoint-app/matchpoint/internal/client/tabsync"
	"github.com/matchpoint-app/matchpoint/internal/logging"
)

// App is one "tab" of the Matchpoint client: a session store, the bootstrap
// probe, the login orchestrator, the profile-save reflex and a relay
// connection that keeps other tabs of the same user in sync.
type App struct {
	config *config.Config
	client api.Client
	store  *session.Store
	boot   *bootstrap.Controller
	orch   *authflow.Orchestrator
	guard  *guard.Guard
	coal   *reflex.Coalescer
	bus    *tabsync.WSBus
	db     *localdb.DB
	logger logging.Logger
	reader *bufio.Reader
}

func NewApp(cfg *config.Config, logger logging.Logger) (*App, error) {
	ctx := context.Background()

	db, err := localdb.Open(ctx, cfg.LocalDBPath)
	if err != nil {
		return nil, err
	}

	httpClient, err := api.NewHTTPClient(cfg.ServerBaseURL, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	store := session.NewStore()
	boot := bootstrap.NewController(httpClient, store, logger)
	bus := tabsync.NewWSBus(httpClient, logger)
	stash := db.Stash()

	a := &App{
		config: cfg,
		client: httpClient,
		store:  store,
		boot:   boot,
		guard:  guard.NewGuard(store, stash, logger),
		bus:    bus,
		db:     db,
		logger: logger,
		reader: bufio.NewReader(os.Stdin),
	}

	a.orch = authflow.NewOrchestrator(httpClient, store, boot, bus, stash,
		authflow.ReloadFunc(a.reload), logger)
	a.orch.SetHandshakeTimeout(cfg.HandshakeTimeout)

	a.coal = reflex.NewCoalescer(boot.Probe, cfg.CoalesceDelay, logger)

	return a, nil
}

// reload is the break-glass recovery: the process-level equivalent of a page
// reload. It throws away the optimistic session view and asks the server
// again from scratch.
func (a *App) reload() {
	a.logger.Warn(context.Background(), "session state unclear, re-probing from scratch")
	a.store.ClearAuth()
	go func() {
		_ = a.boot.Probe(context.Background())
	}()
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()

	// First paint: show the last known user immediately; the probe result
	// overwrites it either way.
	if u, err := a.db.LastUser(ctx); err == nil && u != nil {
		a.store.SetUser(u)
	}

	// Keep the last-user record and the relay connection in step with the
	// settled session: the relay dial is only accepted with a live session,
	// so it follows logins and logouts rather than process startup.
	unsubscribe := a.store.Subscribe(func(st session.State) {
		if !st.IsInitialized {
			return
		}
		bgCtx := context.Background()
		if st.IsAuthenticated {
			_ = a.db.SaveLastUser(bgCtx, st.User)
		} else {
			_ = a.db.SaveLastUser(bgCtx, nil)
		}
		a.syncRelay(bgCtx, st.IsAuthenticated)
	})
	defer unsubscribe()

	a.boot.Run(ctx)
	a.syncRelay(ctx, a.store.State().IsAuthenticated)

	stopSync := a.orch.StartTabSync()
	defer stopSync()

	a.Root(ctx)
}

// syncRelay connects the event relay while a session exists and drops the
// connection when it ends. Connect is idempotent, so repeated settled states
// (profile-save probes) cost nothing.
func (a *App) syncRelay(ctx context.Context, authenticated bool) {
	if !authenticated {
		a.bus.Disconnect()
		return
	}
	if err := a.bus.Connect(ctx); err != nil {
		a.logger.Warn(ctx, "tab sync unavailable", "err", err)
	}
}

func (a *App) Close() {
	a.coal.Stop()
	_ = a.bus.Close()
	_ = a.db.Close()
}

func (a *App) isLoggedIn() bool {
	return a.store.State().IsAuthenticated
}

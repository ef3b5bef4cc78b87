// Package authflow drives credentialed logins, registration and logouts
// end to end: it settles the session store, announces the change to other
// tabs and resolves the post-login navigation target.
package authflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/matchpoint-app/matchpoint/internal/client/api"
	"github.com/matchpoint-app/matchpoint/internal/client/bootstrap"
	"github.com/matchpoint-app/matchpoint/internal/client/session"
	"github.com/matchpoint-app/matchpoint/internal/client/tabsync"
	"github.com/matchpoint-app/matchpoint/internal/logging"
)

// DefaultHandshakeTimeout bounds the post-login identity probe. If the
// probe has not settled by then, the orchestrator falls back to a full
// reload instead of leaving the user on a spinner.
const DefaultHandshakeTimeout = 2 * time.Second

// ErrHandshakeTimeout is returned when the post-login probe did not settle
// within the handshake timeout and the reload fallback was invoked.
var ErrHandshakeTimeout = errors.New("authflow: login handshake timed out")

// Reloader is the break-glass recovery used when the post-login handshake
// cannot settle: throw the whole client state away and start over.
type Reloader interface {
	Reload()
}

// ReloadFunc adapts a plain function to Reloader.
type ReloadFunc func()

func (f ReloadFunc) Reload() { f() }

// ReturnToStash persists the path a guard redirected away from, so a later
// login can send the user back. Get returns "" when nothing is stashed.
type ReturnToStash interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, path string) error
	Clear(ctx context.Context) error
}

// Orchestrator owns the login, registration and logout flows.
//
// Login applies the credential response optimistically, then treats a fresh
// identity probe as the canonical source of truth before navigating. The
// probe races the handshake timeout; on timeout the Reloader fires at most
// once per orchestrator.
type Orchestrator struct {
	client   api.Client
	store    *session.Store
	boot     *bootstrap.Controller
	bus      tabsync.Bus
	stash    ReturnToStash
	reloader Reloader
	logger   logging.Logger

	handshakeTimeout time.Duration
	reloadOnce       sync.Once
}

func NewOrchestrator(client api.Client, store *session.Store, boot *bootstrap.Controller,
	bus tabsync.Bus, stash ReturnToStash, reloader Reloader, logger logging.Logger) *Orchestrator {
	return &Orchestrator{
		client:           client,
		store:            store,
		boot:             boot,
		bus:              bus,
		stash:            stash,
		reloader:         reloader,
		logger:           logger,
		handshakeTimeout: DefaultHandshakeTimeout,
	}
}

// SetHandshakeTimeout overrides the post-login probe deadline.
func (o *Orchestrator) SetHandshakeTimeout(d time.Duration) {
	if d > 0 {
		o.handshakeTimeout = d
	}
}

// Login authenticates with the server and settles the session. On success
// it returns the path the caller should navigate to.
func (o *Orchestrator) Login(ctx context.Context, email, password string) (string, error) {
	return o.establish(ctx, func(ctx context.Context) (*api.User, error) {
		return o.client.Login(ctx, email, password)
	})
}

// Register creates an account; the server opens a session on success, so
// the flow continues exactly like a login.
func (o *Orchestrator) Register(ctx context.Context, email, password string) (string, error) {
	return o.establish(ctx, func(ctx context.Context) (*api.User, error) {
		return o.client.Register(ctx, email, password)
	})
}

func (o *Orchestrator) establish(ctx context.Context, open func(context.Context) (*api.User, error)) (string, error) {
	o.store.SetLoading(true)
	defer o.store.SetLoading(false)

	user, err := open(ctx)
	if err != nil {
		o.store.SetError(err.Error())
		return "", err
	}

	// Optimistic: show the credential response immediately, but do not
	// trust it for navigation until a fresh probe confirms the session.
	o.store.Login(user)

	probeCtx, cancel := context.WithTimeout(ctx, o.handshakeTimeout)
	defer cancel()
	if err := o.boot.Probe(probeCtx); err != nil {
		// The session may well be live server-side; local state is what
		// we cannot vouch for. Recover by reloading, never more than once.
		o.logger.Warn(ctx, "post-login handshake failed, reloading", "err", err)
		o.reloadOnce.Do(o.reloader.Reload)
		if errors.Is(err, context.DeadlineExceeded) {
			return "", ErrHandshakeTimeout
		}
		return "", fmt.Errorf("authflow: login handshake: %w", err)
	}

	settled := o.store.State().User
	if settled == nil {
		// Probe settled but found no session: the login evaporated.
		return "", errors.New("authflow: session not established")
	}

	if err := o.bus.Publish(ctx, tabsync.Message{Type: tabsync.TypeLogin, User: settled}); err != nil {
		o.logger.Warn(ctx, "login broadcast failed", "err", err)
	}

	returnTo, err := o.stash.Get(ctx)
	if err != nil {
		o.logger.Warn(ctx, "return path lookup failed", "err", err)
		returnTo = ""
	}
	if returnTo != "" {
		if err := o.stash.Clear(ctx); err != nil {
			o.logger.Warn(ctx, "return path clear failed", "err", err)
		}
	}
	return NavigationTarget(settled.IsAdmin, returnTo), nil
}

// Logout ends the session everywhere. The server call is best-effort: the
// local session is cleared and the logout broadcast regardless, so a dead
// server cannot trap the user in a logged-in shell.
func (o *Orchestrator) Logout(ctx context.Context) string {
	if err := o.client.Logout(ctx); err != nil {
		o.logger.Warn(ctx, "server logout failed, clearing local session anyway", "err", err)
	}

	o.store.ClearAuth()
	if err := o.bus.Publish(ctx, tabsync.Message{Type: tabsync.TypeLogout}); err != nil {
		o.logger.Warn(ctx, "logout broadcast failed", "err", err)
	}
	if err := o.stash.Clear(ctx); err != nil {
		o.logger.Warn(ctx, "return path clear failed", "err", err)
	}
	return LoginPath
}

// StartTabSync wires remote LOGIN/LOGOUT messages into the local store.
// Remote events are adopted as-is; they never trigger probes or broadcasts
// of their own, so two tabs cannot ping-pong each other.
func (o *Orchestrator) StartTabSync() (stop func()) {
	return o.bus.Subscribe(func(msg tabsync.Message) {
		switch msg.Type {
		case tabsync.TypeLogin:
			// The relay forwards whatever a peer tab sent; a LOGIN with no
			// user cannot be adopted, only ignored.
			if msg.User == nil {
				return
			}
			o.store.Login(msg.User)
		case tabsync.TypeLogout:
			o.store.ClearAuth()
		}
	})
}

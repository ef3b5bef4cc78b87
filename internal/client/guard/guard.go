// Package guard decides whether navigation to a route may proceed, based on
// the session store. Guards never probe the network themselves: before the
// store is initialized they answer Wait, and the caller holds rendering until
// the bootstrap probe settles.
package guard

import (
	"context"

	"github.com/matchpoint-app/matchpoint/internal/client/authflow"
	"github.com/matchpoint-app/matchpoint/internal/client/session"
	"github.com/matchpoint-app/matchpoint/internal/logging"
)

// Decision is the outcome of a guard check.
type Decision int

const (
	// Wait means the session is not settled yet; hold the route and re-check
	// when the store changes.
	Wait Decision = iota
	// Allow lets the navigation proceed.
	Allow
	// Redirect blocks the route; RedirectTo carries the substitute path.
	Redirect
)

// Result is a decision plus, for Redirect, where to go instead.
type Result struct {
	Decision   Decision
	RedirectTo string
}

// Guard evaluates route access against the session store. A stash keeps the
// path an unauthenticated visitor was denied, so the next login can finish
// their original navigation.
type Guard struct {
	store  *session.Store
	stash  authflow.ReturnToStash
	logger logging.Logger
}

func NewGuard(store *session.Store, stash authflow.ReturnToStash, logger logging.Logger) *Guard {
	return &Guard{store: store, stash: stash, logger: logger}
}

// Protected gates routes that require a session. Denied visitors are sent to
// the login page with their intended path stashed for after the login.
func (g *Guard) Protected(ctx context.Context, path string) Result {
	st := g.store.State()
	if !st.IsInitialized {
		return Result{Decision: Wait}
	}
	if st.IsAuthenticated {
		return Result{Decision: Allow}
	}

	if authflow.IsSafeReturnPath(path) {
		if err := g.stash.Set(ctx, path); err != nil {
			g.logger.Warn(ctx, "return path stash failed", "path", path, "err", err)
		}
	}
	return Result{Decision: Redirect, RedirectTo: authflow.LoginPath}
}

// PublicOnly gates routes that make no sense with a live session, like the
// login and registration pages. A logged-in visitor is bounced to their home.
func (g *Guard) PublicOnly(ctx context.Context, path string) Result {
	st := g.store.State()
	if !st.IsInitialized {
		return Result{Decision: Wait}
	}
	if !st.IsAuthenticated {
		return Result{Decision: Allow}
	}

	isAdmin := st.User != nil && st.User.IsAdmin
	return Result{Decision: Redirect, RedirectTo: authflow.NavigationTarget(isAdmin, "")}
}

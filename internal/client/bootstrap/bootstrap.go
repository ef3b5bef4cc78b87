// Package bootstrap resolves the session store to a settled authenticated or
// unauthenticated state at startup, using a single identity probe.
package bootstrap

import (
	"context"
	"sync"

	"github.com/matchpoint-app/matchpoint/internal/client/api"
	"github.com/matchpoint-app/matchpoint/internal/client/session"
	"github.com/matchpoint-app/matchpoint/internal/logging"
)

// Prober is the single transport call the controller needs.
type Prober interface {
	Me(ctx context.Context) (*api.Identity, error)
}

// Controller issues the startup identity probe and reconciles the store to
// the canonical answer.
//
// Contract:
//   - Run issues at most one probe per controller, no matter how often it is
//     called. The probe is not cancellable once started; it runs to a result.
//   - "Not logged in" is a settled result, never an error: the store ends
//     {IsAuthenticated: false, User: nil} with no Error set.
//   - A transport failure also settles the store to unauthenticated (so the
//     UI can unblock), but the failure is kept in the Error field for
//     diagnostics.
//   - IsInitialized flips exactly once, on the first settled result.
type Controller struct {
	client Prober
	store  *session.Store
	logger logging.Logger
	once   sync.Once
}

func NewController(client Prober, store *session.Store, logger logging.Logger) *Controller {
	return &Controller{client: client, store: store, logger: logger}
}

// Run performs the one startup probe. Subsequent calls are no-ops.
func (c *Controller) Run(ctx context.Context) {
	c.once.Do(func() {
		// The startup probe must settle even if the mounting context dies:
		// it is issued once and runs to completion.
		c.Probe(context.WithoutCancel(ctx))
	})
}

// Probe performs one identity probe and reconciles the store. It is reused
// by the post-login handshake and the post-save reflex; unlike Run it honors
// ctx, and a cancelled probe leaves the store untouched.
//
// The returned error is diagnostic only: probe outcomes, including transport
// failures, are already reflected in the store.
func (c *Controller) Probe(ctx context.Context) error {
	identity, err := c.client.Me(ctx)
	if err != nil {
		if ctx.Err() != nil {
			// Superseded or abandoned probe: benign, commit nothing.
			return ctx.Err()
		}
		c.logger.Warn(ctx, "identity probe failed", "err", err)
		c.store.SetError(err.Error())
		c.store.SetUser(nil)
		c.store.MarkInitialized()
		return err
	}

	if identity.Authenticated {
		c.store.Login(identity.User)
	} else {
		c.store.ClearAuth()
	}
	c.store.MarkInitialized()
	return nil
}

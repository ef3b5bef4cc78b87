package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matchpoint-app/matchpoint/internal/client/api"
	"github.com/matchpoint-app/matchpoint/internal/client/session"
	"github.com/matchpoint-app/matchpoint/internal/logging"
)

// fakeProber implements Prober for unit tests.
type fakeProber struct {
	identity *api.Identity
	err      error
	calls    int
}

func (f *fakeProber) Me(ctx context.Context) (*api.Identity, error) {
	f.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.identity, nil
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
}

func TestRunAuthenticated(t *testing.T) {
	prober := &fakeProber{identity: &api.Identity{Authenticated: true, User: &api.User{ID: "u1"}}}
	store := session.NewStore()

	NewController(prober, store, testLogger()).Run(context.Background())

	st := store.State()
	require.True(t, st.IsInitialized)
	require.True(t, st.IsAuthenticated)
	require.Equal(t, "u1", st.User.ID)
	require.Empty(t, st.Error)
}

func TestRunUnauthenticatedIsNotAnError(t *testing.T) {
	prober := &fakeProber{identity: &api.Identity{Authenticated: false}}
	store := session.NewStore()

	NewController(prober, store, testLogger()).Run(context.Background())

	st := store.State()
	require.True(t, st.IsInitialized)
	require.False(t, st.IsAuthenticated)
	require.Nil(t, st.User)
	require.Empty(t, st.Error, "a logged-out probe result must not surface an error")
}

func TestRunProbesExactlyOnce(t *testing.T) {
	prober := &fakeProber{identity: &api.Identity{Authenticated: false}}
	store := session.NewStore()
	c := NewController(prober, store, testLogger())

	c.Run(context.Background())
	c.Run(context.Background())
	c.Run(context.Background())

	require.Equal(t, 1, prober.calls)
}

func TestRunTransportFailureStillInitializes(t *testing.T) {
	prober := &fakeProber{err: errors.New("connection refused")}
	store := session.NewStore()

	NewController(prober, store, testLogger()).Run(context.Background())

	st := store.State()
	require.True(t, st.IsInitialized, "a failed probe must still unblock the UI")
	require.False(t, st.IsAuthenticated)
	require.Contains(t, st.Error, "connection refused")
}

func TestInitializedFlipsOnceAcrossProbes(t *testing.T) {
	prober := &fakeProber{identity: &api.Identity{Authenticated: false}}
	store := session.NewStore()
	c := NewController(prober, store, testLogger())

	var initializedFlips int
	unsub := store.Subscribe(func(st session.State) {
		if st.IsInitialized {
			initializedFlips++
		}
	})
	defer unsub()

	c.Run(context.Background())

	// Later probes (handshake, reflex) must not re-announce initialization.
	prober.identity = &api.Identity{Authenticated: true, User: &api.User{ID: "u1"}}
	require.NoError(t, c.Probe(context.Background()))

	st := store.State()
	require.True(t, st.IsAuthenticated)
	require.Equal(t, 1, initializedFlips)
}

func TestCancelledProbeCommitsNothing(t *testing.T) {
	prober := &fakeProber{identity: &api.Identity{Authenticated: true, User: &api.User{ID: "u1"}}}
	store := session.NewStore()
	c := NewController(prober, store, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Probe(ctx)
	require.ErrorIs(t, err, context.Canceled)

	st := store.State()
	require.False(t, st.IsAuthenticated)
	require.False(t, st.IsInitialized)
	require.Empty(t, st.Error)
}

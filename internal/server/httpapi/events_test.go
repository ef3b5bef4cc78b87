package httpapi

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func dialEvents(t *testing.T, srvURL string, client *http.Client) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(srvURL, "http") + "/ws/events"

	u, err := url.Parse(srvURL)
	require.NoError(t, err)

	header := http.Header{}
	for _, c := range client.Jar.Cookies(u) {
		header.Add("Cookie", c.Name+"="+c.Value)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestEventsRequireSession(t *testing.T) {
	srv := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/events"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogoutBroadcastReachesOtherTab(t *testing.T) {
	srv := newTestServer(t)

	// Two clients sharing one account stand in for two tabs.
	tabA := newClient(t)
	registerUser(t, tabA, srv.URL, "alice@example.com")

	tabB := newClient(t)
	resp, _ := doJSON(t, tabB, http.MethodPost, srv.URL+"/api/auth/login",
		map[string]string{"email": "alice@example.com", "password": "password123"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	connB := dialEvents(t, srv.URL, tabB)

	// Tab A logs out; tab B's relay connection receives LOGOUT.
	resp, _ = doJSON(t, tabA, http.MethodPost, srv.URL+"/api/auth/logout", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, connB.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev Event
	require.NoError(t, connB.ReadJSON(&ev))
	require.Equal(t, EventLogout, ev.Type)
	require.Nil(t, ev.User)
}

func TestTabToTabRelay(t *testing.T) {
	srv := newTestServer(t)

	tab := newClient(t)
	registerUser(t, tab, srv.URL, "alice@example.com")

	connA := dialEvents(t, srv.URL, tab)
	connB := dialEvents(t, srv.URL, tab)

	require.NoError(t, connA.WriteJSON(Event{Type: EventLogout}))

	require.NoError(t, connB.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev Event
	require.NoError(t, connB.ReadJSON(&ev))
	require.Equal(t, EventLogout, ev.Type)
}

package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/matchpoint-app/matchpoint/internal/logging"
	"github.com/matchpoint-app/matchpoint/internal/server/config"
	"github.com/matchpoint-app/matchpoint/internal/server/repositories/repomanager"
	"github.com/matchpoint-app/matchpoint/internal/server/services"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	cfg.SessionValidityDuration = time.Hour
	cfg.LoginRatePerMinute = 1000

	m := repomanager.NewMemoryRepositoryManager()
	logger := testLogger()

	rt := NewRouter(cfg, logger,
		services.NewUserService(nil, m, cfg),
		services.NewProfileService(nil, m),
		services.NewPhotoService(nil, m, cfg),
		services.NewLocationService("http://127.0.0.1:1", logger),
		NewHub(logger),
	)

	srv := httptest.NewServer(rt.Engine())
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func registerUser(t *testing.T, client *http.Client, baseURL, email string) {
	t.Helper()
	resp, body := doJSON(t, client, http.MethodPost, baseURL+"/api/auth/register",
		map[string]string{"email": email, "password": "password123"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, body["ok"])
}

func fetchCSRF(t *testing.T, client *http.Client, baseURL string) string {
	t.Helper()
	resp, body := doJSON(t, client, http.MethodGet, baseURL+"/api/auth/csrf", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["csrfToken"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestMeUnauthenticatedIsData(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	resp, body := doJSON(t, client, http.MethodGet, srv.URL+"/api/auth/me", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "/me must answer 200 even when logged out")
	require.Equal(t, "unauthenticated", body["auth"])
	require.NotContains(t, body, "error")
}

func TestRegisterLoginMeFlow(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	registerUser(t, client, srv.URL, "alice@example.com")

	resp, body := doJSON(t, client, http.MethodGet, srv.URL+"/api/auth/me", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "authenticated", body["auth"])
	user := body["user"].(map[string]any)
	require.Equal(t, "alice@example.com", user["email"])

	// Fresh client: wrong password is rejected, right password opens a session.
	other := newClient(t)
	resp, _ = doJSON(t, other, http.MethodPost, srv.URL+"/api/auth/login",
		map[string]string{"email": "alice@example.com", "password": "wrong-password"}, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = doJSON(t, other, http.MethodPost, srv.URL+"/api/auth/login",
		map[string]string{"email": "alice@example.com", "password": "password123"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, body["ok"])
}

func TestLogoutClearsSession(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	registerUser(t, client, srv.URL, "alice@example.com")

	resp, _ := doJSON(t, client, http.MethodPost, srv.URL+"/api/auth/logout", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, client, http.MethodGet, srv.URL+"/api/auth/me", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "unauthenticated", body["auth"])
}

func TestCSRFProtection(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	registerUser(t, client, srv.URL, "alice@example.com")

	payload := map[string]string{"display_name": "Alice", "bio": "", "gender": "female"}

	// No token.
	resp, body := doJSON(t, client, http.MethodPut, srv.URL+"/api/profile/basic", payload, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Equal(t, "CSRF_MISSING", body["code"])

	// Invalid token.
	resp, body = doJSON(t, client, http.MethodPut, srv.URL+"/api/profile/basic", payload,
		map[string]string{CSRFHeaderName: "bogus"})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Equal(t, "CSRF_INVALID", body["code"])

	// Valid rotated token.
	token := fetchCSRF(t, client, srv.URL)
	resp, body = doJSON(t, client, http.MethodPut, srv.URL+"/api/profile/basic", payload,
		map[string]string{CSRFHeaderName: token})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, body["ok"])

	// Rotating again invalidates the first token.
	_ = fetchCSRF(t, client, srv.URL)
	resp, body = doJSON(t, client, http.MethodPut, srv.URL+"/api/profile/basic", payload,
		map[string]string{CSRFHeaderName: token})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Equal(t, "CSRF_INVALID", body["code"])
}

func TestBirthDataValidationRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	registerUser(t, client, srv.URL, "alice@example.com")
	token := fetchCSRF(t, client, srv.URL)

	// Seconds in birth_time are rejected with a field error.
	resp, body := doJSON(t, client, http.MethodPut, srv.URL+"/api/profile/birth-data",
		map[string]string{"birth_date": "1994-06-21", "birth_time": "21:17:00", "birth_location": "Riga"},
		map[string]string{CSRFHeaderName: token})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	fields := body["fields"].(map[string]any)
	require.Contains(t, fields, "birth_time")

	// HH:mm succeeds and the next identity probe echoes it verbatim.
	resp, _ = doJSON(t, client, http.MethodPut, srv.URL+"/api/profile/birth-data",
		map[string]string{"birth_date": "1994-06-21", "birth_time": "21:17", "birth_location": "Riga"},
		map[string]string{CSRFHeaderName: token})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, client, http.MethodGet, srv.URL+"/api/auth/me", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	user := body["user"].(map[string]any)
	bd := user["birthData"].(map[string]any)
	require.Equal(t, "21:17", bd["birthTime"])
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	resp, _ := doJSON(t, client, http.MethodGet, srv.URL+"/api/auth/csrf", nil, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, client, http.MethodPut, srv.URL+"/api/profile/basic",
		map[string]string{"display_name": "x"}, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLocationSearchDegradesToEmpty(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	// Geocoder base URL points nowhere; the endpoint still answers 200.
	resp, body := doJSON(t, client, http.MethodGet, srv.URL+"/api/locations/search?q=Riga", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, body["suggestions"])
}

func TestLoginRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	cfg.SessionValidityDuration = time.Hour
	cfg.LoginRatePerMinute = 2

	m := repomanager.NewMemoryRepositoryManager()
	logger := testLogger()
	rt := NewRouter(cfg, logger,
		services.NewUserService(nil, m, cfg),
		services.NewProfileService(nil, m),
		services.NewPhotoService(nil, m, cfg),
		services.NewLocationService("http://127.0.0.1:1", logger),
		NewHub(logger),
	)
	srv := httptest.NewServer(rt.Engine())
	defer srv.Close()

	client := newClient(t)
	var lastStatus int
	for i := 0; i < 5; i++ {
		resp, _ := doJSON(t, client, http.MethodPost, srv.URL+"/api/auth/login",
			map[string]string{"email": "a@b.co", "password": "password123"}, nil)
		lastStatus = resp.StatusCode
	}
	require.Equal(t, http.StatusTooManyRequests, lastStatus)
}

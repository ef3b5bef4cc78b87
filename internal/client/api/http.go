package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"sync"

	"github.com/matchpoint-app/matchpoint/internal/common"
	"github.com/matchpoint-app/matchpoint/internal/logging"
)

// HTTPClient is the HTTP implementation of Client. The session cookie lives
// in the jar and is never exposed to callers; the CSRF rotation token is
// fetched lazily and attached as a header on mutating requests.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	logger  logging.Logger

	mu        sync.Mutex
	csrfToken string
}

// CSRFHeaderName carries the rotation token on mutating requests.
const CSRFHeaderName = "X-CSRF-Token"

func NewHTTPClient(baseURL string, logger logging.Logger) (*HTTPClient, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Jar: jar},
		logger:  logger,
	}, nil
}

// Jar exposes the cookie jar so sibling transports (the websocket event bus)
// can present the same session cookie.
func (c *HTTPClient) Jar(target string) []*http.Cookie {
	u, err := url.Parse(target)
	if err != nil {
		return nil
	}
	return c.http.Jar.Cookies(u)
}

// BaseURL returns the backend base URL this client talks to.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

type errorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields"`
}

// mapError converts a non-2xx response into the error taxonomy.
func mapError(status int, body []byte) error {
	var er errorResponse
	_ = json.Unmarshal(body, &er)

	switch {
	case status == http.StatusBadRequest && len(er.Fields) > 0:
		return &common.ValidationError{Fields: er.Fields}
	case status == http.StatusUnauthorized:
		return common.ErrUnauthenticated
	case status == http.StatusForbidden && er.Code == "CSRF_MISSING":
		return common.ErrCSRFMissing
	case status == http.StatusForbidden && er.Code == "CSRF_INVALID":
		return common.ErrCSRFInvalid
	case status == http.StatusForbidden:
		return common.ErrForbidden
	default:
		if er.Error != "" {
			return fmt.Errorf("server error (%d): %s", status, er.Error)
		}
		return fmt.Errorf("server error (%d)", status)
	}
}

// do sends one JSON request and decodes a JSON response into out (when
// non-nil). Transport-level failures are wrapped in common.ErrTransport so
// callers can distinguish "could not reach the server" from server answers.
func (c *HTTPClient) do(ctx context.Context, method, path string, in any, out any, headers map[string]string) error {
	var reader io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return mapError(resp.StatusCode, body)
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// doMutating attaches the CSRF rotation token, fetching one first if none is
// cached. There is deliberately no retry on CSRF_INVALID: a stale token means
// another tab rotated it, and the caller decides what to do. The stale token
// is dropped from the cache, so the next mutation fetches a fresh one.
func (c *HTTPClient) doMutating(ctx context.Context, method, path string, in any, out any) error {
	c.mu.Lock()
	token := c.csrfToken
	c.mu.Unlock()

	if token == "" {
		fetched, err := c.FetchCSRF(ctx)
		if err != nil {
			return err
		}
		token = fetched
	}

	err := c.do(ctx, method, path, in, out, map[string]string{CSRFHeaderName: token})
	if errors.Is(err, common.ErrCSRFInvalid) {
		c.resetCSRF()
	}
	return err
}

type userEnvelope struct {
	OK   bool  `json:"ok"`
	User *User `json:"user"`
}

func (c *HTTPClient) Register(ctx context.Context, email, password string) (*User, error) {
	var env userEnvelope
	err := c.do(ctx, http.MethodPost, "/api/auth/register",
		map[string]string{"email": email, "password": password}, &env, nil)
	if err != nil {
		return nil, err
	}
	c.resetCSRF()
	return env.User, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*User, error) {
	var env userEnvelope
	err := c.do(ctx, http.MethodPost, "/api/auth/login",
		map[string]string{"email": email, "password": password}, &env, nil)
	if err != nil {
		return nil, err
	}
	// New session: any cached rotation token belongs to the old one.
	c.resetCSRF()
	return env.User, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil)
	c.resetCSRF()
	return err
}

func (c *HTTPClient) resetCSRF() {
	c.mu.Lock()
	c.csrfToken = ""
	c.mu.Unlock()
}

type meResponse struct {
	Auth string `json:"auth"`
	User *User  `json:"user"`
}

// Me implements the non-throwing probe contract: both the auth discriminator
// and a 401 from older servers settle to an unauthenticated Identity with a
// nil error. Only transport failures and unexpected statuses are errors.
func (c *HTTPClient) Me(ctx context.Context) (*Identity, error) {
	var mr meResponse
	err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &mr, nil)
	if err != nil {
		if errors.Is(err, common.ErrUnauthenticated) {
			return &Identity{Authenticated: false}, nil
		}
		return nil, err
	}

	if mr.Auth == "authenticated" && mr.User != nil {
		return &Identity{Authenticated: true, User: mr.User}, nil
	}
	return &Identity{Authenticated: false}, nil
}

func (c *HTTPClient) FetchCSRF(ctx context.Context) (string, error) {
	var out struct {
		CSRFToken string `json:"csrfToken"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/csrf", nil, &out, nil); err != nil {
		return "", err
	}

	c.mu.Lock()
	c.csrfToken = out.CSRFToken
	c.mu.Unlock()
	return out.CSRFToken, nil
}

func (c *HTTPClient) UpdateBasicProfile(ctx context.Context, displayName, bio, gender string) (*User, error) {
	var env userEnvelope
	err := c.doMutating(ctx, http.MethodPut, "/api/profile/basic",
		map[string]string{"display_name": displayName, "bio": bio, "gender": gender}, &env)
	if err != nil {
		return nil, err
	}
	return env.User, nil
}

func (c *HTTPClient) UpdateBirthData(ctx context.Context, bd BirthData) (*User, error) {
	var env userEnvelope
	err := c.doMutating(ctx, http.MethodPut, "/api/profile/birth-data",
		map[string]string{
			"birth_date":     bd.BirthDate,
			"birth_time":     bd.BirthTime,
			"birth_location": bd.BirthLocation,
		}, &env)
	if err != nil {
		return nil, err
	}
	return env.User, nil
}

func (c *HTTPClient) PhotoUploadURL(ctx context.Context) (string, string, error) {
	var out struct {
		UploadURL string `json:"uploadUrl"`
		Key       string `json:"key"`
	}
	if err := c.doMutating(ctx, http.MethodPost, "/api/profile/photo-upload-url", nil, &out); err != nil {
		return "", "", err
	}
	return out.UploadURL, out.Key, nil
}

func (c *HTTPClient) PhotoURL(ctx context.Context) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/profile/photo-url", nil, &out, nil); err != nil {
		return "", err
	}
	return out.URL, nil
}

func (c *HTTPClient) SearchLocations(ctx context.Context, query string, limit int) []LocationSuggestion {
	var out struct {
		Suggestions []LocationSuggestion `json:"suggestions"`
	}
	path := "/api/locations/search?q=" + url.QueryEscape(query) + "&limit=" + strconv.Itoa(limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &out, nil); err != nil {
		c.logger.Warn(ctx, "location search failed", "err", err)
		return []LocationSuggestion{}
	}
	if out.Suggestions == nil {
		return []LocationSuggestion{}
	}
	return out.Suggestions
}

package httpapi

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/matchpoint-app/matchpoint/internal/common"
	"github.com/matchpoint-app/matchpoint/internal/server/models"
)

// SessionCookieName is the name of the httpOnly cookie carrying the signed
// session token. Page scripts never see it; that is the point.
const SessionCookieName = "mp_session"

// CSRFHeaderName carries the rotation token on mutating requests.
const CSRFHeaderName = "X-CSRF-Token"

const (
	ctxUserKey    = "currentUser"
	ctxSessionKey = "currentSession"
)

// currentIdentity resolves the session cookie, if any, to a user and session.
// Missing or dead cookies yield (nil, nil): callers decide whether that is an
// error (protected routes) or data (the /me endpoint).
func (rt *Router) currentIdentity(c *gin.Context) (*models.User, *models.Session) {
	cookie, err := c.Cookie(SessionCookieName)
	if err != nil || cookie == "" {
		return nil, nil
	}
	user, session, err := rt.users.CurrentUser(c.Request.Context(), cookie)
	if err != nil {
		return nil, nil
	}
	return user, session
}

// sessionRequired loads the current identity into the request context and
// rejects unauthenticated requests with 401.
func (rt *Router) sessionRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, session := rt.currentIdentity(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Set(ctxUserKey, user)
		c.Set(ctxSessionKey, session)
		c.Next()
	}
}

// csrfRequired enforces the rotation token on mutating requests. Must be
// mounted after sessionRequired.
func (rt *Router) csrfRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := c.MustGet(ctxSessionKey).(*models.Session)

		err := rt.users.ValidateCSRF(session, c.GetHeader(CSRFHeaderName))
		if err == nil {
			c.Next()
			return
		}

		code := "CSRF_INVALID"
		if errors.Is(err, common.ErrCSRFMissing) {
			code = "CSRF_MISSING"
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"code": code, "error": err.Error()})
	}
}

// loginRateLimiter throttles login attempts per client IP. Limiters are kept
// for the life of the process; the map is small enough not to need eviction.
type loginRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	perMin   int
}

func newLoginRateLimiter(perMin int) *loginRateLimiter {
	return &loginRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		perMin:   perMin,
	}
}

func (l *loginRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[ip]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(float64(l.perMin)/60.0), l.perMin)
		l.limiters[ip] = lim
	}
	return lim.Allow()
}

func (rt *Router) loginRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rt.loginLimiter.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many login attempts"})
			return
		}
		c.Next()
	}
}

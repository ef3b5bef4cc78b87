package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matchpoint-app/matchpoint/internal/common"
	"github.com/matchpoint-app/matchpoint/internal/server/models"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// setSessionCookie attaches the signed session token as an httpOnly cookie.
func (rt *Router) setSessionCookie(c *gin.Context, token string) {
	maxAge := int(rt.config.SessionValidityDuration.Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, maxAge, "/", "", false, true)
}

func (rt *Router) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", false, true)
}

// writeServiceError maps service errors onto the wire taxonomy: 400 with
// field details for validation, 401 for bad credentials, 500 otherwise.
func (rt *Router) writeServiceError(c *gin.Context, err error) {
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": ve.Fields})
	case errors.Is(err, common.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
	case errors.Is(err, common.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		rt.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong, please try again"})
	}
}

func (rt *Router) handleRegister(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, token, err := rt.users.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		rt.writeServiceError(c, err)
		return
	}

	rt.setSessionCookie(c, token)
	rt.hub.Broadcast(c.Request.Context(), user.ID, Event{Type: EventLogin, User: user}, nil)
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": user})
}

func (rt *Router) handleLogin(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, token, err := rt.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		rt.writeServiceError(c, err)
		return
	}

	rt.setSessionCookie(c, token)
	rt.hub.Broadcast(c.Request.Context(), user.ID, Event{Type: EventLogin, User: user}, nil)
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": user})
}

func (rt *Router) handleLogout(c *gin.Context) {
	cookie, err := c.Cookie(SessionCookieName)
	if err == nil && cookie != "" {
		// Resolve the user first so the broadcast can reach their other tabs.
		if user, _, err := rt.users.CurrentUser(c.Request.Context(), cookie); err == nil {
			rt.hub.Broadcast(c.Request.Context(), user.ID, Event{Type: EventLogout}, nil)
		}
		if err := rt.users.Logout(c.Request.Context(), cookie); err != nil {
			rt.logger.Warn(c.Request.Context(), "revoking session", "err", err)
		}
	}

	rt.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// handleMe implements the non-throwing identity probe: it always answers 200,
// with an auth discriminator instead of an error status, so clients treat
// "not logged in" as data.
func (rt *Router) handleMe(c *gin.Context) {
	user, _ := rt.currentIdentity(c)
	if user == nil {
		c.JSON(http.StatusOK, gin.H{"auth": "unauthenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"auth": "authenticated", "user": user})
}

func (rt *Router) handleCSRF(c *gin.Context) {
	session := c.MustGet(ctxSessionKey).(*models.Session)

	token, err := rt.users.RotateCSRF(c.Request.Context(), session.ID)
	if err != nil {
		rt.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"csrfToken": token})
}

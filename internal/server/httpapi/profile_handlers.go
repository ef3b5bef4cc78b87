package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/matchpoint-app/matchpoint/internal/server/models"
	"github.com/matchpoint-app/matchpoint/internal/server/services"
)

type basicProfileRequest struct {
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
	Gender      string `json:"gender"`
}

// Field names in request bodies are snake_case on purpose: they double as the
// keys of field-level validation errors, which forms match against inputs.
type birthDataRequest struct {
	BirthDate     string `json:"birth_date"`
	BirthTime     string `json:"birth_time"`
	BirthLocation string `json:"birth_location"`
}

func (rt *Router) handleUpdateBasic(c *gin.Context) {
	user := c.MustGet(ctxUserKey).(*models.User)

	var req basicProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	updated, err := rt.profiles.UpdateBasic(c.Request.Context(), user.ID, req.DisplayName, req.Bio, req.Gender)
	if err != nil {
		rt.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": updated})
}

func (rt *Router) handleUpdateBirthData(c *gin.Context) {
	user := c.MustGet(ctxUserKey).(*models.User)

	var req birthDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	updated, err := rt.profiles.UpdateBirthData(c.Request.Context(), user.ID, &models.BirthData{
		BirthDate:     req.BirthDate,
		BirthTime:     req.BirthTime,
		BirthLocation: req.BirthLocation,
	})
	if err != nil {
		rt.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": updated})
}

func (rt *Router) handlePhotoUploadURL(c *gin.Context) {
	user := c.MustGet(ctxUserKey).(*models.User)

	url, key, err := rt.photos.GetUploadURL(c.Request.Context(), user.ID)
	if err != nil {
		rt.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"uploadUrl": url, "key": key})
}

func (rt *Router) handlePhotoURL(c *gin.Context) {
	user := c.MustGet(ctxUserKey).(*models.User)

	url, err := rt.photos.GetDownloadURL(c.Request.Context(), user.ID)
	if err != nil {
		rt.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (rt *Router) handleLocationSearch(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))

	suggestions := rt.locations.Search(c.Request.Context(), c.Query("q"), limit)
	if suggestions == nil {
		suggestions = []services.LocationSuggestion{}
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

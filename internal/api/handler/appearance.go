package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jon4hz/bixblion/internal/api/models"
	"github.com/jon4hz/bixblion/internal/appearance"
	"github.com/mergestat/timediff"
)

// GetAppearance returns theme, settings and the state of the night mode.
func (h *Handler) GetAppearance(c *gin.Context) {
	resp, err := h.appearanceResponse(c)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateAppearanceSettings merges the given settings and re-evaluates the night mode.
func (h *Handler) UpdateAppearanceSettings(c *gin.Context) {
	var req appearance.SettingsUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Response{Message: "invalid request body"})
		return
	}

	if _, err := h.engine.Appearance().UpdateSettings(c.Request.Context(), req); err != nil {
		writeError(c, err)
		return
	}
	h.GetAppearance(c)
}

// SetTheme sets the active theme.
func (h *Handler) SetTheme(c *gin.Context) {
	var req models.ThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Response{Message: "invalid request body"})
		return
	}

	theme, err := appearance.ParseTheme(req.Theme)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.Response{Message: err.Error()})
		return
	}
	if err := h.engine.Appearance().SetTheme(c.Request.Context(), theme); err != nil {
		writeError(c, err)
		return
	}
	h.GetAppearance(c)
}

func (h *Handler) appearanceResponse(c *gin.Context) (*models.AppearanceResponse, error) {
	ctx := c.Request.Context()
	sched := h.engine.Appearance()

	theme, err := sched.Theme(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := sched.LoadSettings(ctx)
	if err != nil {
		return nil, err
	}

	resp := &models.AppearanceResponse{
		Theme:    theme,
		Settings: settings,
		Night:    sched.IsNightTime(),
	}

	saved, ok, err := sched.SavedTheme(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		resp.SavedTheme = &saved
	}

	if next, ok := sched.NextCheck(); ok {
		resp.NextCheck = &next
		resp.NextCheckIn = timediff.TimeDiff(next, timediff.WithStartTime(h.engine.Scheduler().Clock().Now()))
	}
	return resp, nil
}

package handler

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/bixblion/internal/account"
	"github.com/jon4hz/bixblion/internal/api/auth"
	"github.com/jon4hz/bixblion/internal/api/models"
	"github.com/jon4hz/bixblion/internal/config"
	"github.com/jon4hz/bixblion/internal/engine"
)

type Handler struct {
	engine *engine.Engine
	config *config.Config
}

func New(eng *engine.Engine, cfg *config.Config) *Handler {
	return &Handler{
		engine: eng,
		config: cfg,
	}
}

// Home returns the logged in user and the active theme.
func (h *Handler) Home(c *gin.Context) {
	identity := c.MustGet("user").(*account.Identity)

	theme, err := h.engine.Appearance().Theme(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.HomeResponse{
		OK:    true,
		User:  models.ToUser(identity, h.config.Gravatar),
		Theme: theme,
	})
}

// Login reports whether a login is required.
func (h *Handler) Login(c *gin.Context) {
	if account.FromContext(c.Request.Context()).CurrentSession() != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":      false,
		"message": "login required",
		"from":    auth.PeekFrom(c),
	})
}

// LoginSubmit authenticates with email and secret.
func (h *Handler) LoginSubmit(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Response{Message: "invalid request body"})
		return
	}

	dir := account.FromContext(c.Request.Context())
	if _, err := dir.Login(c.Request.Context(), req.Email, req.Secret); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		OK:       true,
		Redirect: auth.PopFrom(c),
	})
}

// Register creates an account and logs it in.
func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Response{Message: "invalid request body"})
		return
	}

	if req.Secret != req.ConfirmSecret {
		writeError(c, &account.ValidationError{Field: "confirm_secret", Message: "secrets do not match"})
		return
	}

	dir := account.FromContext(c.Request.Context())
	if _, err := dir.Register(c.Request.Context(), account.RegisterInput{
		Name:   req.Name,
		Email:  req.Email,
		Secret: req.Secret,
	}); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{OK: true})
}

// Logout ends the session.
func (h *Handler) Logout(c *gin.Context) {
	if err := account.FromContext(c.Request.Context()).Logout(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Response{OK: true})
}

// Me returns the current user's information.
func (h *Handler) Me(c *gin.Context) {
	identity := c.MustGet("user").(*account.Identity)

	c.JSON(http.StatusOK, models.UserResponse{
		OK:   true,
		User: models.ToUser(identity, h.config.Gravatar),
	})
}

// UpdateProfile changes name and email of the current user.
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req models.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Response{Message: "invalid request body"})
		return
	}

	dir := account.FromContext(c.Request.Context())
	identity, err := dir.UpdateProfile(c.Request.Context(), account.ProfileInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.UserResponse{
		OK:   true,
		User: models.ToUser(&identity, h.config.Gravatar),
	})
}

// writeError maps domain errors to status codes.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case account.IsValidation(err):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, account.ErrInvalidCredentials), errors.Is(err, account.ErrNotAuthenticated):
		status, message = http.StatusUnauthorized, err.Error()
	case account.IsConflict(err):
		status, message = http.StatusConflict, err.Error()
	default:
		log.Error("Request failed", "path", c.Request.URL.Path, "error", err)
	}

	c.JSON(status, models.Response{OK: false, Message: message})
}

package models

import (
	"time"

	"github.com/jon4hz/bixblion/internal/appearance"
)

// Response is the envelope of every auth response.
type Response struct {
	OK       bool   `json:"ok"`
	Message  string `json:"message,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email  string `json:"email"`
	Secret string `json:"secret"`
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Secret        string `json:"secret"`
	ConfirmSecret string `json:"confirm_secret"`
}

// ProfileRequest is the body of PUT /api/auth/profile.
type ProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// User is the public view of the logged in account.
type User struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	GravatarURL string `json:"gravatar_url,omitempty"`
}

// UserResponse wraps the current user.
type UserResponse struct {
	OK   bool  `json:"ok"`
	User *User `json:"user"`
}

// HomeResponse is served on GET /.
type HomeResponse struct {
	OK    bool             `json:"ok"`
	User  *User            `json:"user"`
	Theme appearance.Theme `json:"theme"`
}

// ThemeRequest is the body of PUT /api/appearance/theme.
type ThemeRequest struct {
	Theme string `json:"theme"`
}

// AppearanceResponse describes the appearance state.
type AppearanceResponse struct {
	Theme       appearance.Theme    `json:"theme"`
	SavedTheme  *appearance.Theme   `json:"saved_theme,omitempty"`
	Settings    appearance.Settings `json:"settings"`
	Night       bool                `json:"night"`
	NextCheck   *time.Time          `json:"next_check,omitempty"`
	NextCheckIn string              `json:"next_check_in,omitempty"`
}

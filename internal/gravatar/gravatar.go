// Package gravatar builds avatar URLs for account identities.
package gravatar

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"

	"github.com/jon4hz/bixblion/internal/account"
	"github.com/jon4hz/bixblion/internal/config"
	"github.com/samber/lo"
)

const baseURL = "https://www.gravatar.com/avatar/"

var (
	validDefaults = []string{"404", "mp", "identicon", "monsterid", "wavatar", "retro", "robohash", "blank"}
	validRatings  = []string{"g", "pg", "r", "x"}
)

// Hash returns the hex encoded SHA-256 of the normalized email.
func Hash(email string) string {
	sum := sha256.Sum256([]byte(account.NormalizeEmail(email)))
	return hex.EncodeToString(sum[:])
}

// URL returns the avatar URL of identity.
// It is empty if Gravatar is disabled or the identity has no email.
func URL(identity account.Identity, cfg *config.GravatarConfig) string {
	if cfg == nil || !cfg.Enabled || identity.Email == "" {
		return ""
	}

	params := url.Values{}
	if cfg.DefaultImage != "" {
		params.Set("d", cfg.DefaultImage)
	}
	if cfg.Rating != "" {
		params.Set("r", cfg.Rating)
	}
	if cfg.Size > 0 {
		params.Set("s", strconv.Itoa(cfg.Size))
	}

	u := baseURL + Hash(identity.Email)
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// Validate checks the optional Gravatar parameters of cfg.
func Validate(cfg *config.GravatarConfig) error {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	if cfg.DefaultImage != "" && !lo.Contains(validDefaults, cfg.DefaultImage) {
		return fmt.Errorf("invalid gravatar default image %q", cfg.DefaultImage)
	}
	if cfg.Rating != "" && !lo.Contains(validRatings, cfg.Rating) {
		return fmt.Errorf("invalid gravatar rating %q", cfg.Rating)
	}
	if cfg.Size != 0 && (cfg.Size < 1 || cfg.Size > 2048) {
		return fmt.Errorf("invalid gravatar size %d, must be between 1 and 2048", cfg.Size)
	}
	return nil
}

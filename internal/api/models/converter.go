package models

import (
	"github.com/jon4hz/bixblion/internal/account"
	"github.com/jon4hz/bixblion/internal/config"
	"github.com/jon4hz/bixblion/internal/gravatar"
)

// ToUser converts a session identity to its public view.
// It returns nil for an anonymous session.
func ToUser(identity *account.Identity, cfg *config.GravatarConfig) *User {
	if identity == nil {
		return nil
	}
	return &User{
		ID:          identity.ID,
		Name:        identity.Name,
		Email:       identity.Email,
		GravatarURL: gravatar.URL(*identity, cfg),
	}
}

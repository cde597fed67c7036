// Package account implements the local account directory and the single active session.
package account

// Account is a registered account as persisted in the account collection.
// The secret is stored as opaque text.
type Account struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Secret string `json:"secret"`
}

// Identity is the credential-free projection of an account.
// It is the only account information visible outside this package.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Identity returns the sanitized projection of a.
func (a Account) Identity() Identity {
	return Identity{
		ID:    a.ID,
		Name:  a.Name,
		Email: a.Email,
	}
}

// RegisterInput holds the data needed to create an account.
type RegisterInput struct {
	Name   string
	Email  string
	Secret string
}

// ProfileInput holds the editable profile fields of the current account.
type ProfileInput struct {
	Name  string
	Email string
}

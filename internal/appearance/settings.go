package appearance

// Settings controls the automatic night mode.
// AlwaysActive takes precedence over Enabled when both are set.
type Settings struct {
	Enabled      bool `json:"enabled"`
	AlwaysActive bool `json:"alwaysActive"`
}

// SettingsUpdate is a partial change to Settings. Nil fields are left untouched.
type SettingsUpdate struct {
	Enabled      *bool `json:"enabled,omitempty"`
	AlwaysActive *bool `json:"alwaysActive,omitempty"`
}

// Apply returns s with the non-nil fields of u merged in.
func (u SettingsUpdate) Apply(s Settings) Settings {
	if u.Enabled != nil {
		s.Enabled = *u.Enabled
	}
	if u.AlwaysActive != nil {
		s.AlwaysActive = *u.AlwaysActive
	}
	return s
}

// scheduled reports whether the recurring check should be armed.
func (s Settings) scheduled() bool {
	return s.Enabled && !s.AlwaysActive
}

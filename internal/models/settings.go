package models

// Settings is the operator-editable configuration document written by the
// setup form. API credentials live here rather than in the environment so
// they can be changed without a restart.
type Settings struct {
	APIKey       string `json:"apiKey,omitempty" validate:"required"`
	Schedule     string `json:"schedule,omitempty" validate:"required"`
	ChannelID    string `json:"channelId,omitempty" validate:"required"`
	ClientID     string `json:"clientId,omitempty"`
	ClientSecret string `json:"clientSecret,omitempty"`
}

// Configured reports whether the settings carry everything the ingestion
// pipeline needs. An unconfigured settings document makes a run a no-op.
func (s Settings) Configured() bool {
	return s.APIKey != "" && s.ChannelID != ""
}

// HasOAuthClient reports whether an OAuth client is set up, which moderation
// calls need on top of the plain API key.
func (s Settings) HasOAuthClient() bool {
	return s.ClientID != "" && s.ClientSecret != ""
}

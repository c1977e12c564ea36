package domain

// Providers known to the sign-in flow.
const (
	ProviderCredentials = "credentials"
	ProviderGoogle      = "google"
)

// SessionUser is the user block of a materialized session
type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Image string `json:"image,omitempty"`
}

// Session is the per-request view of an authenticated identity.
// It is rebuilt from the signed token on every request.
type Session struct {
	User     SessionUser `json:"user"`
	Provider string      `json:"-"`
}

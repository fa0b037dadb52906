package domain

// AuthUser is the identity returned by an OAuth provider after login.
type AuthUser struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Picture   string `json:"picture,omitempty"`
	Provider  string `json:"provider"`
	Verified  bool   `json:"verified"`
}

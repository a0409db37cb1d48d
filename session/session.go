package session

import "github.com/feedbackportal/portal-client/transport"

// RoleType represents a user role within the portal
type RoleType string

const (
	RoleUser  RoleType = "user"
	RoleAdmin RoleType = "admin"
)

// User is the authenticated identity for the current process lifetime.
type User struct {
	ID    transport.ID `json:"_id"`
	Name  string       `json:"name"`
	Email string       `json:"email"`
	Role  RoleType     `json:"role"`
}

// State is the session lifecycle state. Admin vs regular user is a derived
// predicate (IsAdmin), not a distinct state.
type State int

const (
	StateInitializing State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// RegisterProfile is the payload submitted to the registration endpoint.
type RegisterProfile struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Credentials is the payload submitted to the login endpoint.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Navigator abstracts the view layer's routing. The session service alone
// owns redirect decisions; the transport layer only reports auth failures.
type Navigator interface {
	// Navigate moves the application to route. replace indicates the current
	// history entry should be replaced rather than pushed.
	Navigate(route string, replace bool)
	// CurrentPath returns the route currently displayed.
	CurrentPath() string
}

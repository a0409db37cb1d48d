package routes

import "strings"

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	Landing  = "/"
	Login    = "/login"
	Register = "/register"

	// Authenticated routes (any role)
	Dashboard      = "/dashboard"
	SubmitFeedback = "/submit-feedback"

	// Admin routes (role "admin" only)
	Admin       = "/admin"
	AdminPrefix = "/admin"
)

// IsAdminPath reports whether path falls under the admin-only path prefix.
func IsAdminPath(path string) bool {
	return strings.HasPrefix(path, AdminPrefix)
}

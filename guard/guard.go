// Package guard decides whether a protected view renders or redirects based
// on session state. Decisions are pure values computed fresh on every
// navigation - never cached, since the session can change between renders.
package guard

import (
	"github.com/feedbackportal/portal-client/routes"
	"github.com/feedbackportal/portal-client/session"
)

// Session is the slice of the session service the guard consults.
type Session interface {
	State() session.State
	IsAdmin() bool
}

// Action is the guard's verdict for a requested view.
type Action int

const (
	// ActionRender allows the requested view.
	ActionRender Action = iota
	// ActionLoading means the session is still initializing; render a
	// loading placeholder and nothing else.
	ActionLoading
	// ActionRedirect means navigate to Target instead of rendering.
	ActionRedirect
)

// Decision is the outcome of guarding one navigation.
type Decision struct {
	Action Action
	// Target is the redirect destination when Action is ActionRedirect.
	Target string
	// From remembers the originally requested path on a login redirect, for
	// optional post-login return.
	From string
}

// Decide gates a navigation to requestedPath. adminOnly marks views reserved
// for the admin role; a role mismatch redirects silently to the dashboard.
func Decide(sess Session, requestedPath string, adminOnly bool) Decision {
	switch sess.State() {
	case session.StateInitializing:
		return Decision{Action: ActionLoading}
	case session.StateAnonymous:
		return Decision{Action: ActionRedirect, Target: routes.Login, From: requestedPath}
	}

	if adminOnly && !sess.IsAdmin() {
		return Decision{Action: ActionRedirect, Target: routes.Dashboard}
	}
	return Decision{Action: ActionRender}
}

package guard_test

import (
	"testing"

	"github.com/feedbackportal/portal-client/guard"
	"github.com/feedbackportal/portal-client/routes"
	"github.com/feedbackportal/portal-client/session"
	"github.com/stretchr/testify/require"
)

type stubSession struct {
	state session.State
	admin bool
}

func (s stubSession) State() session.State { return s.state }
func (s stubSession) IsAdmin() bool        { return s.admin }

func TestDecideWhileInitializing(t *testing.T) {
	decision := guard.Decide(stubSession{state: session.StateInitializing}, routes.Dashboard, false)
	require.Equal(t, guard.ActionLoading, decision.Action)
}

func TestDecideAnonymousRedirectsToLogin(t *testing.T) {
	decision := guard.Decide(stubSession{state: session.StateAnonymous}, routes.SubmitFeedback, false)
	require.Equal(t, guard.ActionRedirect, decision.Action)
	require.Equal(t, routes.Login, decision.Target)
	require.Equal(t, routes.SubmitFeedback, decision.From)
}

func TestDecideNonAdminOnAdminViewRedirectsToDashboard(t *testing.T) {
	decision := guard.Decide(stubSession{state: session.StateAuthenticated}, routes.Admin, true)
	require.Equal(t, guard.ActionRedirect, decision.Action)
	require.Equal(t, routes.Dashboard, decision.Target)
	require.Empty(t, decision.From)
}

func TestDecideAdminOnAdminViewRenders(t *testing.T) {
	decision := guard.Decide(stubSession{state: session.StateAuthenticated, admin: true}, routes.Admin, true)
	require.Equal(t, guard.ActionRender, decision.Action)
}

func TestDecideAuthenticatedUserRenders(t *testing.T) {
	decision := guard.Decide(stubSession{state: session.StateAuthenticated}, routes.Dashboard, false)
	require.Equal(t, guard.ActionRender, decision.Action)
}

func TestDecideIsReEvaluatedAfterLogout(t *testing.T) {
	sess := &struct{ stubSession }{stubSession{state: session.StateAuthenticated, admin: true}}

	decision := guard.Decide(sess, routes.Admin, true)
	require.Equal(t, guard.ActionRender, decision.Action)

	// An in-tab logout must be reflected on the very next evaluation.
	sess.stubSession = stubSession{state: session.StateAnonymous}
	decision = guard.Decide(sess, routes.Admin, true)
	require.Equal(t, guard.ActionRedirect, decision.Action)
	require.Equal(t, routes.Login, decision.Target)
}

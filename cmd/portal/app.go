package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/feedbackportal/portal-client/credentials"
	"github.com/feedbackportal/portal-client/feedback"
	"github.com/feedbackportal/portal-client/guard"
	"github.com/feedbackportal/portal-client/internal/config"
	apperrors "github.com/feedbackportal/portal-client/internal/errors"
	"github.com/feedbackportal/portal-client/routes"
	"github.com/feedbackportal/portal-client/session"
	"github.com/feedbackportal/portal-client/transport"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// app wires the two service objects, the transport and the navigator together
// once at process start and hands them to every command that needs them.
type app struct {
	cfg      config.Config
	nav      *terminalNavigator
	client   *transport.Client
	session  *session.Service
	feedback *feedback.Service
	validate *validator.Validate
	out      io.Writer
}

func newApp(cfg config.Config, out io.Writer) (*app, error) {
	client, err := transport.New(cfg.GetAPIBaseURL(), transport.WithTimeout(cfg.GetRequestTimeout()))
	if err != nil {
		return nil, errors.Wrap(err, "[newApp] creating transport client")
	}

	store, err := credentials.NewFileStore(cfg.GetDataFolder())
	if err != nil {
		return nil, errors.Wrap(err, "[newApp] creating credentials store")
	}

	nav := newTerminalNavigator()

	sessionService, err := session.NewService(session.Deps{
		Store:     store,
		Client:    client,
		Navigator: nav,
	})
	if err != nil {
		return nil, errors.Wrap(err, "[newApp] creating session service")
	}

	feedbackService, err := feedback.NewService(client)
	if err != nil {
		return nil, errors.Wrap(err, "[newApp] creating feedback service")
	}

	return &app{
		cfg:      cfg,
		nav:      nav,
		client:   client,
		session:  sessionService,
		feedback: feedbackService,
		validate: validator.New(),
		out:      out,
	}, nil
}

// enter performs the navigation to a protected route: restore the session,
// then let the guard decide whether the command may proceed. Role mismatches
// redirect silently; only the anonymous case surfaces an error.
func (a *app) enter(route string, adminOnly bool) error {
	a.nav.Navigate(route, false)
	a.session.Initialize()

	decision := guard.Decide(a.session, route, adminOnly)
	if decision.Action != guard.ActionRedirect {
		return nil
	}

	a.nav.Navigate(decision.Target, true)
	if decision.Target == routes.Login {
		return errors.Wrap(apperrors.ErrNotAuthenticated, "please log in first")
	}
	return errors.Wrap(apperrors.ErrForbidden, "this command requires the admin role")
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// terminalNavigator tracks the current route for a terminal session. The
// session service drives it on login/logout/auth-failure redirects.
type terminalNavigator struct {
	mu   sync.RWMutex
	path string
	log  zerolog.Logger
}

var _ session.Navigator = (*terminalNavigator)(nil)

func newTerminalNavigator() *terminalNavigator {
	return &terminalNavigator{path: routes.Landing, log: log.Logger}
}

func (n *terminalNavigator) Navigate(route string, replace bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.path = route
	n.log.Debug().Str("route", route).Bool("replace", replace).Msg("navigate")
}

func (n *terminalNavigator) CurrentPath() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.path
}

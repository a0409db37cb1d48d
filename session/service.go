package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/feedbackportal/portal-client/credentials"
	apperrors "github.com/feedbackportal/portal-client/internal/errors"
	"github.com/feedbackportal/portal-client/routes"
	"github.com/feedbackportal/portal-client/transport"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	genericRegisterError = "Registration failed"
	genericLoginError    = "Login failed"
)

// Deps holds all dependencies for the session Service.
type Deps struct {
	Store     credentials.Store // Durable local storage for user + token
	Client    *transport.Client // Backend HTTP client
	Navigator Navigator         // View-layer routing
}

// Service owns the current-user identity and the token lifecycle. It is the
// single writer of the credential store and keeps the transport's bearer
// header in sync with it within each operation.
type Service struct {
	deps    Deps
	log     zerolog.Logger
	nowTime func() time.Time // nowTime function (injectable for testing)

	initOnce sync.Once

	mu           sync.RWMutex
	user         *User
	initializing bool
	busy         bool
	errMsg       string
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithLogger overrides the default global logger.
func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.log = logger
	}
}

// NewService initialises a new session Service with required dependencies.
// The service subscribes to the transport's auth-failure signal: any 401
// tears the session down and navigates to the login route.
func NewService(deps Deps, options ...ServiceOption) (*Service, error) {
	if deps.Store == nil {
		return nil, errors.New("[NewService] credentials store is required")
	}
	if deps.Client == nil {
		return nil, errors.New("[NewService] transport client is required")
	}
	if deps.Navigator == nil {
		return nil, errors.New("[NewService] navigator is required")
	}

	service := &Service{
		deps:         deps,
		log:          log.Logger,
		nowTime:      time.Now,
		initializing: true,
	}
	for _, opt := range options {
		opt(service)
	}

	deps.Client.OnAuthFailure(service.handleAuthFailure)
	return service, nil
}

// Initialize restores the persisted session. It runs once, at process start:
// no persisted credentials leaves the session anonymous; an expired token
// triggers a full teardown; a valid token restores the user, attaches the
// bearer header and, when the current location is an admin path but the
// restored role is not admin, redirects to the dashboard. The initializing
// flag is cleared exactly once, whatever path is taken.
func (s *Service) Initialize() {
	s.initOnce.Do(func() {
		defer s.setInitializing(false)

		record, err := s.deps.Store.Load()
		if err != nil {
			s.log.Warn().Err(err).Msg("failed to load persisted session, starting anonymous")
			return
		}
		if record == nil {
			return
		}

		if TokenExpired(record.Token, s.nowTime()) {
			s.log.Info().Msg("persisted token expired, tearing session down")
			s.Logout()
			return
		}

		var user User
		if err := json.Unmarshal(record.User, &user); err != nil {
			s.log.Warn().Err(err).Msg("persisted user profile unreadable, tearing session down")
			s.Logout()
			return
		}

		s.deps.Client.SetBearerToken(record.Token)
		s.setUser(&user)

		if routes.IsAdminPath(s.deps.Navigator.CurrentPath()) && user.Role != RoleAdmin {
			s.deps.Navigator.Navigate(routes.Dashboard, true)
		}
	})
}

// Register submits a new profile. On success it returns the created user
// without authenticating the session.
func (s *Service) Register(ctx context.Context, profile RegisterProfile) (*User, error) {
	s.begin()
	defer s.finish()

	var out struct {
		User *User `json:"user"`
	}
	if err := s.deps.Client.PostJSON(ctx, "/api/auth/register", profile, &out); err != nil {
		s.setError(transport.Message(err, genericRegisterError))
		return nil, errors.Wrap(err, "[Service.Register] registration request")
	}
	if out.User == nil {
		err := errors.Wrap(apperrors.ErrMalformedResponse, "[Service.Register] response missing user")
		s.setError(genericRegisterError)
		return nil, err
	}
	return out.User, nil
}

// Login exchanges credentials for a session. On success the credential store,
// the transport's bearer header and the in-memory user are all updated within
// this one call, then navigation follows the role: admins land on the admin
// board, everyone else on the dashboard. On failure session state is left
// untouched.
func (s *Service) Login(ctx context.Context, creds Credentials) (*User, error) {
	s.begin()
	defer s.finish()

	var out struct {
		User  *User  `json:"user"`
		Token string `json:"token"`
	}
	if err := s.deps.Client.PostJSON(ctx, "/api/auth/login", creds, &out); err != nil {
		s.setError(transport.Message(err, genericLoginError))
		return nil, errors.Wrap(err, "[Service.Login] login request")
	}
	if out.User == nil || out.Token == "" {
		err := errors.Wrap(apperrors.ErrMalformedResponse, "[Service.Login] response missing user or token")
		s.setError(genericLoginError)
		return nil, err
	}

	profile, err := json.Marshal(out.User)
	if err != nil {
		s.setError(genericLoginError)
		return nil, errors.Wrap(err, "[Service.Login] encoding user profile")
	}
	if err := s.deps.Store.Save(credentials.Record{User: profile, Token: out.Token}); err != nil {
		s.setError(genericLoginError)
		return nil, errors.Wrap(err, "[Service.Login] persisting session")
	}
	s.deps.Client.SetBearerToken(out.Token)
	s.setUser(out.User)

	s.log.Info().Str("role", string(out.User.Role)).Msg("login succeeded")
	if out.User.Role == RoleAdmin {
		s.deps.Navigator.Navigate(routes.Admin, true)
	} else {
		s.deps.Navigator.Navigate(routes.Dashboard, true)
	}
	return out.User, nil
}

// Logout tears the session down: persisted credentials cleared, bearer header
// cleared, in-memory user cleared, navigation to the login route. Safe to
// call when already anonymous.
func (s *Service) Logout() {
	if err := s.deps.Store.Clear(); err != nil {
		s.log.Warn().Err(err).Msg("failed to clear persisted session")
	}
	s.deps.Client.ClearBearerToken()
	s.setUser(nil)
	s.deps.Navigator.Navigate(routes.Login, false)
}

// IsAdmin reports whether the current user holds the admin role. Safe to call
// while anonymous.
func (s *Service) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.Role == RoleAdmin
}

// State derives the session lifecycle state.
func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.initializing {
		return StateInitializing
	}
	if s.user != nil {
		return StateAuthenticated
	}
	return StateAnonymous
}

// CurrentUser returns a copy of the authenticated user, or nil.
func (s *Service) CurrentUser() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	copied := *s.user
	return &copied
}

// Err returns the last operation's error message, or "".
func (s *Service) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// Busy reports whether an operation is in flight.
func (s *Service) Busy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.busy
}

func (s *Service) handleAuthFailure() {
	s.log.Info().Msg("backend rejected credentials, tearing session down")
	s.Logout()
}

func (s *Service) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = true
	s.errMsg = ""
}

func (s *Service) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
}

func (s *Service) setError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = msg
}

func (s *Service) setUser(user *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
}

func (s *Service) setInitializing(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initializing = v
}

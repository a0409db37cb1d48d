package feedback

import (
	"context"
	"net/url"
	"strconv"
	"sync"

	apperrors "github.com/feedbackportal/portal-client/internal/errors"
	"github.com/feedbackportal/portal-client/internal/utils"
	"github.com/feedbackportal/portal-client/transport"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	submitSuccessMsg = "Feedback submitted successfully!"
	replySuccessMsg  = "Reply added successfully!"

	genericSubmitError = "Failed to submit feedback"
	genericListError   = "Failed to fetch feedbacks"
	genericGetError    = "Failed to fetch feedback"
	genericReplyError  = "Failed to add reply"
)

// Service owns the in-memory feedback collection for the current view plus
// transient busy/error/success status. Error and success are mutually
// exclusive; a new operation clears both before running. Concurrent list
// refreshes and reply updates resolve last-write-wins on the shared
// collection.
type Service struct {
	client *transport.Client
	log    zerolog.Logger

	mu        sync.RWMutex
	feedbacks []Feedback
	busy      bool
	errMsg    string
	success   string
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithLogger overrides the default global logger.
func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.log = logger
	}
}

// NewService initialises a new feedback Service.
func NewService(client *transport.Client, options ...ServiceOption) (*Service, error) {
	if client == nil {
		return nil, errors.New("[NewService] transport client is required")
	}
	service := &Service{
		client: client,
		log:    log.Logger,
	}
	for _, opt := range options {
		opt(service)
	}
	return service, nil
}

// Submit creates a new feedback record. Text and rating are required by the
// caller's validation; the store does not re-validate. The payload is always
// multipart form data, with the image streamed when present.
func (s *Service) Submit(ctx context.Context, text string, rating int, image *ImageAttachment) (*Feedback, error) {
	s.begin()
	defer s.finish()

	fields := map[string]string{
		"text":   text,
		"rating": strconv.Itoa(rating),
	}
	var out struct {
		Feedback *Feedback `json:"feedback"`
	}

	var err error
	if image != nil {
		err = s.client.PostMultipart(ctx, "/api/feedback", fields, "image", image.Name, image.Reader, &out)
	} else {
		err = s.client.PostMultipart(ctx, "/api/feedback", fields, "", "", nil, &out)
	}
	if err != nil {
		s.fail(transport.Message(err, genericSubmitError))
		return nil, errors.Wrap(err, "[Service.Submit] submit request")
	}
	if out.Feedback == nil {
		s.fail(genericSubmitError)
		return nil, errors.Wrap(apperrors.ErrMalformedResponse, "[Service.Submit] response missing feedback")
	}

	s.succeed(submitSuccessMsg)
	return out.Feedback, nil
}

// List fetches feedback records. With a UserID filter the per-user endpoint
// is used and the shared collection is NOT overwritten, so a personal
// dashboard fetch never clobbers an admin's global list. Without one, the
// global endpoint is used and the result replaces the shared collection.
// Corrupt records are dropped before anything is returned or stored.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Feedback, error) {
	s.begin()
	defer s.finish()

	query := url.Values{}
	if filters.Rating != nil {
		query.Set("rating", strconv.Itoa(utils.Value(filters.Rating)))
	}
	if filters.SortBy != "" {
		query.Set("sortBy", string(filters.SortBy))
	}

	path := "/api/feedback"
	if filters.UserID != "" {
		path = "/api/feedback/user"
		query.Set("userId", filters.UserID)
	}

	var out struct {
		Feedbacks *[]Feedback `json:"feedbacks"`
	}
	if err := s.client.Get(ctx, path, query, &out); err != nil {
		s.log.Error().Err(err).Msg("error fetching feedbacks")
		s.fail(transport.Message(err, genericListError))
		return nil, errors.Wrap(err, "[Service.List] list request")
	}
	if out.Feedbacks == nil {
		s.fail(genericListError)
		return nil, errors.Wrap(apperrors.ErrMalformedResponse, "[Service.List] response missing feedbacks")
	}

	clean := sanitize(*out.Feedbacks)
	if filters.UserID == "" {
		s.mu.Lock()
		s.feedbacks = clean
		s.mu.Unlock()
	}
	return clean, nil
}

// Get fetches a single feedback record by id.
func (s *Service) Get(ctx context.Context, id string) (*Feedback, error) {
	s.begin()
	defer s.finish()

	var out struct {
		Feedback *Feedback `json:"feedback"`
	}
	if err := s.client.Get(ctx, "/api/feedback/"+id, nil, &out); err != nil {
		s.fail(transport.Message(err, genericGetError))
		return nil, errors.Wrap(err, "[Service.Get] get request")
	}
	if out.Feedback == nil {
		s.fail(genericGetError)
		return nil, errors.Wrap(apperrors.ErrMalformedResponse, "[Service.Get] response missing feedback")
	}
	return out.Feedback, nil
}

// Reply appends an admin reply to a feedback record. On success the backend's
// updated record replaces the matching entry in the shared collection.
func (s *Service) Reply(ctx context.Context, id, text string) (*Feedback, error) {
	s.begin()
	defer s.finish()

	body := map[string]string{"text": text}
	var out struct {
		Feedback *Feedback `json:"feedback"`
	}
	if err := s.client.PostJSON(ctx, "/api/feedback/"+id+"/reply", body, &out); err != nil {
		s.fail(transport.Message(err, genericReplyError))
		return nil, errors.Wrap(err, "[Service.Reply] reply request")
	}
	if out.Feedback == nil {
		s.fail(genericReplyError)
		return nil, errors.Wrap(apperrors.ErrMalformedResponse, "[Service.Reply] response missing feedback")
	}

	s.mu.Lock()
	for i := range s.feedbacks {
		if s.feedbacks[i].ID.String() == id {
			s.feedbacks[i] = *out.Feedback
			break
		}
	}
	s.mu.Unlock()

	s.succeed(replySuccessMsg)
	return out.Feedback, nil
}

// Suggestions fetches AI-suggested reply texts for a feedback record. The
// suggestion engine is an opaque collaborator: failures are logged and passed
// through without touching the store's status, since this is a non-critical
// path.
func (s *Service) Suggestions(ctx context.Context, id string) ([]string, error) {
	var out struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := s.client.Get(ctx, "/api/feedback/"+id+"/suggestions", nil, &out); err != nil {
		s.log.Error().Err(err).Str("feedback_id", id).Msg("failed to get reply suggestions")
		return nil, errors.Wrap(err, "[Service.Suggestions] suggestions request")
	}
	return out.Suggestions, nil
}

// Feedbacks returns a copy of the shared collection.
func (s *Service) Feedbacks() []Feedback {
	s.mu.RLock()
	defer s.mu.RUnlock()
	copied := make([]Feedback, len(s.feedbacks))
	copy(copied, s.feedbacks)
	return copied
}

// Busy reports whether an operation is in flight.
func (s *Service) Busy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.busy
}

// Err returns the last operation's error message, or "".
func (s *Service) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// Success returns the last operation's success message, or "".
func (s *Service) Success() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.success
}

// ClearError resets the transient error message. Views call this on teardown
// so stale banners don't reappear.
func (s *Service) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = ""
}

// ClearSuccess resets the transient success message.
func (s *Service) ClearSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.success = ""
}

func (s *Service) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = true
	s.errMsg = ""
	s.success = ""
}

func (s *Service) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
}

func (s *Service) fail(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = msg
	s.success = ""
}

func (s *Service) succeed(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.success = msg
	s.errMsg = ""
}

// Package adminboard backs the admin feedback list view. It carries the one
// piece of resilience logic in the system: a fixed-count retry with a fixed
// delay, local to this view and deliberately not generalised into the stores.
package adminboard

import (
	"context"
	"sync"
	"time"

	"github.com/feedbackportal/portal-client/feedback"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	defaultMaxRetries = 3
	defaultRetryDelay = 2 * time.Second

	fetchErrorMsg = "Failed to load feedbacks. Please try again later."
)

// Lister is the slice of the feedback service the loader needs.
type Lister interface {
	List(ctx context.Context, filters feedback.ListFilters) ([]feedback.Feedback, error)
}

// Loader fetches the global feedback list for the admin board. A failed fetch
// is retried automatically up to maxRetries times, retryDelay apart; after
// that the error sticks until Retry is called manually.
type Loader struct {
	lister     Lister
	log        zerolog.Logger
	maxRetries int
	retryDelay time.Duration

	mu        sync.RWMutex
	filters   feedback.ListFilters
	feedbacks []feedback.Feedback
	errMsg    string
}

// LoaderOption defines a function type to modify the Loader instance.
type LoaderOption func(*Loader)

// WithMaxRetries overrides the automatic retry bound.
func WithMaxRetries(n int) LoaderOption {
	return func(l *Loader) {
		l.maxRetries = n
	}
}

// WithRetryDelay overrides the delay between automatic retries.
func WithRetryDelay(d time.Duration) LoaderOption {
	return func(l *Loader) {
		l.retryDelay = d
	}
}

// WithLogger overrides the default global logger.
func WithLogger(logger zerolog.Logger) LoaderOption {
	return func(l *Loader) {
		l.log = logger
	}
}

// NewLoader initialises a Loader with default filters (all ratings, newest
// first).
func NewLoader(lister Lister, options ...LoaderOption) (*Loader, error) {
	if lister == nil {
		return nil, errors.New("[NewLoader] lister is required")
	}
	loader := &Loader{
		lister:     lister,
		log:        log.Logger,
		maxRetries: defaultMaxRetries,
		retryDelay: defaultRetryDelay,
		filters:    feedback.ListFilters{SortBy: feedback.SortNewest},
	}
	for _, opt := range options {
		opt(loader)
	}
	return loader, nil
}

// Load fetches the list, retrying failures automatically up to the configured
// bound. It returns the last fetch error once retries are exhausted, leaving
// the loader in a persistent error state that only a manual Retry clears.
func (l *Loader) Load(ctx context.Context) error {
	for attempt := 0; ; attempt++ {
		err := l.fetch(ctx)
		if err == nil {
			return nil
		}
		if attempt >= l.maxRetries {
			return err
		}
		l.log.Info().Int("attempt", attempt+1).Int("max_retries", l.maxRetries).Msg("feedback fetch failed, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.retryDelay):
		}
	}
}

// Retry performs a single manual fetch attempt, without the automatic retry
// loop.
func (l *Loader) Retry(ctx context.Context) error {
	return l.fetch(ctx)
}

// SetFilters replaces the view's filter criteria. The caller re-runs Load
// afterwards; filters are not persisted anywhere.
func (l *Loader) SetFilters(filters feedback.ListFilters) {
	l.mu.Lock()
	defer l.mu.Unlock()
	filters.UserID = "" // the admin board always shows the global list
	l.filters = filters
}

// Filters returns the current filter criteria.
func (l *Loader) Filters() feedback.ListFilters {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.filters
}

// Feedbacks returns the last successfully fetched list.
func (l *Loader) Feedbacks() []feedback.Feedback {
	l.mu.RLock()
	defer l.mu.RUnlock()
	copied := make([]feedback.Feedback, len(l.feedbacks))
	copy(copied, l.feedbacks)
	return copied
}

// Err returns the persistent fetch error message, or "".
func (l *Loader) Err() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.errMsg
}

func (l *Loader) fetch(ctx context.Context) error {
	records, err := l.lister.List(ctx, l.Filters())
	if err != nil {
		l.log.Error().Err(err).Msg("admin board: error fetching feedbacks")
		l.mu.Lock()
		l.errMsg = fetchErrorMsg
		l.mu.Unlock()
		return err
	}

	l.mu.Lock()
	l.feedbacks = records
	l.errMsg = ""
	l.mu.Unlock()
	return nil
}

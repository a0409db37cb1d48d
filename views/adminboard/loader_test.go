package adminboard_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/feedbackportal/portal-client/feedback"
	"github.com/feedbackportal/portal-client/internal/utils"
	"github.com/feedbackportal/portal-client/views/adminboard"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// fakeLister scripts List outcomes and records when each call happened.
type fakeLister struct {
	mu        sync.Mutex
	failures  int // fail this many calls before succeeding
	calls     []time.Time
	lastQuery feedback.ListFilters
	records   []feedback.Feedback
}

func (fl *fakeLister) List(ctx context.Context, filters feedback.ListFilters) ([]feedback.Feedback, error) {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	fl.calls = append(fl.calls, time.Now())
	fl.lastQuery = filters
	if fl.failures > 0 {
		fl.failures--
		return nil, errors.New("backend unavailable")
	}
	return fl.records, nil
}

func (fl *fakeLister) callTimes() []time.Time {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	return append([]time.Time(nil), fl.calls...)
}

func newLoader(t *testing.T, lister adminboard.Lister, delay time.Duration) *adminboard.Loader {
	t.Helper()
	loader, err := adminboard.NewLoader(lister,
		adminboard.WithRetryDelay(delay),
		adminboard.WithLogger(zerolog.Nop()),
	)
	require.NoError(t, err)
	return loader
}

func TestLoadSucceedsFirstTry(t *testing.T) {
	lister := &fakeLister{records: []feedback.Feedback{{ID: "fb1"}}}
	loader := newLoader(t, lister, time.Millisecond)

	require.NoError(t, loader.Load(context.Background()))
	require.Len(t, lister.callTimes(), 1)
	require.Len(t, loader.Feedbacks(), 1)
	require.Empty(t, loader.Err())
}

func TestLoadRecoversWithinRetryBudget(t *testing.T) {
	lister := &fakeLister{failures: 2, records: []feedback.Feedback{{ID: "fb1"}}}
	loader := newLoader(t, lister, 5*time.Millisecond)

	require.NoError(t, loader.Load(context.Background()))
	require.Len(t, lister.callTimes(), 3)
	require.Empty(t, loader.Err())
}

func TestLoadExhaustsRetriesThenNeedsManualRetry(t *testing.T) {
	const delay = 30 * time.Millisecond
	lister := &fakeLister{failures: 10}
	loader := newLoader(t, lister, delay)

	err := loader.Load(context.Background())
	require.Error(t, err)

	// Initial attempt plus exactly three automatic retries.
	calls := lister.callTimes()
	require.Len(t, calls, 4)
	for i := 1; i < len(calls); i++ {
		require.GreaterOrEqual(t, calls[i].Sub(calls[i-1]), delay)
	}
	require.Equal(t, "Failed to load feedbacks. Please try again later.", loader.Err())

	// A manual retry performs a single attempt, no automatic loop.
	require.Error(t, loader.Retry(context.Background()))
	require.Len(t, lister.callTimes(), 5)
}

func TestManualRetryClearsErrorOnSuccess(t *testing.T) {
	lister := &fakeLister{failures: 4, records: []feedback.Feedback{{ID: "fb1"}}}
	loader := newLoader(t, lister, time.Millisecond)

	require.Error(t, loader.Load(context.Background()))
	require.NotEmpty(t, loader.Err())

	require.NoError(t, loader.Retry(context.Background()))
	require.Empty(t, loader.Err())
	require.Len(t, loader.Feedbacks(), 1)
}

func TestLoadStopsWhenContextCancelled(t *testing.T) {
	lister := &fakeLister{failures: 10}
	loader := newLoader(t, lister, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := loader.Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, lister.callTimes(), 1)
}

func TestSetFiltersAlwaysTargetsGlobalList(t *testing.T) {
	lister := &fakeLister{}
	loader := newLoader(t, lister, time.Millisecond)

	loader.SetFilters(feedback.ListFilters{
		Rating: utils.Ptr(4),
		SortBy: feedback.SortOldest,
		UserID: "u1",
	})
	require.NoError(t, loader.Load(context.Background()))

	require.Empty(t, lister.lastQuery.UserID)
	require.Equal(t, feedback.SortOldest, lister.lastQuery.SortBy)
	require.Equal(t, 4, utils.Value(lister.lastQuery.Rating))
}

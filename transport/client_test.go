package transport_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	apperrors "github.com/feedbackportal/portal-client/internal/errors"
	"github.com/feedbackportal/portal-client/transport"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*transport.Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := transport.New(server.URL, transport.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	return client, server
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := transport.New("  ")
	require.Error(t, err)
}

func TestBearerAttachedWhenSet(t *testing.T) {
	var gotAuth, gotRequestID string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Write([]byte(`{}`))
	})

	client.SetBearerToken("token-123")
	require.NoError(t, client.Get(context.Background(), "/api/feedback", nil, nil))
	require.Equal(t, "Bearer token-123", gotAuth)
	require.NotEmpty(t, gotRequestID)
}

func TestUnauthenticatedWhenNoToken(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	})

	require.NoError(t, client.Get(context.Background(), "/api/feedback", nil, nil))
	require.Empty(t, gotAuth)
}

func TestClearBearerToken(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	client.SetBearerToken("token-123")
	client.ClearBearerToken()
	require.Empty(t, client.BearerToken())
}

func TestGetEncodesQueryAndDecodesResponse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/feedback", r.URL.Path)
		require.Equal(t, "5", r.URL.Query().Get("rating"))
		require.Equal(t, "newest", r.URL.Query().Get("sortBy"))
		w.Write([]byte(`{"value":"ok"}`))
	})

	query := url.Values{}
	query.Set("rating", "5")
	query.Set("sortBy", "newest")

	var out struct {
		Value string `json:"value"`
	}
	require.NoError(t, client.Get(context.Background(), "/api/feedback", query, &out))
	require.Equal(t, "ok", out.Value)
}

func TestUnauthorizedNotifiesListenersAndReturnsError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"token expired"}`, http.StatusUnauthorized)
	})

	var notified int32
	client.OnAuthFailure(func() { atomic.AddInt32(&notified, 1) })

	err := client.Get(context.Background(), "/api/feedback", nil, nil)
	require.Error(t, err)
	require.EqualValues(t, 1, atomic.LoadInt32(&notified))
	require.True(t, transport.IsStatus(err, http.StatusUnauthorized))
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	require.Equal(t, "token expired", transport.Message(err, "fallback"))
}

func TestMessageFallsBackWithoutBackendPayload(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := client.Get(context.Background(), "/api/feedback", nil, nil)
	require.Error(t, err)
	require.Equal(t, "fallback", transport.Message(err, "fallback"))
}

func TestNotFoundMapsToSentinel(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"no such feedback"}`, http.StatusNotFound)
	})

	err := client.Get(context.Background(), "/api/feedback/xyz", nil, nil)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPostJSONSendsBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "hello", body["text"])
		w.Write([]byte(`{}`))
	})

	err := client.PostJSON(context.Background(), "/api/feedback/1/reply", map[string]string{"text": "hello"}, nil)
	require.NoError(t, err)
}

func TestPostMultipartEncodesFieldsAndFile(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "great service", r.FormValue("text"))
		require.Equal(t, "5", r.FormValue("rating"))

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "shot.png", header.Filename)
		w.Write([]byte(`{}`))
	})

	fields := map[string]string{"text": "great service", "rating": "5"}
	err := client.PostMultipart(context.Background(), "/api/feedback", fields, "image", "shot.png", bytes.NewReader([]byte("png-bytes")), nil)
	require.NoError(t, err)
}

func TestIDUnmarshalNormalisesNumbers(t *testing.T) {
	var out struct {
		A transport.ID `json:"a"`
		B transport.ID `json:"b"`
		C transport.ID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"abc123","b":42,"c":null}`), &out))
	require.Equal(t, "abc123", out.A.String())
	require.Equal(t, "42", out.B.String())
	require.Empty(t, out.C.String())
}

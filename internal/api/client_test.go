package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/feedmill/feedadmin/internal/models"
)

func TestParseBaseURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"http://localhost:8642", "http://localhost:8642"},
		{"localhost:8642", "http://localhost:8642"},
		{"https://feeds.example.com/", "https://feeds.example.com"},
		{"https://feeds.example.com/base/?x=1#frag", "https://feeds.example.com/base"},
	}
	for _, tc := range cases {
		u, err := parseBaseURL(tc.in)
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, u.String(), tc.in)
	}

	_, err := parseBaseURL("")
	require.Error(t, err)
}

func TestRequestHeadersAndAuth(t *testing.T) {
	var got http.Header
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_ = json.NewEncoder(w).Encode([]models.Feed{})
	}))
	defer ts.Close()

	client, err := NewClient(Options{BaseURL: ts.URL, Token: "secret-token"})
	require.NoError(t, err)

	_, err = client.ListFeeds(context.Background())
	require.NoError(t, err)

	require.Equal(t, "application/json", got.Get("Accept"))
	require.Equal(t, "Bearer secret-token", got.Get("Authorization"))
	require.NotEmpty(t, got.Get("X-Request-ID"))
	require.Contains(t, got.Get("User-Agent"), "feedadmin")
}

func TestBasePathPreserved(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode([]models.Feed{})
	}))
	defer ts.Close()

	client, err := NewClient(Options{BaseURL: ts.URL + "/feedsvc/"})
	require.NoError(t, err)

	_, err = client.ListFeeds(context.Background())
	require.NoError(t, err)
	require.Equal(t, "/feedsvc/api/feeds", gotPath)
}

func TestServerErrorSurfacesMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error": "name is required"}`))
	}))
	defer ts.Close()

	client, err := NewClient(Options{BaseURL: ts.URL})
	require.NoError(t, err)

	name := ""
	_, err = client.CreateFeed(context.Background(), FeedInput{Name: &name})
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	require.Equal(t, "name is required", apiErr.Message)
	require.Equal(t, "name is required", UserMessage(err, "fallback"))
}

func TestNonJSONErrorFallsBack(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer ts.Close()

	client, err := NewClient(Options{BaseURL: ts.URL})
	require.NoError(t, err)

	_, err = client.ListFeeds(context.Background())
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadGateway, apiErr.Status)
	require.Equal(t, "fallback", UserMessage(err, "fallback"))
}

func TestUserMessageNonAPIError(t *testing.T) {
	require.Equal(t, "fallback", UserMessage(context.Canceled, "fallback"))
	require.Equal(t, "fallback", UserMessage(nil, "fallback"))
}

func TestRunTriggerDecodesHandle(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/feeds/7/run", r.URL.Path)
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"id": "run-42"}`))
	}))
	defer ts.Close()

	client, err := NewClient(Options{BaseURL: ts.URL})
	require.NoError(t, err)

	handle, err := client.RunFeed(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, "run-42", handle.ID)
}

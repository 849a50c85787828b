package serp

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(testWriter{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient("test-key", 20, 5*time.Second, discardLogger())
	client.baseURL = server.URL
	return client
}

func TestFetchCandidates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "golang", r.URL.Query().Get("q"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "google", r.URL.Query().Get("engine"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"organic_results": [
				{"link": "https://go.dev/doc/", "title": "Documentation", "snippet": "The Go programming language"},
				{"link": "https://go.dev/tour#welcome", "title": "A Tour of Go", "snippet": "Interactive tour"},
				{"link": "", "title": "missing link"}
			]
		}`))
	})

	candidates, err := client.FetchCandidates(context.Background(), "golang")
	require.NoError(t, err)
	require.Len(t, candidates, 2, "entries without a link are dropped")

	assert.Equal(t, "https://go.dev/doc", candidates[0].URL, "trailing slash stripped")
	assert.Equal(t, "Documentation", candidates[0].Title)
	assert.Equal(t, "The Go programming language", candidates[0].Snippet)
	assert.Equal(t, "https://go.dev/tour", candidates[1].URL, "fragment stripped")
}

func TestFetchCandidatesMissingKey(t *testing.T) {
	client := NewClient("", 20, time.Second, discardLogger())

	candidates, err := client.FetchCandidates(context.Background(), "anything")
	require.NoError(t, err, "a missing key degrades to no candidates, not an error")
	assert.Empty(t, candidates)
}

func TestFetchCandidatesProviderError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.FetchCandidates(context.Background(), "anything")
	assert.Error(t, err)
}

func TestFetchCandidatesMalformedResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	_, err := client.FetchCandidates(context.Background(), "anything")
	assert.Error(t, err)
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "strips fragment",
			input: "https://example.com/page#section",
			want:  "https://example.com/page",
		},
		{
			name:  "strips trailing slash",
			input: "https://example.com/page/",
			want:  "https://example.com/page",
		},
		{
			name:  "keeps query string",
			input: "https://example.com/search?q=go",
			want:  "https://example.com/search?q=go",
		},
		{
			name:  "bare domain",
			input: "https://example.com/",
			want:  "https://example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeURL(tt.input))
		})
	}
}

package crawler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCrawler(t *testing.T) *Crawler {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(5*time.Second, 100, log)
}

func servePage(t *testing.T, html string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(html))
	}))
	t.Cleanup(server.Close)
	return server
}

const samplePage = `<!DOCTYPE html>
<html>
<head>
<title>Go Concurrency Patterns</title>
<meta name="description" content="Pipelines, cancellation and worker pools explained with examples.">
<meta name="keywords" content="go, concurrency, channels">
<script>var hidden = "should not appear";</script>
<style>body { color: red; }</style>
</head>
<body>
<h1>Go Concurrency Patterns</h1>
<p>Concurrency is a first class concern in the language. Channels connect
goroutines and let independent pieces of a program communicate safely. This
article walks through pipelines, fan out, fan in and cancellation with small
worked examples that you can run yourself.</p>
</body>
</html>`

func TestIngest(t *testing.T) {
	server := servePage(t, samplePage)
	c := testCrawler(t)

	page, err := c.Ingest(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, "go concurrency patterns", page.Title)
	assert.Equal(t, "pipelines cancellation and worker pools explained with examples.", page.MetaDescription)
	assert.Equal(t, "go concurrency channels", page.MetaKeywords)
	assert.Contains(t, page.VisibleText, "goroutines")
	assert.NotContains(t, page.VisibleText, "should not appear")
	assert.NotContains(t, page.VisibleText, "color")
	assert.Equal(t, "en", page.Language)
}

func TestIngestOpenGraphTitleWins(t *testing.T) {
	server := servePage(t, `<html><head>
<title>Fallback Title</title>
<meta property="og:title" content="Preferred Title">
</head><body><p>short body</p></body></html>`)
	c := testCrawler(t)

	page, err := c.Ingest(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "preferred title", page.Title)
}

func TestIngestMissingTags(t *testing.T) {
	server := servePage(t, `<html><body><p>just a paragraph with no metadata at all</p></body></html>`)
	c := testCrawler(t)

	page, err := c.Ingest(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Empty(t, page.Title)
	assert.Empty(t, page.MetaDescription)
	assert.Empty(t, page.MetaKeywords)
	assert.Contains(t, page.VisibleText, "paragraph")
}

func TestIngestTruncatesLongFields(t *testing.T) {
	longTitle := strings.Repeat("word ", 100)
	server := servePage(t, "<html><head><title>"+longTitle+"</title></head><body><p>body</p></body></html>")
	c := testCrawler(t)

	page, err := c.Ingest(context.Background(), server.URL)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(page.Title), 200)
}

func TestIngestHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)
	c := testCrawler(t)

	_, err := c.Ingest(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status code")
}

func TestIngestUnreachableHost(t *testing.T) {
	c := testCrawler(t)
	_, err := c.Ingest(context.Background(), "http://127.0.0.1:1/nothing-here")
	assert.Error(t, err)
}

func TestDetectLanguageEmptyText(t *testing.T) {
	c := testCrawler(t)
	assert.Empty(t, c.detectLanguage(""))
}

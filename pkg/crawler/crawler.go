// Package crawler fetches candidate pages and extracts the structural fields
// the ranking pipeline consumes: title, meta description, meta keywords and
// visible text, plus the detected page language.
package crawler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/pemistahl/lingua-go"
	"golang.org/x/time/rate"

	"searchrank/models"
	"searchrank/pkg/textutil"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Crawler fetches pages with a bounded per-fetch timeout and a shared rate
// limit across concurrent workers.
type Crawler struct {
	client   *http.Client
	limiter  *rate.Limiter
	detector lingua.LanguageDetector
	log      *slog.Logger
}

func New(timeout time.Duration, ratePerSec float64, log *slog.Logger) *Crawler {
	burst := int(ratePerSec)
	if burst < 1 {
		burst = 1
	}
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English, lingua.German, lingua.French, lingua.Spanish,
			lingua.Portuguese, lingua.Italian, lingua.Russian, lingua.Japanese,
		).
		Build()

	return &Crawler{
		client:   &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(rate.Limit(ratePerSec), burst),
		detector: detector,
		log:      log,
	}
}

// Ingest fetches and parses one URL. A failure affects only this candidate;
// callers drop it from the batch and continue.
func (c *Crawler) Ingest(ctx context.Context, rawURL string) (*models.PageContent, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter interrupted: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s, status code: %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	page, err := c.parse(body, rawURL)
	if err != nil {
		return nil, err
	}

	c.log.Info("crawled page", "url", rawURL, "language", page.Language)
	return page, nil
}

// parse extracts the structural fields from raw HTML. Missing tags yield
// empty strings, never an error.
func (c *Crawler) parse(body []byte, rawURL string) (*models.PageContent, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML for %s: %w", rawURL, err)
	}

	title := doc.Find("title").First().Text()
	if ogTitle, exists := doc.Find(`meta[property="og:title"]`).Attr("content"); exists && ogTitle != "" {
		title = ogTitle
	}
	description := doc.Find(`meta[name="description"]`).AttrOr("content", "")
	keywords := doc.Find(`meta[name="keywords"]`).AttrOr("content", "")

	visibleText := c.extractVisibleText(body, rawURL, doc)

	page := &models.PageContent{
		Title:           textutil.Truncate(textutil.CleanText(title), models.MaxTitleLen),
		MetaDescription: textutil.Truncate(textutil.CleanText(description), models.MaxDescriptionLen),
		MetaKeywords:    textutil.Truncate(textutil.CleanText(keywords), models.MaxKeywordsLen),
		VisibleText:     textutil.Truncate(visibleText, models.MaxVisibleTextLen),
	}
	page.Language = c.detectLanguage(page.VisibleText)
	return page, nil
}

// extractVisibleText prefers the readability-distilled article text and falls
// back to the stripped body text when distillation finds nothing.
func (c *Crawler) extractVisibleText(body []byte, rawURL string, doc *goquery.Document) string {
	if parsedURL, err := url.Parse(rawURL); err == nil {
		article, err := readability.FromReader(bytes.NewReader(body), parsedURL)
		if err == nil && strings.TrimSpace(article.TextContent) != "" {
			return textutil.CleanText(article.TextContent)
		}
	}

	stripped := doc.Clone()
	stripped.Find("script,style,head,title,noscript").Remove()
	return textutil.CleanText(stripped.Find("body").Text())
}

func (c *Crawler) detectLanguage(text string) string {
	if text == "" {
		return ""
	}
	language, ok := c.detector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(language.IsoCode639_1().String())
}

// Package search sequences one query through the ranking pipeline: fetch
// candidates, ingest uncached pages, fit the per-query relevance model,
// fuse signals and sort.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"searchrank/models"
	"searchrank/pkg/db"
	"searchrank/pkg/ranking"
	"searchrank/pkg/seo"
	"searchrank/pkg/textutil"
	"searchrank/pkg/tfidf"
)

// How much visible text feeds the relevance model per document.
const relevanceTextLimit = 2000

// CandidateProvider fetches the candidate URL list for a query.
type CandidateProvider interface {
	FetchCandidates(ctx context.Context, query string) ([]models.Candidate, error)
}

// PageIngester downloads and parses one page.
type PageIngester interface {
	Ingest(ctx context.Context, url string) (*models.PageContent, error)
}

// DocumentStore is the URL-keyed document store.
type DocumentStore interface {
	FindByURL(url string) (*models.Document, error)
	FindByID(id int64) (*models.Document, error)
	InsertIfAbsent(doc *models.Document) (id int64, inserted bool, err error)
	IncrementClickCount(id int64) (int64, error)
}

// EventRecorder appends click and query-history events. Failures are logged
// and never propagated to the request.
type EventRecorder interface {
	RecordQuery(query string, resultCount int) error
	RecordClick(docID int64) error
}

type Pipeline struct {
	log      *slog.Logger
	provider CandidateProvider
	ingester PageIngester
	store    DocumentStore
	events   EventRecorder
	workers  int
}

func NewPipeline(log *slog.Logger, provider CandidateProvider, ingester PageIngester, store DocumentStore, events EventRecorder, workers int) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		log:      log,
		provider: provider,
		ingester: ingester,
		store:    store,
		events:   events,
		workers:  workers,
	}
}

// Search runs the full pipeline for one query. Upstream trouble degrades to
// an empty result list; only unexpected internal faults surface as errors.
func (p *Pipeline) Search(ctx context.Context, query string) ([]models.RankedResult, error) {
	candidates, err := p.provider.FetchCandidates(ctx, query)
	if err != nil {
		p.log.Warn("candidate provider failed, returning no results", "query", query, "error", err)
		return []models.RankedResult{}, nil
	}
	if len(candidates) == 0 {
		p.log.Info("no candidates for query", "query", query)
		return []models.RankedResult{}, nil
	}

	docs := p.ensureIngested(ctx, candidates)
	if len(docs) == 0 {
		p.log.Warn("no candidates survived ingestion", "query", query)
		return []models.RankedResult{}, nil
	}

	corpus := make([]string, len(docs))
	for i, doc := range docs {
		corpus[i] = rankingText(doc)
	}

	// The vector space is defined over exactly this candidate set and is
	// rebuilt for every query.
	vectorizer := tfidf.NewVectorizer()
	if err := vectorizer.Fit(corpus); err != nil {
		p.log.Warn("relevance model could not be fit", "query", query, "error", err)
		return []models.RankedResult{}, nil
	}
	scores, err := vectorizer.Score(query)
	if err != nil {
		return nil, fmt.Errorf("failed to score query: %w", err)
	}

	var maxClicks int64
	for _, doc := range docs {
		if doc.ClickCount > maxClicks {
			maxClicks = doc.ClickCount
		}
	}

	results := make([]models.RankedResult, 0, len(scores))
	for _, docScore := range scores {
		doc := docs[docScore.Index]
		results = append(results, models.RankedResult{
			DocumentID:      doc.ID,
			URL:             doc.URL,
			Title:           doc.Title,
			MetaDescription: doc.MetaDescription,
			QualityScore:    doc.QualityScore,
			RelevanceScore:  docScore.Score,
			ClickCount:      doc.ClickCount,
		})
	}

	final := ranking.RankBatch(results, maxClicks)

	if err := p.events.RecordQuery(query, len(final)); err != nil {
		p.log.Warn("failed to record query event", "query", query, "error", err)
	}

	p.log.Info("ranked results", "query", query, "count", len(final))
	return final, nil
}

// Click verifies the document, bumps its click count and returns the new
// value. The click event append never fails the request.
func (p *Pipeline) Click(ctx context.Context, docID int64) (int64, error) {
	if _, err := p.store.FindByID(docID); err != nil {
		return 0, err
	}
	count, err := p.store.IncrementClickCount(docID)
	if err != nil {
		return 0, err
	}
	if err := p.events.RecordClick(docID); err != nil {
		p.log.Warn("failed to record click event", "doc_id", docID, "error", err)
	}
	return count, nil
}

type ingestJob struct {
	index     int
	candidate models.Candidate
}

type ingestResult struct {
	index int
	doc   *models.Document
	err   error
}

// ensureIngested resolves each candidate to a stored document, crawling any
// URL not yet in the store. Per-URL fetches run concurrently on a bounded
// worker pool; a single candidate's failure drops only that candidate.
// The returned slice preserves provider order.
func (p *Pipeline) ensureIngested(ctx context.Context, candidates []models.Candidate) []*models.Document {
	jobs := make(chan ingestJob, len(candidates))
	results := make(chan ingestResult, len(candidates))

	workers := p.workers
	if workers > len(candidates) {
		workers = len(candidates)
	}

	var wg sync.WaitGroup
	for w := 1; w <= workers; w++ {
		wg.Add(1)
		go p.ingestWorker(ctx, w, &wg, jobs, results)
	}

	for i, candidate := range candidates {
		jobs <- ingestJob{index: i, candidate: candidate}
	}
	close(jobs)

	wg.Wait()
	close(results)

	byIndex := make([]*models.Document, len(candidates))
	for result := range results {
		if result.err != nil {
			p.log.Warn("dropping candidate", "url", candidates[result.index].URL, "error", result.err)
			continue
		}
		byIndex[result.index] = result.doc
	}

	docs := make([]*models.Document, 0, len(candidates))
	for _, doc := range byIndex {
		if doc != nil {
			docs = append(docs, doc)
		}
	}
	return docs
}

func (p *Pipeline) ingestWorker(ctx context.Context, id int, wg *sync.WaitGroup, jobs <-chan ingestJob, results chan<- ingestResult) {
	defer wg.Done()
	for job := range jobs {
		doc, err := p.ingestCandidate(ctx, job.candidate)
		if err == nil {
			p.log.Debug("candidate ingested", "worker_id", id, "url", job.candidate.URL)
		}
		results <- ingestResult{index: job.index, doc: doc, err: err}
	}
}

// ingestCandidate returns the cached document for a known URL, or crawls,
// quality-scores and stores a new one. Losing an insert race means another
// ingestion stored the URL first; the stored record wins.
func (p *Pipeline) ingestCandidate(ctx context.Context, candidate models.Candidate) (*models.Document, error) {
	existing, err := p.store.FindByURL(candidate.URL)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}

	page, err := p.ingester.Ingest(ctx, candidate.URL)
	if err != nil {
		return nil, err
	}

	// Quality is scored on the crawled fields before provider fallbacks.
	quality := seo.Score(page.Title, page.MetaDescription, page.MetaKeywords, page.VisibleText, candidate.URL)

	title := page.Title
	if title == "" {
		title = textutil.Truncate(textutil.CleanText(candidate.Title), models.MaxTitleLen)
	}
	description := page.MetaDescription
	if description == "" {
		description = textutil.Truncate(textutil.CleanText(candidate.Snippet), models.MaxDescriptionLen)
	}

	doc := &models.Document{
		URL:             candidate.URL,
		Title:           title,
		MetaDescription: description,
		MetaKeywords:    page.MetaKeywords,
		VisibleText:     page.VisibleText,
		Language:        page.Language,
		QualityScore:    quality,
	}

	id, inserted, err := p.store.InsertIfAbsent(doc)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return p.store.FindByURL(candidate.URL)
	}
	doc.ID = id
	return doc, nil
}

// rankingText is the document text the relevance model sees: structural
// fields plus the head of the visible text, cleaned.
func rankingText(doc *models.Document) string {
	combined := strings.Join([]string{
		doc.Title,
		doc.MetaDescription,
		doc.MetaKeywords,
		textutil.Truncate(doc.VisibleText, relevanceTextLimit),
	}, " ")
	return textutil.CleanText(combined)
}

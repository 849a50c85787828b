package models

import (
	"errors"
	"time"
)

// Truncation caps applied to crawled fields before storage.
const (
	MaxTitleLen       = 200
	MaxDescriptionLen = 500
	MaxKeywordsLen    = 200
	MaxVisibleTextLen = 5000
)

var ErrInvalidDocument = errors.New("invalid document")

// Document represents one crawled page, uniquely keyed by its URL.
// QualityScore is computed once at ingestion and cached; ClickCount only
// ever grows over the document's lifetime.
type Document struct {
	ID              int64     `json:"doc_id"`
	URL             string    `json:"url"`
	Title           string    `json:"title"`
	MetaDescription string    `json:"meta_description"`
	MetaKeywords    string    `json:"meta_keywords"`
	VisibleText     string    `json:"visible_text"`
	Language        string    `json:"language,omitempty"`
	QualityScore    float64   `json:"quality_score"`
	ClickCount      int64     `json:"click_count"`
	LastUpdated     time.Time `json:"last_updated"`
}

// Validate rejects documents that must never reach storage.
func (d *Document) Validate() error {
	if d.URL == "" {
		return errors.Join(ErrInvalidDocument, errors.New("url is required"))
	}
	if d.ClickCount < 0 {
		return errors.Join(ErrInvalidDocument, errors.New("click count cannot be negative"))
	}
	if d.QualityScore < 0 || d.QualityScore > 100 {
		return errors.Join(ErrInvalidDocument, errors.New("quality score out of range"))
	}
	return nil
}

// Candidate is one entry from the search-results provider, before crawling.
type Candidate struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// PageContent holds the fields extracted from a crawled page. All string
// fields are cleaned and truncated to the storage caps above.
type PageContent struct {
	Title           string
	MetaDescription string
	MetaKeywords    string
	VisibleText     string
	Language        string
}

// RankedResult is one output row of a search. Relevance, popularity and
// final scores are all bounded to [0, 1]; quality keeps its 0-100 scale.
type RankedResult struct {
	DocumentID      int64   `json:"doc_id" yaml:"doc_id"`
	URL             string  `json:"url" yaml:"url"`
	Title           string  `json:"title" yaml:"title"`
	MetaDescription string  `json:"meta_description" yaml:"meta_description"`
	QualityScore    float64 `json:"quality_score" yaml:"quality_score"`
	RelevanceScore  float64 `json:"relevance_score" yaml:"relevance_score"`
	PopularityScore float64 `json:"popularity_score" yaml:"popularity_score"`
	FinalScore      float64 `json:"final_score" yaml:"final_score"`

	// Raw click count, carried through ranking for popularity
	// normalization but not part of the response shape.
	ClickCount int64 `json:"-" yaml:"-"`
}

// Package tfidf implements the per-query vector-space relevance model: a
// term-frequency/inverse-document-frequency vectorizer fitted on exactly one
// candidate document set, scoring query-document cosine similarity.
//
// The model is intentionally request-scoped. It is rebuilt from scratch for
// every search and holds no state across queries.
package tfidf

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"

	"searchrank/pkg/textutil"
)

const (
	// MaxFeatures caps the vocabulary at the most frequent terms.
	MaxFeatures = 500

	// maxDocFreqRatio excludes terms appearing in more than 80% of the
	// candidate documents.
	maxDocFreqRatio = 0.8
)

var (
	// ErrNotFitted is returned when Score is called before a successful Fit.
	ErrNotFitted = errors.New("tfidf: vectorizer is not fitted")

	// ErrEmptyCorpus is returned when the candidate set is empty or blank.
	ErrEmptyCorpus = errors.New("tfidf: document set is empty or blank")

	// ErrEmptyVocabulary is returned when no terms survive pruning.
	ErrEmptyVocabulary = errors.New("tfidf: no terms remain after pruning")
)

// Terms are runs of two or more word characters; single-character tokens
// carry no signal.
var termPattern = regexp.MustCompile(`\b\w\w+\b`)

// DocScore pairs a candidate document index with its cosine similarity to
// the query, in [0, 1].
type DocScore struct {
	Index int
	Score float64
}

// Vectorizer builds a term-weighting model over one candidate document set.
// Fit must succeed before Score; a fresh Vectorizer is required per query.
type Vectorizer struct {
	vocabulary map[string]int
	idf        []float64
	docVectors []map[int]float64 // L2-normalized tf-idf weights per document
	fitted     bool
}

func NewVectorizer() *Vectorizer {
	return &Vectorizer{}
}

// Fitted reports whether the model has been successfully fitted.
func (v *Vectorizer) Fitted() bool {
	return v.fitted
}

// analyze lowercases, tokenizes, removes English stopwords and expands the
// token stream into unigrams plus bigrams.
func analyze(text string) []string {
	tokens := termPattern.FindAllString(strings.ToLower(text), -1)
	tokens = textutil.RemoveStopwords(tokens)
	terms := make([]string, 0, 2*len(tokens))
	terms = append(terms, tokens...)
	terms = append(terms, textutil.NGrams(tokens, 2)...)
	return terms
}

// Fit builds the vocabulary and per-document weight vectors over exactly the
// given document set. It fails with ErrEmptyCorpus when the set is empty or
// entirely blank, and with ErrEmptyVocabulary when document-frequency pruning
// leaves no usable terms; callers treat both as "no rankable documents".
func (v *Vectorizer) Fit(documents []string) error {
	v.fitted = false

	if len(documents) == 0 {
		return ErrEmptyCorpus
	}
	blank := true
	for _, doc := range documents {
		if strings.TrimSpace(doc) != "" {
			blank = false
			break
		}
	}
	if blank {
		return ErrEmptyCorpus
	}

	n := len(documents)
	termCounts := make([]map[string]int, n)
	docFreq := make(map[string]int)
	corpusFreq := make(map[string]int)

	for i, doc := range documents {
		counts := make(map[string]int)
		for _, term := range analyze(doc) {
			counts[term]++
		}
		termCounts[i] = counts
		for term, count := range counts {
			docFreq[term]++
			corpusFreq[term] += count
		}
	}

	// Prune terms present in more than 80% of the documents.
	maxDF := maxDocFreqRatio * float64(n)
	kept := make([]string, 0, len(docFreq))
	for term, df := range docFreq {
		if float64(df) > maxDF {
			continue
		}
		kept = append(kept, term)
	}
	if len(kept) == 0 {
		return ErrEmptyVocabulary
	}

	// Cap the vocabulary at the most frequent terms, ties alphabetical.
	sort.Slice(kept, func(i, j int) bool {
		if corpusFreq[kept[i]] != corpusFreq[kept[j]] {
			return corpusFreq[kept[i]] > corpusFreq[kept[j]]
		}
		return kept[i] < kept[j]
	})
	if len(kept) > MaxFeatures {
		kept = kept[:MaxFeatures]
	}

	v.vocabulary = make(map[string]int, len(kept))
	v.idf = make([]float64, len(kept))
	for col, term := range kept {
		v.vocabulary[term] = col
		// Smoothed IDF: ln((1+N)/(1+df)) + 1.
		v.idf[col] = math.Log(float64(1+n)/float64(1+docFreq[term])) + 1
	}

	v.docVectors = make([]map[int]float64, n)
	for i, counts := range termCounts {
		v.docVectors[i] = v.weigh(counts)
	}

	v.fitted = true
	return nil
}

// Score projects the query into the fitted term space and returns cosine
// similarities against every fitted document, sorted descending. Ties keep
// the original document order.
func (v *Vectorizer) Score(query string) ([]DocScore, error) {
	if !v.fitted {
		return nil, ErrNotFitted
	}

	queryCounts := make(map[string]int)
	for _, term := range analyze(query) {
		queryCounts[term]++
	}
	queryVec := v.weigh(queryCounts)

	scores := make([]DocScore, len(v.docVectors))
	for i, docVec := range v.docVectors {
		scores[i] = DocScore{Index: i, Score: cosine(queryVec, docVec)}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	return scores, nil
}

// weigh converts raw term counts into an L2-normalized tf-idf vector over
// the fitted vocabulary. Out-of-vocabulary terms are dropped.
func (v *Vectorizer) weigh(counts map[string]int) map[int]float64 {
	vec := make(map[int]float64)
	for term, count := range counts {
		if col, ok := v.vocabulary[term]; ok {
			vec[col] = float64(count) * v.idf[col]
		}
	}
	var sumSquares float64
	for _, w := range vec {
		sumSquares += w * w
	}
	if sumSquares > 0 {
		norm := math.Sqrt(sumSquares)
		for col, w := range vec {
			vec[col] = w / norm
		}
	}
	return vec
}

// cosine computes the dot product of two L2-normalized sparse vectors,
// clamped against floating-point overshoot.
func cosine(a, b map[int]float64) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}
	var dot float64
	for col, w := range a {
		dot += w * b[col]
	}
	if dot > 1 {
		return 1
	}
	if dot < 0 {
		return 0
	}
	return dot
}

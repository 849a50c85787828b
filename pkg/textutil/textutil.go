// Package textutil provides the text normalization primitives used by the
// crawler and the relevance model: markup stripping, whitespace folding,
// tokenization and n-gram generation.
package textutil

import (
	"regexp"
	"strings"

	snowballeng "github.com/kljensen/snowball/english"
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	// Keep word characters, whitespace, hyphens and periods.
	noisePattern = regexp.MustCompile(`[^\w\s\-.]`)
	tokenPattern = regexp.MustCompile(`\b\w+\b`)
)

// CleanText strips tag-like substrings, collapses whitespace, removes noise
// characters and lowercases. Total: any input, including empty, yields a
// valid (possibly empty) string.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	text = tagPattern.ReplaceAllString(text, "")
	text = strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
	text = noisePattern.ReplaceAllString(text, "")
	return strings.ToLower(text)
}

// Tokenize lowercases the input and splits it on word boundaries.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// NGrams joins sliding windows of n tokens with single spaces, producing
// max(0, len(tokens)-n+1) n-grams.
func NGrams(tokens []string, n int) []string {
	if n <= 0 || len(tokens) < n {
		return nil
	}
	ngrams := make([]string, 0, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		ngrams = append(ngrams, strings.Join(tokens[i:i+n], " "))
	}
	return ngrams
}

// RemoveStopwords filters out English stopwords.
func RemoveStopwords(tokens []string) []string {
	kept := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if snowballeng.IsStopWord(token) {
			continue
		}
		kept = append(kept, token)
	}
	return kept
}

// Truncate limits a string to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

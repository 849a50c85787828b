// Package seo computes the deterministic 0-100 content quality score over a
// page's structural fields and URL shape. The score is computed once when a
// document is first ingested and cached in the store.
package seo

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Score maps a page's fields to a quality score in [0, 100].
//
// Components, summed then clamped:
//   - title: min(20, len/5) when longer than 10 chars
//   - description: 20 for the 50-160 band, else 15 for 20<len<200
//   - keywords: 15 when longer than 10 chars
//   - content length: 25/20/15/10 at the >5000/>2000/>500/>100 thresholds
//   - URL structure: up to 10
func Score(title, description, keywords, visibleText, url string) float64 {
	score := 0.0

	if titleLen := utf8.RuneCountInString(title); titleLen > 10 {
		score += math.Min(20, float64(titleLen)/5)
	}

	// The two description bands overlap in (20,50) and (160,200); the
	// 50-160 band is checked first and wins.
	descLen := utf8.RuneCountInString(description)
	if descLen >= 50 && descLen <= 160 {
		score += 20
	} else if descLen > 20 && descLen < 200 {
		score += 15
	}

	if utf8.RuneCountInString(keywords) > 10 {
		score += 15
	}

	switch textLen := utf8.RuneCountInString(visibleText); {
	case textLen > 5000:
		score += 25
	case textLen > 2000:
		score += 20
	case textLen > 500:
		score += 15
	case textLen > 100:
		score += 10
	}

	score += scoreURLStructure(url)

	return math.Min(100, math.Max(0, score))
}

// scoreURLStructure rates URL shape: hyphenated slugs over underscores,
// few query parameters, and a meaningful path. Sub-scores are additive,
// capped at 10.
func scoreURLStructure(url string) float64 {
	score := 0.0

	if strings.Count(url, "-") > strings.Count(url, "_") {
		score += 5
	}

	switch strings.Count(url, "?") {
	case 0:
		score += 3
	case 1:
		if strings.Count(url, "&") < 3 {
			score += 2
		}
	}

	if len(strings.Split(url, "/")) > 2 {
		score += 2
	}

	return math.Min(10, score)
}

// Package ranking fuses the three independent signals — lexical relevance,
// content quality and click popularity — into one final score per document
// and sorts a result batch.
package ranking

import (
	"sort"

	"searchrank/models"
)

// Fusion weights. They form a partition of 1.0: changing one requires
// rebalancing the others to keep the final score inside [0, 1].
const (
	RelevanceWeight  = 0.55
	QualityWeight    = 0.25
	PopularityWeight = 0.20
)

// Clamp01 bounds a value to [0, 1]. Idempotent.
func Clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// FinalScore combines relevance (0-1), quality (0-100) and popularity (0-1)
// into the weighted final score in [0, 1].
func FinalScore(relevance, quality, popularity float64) float64 {
	score := RelevanceWeight*Clamp01(relevance) +
		QualityWeight*Clamp01(quality/100) +
		PopularityWeight*Clamp01(popularity)
	return Clamp01(score)
}

// RankBatch normalizes popularity against the batch's maximum click count,
// computes final scores and sorts descending. Popularity is per batch: a
// document's popularity score can change between searches without new
// clicks, purely because the competing set changed. Equal final scores keep
// their relative input order.
func RankBatch(results []models.RankedResult, maxClickCount int64) []models.RankedResult {
	ranked := make([]models.RankedResult, len(results))
	copy(ranked, results)

	for i := range ranked {
		popularity := 0.0
		if maxClickCount > 0 {
			popularity = Clamp01(float64(ranked[i].ClickCount) / float64(maxClickCount))
		}
		ranked[i].PopularityScore = popularity
		ranked[i].FinalScore = FinalScore(ranked[i].RelevanceScore, ranked[i].QualityScore, popularity)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FinalScore > ranked[j].FinalScore
	})
	return ranked
}

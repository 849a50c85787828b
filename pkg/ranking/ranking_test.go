package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchrank/models"
)

func TestWeightsPartition(t *testing.T) {
	assert.InDelta(t, 1.0, RelevanceWeight+QualityWeight+PopularityWeight, 1e-12)
}

func TestClamp01(t *testing.T) {
	tests := []struct {
		input float64
		want  float64
	}{
		{input: -1.5, want: 0},
		{input: 0, want: 0},
		{input: 0.42, want: 0.42},
		{input: 1, want: 1},
		{input: 7.3, want: 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Clamp01(tt.input))
		assert.Equal(t, Clamp01(tt.input), Clamp01(Clamp01(tt.input)), "clamp01 must be idempotent")
	}
}

func TestFinalScoreBounds(t *testing.T) {
	inputs := []struct{ relevance, quality, popularity float64 }{
		{0, 0, 0},
		{1, 100, 1},
		{-5, -20, -1},
		{3, 500, 9},
		{0.5, 50, 0.5},
	}
	for _, in := range inputs {
		score := FinalScore(in.relevance, in.quality, in.popularity)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}
}

func TestFinalScoreWeighting(t *testing.T) {
	assert.InDelta(t, 0.55, FinalScore(1, 0, 0), 1e-12)
	assert.InDelta(t, 0.25, FinalScore(0, 100, 0), 1e-12)
	assert.InDelta(t, 0.20, FinalScore(0, 0, 1), 1e-12)
	assert.InDelta(t, 1.0, FinalScore(1, 100, 1), 1e-12)
}

func TestFinalScoreMonotonic(t *testing.T) {
	base := FinalScore(0.3, 40, 0.2)
	assert.GreaterOrEqual(t, FinalScore(0.6, 40, 0.2), base)
	assert.GreaterOrEqual(t, FinalScore(0.3, 80, 0.2), base)
	assert.GreaterOrEqual(t, FinalScore(0.3, 40, 0.9), base)
}

func TestRankBatchPopularityNormalization(t *testing.T) {
	results := []models.RankedResult{
		{DocumentID: 1, RelevanceScore: 0.5, QualityScore: 50, ClickCount: 0},
		{DocumentID: 2, RelevanceScore: 0.5, QualityScore: 50, ClickCount: 10},
	}

	ranked := RankBatch(results, 10)
	require.Len(t, ranked, 2)

	// The clicked document wins and carries popularity 1.0.
	assert.Equal(t, int64(2), ranked[0].DocumentID)
	assert.InDelta(t, 1.0, ranked[0].PopularityScore, 1e-12)
	assert.Equal(t, int64(1), ranked[1].DocumentID)
	assert.InDelta(t, 0.0, ranked[1].PopularityScore, 1e-12)
}

func TestRankBatchZeroMaxClicks(t *testing.T) {
	results := []models.RankedResult{
		{DocumentID: 1, RelevanceScore: 0.8, QualityScore: 60, ClickCount: 0},
		{DocumentID: 2, RelevanceScore: 0.2, QualityScore: 90, ClickCount: 0},
	}

	ranked := RankBatch(results, 0)
	for _, r := range ranked {
		assert.Zero(t, r.PopularityScore)
		want := RelevanceWeight*Clamp01(r.RelevanceScore) + QualityWeight*Clamp01(r.QualityScore/100)
		assert.InDelta(t, want, r.FinalScore, 1e-12)
	}
}

func TestRankBatchSortedDescending(t *testing.T) {
	results := []models.RankedResult{
		{DocumentID: 1, RelevanceScore: 0.1, QualityScore: 10},
		{DocumentID: 2, RelevanceScore: 0.9, QualityScore: 90},
		{DocumentID: 3, RelevanceScore: 0.5, QualityScore: 50},
	}

	ranked := RankBatch(results, 0)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].FinalScore, ranked[i].FinalScore)
	}
}

func TestRankBatchStable(t *testing.T) {
	// Identical signals must keep input order.
	results := []models.RankedResult{
		{DocumentID: 10, RelevanceScore: 0.4, QualityScore: 40, ClickCount: 2},
		{DocumentID: 20, RelevanceScore: 0.4, QualityScore: 40, ClickCount: 2},
		{DocumentID: 30, RelevanceScore: 0.4, QualityScore: 40, ClickCount: 2},
	}

	ranked := RankBatch(results, 2)
	assert.Equal(t, int64(10), ranked[0].DocumentID)
	assert.Equal(t, int64(20), ranked[1].DocumentID)
	assert.Equal(t, int64(30), ranked[2].DocumentID)
}

func TestRankBatchDoesNotMutateInput(t *testing.T) {
	results := []models.RankedResult{
		{DocumentID: 1, RelevanceScore: 0.1},
		{DocumentID: 2, RelevanceScore: 0.9},
	}

	_ = RankBatch(results, 0)
	assert.Equal(t, int64(1), results[0].DocumentID)
	assert.Zero(t, results[0].FinalScore)
}

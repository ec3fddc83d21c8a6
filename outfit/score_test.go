package outfit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func casualWardrobe() []Item {
	return []Item{
		{ID: "top-1", Category: CategoryTops, Color: "navy", Occasions: []string{"casual"}, Seasons: []string{"fall", "winter"}},
		{ID: "bottom-1", Category: CategoryBottoms, Color: "black", Occasions: []string{"casual"}},
		{ID: "shoes-1", Category: CategoryShoes, Color: "white", Occasions: []string{"casual"}},
	}
}

func TestAggregateRenormalizesOverPresentDimensions(t *testing.T) {
	weights := Weights{DimColorHarmony: 0.5, DimStyleMatching: 0.5, DimWeather: 1.0}

	// Weather missing: the remaining weights renormalize, the total does not
	// deflate toward zero.
	score := Aggregate(map[string]float64{
		DimColorHarmony:  0.8,
		DimStyleMatching: 0.6,
	}, weights)
	assert.InDelta(t, 0.7, score.Total, 1e-9)

	withWeather := Aggregate(map[string]float64{
		DimColorHarmony:  0.8,
		DimStyleMatching: 0.6,
		DimWeather:       1.0,
	}, weights)
	assert.InDelta(t, (0.4+0.3+1.0)/2.0, withWeather.Total, 1e-9)
}

func TestAggregateDeterministic(t *testing.T) {
	dims := map[string]float64{
		DimColorHarmony:  0.81,
		DimStyleMatching: 0.67,
		DimSeason:        1.0,
		DimVariety:       0.4,
	}
	first := Aggregate(dims, DefaultWeights())
	// Map iteration order is randomized per range, so the weighted sum must
	// not depend on it. Repeat enough times to surface an order-dependent sum.
	for i := 0; i < 1000; i++ {
		again := Aggregate(dims, DefaultWeights())
		assert.Equal(t, first.Total, again.Total)
		assert.Equal(t, first.Breakdown, again.Breakdown)
	}
}

func TestAggregateIgnoresUnknownAndZeroWeightDimensions(t *testing.T) {
	weights := Weights{DimColorHarmony: 1.0, DimVariety: 0}
	score := Aggregate(map[string]float64{
		DimColorHarmony: 0.9,
		DimVariety:      0.1,
		"madeUp":        0.5,
	}, weights)
	assert.InDelta(t, 0.9, score.Total, 1e-9)
	assert.NotContains(t, score.Breakdown, DimVariety)
	assert.NotContains(t, score.Breakdown, "madeUp")
}

func TestAggregateClampsOutOfRangeInputs(t *testing.T) {
	score := Aggregate(map[string]float64{DimColorHarmony: 1.7, DimStyleMatching: -0.3}, DefaultWeights())
	assert.GreaterOrEqual(t, score.Total, 0.0)
	assert.LessOrEqual(t, score.Total, 1.0)
	assert.Equal(t, 1.0, score.Breakdown[DimColorHarmony])
	assert.Equal(t, 0.0, score.Breakdown[DimStyleMatching])
}

func TestScoreItemsWithoutContextOmitsOptionalDimensions(t *testing.T) {
	score := ScoreItems(casualWardrobe(), nil, nil)

	require.Contains(t, score.Breakdown, DimColorHarmony)
	require.Contains(t, score.Breakdown, DimStyleMatching)
	assert.NotContains(t, score.Breakdown, DimWeather, "weather must be absent, not zero")
	assert.NotContains(t, score.Breakdown, DimUserPreference)
	assert.NotContains(t, score.Breakdown, DimVariety)
	assert.Greater(t, score.Total, 0.0)
}

func TestScoreItemsWithFullContext(t *testing.T) {
	ctx := &Context{
		Season:   "fall",
		Occasion: "casual",
		Weather:  &WeatherSnapshot{TempMin: 8, TempMax: 14, Condition: "clouds"},
		Prefs:    &PreferenceVector{Formality: 0.3, Boldness: 0.4, Layering: 0.5, Colorfulness: 0.3},
		History:  [][]string{{"top-9", "bottom-9", "shoes-9"}},
	}
	score := ScoreItems(casualWardrobe(), ctx, nil)

	for _, dim := range []string{DimColorHarmony, DimStyleMatching, DimSeason, DimOccasion, DimWeather, DimUserPreference, DimVariety} {
		require.Contains(t, score.Breakdown, dim)
		assert.GreaterOrEqual(t, score.Breakdown[dim], 0.0, dim)
		assert.LessOrEqual(t, score.Breakdown[dim], 1.0, dim)
	}
	assert.Greater(t, score.Total, 0.0)
	assert.LessOrEqual(t, score.Total, 1.0)
}

func TestScoreItemsGracefulOnMalformedItem(t *testing.T) {
	wardrobe := casualWardrobe()
	wardrobe = append(wardrobe, Item{ID: "broken", Category: "???", Color: "#nothex"})

	score := ScoreItems(wardrobe, nil, nil)
	assert.Greater(t, score.Total, 0.0, "a single bad item must not abort scoring")
}

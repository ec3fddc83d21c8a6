package outfit

import "sort"

// Dimension names used as breakdown keys. These are part of the persisted
// format; renaming one breaks stored breakdowns.
const (
	DimColorHarmony   = "colorHarmony"
	DimStyleMatching  = "styleMatching"
	DimSeason         = "season"
	DimOccasion       = "occasion"
	DimWeather        = "weather"
	DimUserPreference = "userPreference"
	DimVariety        = "variety"
)

// Score is the aggregate result for one candidate. Optional dimensions appear
// in Breakdown only when their context inputs were supplied: absent means not
// computed, never computed-as-zero.
type Score struct {
	Total     float64            `json:"total"`
	Breakdown map[string]float64 `json:"breakdown"`
}

// Weights configures the relative importance of each dimension. Zero weights
// exclude a dimension even when its inputs are available.
type Weights map[string]float64

// DefaultWeights favors style matching and color harmony; the contextual
// dimensions contribute less and only when present.
func DefaultWeights() Weights {
	return Weights{
		DimStyleMatching:  0.25,
		DimColorHarmony:   0.25,
		DimSeason:         0.15,
		DimOccasion:       0.15,
		DimWeather:        0.08,
		DimUserPreference: 0.07,
		DimVariety:        0.05,
	}
}

// Aggregate combines dimension scores into a weighted total. Weights are
// renormalized over the dimensions actually present, so a missing optional
// dimension does not deflate the total. Deterministic: identical inputs yield
// identical output.
func Aggregate(dimensions map[string]float64, weights Weights) Score {
	names := make([]string, 0, len(dimensions))
	for name := range dimensions {
		names = append(names, name)
	}
	sort.Strings(names)

	breakdown := make(map[string]float64, len(dimensions))
	var total, weightSum float64
	for _, name := range names {
		w, ok := weights[name]
		if !ok || w <= 0 {
			continue
		}
		v := clamp01(dimensions[name])
		breakdown[name] = v
		total += w * v
		weightSum += w
	}
	if weightSum > 0 {
		total /= weightSum
	}
	return Score{Total: clamp01(total), Breakdown: breakdown}
}

// ScoreItems runs the full pipeline for one candidate: normalize, score each
// available dimension, aggregate. ctx may be nil; optional dimensions are then
// left out of the breakdown.
func ScoreItems(items []Item, ctx *Context, weights Weights) Score {
	if weights == nil {
		weights = DefaultWeights()
	}
	normalized := make([]NormalizedAttributes, len(items))
	ids := make([]string, len(items))
	for i, item := range items {
		normalized[i] = Normalize(item)
		ids[i] = item.ID
	}

	dimensions := map[string]float64{
		DimColorHarmony:  ColorHarmony(normalized),
		DimStyleMatching: StyleMatching(normalized),
	}
	if ctx != nil {
		dimensions[DimSeason] = SeasonSuitability(normalized, ctx.Season)
		dimensions[DimOccasion] = OccasionSuitability(normalized, ctx.Occasion)
		if ctx.Weather != nil {
			dimensions[DimWeather] = WeatherSuitability(normalized, *ctx.Weather)
		}
		if ctx.Prefs != nil {
			dimensions[DimUserPreference] = PreferenceMatch(normalized, *ctx.Prefs)
		}
		if len(ctx.History) > 0 {
			dimensions[DimVariety] = Variety(ids, ctx.History)
		}
	} else {
		dimensions[DimSeason] = SeasonSuitability(normalized, "")
		dimensions[DimOccasion] = OccasionSuitability(normalized, "")
	}
	return Aggregate(dimensions, weights)
}

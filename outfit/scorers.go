package outfit

import "math"

// Every scorer is a pure function over normalized items plus optional context,
// returning a value in [0,1]. Scorers do not depend on each other or on call
// order.

// NeutralHarmony is the fixed value a single-item set scores on color harmony:
// there are no pairs to compare.
const NeutralHarmony = 0.75

// ColorHarmony averages pairwise hue-band scores across all item pairs.
func ColorHarmony(items []NormalizedAttributes) float64 {
	if len(items) < 2 {
		return NeutralHarmony
	}
	var sum float64
	var pairs int
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			sum += pairHarmony(items[i].Color, items[j].Color)
			pairs++
		}
	}
	return clamp01(sum / float64(pairs))
}

// StyleMatching compares per-item formality levels and style-tag overlap. A
// formal piece against a starkly casual one drags the score down in proportion
// to the divergence.
func StyleMatching(items []NormalizedAttributes) float64 {
	if len(items) < 2 {
		return 1
	}
	var divergence float64
	var pairs int
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			d := math.Abs(items[i].Formality - items[j].Formality)
			// Shared style tags soften a formality gap.
			d *= 1 - 0.5*tagOverlap(items[i].Tags, items[j].Tags)
			divergence += d
			pairs++
		}
	}
	return clamp01(1 - divergence/float64(pairs))
}

func tagOverlap(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var common, union int
	for tag := range a {
		if b[tag] {
			common++
		}
	}
	union = len(a) + len(b) - common
	if union == 0 {
		return 0
	}
	return float64(common) / float64(union)
}

// SeasonSuitability is the fraction of items wearable in the target season, or
// without a target, the best shared-season coverage across the set. An empty
// season set counts as all-season.
func SeasonSuitability(items []NormalizedAttributes, targetSeason string) float64 {
	if len(items) == 0 {
		return 0
	}
	if targetSeason != "" {
		var fit int
		for _, item := range items {
			if len(item.Seasons) == 0 || item.Seasons[targetSeason] {
				fit++
			}
		}
		return float64(fit) / float64(len(items))
	}
	return bestSharedCoverage(items, func(item NormalizedAttributes) map[string]bool { return item.Seasons },
		[]string{SeasonSpring, SeasonSummer, SeasonFall, SeasonWinter})
}

// OccasionSuitability mirrors SeasonSuitability against occasions.
func OccasionSuitability(items []NormalizedAttributes, targetOccasion string) float64 {
	if len(items) == 0 {
		return 0
	}
	if targetOccasion != "" {
		var fit int
		for _, item := range items {
			if len(item.Occasions) == 0 || item.Occasions[targetOccasion] {
				fit++
			}
		}
		return float64(fit) / float64(len(items))
	}
	return bestSharedCoverage(items, func(item NormalizedAttributes) map[string]bool { return item.Occasions },
		[]string{OccasionCasual, OccasionWork, OccasionFormal, OccasionParty,
			OccasionSport, OccasionTravel, OccasionDate, OccasionSpecial})
}

// bestSharedCoverage returns, over all candidate values, the highest fraction
// of items whose set contains that value (empty sets match everything).
func bestSharedCoverage(items []NormalizedAttributes, sel func(NormalizedAttributes) map[string]bool, values []string) float64 {
	best := 0.0
	for _, value := range values {
		var fit int
		for _, item := range items {
			set := sel(item)
			if len(set) == 0 || set[value] {
				fit++
			}
		}
		if f := float64(fit) / float64(len(items)); f > best {
			best = f
		}
	}
	return best
}

// WeatherSuitability scores garment warmth against the temperature range and
// applies condition adjustments. Callers must only invoke it with a snapshot;
// without one the dimension is skipped entirely.
func WeatherSuitability(items []NormalizedAttributes, weather WeatherSnapshot) float64 {
	if len(items) == 0 {
		return 0
	}
	midTemp := (weather.TempMin + weather.TempMax) / 2
	// ~30C wants the lightest outfit, ~-10C the heaviest.
	targetWarmth := clamp01((30 - midTemp) / 40)

	var warmth float64
	hasOuterwear := false
	for _, item := range items {
		warmth += item.Warmth
		if item.Category == CategoryOuterwear {
			hasOuterwear = true
		}
	}
	warmth /= float64(len(items))

	score := 1 - math.Abs(warmth-targetWarmth)
	switch weather.Condition {
	case "rain", "snow":
		if hasOuterwear {
			score += 0.1
		} else {
			score -= 0.15
		}
	case "wind":
		if !hasOuterwear && targetWarmth > 0.5 {
			score -= 0.1
		}
	}
	return clamp01(score)
}

// PreferenceMatch inverts the distance between the outfit's aggregate profile
// and the user's preference vector.
func PreferenceMatch(items []NormalizedAttributes, prefs PreferenceVector) float64 {
	if len(items) == 0 {
		return 0
	}
	profile := outfitProfile(items)
	distance := (math.Abs(profile.Formality-prefs.Formality) +
		math.Abs(profile.Boldness-prefs.Boldness) +
		math.Abs(profile.Layering-prefs.Layering) +
		math.Abs(profile.Colorfulness-prefs.Colorfulness)) / 4
	return clamp01(1 - distance)
}

// outfitProfile reduces an item set to the same axes a PreferenceVector uses.
func outfitProfile(items []NormalizedAttributes) PreferenceVector {
	var formality, saturation float64
	hues := map[int]bool{}
	layers := 0
	for _, item := range items {
		formality += item.Formality
		saturation += item.Color.Saturation
		if !item.Color.Neutral() {
			hues[int(item.Color.Hue)/30] = true
		}
		switch item.Category {
		case CategoryTops, CategoryOuterwear, CategoryDresses:
			layers++
		}
	}
	n := float64(len(items))
	return PreferenceVector{
		Formality:    clamp01(formality / n),
		Boldness:     clamp01(saturation / n),
		Layering:     clamp01(float64(layers) / 3),
		Colorfulness: clamp01((saturation/n + float64(len(hues))/4) / 2),
	}
}

// Variety penalizes combinations close to recently generated or worn ones. The
// history list is supplied by the caller; the engine stores nothing.
func Variety(itemIDs []string, history [][]string) float64 {
	if len(history) == 0 {
		return 1
	}
	current := make(map[string]bool, len(itemIDs))
	for _, id := range itemIDs {
		current[id] = true
	}
	worst := 0.0
	for _, past := range history {
		var common int
		for _, id := range past {
			if current[id] {
				common++
			}
		}
		union := len(current) + len(past) - common
		if union == 0 {
			continue
		}
		if overlap := float64(common) / float64(union); overlap > worst {
			worst = overlap
		}
	}
	return clamp01(1 - worst)
}

package outfit

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateMinimalWardrobeSingleCandidate(t *testing.T) {
	result, err := Generate(casualWardrobe(), 1, nil, nil, nil)
	require.NoError(t, err)
	require.Len(t, result.Candidates, 1)
	assert.Zero(t, result.Shortfall)

	candidate := result.Candidates[0]
	assert.Len(t, candidate.Items, 3)
	assert.Greater(t, candidate.Score.Total, 0.0)
	assert.Greater(t, candidate.Score.Breakdown[DimStyleMatching], 0.7, "all-casual set should style-match high")
}

func TestGenerateInsufficientWardrobe(t *testing.T) {
	_, err := Generate([]Item{{ID: "1", Category: CategoryTops, Color: "navy"}}, 3, nil, nil, nil)
	assert.ErrorIs(t, err, ErrInsufficientItems)

	_, err = Generate(nil, 3, nil, nil, nil)
	assert.ErrorIs(t, err, ErrInsufficientItems)
}

func TestGenerateReportsShortfallInsteadOfFailing(t *testing.T) {
	result, err := Generate(casualWardrobe(), 5, nil, nil, nil)
	require.NoError(t, err)
	assert.Len(t, result.Candidates, 1)
	assert.Equal(t, 4, result.Shortfall)
	assert.Equal(t, 5, result.Requested)
}

func TestGenerateRejectsIncompleteOutfitsBeforeScoring(t *testing.T) {
	// Two usable items but no shoes: nothing complete can be assembled.
	result, err := Generate([]Item{
		{ID: "1", Category: CategoryTops, Color: "navy"},
		{ID: "2", Category: CategoryBottoms, Color: "black"},
	}, 2, nil, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, result.Candidates)
	assert.Equal(t, 2, result.Shortfall)
}

func TestGenerateEveryCandidateHasRequiredSlots(t *testing.T) {
	wardrobe := []Item{
		{ID: "d1", Category: CategoryDresses, Color: "burgundy", Occasions: []string{"date"}},
		{ID: "t1", Category: CategoryTops, Color: "white", Occasions: []string{"casual"}},
		{ID: "t2", Category: CategoryTops, Color: "olive", Occasions: []string{"casual"}},
		{ID: "b1", Category: CategoryBottoms, Color: "denim", Occasions: []string{"casual"}},
		{ID: "s1", Category: CategoryShoes, Color: "white", Occasions: []string{"casual"}},
		{ID: "s2", Category: CategoryShoes, Color: "black", Occasions: []string{"formal"}},
		{ID: "o1", Category: CategoryOuterwear, Color: "camel", Seasons: []string{"fall"}},
		{ID: "a1", Category: CategoryAccessories, Color: "gold"},
		{ID: "u1", Category: CategoryUnderwear, Color: "white"},
		{ID: "sw1", Category: CategorySwimwear, Color: "blue"},
	}
	result, err := Generate(wardrobe, 20, nil, nil, nil)
	require.NoError(t, err)
	require.NotEmpty(t, result.Candidates)

	for _, candidate := range result.Candidates {
		counts := map[Category]int{}
		for _, item := range candidate.Items {
			counts[item.Category]++
			assert.NotEqual(t, CategoryUnderwear, item.Category)
			assert.NotEqual(t, CategorySwimwear, item.Category)
		}
		require.Equal(t, 1, counts[CategoryShoes], "every outfit needs shoes")
		if counts[CategoryDresses] == 1 {
			assert.Zero(t, counts[CategoryBottoms], "dress outfits carry no bottoms")
		} else {
			require.Equal(t, 1, counts[CategoryTops])
			require.Equal(t, 1, counts[CategoryBottoms])
		}
	}
}

func TestGenerateDeduplicatesAndRanksDescending(t *testing.T) {
	wardrobe := []Item{
		{ID: "t1", Category: CategoryTops, Color: "navy", Occasions: []string{"casual"}},
		{ID: "t2", Category: CategoryTops, Color: "red", Occasions: []string{"formal"}},
		{ID: "b1", Category: CategoryBottoms, Color: "black", Occasions: []string{"casual"}},
		{ID: "s1", Category: CategoryShoes, Color: "white", Occasions: []string{"casual"}},
	}
	result, err := Generate(wardrobe, 10, nil, nil, nil)
	require.NoError(t, err)
	require.Len(t, result.Candidates, 2)

	seen := map[string]bool{}
	for _, candidate := range result.Candidates {
		key := idKey(candidate.Items)
		assert.False(t, seen[key], "duplicate candidate %s", key)
		seen[key] = true
	}
	assert.GreaterOrEqual(t, result.Candidates[0].Score.Total, result.Candidates[1].Score.Total)
}

func TestGenerateHonorsConstraints(t *testing.T) {
	wardrobe := []Item{
		{ID: "t1", Category: CategoryTops, Color: "navy", Occasions: []string{"casual"}},
		{ID: "b1", Category: CategoryBottoms, Color: "black", Occasions: []string{"casual"}},
		{ID: "s1", Category: CategoryShoes, Color: "white", Occasions: []string{"casual"}},
		{ID: "o1", Category: CategoryOuterwear, Color: "camel", Seasons: []string{"fall"}},
	}

	withOuter := true
	result, err := Generate(wardrobe, 10, nil, &Constraints{WithOuterwear: &withOuter}, nil)
	require.NoError(t, err)
	for _, candidate := range result.Candidates {
		found := false
		for _, item := range candidate.Items {
			if item.Category == CategoryOuterwear {
				found = true
			}
		}
		assert.True(t, found, "outerwear slot was forced on")
	}

	result, err = Generate(wardrobe, 10, nil, &Constraints{ExcludeItemIDs: []string{"o1"}}, nil)
	require.NoError(t, err)
	for _, candidate := range result.Candidates {
		for _, item := range candidate.Items {
			assert.NotEqual(t, "o1", item.ID)
		}
	}
}

func TestGenerateSampledPathIsSeedReproducible(t *testing.T) {
	var wardrobe []Item
	for i := 0; i < 12; i++ {
		wardrobe = append(wardrobe,
			Item{ID: fmt.Sprintf("t%d", i), Category: CategoryTops, Color: "navy", Occasions: []string{"casual"}},
			Item{ID: fmt.Sprintf("b%d", i), Category: CategoryBottoms, Color: "black", Occasions: []string{"casual"}},
			Item{ID: fmt.Sprintf("s%d", i), Category: CategoryShoes, Color: "white", Occasions: []string{"casual"}},
			Item{ID: fmt.Sprintf("a%d", i), Category: CategoryAccessories, Color: "gold", Occasions: []string{"casual"}},
		)
	}
	opts := &GenerateOptions{MaxIterations: 200, Seed: 42}
	first, err := Generate(wardrobe, 5, nil, nil, opts)
	require.NoError(t, err)
	second, err := Generate(wardrobe, 5, nil, nil, opts)
	require.NoError(t, err)

	require.Equal(t, len(first.Candidates), len(second.Candidates))
	for i := range first.Candidates {
		assert.Equal(t, idKey(first.Candidates[i].Items), idKey(second.Candidates[i].Items))
		assert.Equal(t, first.Candidates[i].Score.Total, second.Candidates[i].Score.Total)
	}
}

func TestGenerateVarietyDemotesRecentCombination(t *testing.T) {
	wardrobe := []Item{
		{ID: "t1", Category: CategoryTops, Color: "navy", Occasions: []string{"casual"}},
		{ID: "t2", Category: CategoryTops, Color: "white", Occasions: []string{"casual"}},
		{ID: "b1", Category: CategoryBottoms, Color: "black", Occasions: []string{"casual"}},
		{ID: "s1", Category: CategoryShoes, Color: "white", Occasions: []string{"casual"}},
	}
	baseline, err := Generate(wardrobe, 2, nil, nil, nil)
	require.NoError(t, err)
	require.Len(t, baseline.Candidates, 2)
	topPick := idKey(baseline.Candidates[0].Items)

	ctx := &Context{History: [][]string{idsOf(baseline.Candidates[0].Items)}}
	repenalized, err := Generate(wardrobe, 2, ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, repenalized.Candidates, 2)
	assert.NotEqual(t, topPick, idKey(repenalized.Candidates[0].Items))
}

func idsOf(items []Item) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

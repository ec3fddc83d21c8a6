package outfit

import (
	"errors"
	"math/rand"
	"sort"
	"strings"
	"time"
)

// ErrInsufficientItems signals a wardrobe too small to assemble any outfit.
// It is an expected outcome, not a failure of the generator.
var ErrInsufficientItems = errors.New("outfit: not enough usable wardrobe items")

// defaultIterationBudget bounds randomized sampling for large wardrobes. It is
// a soft self-imposed cutoff, not a cancellable operation.
const defaultIterationBudget = 4000

// Constraints narrows the generator's slot choices.
type Constraints struct {
	// ExcludeItemIDs removes specific items from consideration.
	ExcludeItemIDs []string
	// WithOuterwear forces the outerwear slot on or off; nil leaves both open.
	WithOuterwear *bool
	// WithAccessory forces the accessory slot on or off; nil leaves both open.
	WithAccessory *bool
}

// GenerateOptions tunes the generator.
type GenerateOptions struct {
	Weights Weights
	// MaxIterations caps sampled combinations; 0 uses the default budget.
	MaxIterations int
	// Seed fixes the sampling order for reproducible runs; 0 seeds from time.
	Seed int64
}

// Candidate is one proposed combination with its score.
type Candidate struct {
	Items []Item `json:"items"`
	Score Score  `json:"score"`
}

// Result is the ranked generator output. Shortfall reports how many candidates
// short of the request the wardrobe could produce; it is informational, never
// an error.
type Result struct {
	Candidates []Candidate `json:"candidates"`
	Requested  int         `json:"requested"`
	Shortfall  int         `json:"shortfall"`
}

// Generate enumerates or samples complete outfits from the wardrobe, scores
// each through the full pipeline and returns the top count, sorted descending
// by total score. A complete outfit is top+bottom or dress, plus shoes, with
// optional outerwear and accessory slots. Incomplete combinations are rejected
// before scoring. A wardrobe with fewer than two usable items returns
// ErrInsufficientItems.
func Generate(wardrobe []Item, count int, ctx *Context, constraints *Constraints, opts *GenerateOptions) (*Result, error) {
	if opts == nil {
		opts = &GenerateOptions{}
	}
	if count <= 0 {
		count = 1
	}

	excluded := map[string]bool{}
	if constraints != nil {
		for _, id := range constraints.ExcludeItemIDs {
			excluded[id] = true
		}
	}

	slots := partition(wardrobe, excluded)
	if slots.usable < 2 {
		return nil, ErrInsufficientItems
	}

	budget := opts.MaxIterations
	if budget <= 0 {
		budget = defaultIterationBudget
	}

	outerChoices := optionalSlot(slots.outerwear, constraints, func(c *Constraints) *bool { return c.WithOuterwear })
	accessoryChoices := optionalSlot(slots.accessories, constraints, func(c *Constraints) *bool { return c.WithAccessory })

	total := (len(slots.tops)*len(slots.bottoms) + len(slots.dresses)) *
		len(slots.shoes) * len(outerChoices) * len(accessoryChoices)

	seen := map[string]bool{}
	var candidates []Candidate
	score := func(items []Item) {
		key := idKey(items)
		if seen[key] {
			return
		}
		seen[key] = true
		candidates = append(candidates, Candidate{Items: items, Score: ScoreItems(items, ctx, opts.Weights)})
	}

	if total > 0 && total <= budget {
		enumerate(slots, outerChoices, accessoryChoices, score)
	} else if total > 0 {
		sample(slots, outerChoices, accessoryChoices, budget, opts.Seed, score)
	}

	// Stable order for equal totals so identical inputs rank identically.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score.Total != candidates[j].Score.Total {
			return candidates[i].Score.Total > candidates[j].Score.Total
		}
		return idKey(candidates[i].Items) < idKey(candidates[j].Items)
	})
	if len(candidates) > count {
		candidates = candidates[:count]
	}
	return &Result{
		Candidates: candidates,
		Requested:  count,
		Shortfall:  count - len(candidates),
	}, nil
}

type slotSets struct {
	tops, bottoms, dresses, shoes, outerwear, accessories []Item
	usable                                                int
}

// partition buckets the wardrobe by outfit slot. Underwear, sleepwear and
// swimwear never participate in generated outfits; activewear counts as tops
// or bottoms by subcategory keywords.
func partition(wardrobe []Item, excluded map[string]bool) slotSets {
	var slots slotSets
	for _, item := range wardrobe {
		if excluded[item.ID] {
			continue
		}
		switch Category(strings.ToLower(string(item.Category))) {
		case CategoryTops:
			slots.tops = append(slots.tops, item)
		case CategoryBottoms:
			slots.bottoms = append(slots.bottoms, item)
		case CategoryDresses:
			slots.dresses = append(slots.dresses, item)
		case CategoryShoes:
			slots.shoes = append(slots.shoes, item)
		case CategoryOuterwear:
			slots.outerwear = append(slots.outerwear, item)
		case CategoryAccessories:
			slots.accessories = append(slots.accessories, item)
		case CategoryActivewear:
			sub := strings.ToLower(item.Subcategory)
			if strings.Contains(sub, "legging") || strings.Contains(sub, "short") || strings.Contains(sub, "jogger") {
				slots.bottoms = append(slots.bottoms, item)
			} else {
				slots.tops = append(slots.tops, item)
			}
		default:
			continue
		}
		slots.usable++
	}
	return slots
}

// optionalSlot expands an optional category into its choice list, with nil
// meaning "slot left empty".
func optionalSlot(items []Item, constraints *Constraints, sel func(*Constraints) *bool) []*Item {
	var forced *bool
	if constraints != nil {
		forced = sel(constraints)
	}
	choices := []*Item{}
	if forced == nil || !*forced {
		choices = append(choices, nil)
	}
	if forced == nil || *forced {
		for i := range items {
			choices = append(choices, &items[i])
		}
	}
	// A forced-on slot with no items degrades to the empty choice rather
	// than producing zero candidates.
	if len(choices) == 0 {
		choices = append(choices, nil)
	}
	return choices
}

func enumerate(slots slotSets, outer, accessory []*Item, emit func([]Item)) {
	for _, shoes := range slots.shoes {
		for _, o := range outer {
			for _, a := range accessory {
				for _, dress := range slots.dresses {
					emit(assemble(dress, nil, shoes, o, a))
				}
				for _, top := range slots.tops {
					for _, bottom := range slots.bottoms {
						emit(assemble(top, &bottom, shoes, o, a))
					}
				}
			}
		}
	}
}

func sample(slots slotSets, outer, accessory []*Item, budget int, seed int64, emit func([]Item)) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	dressWays := len(slots.dresses)
	separateWays := len(slots.tops) * len(slots.bottoms)
	for i := 0; i < budget; i++ {
		shoes := slots.shoes[rng.Intn(len(slots.shoes))]
		o := outer[rng.Intn(len(outer))]
		a := accessory[rng.Intn(len(accessory))]
		if pick := rng.Intn(dressWays + separateWays); pick < dressWays {
			emit(assemble(slots.dresses[pick], nil, shoes, o, a))
		} else {
			top := slots.tops[rng.Intn(len(slots.tops))]
			bottom := slots.bottoms[rng.Intn(len(slots.bottoms))]
			emit(assemble(top, &bottom, shoes, o, a))
		}
	}
}

func assemble(base Item, bottom *Item, shoes Item, outer, accessory *Item) []Item {
	items := []Item{base}
	if bottom != nil {
		items = append(items, *bottom)
	}
	items = append(items, shoes)
	if outer != nil {
		items = append(items, *outer)
	}
	if accessory != nil {
		items = append(items, *accessory)
	}
	return items
}

func idKey(items []Item) string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	sort.Strings(ids)
	return strings.Join(ids, "|")
}

package outfit

import (
	"strings"
	"time"
)

// Category is the fixed wardrobe slot taxonomy. Every item carries exactly one.
type Category string

const (
	CategoryTops        Category = "tops"
	CategoryBottoms     Category = "bottoms"
	CategoryDresses     Category = "dresses"
	CategoryOuterwear   Category = "outerwear"
	CategoryShoes       Category = "shoes"
	CategoryAccessories Category = "accessories"
	CategoryUnderwear   Category = "underwear"
	CategoryActivewear  Category = "activewear"
	CategorySleepwear   Category = "sleepwear"
	CategorySwimwear    Category = "swimwear"
)

func ValidCategory(value string) bool {
	switch Category(strings.ToLower(value)) {
	case CategoryTops, CategoryBottoms, CategoryDresses, CategoryOuterwear,
		CategoryShoes, CategoryAccessories, CategoryUnderwear,
		CategoryActivewear, CategorySleepwear, CategorySwimwear:
		return true
	}
	return false
}

const (
	SeasonSpring = "spring"
	SeasonSummer = "summer"
	SeasonFall   = "fall"
	SeasonWinter = "winter"
)

const (
	OccasionCasual  = "casual"
	OccasionWork    = "work"
	OccasionFormal  = "formal"
	OccasionParty   = "party"
	OccasionSport   = "sport"
	OccasionTravel  = "travel"
	OccasionDate    = "date"
	OccasionSpecial = "special"
)

// Item is the engine's read-only view of a wardrobe piece. The caller owns the
// backing store; the engine never mutates an Item.
type Item struct {
	ID          string
	Category    Category
	Subcategory string
	// Color is a hex string ("#1f2a44") or a common color name ("navy").
	Color     string
	Seasons   []string
	Occasions []string
	Tags      []string

	Brand    string
	Size     string
	Price    *float64
	Favorite bool

	// Usage history, mutated only by external wear logging.
	WearCount  int
	LastWornAt *time.Time
}

// NormalizedAttributes is the comparable form of an Item produced by Normalize.
type NormalizedAttributes struct {
	Category  Category
	Color     ColorPoint
	Seasons   map[string]bool
	Occasions map[string]bool
	Tags      map[string]bool
	// Formality in [0,1], derived from occasions, tags and category.
	Formality float64
	// Warmth in [0,1], derived from category and season coverage.
	Warmth float64
}

// Normalize lower-cases and deduplicates the item's set attributes and resolves
// its color. It never fails: a malformed color resolves to a neutral point so
// every item still participates in color scoring.
func Normalize(item Item) NormalizedAttributes {
	attrs := NormalizedAttributes{
		Category:  Category(strings.ToLower(string(item.Category))),
		Color:     ParseColor(item.Color),
		Seasons:   lowerSet(item.Seasons),
		Occasions: lowerSet(item.Occasions),
		Tags:      lowerSet(item.Tags),
	}
	attrs.Formality = formalityOf(attrs)
	attrs.Warmth = warmthOf(attrs)
	return attrs
}

func lowerSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			set[v] = true
		}
	}
	return set
}

var occasionFormality = map[string]float64{
	OccasionFormal:  1.0,
	OccasionWork:    0.75,
	OccasionSpecial: 0.8,
	OccasionDate:    0.6,
	OccasionParty:   0.55,
	OccasionTravel:  0.35,
	OccasionCasual:  0.2,
	OccasionSport:   0.1,
}

var formalTags = []string{"formal", "elegant", "dressy", "tailored", "suit", "business", "classic"}
var casualTags = []string{"casual", "relaxed", "streetwear", "sporty", "athleisure", "lounge", "distressed"}

// formalityOf places the item on a 0 (gym) .. 1 (black tie) axis. Occasion
// sets dominate; tags nudge; category breaks ties for untagged items.
func formalityOf(attrs NormalizedAttributes) float64 {
	var sum float64
	var n int
	for occ := range attrs.Occasions {
		if level, ok := occasionFormality[occ]; ok {
			sum += level
			n++
		}
	}
	level := 0.5
	if n > 0 {
		level = sum / float64(n)
	}

	for _, tag := range formalTags {
		if attrs.Tags[tag] {
			level += 0.15
			break
		}
	}
	for _, tag := range casualTags {
		if attrs.Tags[tag] {
			level -= 0.15
			break
		}
	}

	if n == 0 {
		switch attrs.Category {
		case CategoryActivewear, CategorySwimwear, CategorySleepwear:
			level -= 0.25
		case CategoryDresses:
			level += 0.1
		}
	}
	return clamp01(level)
}

// warmthOf estimates garment weight for weather scoring.
func warmthOf(attrs NormalizedAttributes) float64 {
	warmth := 0.5
	switch attrs.Category {
	case CategoryOuterwear:
		warmth = 0.9
	case CategorySwimwear:
		warmth = 0.05
	case CategoryActivewear, CategorySleepwear:
		warmth = 0.35
	case CategoryAccessories, CategoryShoes:
		warmth = 0.5
	}
	if len(attrs.Seasons) > 0 {
		seasonal := 0.0
		for season := range attrs.Seasons {
			switch season {
			case SeasonWinter:
				seasonal += 0.9
			case SeasonFall:
				seasonal += 0.65
			case SeasonSpring:
				seasonal += 0.45
			case SeasonSummer:
				seasonal += 0.15
			}
		}
		warmth = (warmth + seasonal/float64(len(attrs.Seasons))) / 2
	}
	return clamp01(warmth)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

package models

import (
	"regexp"

	"github.com/go-playground/validator"

	"stylistoapi/outfit"
)

// Validators for the wardrobe taxonomy, registered on the echo validator as
// "category", "season" and "occasion".

func ValidateCategory(fl validator.FieldLevel) bool {
	return outfit.ValidCategory(fl.Field().String())
}

// ValidCategories returns the category keys in the order the closet UI groups
// them.
func ValidCategories() []string {
	return []string{
		string(outfit.CategoryTops),
		string(outfit.CategoryBottoms),
		string(outfit.CategoryDresses),
		string(outfit.CategoryOuterwear),
		string(outfit.CategoryShoes),
		string(outfit.CategoryAccessories),
		string(outfit.CategoryUnderwear),
		string(outfit.CategoryActivewear),
		string(outfit.CategorySleepwear),
		string(outfit.CategorySwimwear),
	}
}

var seasonPattern = regexp.MustCompile("^(spring|summer|fall|winter)$")
var occasionPattern = regexp.MustCompile("^(casual|work|formal|party|sport|travel|date|special)$")

func ValidateSeason(fl validator.FieldLevel) bool {
	return seasonPattern.MatchString(fl.Field().String())
}

func ValidateOccasion(fl validator.FieldLevel) bool {
	return occasionPattern.MatchString(fl.Field().String())
}

func ValidSeasons(values []string) bool {
	for _, v := range values {
		if !seasonPattern.MatchString(v) {
			return false
		}
	}
	return true
}

func ValidOccasions(values []string) bool {
	for _, v := range values {
		if !occasionPattern.MatchString(v) {
			return false
		}
	}
	return true
}

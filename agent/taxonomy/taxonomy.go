// Package taxonomy maps free-form multilingual issue phrases onto the
// closed set of canonical complaint categories.
package taxonomy

import "strings"

type Category string

const (
	CategoryRoad        Category = "road"
	CategoryWater       Category = "water"
	CategoryElectricity Category = "electricity"
	CategoryDrainage    Category = "drainage"
	CategoryGarbage     Category = "garbage"
	CategoryStreetlight Category = "streetlight"
	CategoryOther       Category = "other"
)

// aliases maps caller phrasing (Tamil and English) to categories. Keys
// are stored lowercased.
var aliases = map[string]Category{
	"road":         CategoryRoad,
	"roads":        CategoryRoad,
	"pothole":      CategoryRoad,
	"சாலை":         CategoryRoad,
	"water":        CategoryWater,
	"தண்ணீர்":      CategoryWater,
	"electricity":  CategoryElectricity,
	"power":        CategoryElectricity,
	"மின்சாரம்":    CategoryElectricity,
	"drainage":     CategoryDrainage,
	"sewage":       CategoryDrainage,
	"வடிகால்":      CategoryDrainage,
	"garbage":      CategoryGarbage,
	"sanitation":   CategoryGarbage,
	"சுகாதாரம்":    CategoryGarbage,
	"குப்பை":       CategoryGarbage,
	"streetlight":  CategoryStreetlight,
	"street light": CategoryStreetlight,
	"தெரு விளக்கு": CategoryStreetlight,
	"other":        CategoryOther,
}

// Resolve maps a phrase to its category. ok is false when the phrase is
// outside the taxonomy, which slot tasks treat as out-of-domain.
func Resolve(phrase string) (Category, bool) {
	cat, ok := aliases[strings.ToLower(strings.TrimSpace(phrase))]
	return cat, ok
}

// Normalize is the total version of Resolve: every input maps to exactly
// one category, unrecognized phrases to the catch-all. Idempotent, since
// canonical category names are their own aliases.
func Normalize(phrase string) Category {
	if cat, ok := Resolve(phrase); ok {
		return cat
	}
	return CategoryOther
}

// Categories returns the closed canonical set.
func Categories() []Category {
	return []Category{
		CategoryRoad,
		CategoryWater,
		CategoryElectricity,
		CategoryDrainage,
		CategoryGarbage,
		CategoryStreetlight,
		CategoryOther,
	}
}

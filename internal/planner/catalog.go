package planner

import "github.com/FACorreiaa/go-trip-planner/internal/types"

// Catalog is the read-only activity lookup the engines consume.
// Unknown cities return an empty sequence.
type Catalog interface {
	Activities(city string) []types.Activity
}

// StaticCatalog is an in-memory Catalog keyed by city name.
type StaticCatalog map[string][]types.Activity

func (c StaticCatalog) Activities(city string) []types.Activity {
	return c[city]
}

// findActivity looks up a catalog entry by exact title within a city.
func findActivity(catalog Catalog, city, title string) (types.Activity, bool) {
	if catalog == nil {
		return types.Activity{}, false
	}
	for _, a := range catalog.Activities(city) {
		if a.Title == title {
			return a, true
		}
	}
	return types.Activity{}, false
}

// FindActivity is the exported form of the title lookup.
func FindActivity(catalog Catalog, city, title string) (types.Activity, bool) {
	return findActivity(catalog, city, title)
}

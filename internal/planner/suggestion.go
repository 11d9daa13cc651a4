package planner

import "github.com/FACorreiaa/go-trip-planner/internal/types"

// Suggest inspects one day against its city's catalog. The result lists gap fills first, then
// duplicate conflicts, then alternatives, each group in canonical slot order. The day and the
// catalog are not modified.
func Suggest(day types.Day, catalog Catalog) []types.Suggestion {
	var activities []types.Activity
	if catalog != nil {
		activities = catalog.Activities(day.City)
	}

	suggestions := make([]types.Suggestion, 0)
	for _, slot := range types.SlotOrder {
		if len(day.Slots[slot]) > 0 {
			continue
		}
		for _, act := range activities {
			if act.Allows(slot) {
				a := act
				suggestions = append(suggestions, types.Suggestion{Kind: types.SuggestionFillGap, Slot: slot, Candidate: &a})
				break
			}
		}
	}

	seen := make(map[string]bool)
	for _, slot := range types.SlotOrder {
		for _, it := range day.Slots[slot] {
			if seen[it.Title] {
				dup := it.Clone()
				suggestions = append(suggestions, types.Suggestion{Kind: types.SuggestionConflict, Slot: slot, Activity: &dup})
			}
			seen[it.Title] = true
		}
	}

	for _, slot := range types.SlotOrder {
		for _, it := range day.Slots[slot] {
			var alternatives []types.Activity
			for _, act := range activities {
				if act.Title != it.Title && act.Allows(slot) {
					alternatives = append(alternatives, act)
				}
			}
			if len(alternatives) == 0 {
				continue
			}
			cur := it.Clone()
			suggestions = append(suggestions, types.Suggestion{
				Kind:         types.SuggestionAlternative,
				Slot:         slot,
				Activity:     &cur,
				Alternatives: alternatives,
			})
		}
	}
	return suggestions
}

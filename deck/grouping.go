package deck

import (
	"math"

	"github.com/studydeck/studydeck-api/models"
)

// DefaultGroupTitle names the single catch-all group used when no AI grouping
// exists, so views never have to render a "no groups" case.
const DefaultGroupTitle = "All Cards"

// DefaultGrouping returns a single group covering every card of a deck of the
// given length.
func DefaultGrouping(deckLen int) models.Grouping {
	indices := make([]int, deckLen)
	for i := range indices {
		indices[i] = i
	}
	return models.Grouping{
		Groups: []models.Group{{Title: DefaultGroupTitle, CardIndices: indices}},
	}
}

// ValidateGrouping returns a copy of g with every group's card indices
// filtered to [0, deckLen). Groups left empty by the filter are dropped.
// Stored groupings are range-checked like this before every use, never
// trusted.
func ValidateGrouping(g models.Grouping, deckLen int) models.Grouping {
	out := models.Grouping{}
	for _, group := range g.Groups {
		var valid []int
		for _, idx := range group.CardIndices {
			if idx >= 0 && idx < deckLen {
				valid = append(valid, idx)
			}
		}
		if len(valid) == 0 {
			continue
		}
		out.Groups = append(out.Groups, models.Group{Title: group.Title, CardIndices: valid})
	}
	return out
}

// GroupProgress returns the percentage of a group's cards that have been
// viewed, as an integer in [0, 100]. An empty group is 0.
func GroupProgress(group models.Group, viewed map[int]struct{}) int {
	if len(group.CardIndices) == 0 {
		return 0
	}
	known := 0
	for _, idx := range group.CardIndices {
		if _, ok := viewed[idx]; ok {
			known++
		}
	}
	return progressPercent(known, len(group.CardIndices))
}

// DeckProgress returns the percentage of the whole deck that has been viewed.
func DeckProgress(viewed map[int]struct{}, deckLen int) int {
	if deckLen == 0 {
		return 0
	}
	known := 0
	for idx := range viewed {
		if idx >= 0 && idx < deckLen {
			known++
		}
	}
	return progressPercent(known, deckLen)
}

func progressPercent(known, total int) int {
	percent := int(math.Round(float64(known) / float64(total) * 100))
	if percent > 100 {
		percent = 100
	}
	return percent
}

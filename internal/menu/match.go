package menu

import (
	"sort"
	"strings"

	"bistro/internal/models"
)

// Match is a menu item scored against a dish name
type Match struct {
	models.MenuItem
	Similarity float64 `json:"similarity"`
}

// MatchDish ranks items by how well they fit dish, the name a model read
// from a photo. A name hit weighs most, then description and category;
// popular and highly rated items get a small nudge. Items that only
// score on the nudges are left out.
func MatchDish(dish string, items []models.MenuItem) []Match {
	dish = strings.ToLower(strings.TrimSpace(dish))
	if dish == "" {
		return nil
	}

	var out []Match
	for _, it := range items {
		// hundredths, so the threshold compares exactly
		score := 0
		name := strings.ToLower(it.Name)
		if strings.Contains(name, dish) || strings.Contains(dish, name) {
			score += 70
		}
		if strings.Contains(strings.ToLower(it.Description), dish) {
			score += 20
		}
		if strings.Contains(string(it.Category), dish) {
			score += 10
		}
		if it.Popular {
			score += 5
		}
		if it.Rating > 4.5 {
			score += 5
		}
		if score <= 10 {
			continue
		}
		if score > 100 {
			score = 100
		}
		out = append(out, Match{MenuItem: it, Similarity: float64(score) / 100})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	return out
}

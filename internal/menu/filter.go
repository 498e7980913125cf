package menu

import (
	"sort"
	"strings"

	"bistro/internal/models"

	"github.com/shopspring/decimal"
)

// Sort orders accepted by Filter
const (
	SortPopular   = "popular"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
	SortRating    = "rating"
	SortName      = "name"
)

// Filter narrows the menu for browsing. Zero values mean "no constraint".
type Filter struct {
	Categories []models.MenuCategory
	Dietary    []string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Search     string
	Sort       string
}

// Apply returns the items matching f in the requested order. The input
// slice is not modified.
func (f Filter) Apply(items []models.MenuItem) []models.MenuItem {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]models.MenuItem, 0, len(items))
	for _, it := range items {
		if !f.matchesCategory(it) {
			continue
		}
		if !f.matchesDietary(it) {
			continue
		}
		if f.MinPrice != nil && it.Price.LessThan(*f.MinPrice) {
			continue
		}
		if f.MaxPrice != nil && it.Price.GreaterThan(*f.MaxPrice) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(it.Name), search) &&
			!strings.Contains(strings.ToLower(it.Description), search) {
			continue
		}
		out = append(out, it)
	}

	sortItems(out, f.Sort)
	return out
}

func (f Filter) matchesCategory(it models.MenuItem) bool {
	if len(f.Categories) == 0 {
		return true
	}
	for _, c := range f.Categories {
		if it.Category == c {
			return true
		}
	}
	return false
}

// every requested tag must be present
func (f Filter) matchesDietary(it models.MenuItem) bool {
	for _, tag := range f.Dietary {
		if !it.HasDietary(tag) {
			return false
		}
	}
	return true
}

func sortItems(items []models.MenuItem, order string) {
	var less func(a, b models.MenuItem) bool
	switch order {
	case SortPopular:
		less = func(a, b models.MenuItem) bool {
			if a.Popular != b.Popular {
				return a.Popular
			}
			return a.Rating > b.Rating
		}
	case SortPriceAsc:
		less = func(a, b models.MenuItem) bool { return a.Price.LessThan(b.Price) }
	case SortPriceDesc:
		less = func(a, b models.MenuItem) bool { return a.Price.GreaterThan(b.Price) }
	case SortRating:
		less = func(a, b models.MenuItem) bool { return a.Rating > b.Rating }
	case SortName:
		less = func(a, b models.MenuItem) bool {
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	default:
		return
	}
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}

package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MenuItem represents a dish on the menu. Items are read-only for the
// lifetime of a conversation; only the admin surface mutates them.
type MenuItem struct {
	ID          string          `gorm:"primary_key" json:"id"`
	Name        string          `gorm:"not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"`
	Category    MenuCategory    `gorm:"index" json:"category"`
	Image       string          `json:"image,omitempty"`
	Dietary     StringSlice     `gorm:"type:text" json:"dietary"`
	Popular     bool            `json:"popular"`
	Rating      float64         `json:"rating"`
	Calories    int             `json:"calories"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName sets the table name for MenuItem
func (MenuItem) TableName() string {
	return "menu_items"
}

// MenuCategory represents the category of a menu item
type MenuCategory string

const (
	// Menu categories
	MenuCategoryAppetizers  MenuCategory = "appetizers"
	MenuCategoryMainCourses MenuCategory = "main-courses"
	MenuCategoryPizzas      MenuCategory = "pizzas"
	MenuCategoryPastas      MenuCategory = "pastas"
	MenuCategorySalads      MenuCategory = "salads"
	MenuCategoryDesserts    MenuCategory = "desserts"
	MenuCategoryDrinks      MenuCategory = "drinks"
)

// MenuCategories lists every category in menu display order
var MenuCategories = []MenuCategory{
	MenuCategoryAppetizers,
	MenuCategoryMainCourses,
	MenuCategoryPizzas,
	MenuCategoryPastas,
	MenuCategorySalads,
	MenuCategoryDesserts,
	MenuCategoryDrinks,
}

// ParseMenuCategory returns the category named by s
func ParseMenuCategory(s string) (MenuCategory, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range MenuCategories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Dietary tags used by the menu filters and user preferences
const (
	DietaryVegetarian = "vegetarian"
	DietaryVegan      = "vegan"
	DietaryGlutenFree = "gluten-free"
	DietaryNutFree    = "nut-free"
	DietaryDairyFree  = "dairy-free"
	DietarySpicy      = "spicy"
)

// ValidateMenuItem validates a menu item
func ValidateMenuItem(item *MenuItem) error {
	if strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("menu item name is required")
	}
	if item.Price.IsNegative() {
		return fmt.Errorf("menu item price must not be negative")
	}
	if _, ok := ParseMenuCategory(string(item.Category)); !ok {
		return fmt.Errorf("unknown menu category %q", item.Category)
	}
	if item.Rating < 0 || item.Rating > 5 {
		return fmt.Errorf("menu item rating must be between 0 and 5")
	}
	if item.Calories < 0 {
		return fmt.Errorf("menu item calories must not be negative")
	}
	return nil
}

// HasDietary checks if the item carries a dietary tag
func (mi *MenuItem) HasDietary(tag string) bool {
	return mi.Dietary.Contains(tag)
}

// IsInCategory checks if the item belongs to a specific category
func (mi *MenuItem) IsInCategory(category MenuCategory) bool {
	return mi.Category == category
}

package menu

import (
	"context"

	"bistro/internal/models"

	"github.com/shopspring/decimal"
)

func item(id, name, desc, price string, category models.MenuCategory, dietary []string, popular bool, rating float64, calories int) models.MenuItem {
	return models.MenuItem{
		ID:          id,
		Name:        name,
		Description: desc,
		Price:       decimal.RequireFromString(price),
		Category:    category,
		Dietary:     models.StringSlice(dietary),
		Popular:     popular,
		Rating:      rating,
		Calories:    calories,
	}
}

var staticItems = []models.MenuItem{
	item("1", "Margherita Pizza", "Classic pizza with tomato sauce, mozzarella, and fresh basil", "12.99",
		models.MenuCategoryPizzas, []string{"vegetarian"}, true, 4.8, 850),
	item("2", "Pepperoni Pizza", "Traditional pizza topped with pepperoni slices", "14.99",
		models.MenuCategoryPizzas, nil, true, 4.7, 950),
	item("3", "Vegetarian Pizza", "Pizza topped with bell peppers, mushrooms, onions, and olives", "13.99",
		models.MenuCategoryPizzas, []string{"vegetarian"}, false, 4.5, 800),
	item("4", "Caesar Salad", "Romaine lettuce, croutons, parmesan cheese with Caesar dressing", "8.99",
		models.MenuCategorySalads, []string{"vegetarian"}, false, 4.6, 350),
	item("5", "Greek Salad", "Tomatoes, cucumbers, olives, feta cheese with olive oil dressing", "9.99",
		models.MenuCategorySalads, []string{"vegetarian", "gluten-free"}, false, 4.4, 320),
	item("6", "Spaghetti Bolognese", "Spaghetti pasta with rich meat sauce and parmesan cheese", "15.99",
		models.MenuCategoryPastas, nil, false, 4.7, 780),
	item("7", "Fettuccine Alfredo", "Fettuccine pasta in creamy Alfredo sauce with parmesan", "14.99",
		models.MenuCategoryPastas, []string{"vegetarian"}, false, 4.6, 950),
	item("8", "Garlic Bread", "Toasted bread with garlic butter and herbs", "4.99",
		models.MenuCategoryAppetizers, []string{"vegetarian"}, true, 4.5, 320),
	item("9", "Mozzarella Sticks", "Breaded and fried mozzarella cheese sticks with marinara sauce", "7.99",
		models.MenuCategoryAppetizers, []string{"vegetarian"}, false, 4.4, 450),
	item("10", "Tiramisu", "Classic Italian dessert with coffee-soaked ladyfingers and mascarpone", "6.99",
		models.MenuCategoryDesserts, []string{"vegetarian"}, true, 4.9, 420),
	item("11", "Chocolate Lava Cake", "Warm chocolate cake with a molten chocolate center", "7.99",
		models.MenuCategoryDesserts, []string{"vegetarian"}, false, 4.8, 550),
	item("12", "Grilled Salmon", "Fresh salmon fillet grilled with lemon and herbs", "18.99",
		models.MenuCategoryMainCourses, []string{"gluten-free"}, false, 4.7, 480),
	item("13", "Chicken Parmesan", "Breaded chicken breast topped with marinara and mozzarella", "16.99",
		models.MenuCategoryMainCourses, nil, true, 4.6, 850),
	item("14", "Veggie Burger", "Plant-based patty with lettuce, tomato, and special sauce", "13.99",
		models.MenuCategoryMainCourses, []string{"vegetarian", "vegan"}, false, 4.4, 580),
	item("15", "Mushroom Risotto", "Creamy Arborio rice with mushrooms and parmesan", "15.99",
		models.MenuCategoryMainCourses, []string{"vegetarian", "gluten-free"}, false, 4.5, 620),
}

// StaticItems returns a copy of the built-in menu used to seed the
// database and as the fallback when the database cannot be read.
func StaticItems() []models.MenuItem {
	out := make([]models.MenuItem, len(staticItems))
	for i, it := range staticItems {
		it.Dietary = append(models.StringSlice(nil), it.Dietary...)
		out[i] = it
	}
	return out
}

// StaticCatalog serves the built-in menu
type StaticCatalog struct{}

// ListItems returns the built-in items, optionally filtered by category
func (StaticCatalog) ListItems(_ context.Context, category string) ([]models.MenuItem, error) {
	return filterCategory(StaticItems(), category), nil
}

// Get returns one built-in item
func (StaticCatalog) Get(_ context.Context, id string) (*models.MenuItem, error) {
	for _, it := range StaticItems() {
		if it.ID == id {
			return &it, nil
		}
	}
	return nil, ErrNotFound
}

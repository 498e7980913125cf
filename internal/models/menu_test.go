package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func validItem() MenuItem {
	return MenuItem{
		ID:       "1",
		Name:     "Margherita Pizza",
		Price:    decimal.RequireFromString("12.99"),
		Category: MenuCategoryPizzas,
		Rating:   4.8,
		Calories: 850,
	}
}

func TestValidateMenuItem(t *testing.T) {
	item := validItem()
	assert.NoError(t, ValidateMenuItem(&item))

	tests := []struct {
		name   string
		mutate func(*MenuItem)
	}{
		{"missing name", func(m *MenuItem) { m.Name = "  " }},
		{"negative price", func(m *MenuItem) { m.Price = decimal.NewFromInt(-1) }},
		{"unknown category", func(m *MenuItem) { m.Category = "soups" }},
		{"rating above five", func(m *MenuItem) { m.Rating = 5.5 }},
		{"negative calories", func(m *MenuItem) { m.Calories = -10 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := validItem()
			tt.mutate(&item)
			assert.Error(t, ValidateMenuItem(&item))
		})
	}
}

func TestValidateMenuItemAllowsFreeItems(t *testing.T) {
	item := validItem()
	item.Price = decimal.Zero
	assert.NoError(t, ValidateMenuItem(&item))
}

func TestParseMenuCategory(t *testing.T) {
	c, ok := ParseMenuCategory(" Main-Courses ")
	assert.True(t, ok)
	assert.Equal(t, MenuCategoryMainCourses, c)

	_, ok = ParseMenuCategory("pizza")
	assert.False(t, ok)
}

func TestStringSliceScan(t *testing.T) {
	var s StringSlice
	assert.NoError(t, s.Scan([]byte(`["vegetarian","gluten-free"]`)))
	assert.True(t, s.Contains("Gluten-Free"))
	assert.False(t, s.Contains("vegan"))

	assert.NoError(t, s.Scan(nil))
	assert.Empty(t, s)

	assert.Error(t, s.Scan(42))

	v, err := StringSlice{}.Value()
	assert.NoError(t, err)
	assert.Equal(t, "[]", v)
}

func TestPreferencesDietaryTags(t *testing.T) {
	p := Preferences{Vegetarian: true, GlutenFree: true, LowCalorie: true}
	assert.Equal(t, []string{DietaryVegetarian, DietaryGlutenFree}, p.DietaryTags())
	assert.Empty(t, Preferences{}.DietaryTags())
}

func TestParseOrderStatus(t *testing.T) {
	s, ok := ParseOrderStatus("ready")
	assert.True(t, ok)
	assert.Equal(t, OrderStatusReady, s)
	assert.False(t, s.IsFinal())

	_, ok = ParseOrderStatus("plating")
	assert.False(t, ok)
	assert.True(t, OrderStatusDelivered.IsFinal())
}

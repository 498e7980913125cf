package menu

import (
	"context"
	"errors"
	"testing"

	"bistro/internal/database"
	"bistro/internal/models"

	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db), db
}

type failingCatalog struct{}

func (failingCatalog) ListItems(context.Context, string) ([]models.MenuItem, error) {
	return nil, errors.New("connection refused")
}

func names(items []models.MenuItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func TestStaticCatalogFiltersByCategory(t *testing.T) {
	items, err := StaticCatalog{}.ListItems(context.Background(), "pizzas")
	require.NoError(t, err)
	assert.Equal(t, []string{"Margherita Pizza", "Pepperoni Pizza", "Vegetarian Pizza"}, names(items))

	all, err := StaticCatalog{}.ListItems(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 15)
	// sorted by category, then name
	assert.Equal(t, models.MenuCategoryAppetizers, all[0].Category)
	assert.Equal(t, "Garlic Bread", all[0].Name)

	none, err := StaticCatalog{}.ListItems(context.Background(), "drinks")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStaticItemsReturnsCopies(t *testing.T) {
	a := StaticItems()
	a[0].Name = "changed"
	a[0].Dietary[0] = "changed"

	b := StaticItems()
	assert.Equal(t, "Margherita Pizza", b[0].Name)
	assert.Equal(t, "vegetarian", b[0].Dietary[0])
}

func TestStoreSeedAndList(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	n, err := store.Seed(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 15, n)

	// second seed is a no-op on a populated table
	n, err = store.Seed(ctx, false)
	require.NoError(t, err)
	assert.Zero(t, n)

	salads, err := store.ListItems(ctx, "salads")
	require.NoError(t, err)
	assert.Equal(t, []string{"Caesar Salad", "Greek Salad"}, names(salads))
	assert.Equal(t, "8.99", salads[0].Price.StringFixed(2))

	n, err = store.Seed(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 15, n)
	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 15, count)
}

func TestStoreCRUD(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	lemonade := &models.MenuItem{
		Name:     "Lemonade",
		Price:    decimal.RequireFromString("3.50"),
		Category: models.MenuCategoryDrinks,
		Dietary:  models.StringSlice{"vegan"},
	}
	require.NoError(t, store.Create(ctx, lemonade))
	assert.NotEmpty(t, lemonade.ID)

	got, err := store.Get(ctx, lemonade.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lemonade", got.Name)

	got.Price = decimal.RequireFromString("3.75")
	require.NoError(t, store.Update(ctx, got))
	got, err = store.Get(ctx, lemonade.ID)
	require.NoError(t, err)
	assert.Equal(t, "3.75", got.Price.StringFixed(2))

	require.NoError(t, store.Delete(ctx, lemonade.ID))
	_, err = store.Get(ctx, lemonade.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, lemonade.ID), ErrNotFound)
}

func TestStoreCreateValidates(t *testing.T) {
	store, _ := newTestStore(t)
	err := store.Create(context.Background(), &models.MenuItem{Name: "Soup", Category: "soups"})
	assert.Error(t, err)
}

func TestFallbackCatalog(t *testing.T) {
	ctx := context.Background()

	t.Run("primary failure serves static menu", func(t *testing.T) {
		items, err := FallbackCatalog{Primary: failingCatalog{}}.ListItems(ctx, "desserts")
		require.NoError(t, err)
		assert.Equal(t, []string{"Tiramisu", "Chocolate Lava Cake"}, names(items))
	})

	t.Run("empty database serves static menu", func(t *testing.T) {
		store, _ := newTestStore(t)
		items, err := FallbackCatalog{Primary: store}.ListItems(ctx, "pastas")
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("items resolve from the static menu while the primary is unusable", func(t *testing.T) {
		item, err := FallbackCatalog{Primary: failingCatalog{}}.Get(ctx, "10")
		require.NoError(t, err)
		assert.Equal(t, "Tiramisu", item.Name)

		store, _ := newTestStore(t)
		item, err = FallbackCatalog{Primary: store}.Get(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, "Margherita Pizza", item.Name)

		_, err = FallbackCatalog{Primary: store}.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty category of a populated menu stays empty", func(t *testing.T) {
		store, _ := newTestStore(t)
		_, err := store.Seed(ctx, false)
		require.NoError(t, err)
		items, err := FallbackCatalog{Primary: store}.ListItems(ctx, "drinks")
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestFilterApply(t *testing.T) {
	items := StaticItems()
	maxPrice := decimal.RequireFromString("10")

	got := Filter{
		Dietary:  []string{"vegetarian"},
		MaxPrice: &maxPrice,
		Sort:     SortPriceAsc,
	}.Apply(items)
	assert.Equal(t, []string{"Garlic Bread", "Tiramisu", "Mozzarella Sticks", "Chocolate Lava Cake", "Caesar Salad", "Greek Salad"}, names(got))

	got = Filter{Categories: []models.MenuCategory{models.MenuCategoryMainCourses}, Dietary: []string{"vegan"}}.Apply(items)
	assert.Equal(t, []string{"Veggie Burger"}, names(got))

	got = Filter{Search: "MOZZARELLA", Sort: SortName}.Apply(items)
	assert.Equal(t, []string{"Chicken Parmesan", "Margherita Pizza", "Mozzarella Sticks"}, names(got))

	got = Filter{Categories: []models.MenuCategory{models.MenuCategoryPizzas}, Sort: SortPopular}.Apply(items)
	assert.Equal(t, []string{"Margherita Pizza", "Pepperoni Pizza", "Vegetarian Pizza"}, names(got))

	// input untouched
	assert.Equal(t, "Margherita Pizza", items[0].Name)
}

func TestMatchDish(t *testing.T) {
	items := StaticItems()

	got := MatchDish("Salad", items)
	require.Len(t, got, 2)
	assert.Equal(t, "Caesar Salad", got[0].Name)
	assert.Equal(t, 0.85, got[0].Similarity)
	assert.Equal(t, "Greek Salad", got[1].Name)
	assert.Equal(t, 0.8, got[1].Similarity)

	// the model may answer with more words than the menu uses
	got = MatchDish("tiramisu cake", items)
	require.Len(t, got, 1)
	assert.Equal(t, "Tiramisu", got[0].Name)
	assert.Equal(t, 0.8, got[0].Similarity)

	got = MatchDish("pizza", items)
	for _, m := range got {
		assert.Equal(t, 1.0, m.Similarity, m.Name)
	}
	assert.Len(t, got, 3)

	// description hits rank below name hits; ties keep menu order
	var order []string
	for _, m := range MatchDish("cheese", items) {
		order = append(order, m.Name)
	}
	assert.Equal(t, []string{"Caesar Salad", "Spaghetti Bolognese", "Greek Salad", "Mozzarella Sticks"}, order)

	assert.Empty(t, MatchDish("sushi", items))
	assert.Nil(t, MatchDish("  ", items))
}

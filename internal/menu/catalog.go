package menu

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"bistro/internal/database"
	"bistro/internal/models"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
)

// ErrNotFound is returned when a menu item does not exist
var ErrNotFound = errors.New("menu item not found")

// Catalog lists menu items, optionally restricted to one category
type Catalog interface {
	ListItems(ctx context.Context, category string) ([]models.MenuItem, error)
}

// Store persists the menu in the database
type Store struct {
	db *gorm.DB
}

// NewStore creates a menu store backed by db
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ListItems returns items in category, or the whole menu sorted by
// category then name when category is empty.
func (s *Store) ListItems(ctx context.Context, category string) ([]models.MenuItem, error) {
	var items []models.MenuItem
	q := s.db
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if err := q.Order("name").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	if category == "" {
		sortByCategoryAndName(items)
	}
	return items, nil
}

// Get returns one menu item by ID
func (s *Store) Get(ctx context.Context, id string) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := s.db.Where("id = ?", id).First(&item).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get menu item %s: %w", id, err)
	}
	return &item, nil
}

// Create validates and stores a new menu item, assigning an ID when missing
func (s *Store) Create(ctx context.Context, item *models.MenuItem) error {
	if err := models.ValidateMenuItem(item); err != nil {
		return err
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if err := s.db.Create(item).Error; err != nil {
		return fmt.Errorf("failed to create menu item: %w", err)
	}
	return nil
}

// Update replaces the stored fields of an existing item
func (s *Store) Update(ctx context.Context, item *models.MenuItem) error {
	if err := models.ValidateMenuItem(item); err != nil {
		return err
	}
	existing, err := s.Get(ctx, item.ID)
	if err != nil {
		return err
	}
	item.CreatedAt = existing.CreatedAt
	if err := s.db.Save(item).Error; err != nil {
		return fmt.Errorf("failed to update menu item %s: %w", item.ID, err)
	}
	return nil
}

// Delete removes an item from the menu
func (s *Store) Delete(ctx context.Context, id string) error {
	res := s.db.Where("id = ?", id).Delete(&models.MenuItem{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete menu item %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns how many items are stored
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.Model(&models.MenuItem{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count menu items: %w", err)
	}
	return n, nil
}

// Seed writes the built-in menu. With reset, existing items are removed
// first; otherwise seeding only happens on an empty table.
func (s *Store) Seed(ctx context.Context, reset bool) (int, error) {
	seeded := 0
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if reset {
			if err := tx.Delete(&models.MenuItem{}).Error; err != nil {
				return fmt.Errorf("failed to clear menu: %w", err)
			}
		} else {
			var n int
			if err := tx.Model(&models.MenuItem{}).Count(&n).Error; err != nil {
				return fmt.Errorf("failed to count menu items: %w", err)
			}
			if n > 0 {
				return nil
			}
		}

		items := StaticItems()
		for i := range items {
			if err := tx.Create(&items[i]).Error; err != nil {
				return fmt.Errorf("failed to seed %s: %w", items[i].Name, err)
			}
		}
		seeded = len(items)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return seeded, nil
}

// ItemGetter looks up a single menu item
type ItemGetter interface {
	Get(ctx context.Context, id string) (*models.MenuItem, error)
}

// FallbackCatalog reads from a primary catalog and serves the built-in
// menu when the primary fails or has nothing stored.
type FallbackCatalog struct {
	Primary Catalog
}

// Get resolves an item the same way ListItems lists them, so anything
// the assistant offered can be priced into a cart. Built-in items are
// only served while the primary is failing or empty; an item deleted
// from a stocked menu stays gone.
func (f FallbackCatalog) Get(ctx context.Context, id string) (*models.MenuItem, error) {
	getter, ok := f.Primary.(ItemGetter)
	if !ok {
		return StaticCatalog{}.Get(ctx, id)
	}
	item, err := getter.Get(ctx, id)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, ErrNotFound) {
		log.Printf("menu: catalog unavailable, using static menu: %v", err)
		return StaticCatalog{}.Get(ctx, id)
	}
	all, lerr := f.Primary.ListItems(ctx, "")
	if lerr != nil || len(all) == 0 {
		return StaticCatalog{}.Get(ctx, id)
	}
	return nil, err
}

// ListItems implements Catalog. It never returns an error.
func (f FallbackCatalog) ListItems(ctx context.Context, category string) ([]models.MenuItem, error) {
	items, err := f.Primary.ListItems(ctx, category)
	if err != nil {
		log.Printf("menu: catalog unavailable, using static menu: %v", err)
		return StaticCatalog{}.ListItems(ctx, category)
	}
	if len(items) == 0 {
		// An empty category is a real answer only when the menu exists at all.
		if category == "" {
			return StaticCatalog{}.ListItems(ctx, "")
		}
		all, err := f.Primary.ListItems(ctx, "")
		if err != nil || len(all) == 0 {
			return StaticCatalog{}.ListItems(ctx, category)
		}
	}
	return items, nil
}

func filterCategory(items []models.MenuItem, category string) []models.MenuItem {
	if category == "" {
		sortByCategoryAndName(items)
		return items
	}
	out := items[:0]
	for _, it := range items {
		if string(it.Category) == category {
			out = append(out, it)
		}
	}
	return out
}

func sortByCategoryAndName(items []models.MenuItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Category != items[j].Category {
			return items[i].Category < items[j].Category
		}
		return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
	})
}

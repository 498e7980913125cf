package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"bistro/internal/menu"
	"bistro/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ListMenu returns the menu narrowed by the query parameters category,
// dietary (comma separated), min_price, max_price, search and sort
func (s *Server) ListMenu(c *gin.Context) {
	filter, err := menuFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, err := s.svc.Catalog.ListItems(c.Request.Context(), "")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, filter.Apply(items))
}

func menuFilter(c *gin.Context) (menu.Filter, error) {
	f := menu.Filter{
		Search: c.Query("search"),
		Sort:   c.Query("sort"),
	}
	for _, raw := range splitList(c.Query("category")) {
		if raw == "all" {
			continue
		}
		cat, ok := models.ParseMenuCategory(raw)
		if !ok {
			return f, fmt.Errorf("unknown category %q", raw)
		}
		f.Categories = append(f.Categories, cat)
	}
	f.Dietary = splitList(c.Query("dietary"))

	for _, p := range []struct {
		name string
		dst  **decimal.Decimal
	}{{"min_price", &f.MinPrice}, {"max_price", &f.MaxPrice}} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return f, fmt.Errorf("invalid %s %q", p.name, raw)
		}
		*p.dst = &d
	}

	switch f.Sort {
	case "", menu.SortPopular, menu.SortPriceAsc, menu.SortPriceDesc, menu.SortRating, menu.SortName:
	default:
		return f, fmt.Errorf("unknown sort %q", f.Sort)
	}
	return f, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ListCategories returns the menu categories in display order
func (s *Server) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, models.MenuCategories)
}

func (s *Server) GetMenuItem(c *gin.Context) {
	item, err := s.svc.Menu.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Admin menu management

func (s *Server) CreateMenuItem(c *gin.Context) {
	var item models.MenuItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := models.ValidateMenuItem(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.svc.Menu.Create(c.Request.Context(), &item); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (s *Server) UpdateMenuItem(c *gin.Context) {
	var item models.MenuItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item.ID = c.Param("id")
	if err := models.ValidateMenuItem(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.svc.Menu.Update(c.Request.Context(), &item); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) DeleteMenuItem(c *gin.Context) {
	if err := s.svc.Menu.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SeedMenu loads the built-in menu; ?reset=true replaces existing items
func (s *Server) SeedMenu(c *gin.Context) {
	reset, _ := strconv.ParseBool(c.Query("reset"))
	n, err := s.svc.Menu.Seed(c.Request.Context(), reset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"seeded": n})
}

package models

import "time"

// Roles a user can hold
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a customer or staff profile keyed by the identity provider's subject
type User struct {
	ID          string      `gorm:"primary_key" json:"id"`
	Email       string      `json:"email"`
	Name        string      `json:"name"`
	Address     string      `json:"address"`
	Role        string      `gorm:"default:'user'" json:"role"`
	Preferences Preferences `gorm:"embedded;embedded_prefix:pref_" json:"preferences"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Preferences holds the dietary flags a user saved on their profile
type Preferences struct {
	Vegetarian bool `json:"vegetarian"`
	Vegan      bool `json:"vegan"`
	GlutenFree bool `json:"glutenFree"`
	NutFree    bool `json:"nutFree"`
	DairyFree  bool `json:"dairyFree"`
	Spicy      bool `json:"spicy"`
	LowCalorie bool `json:"lowCalorie"`
}

// DietaryTags converts the flags to the menu's dietary tags
func (p Preferences) DietaryTags() []string {
	var tags []string
	if p.Vegetarian {
		tags = append(tags, DietaryVegetarian)
	}
	if p.Vegan {
		tags = append(tags, DietaryVegan)
	}
	if p.GlutenFree {
		tags = append(tags, DietaryGlutenFree)
	}
	if p.NutFree {
		tags = append(tags, DietaryNutFree)
	}
	if p.DairyFree {
		tags = append(tags, DietaryDairyFree)
	}
	if p.Spicy {
		tags = append(tags, DietarySpicy)
	}
	return tags
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bistro/internal/models"

	"github.com/jinzhu/gorm"
)

var (
	// ErrNotFound is returned for unknown users
	ErrNotFound = errors.New("user not found")
	// ErrInvalidRole is returned for roles other than user and admin
	ErrInvalidRole = errors.New("role must be user or admin")
)

// ProfileUpdate carries the editable profile fields; nil fields are kept
type ProfileUpdate struct {
	Name        *string             `json:"name"`
	Address     *string             `json:"address"`
	Preferences *models.Preferences `json:"preferences"`
}

// Service manages user profiles
type Service struct {
	db          *gorm.DB
	adminEmails map[string]bool
}

// NewService creates a user service. Users signing in with one of
// adminEmails start out as admins.
func NewService(db *gorm.DB, adminEmails []string) *Service {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			admins[e] = true
		}
	}
	return &Service{db: db, adminEmails: admins}
}

// Ensure returns the profile for id, creating it on first access
func (s *Service) Ensure(ctx context.Context, id, email, name string) (*models.User, error) {
	u, err := s.Get(ctx, id)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	u = &models.User{ID: id, Email: email, Name: name, Role: models.RoleUser}
	if s.adminEmails[strings.ToLower(email)] {
		u.Role = models.RoleAdmin
	}
	if err := s.db.Create(u).Error; err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", id, err)
	}
	return u, nil
}

// Get returns a user profile
func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.db.Where("id = ?", id).First(&u).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return &u, nil
}

// UpdateProfile applies the non-nil fields of upd
func (s *Service) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*models.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		u.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Address != nil {
		u.Address = strings.TrimSpace(*upd.Address)
	}
	if upd.Preferences != nil {
		u.Preferences = *upd.Preferences
	}
	// Save writes false booleans too, which Updates with a struct would skip
	if err := s.db.Save(u).Error; err != nil {
		return nil, fmt.Errorf("failed to update user %s: %w", id, err)
	}
	return u, nil
}

// List returns every user ordered by creation
func (s *Service) List(ctx context.Context) ([]models.User, error) {
	var list []models.User
	if err := s.db.Order("created_at").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return list, nil
}

// SetRole promotes or demotes a user
func (s *Service) SetRole(ctx context.Context, id, role string) (*models.User, error) {
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, ErrInvalidRole
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(u).Update("role", role).Error; err != nil {
		return nil, fmt.Errorf("failed to set role for %s: %w", id, err)
	}
	u.Role = role
	return u, nil
}

// IsAdmin reports whether id holds the admin role. Unknown users are not.
func (s *Service) IsAdmin(ctx context.Context, id string) (bool, error) {
	u, err := s.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.IsAdmin(), nil
}

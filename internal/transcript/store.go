package transcript

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bistro/internal/database"
	"bistro/internal/models"

	"github.com/jinzhu/gorm"
)

// ErrConversationNotFound is returned for unknown conversation ids
var ErrConversationNotFound = errors.New("conversation not found")

// Store persists conversations and their turns
type Store struct {
	db *gorm.DB
}

// NewStore creates a transcript store
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// CreateConversation saves a new conversation header
func (s *Store) CreateConversation(ctx context.Context, conv *models.Conversation) error {
	if err := s.db.Create(conv).Error; err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	return nil
}

// GetConversation returns a conversation header
func (s *Store) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	var conv models.Conversation
	if err := s.db.Where("id = ?", id).First(&conv).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to get conversation %s: %w", id, err)
	}
	return &conv, nil
}

// AppendTurn adds a turn at the end of a conversation's transcript
func (s *Store) AppendTurn(ctx context.Context, conversationID, role, text string) error {
	return database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var conv models.Conversation
		if err := tx.Where("id = ?", conversationID).First(&conv).Error; err != nil {
			if gorm.IsRecordNotFoundError(err) {
				return ErrConversationNotFound
			}
			return fmt.Errorf("failed to load conversation %s: %w", conversationID, err)
		}

		entry := models.TranscriptEntry{
			ConversationID: conversationID,
			Seq:            conv.Turns + 1,
			Role:           role,
			Content:        text,
			CreatedAt:      time.Now(),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to append turn: %w", err)
		}
		err := tx.Model(&conv).Updates(map[string]interface{}{
			"turns":      entry.Seq,
			"updated_at": entry.CreatedAt,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update conversation: %w", err)
		}
		return nil
	})
}

// Transcript returns the turns of a conversation in order
func (s *Store) Transcript(ctx context.Context, conversationID string) ([]models.TranscriptEntry, error) {
	var entries []models.TranscriptEntry
	err := s.db.Where("conversation_id = ?", conversationID).Order("seq").Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load transcript: %w", err)
	}
	return entries, nil
}

// ListByUser returns a user's conversations, most recently active first
func (s *Store) ListByUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := s.db.Where("user_id = ?", userID).Order("updated_at desc").Find(&convs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return convs, nil
}

package models

import "time"

// Conversation modes
const (
	ModeText  = "text"
	ModeVoice = "voice"
)

// Transcript roles
const (
	RoleAssistant = "assistant"
	RoleCustomer  = "user"
)

// Conversation is the persisted header of one ordering-assistant session
type Conversation struct {
	ID        string    `gorm:"primary_key" json:"id"`
	UserID    string    `gorm:"index" json:"user_id"`
	Mode      string    `json:"mode"`
	Turns     int       `json:"turns"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TranscriptEntry is one utterance in a conversation transcript
type TranscriptEntry struct {
	ID             uint      `gorm:"primary_key" json:"-"`
	ConversationID string    `gorm:"index" json:"conversation_id"`
	Seq            int       `json:"seq"`
	Role           string    `json:"role"`
	Content        string    `gorm:"type:text" json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

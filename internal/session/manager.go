package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"bistro/internal/dialogue"
	"bistro/internal/models"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned for unknown or expired conversations
	ErrNotFound = errors.New("conversation not found")
	// ErrInvalidMode is returned for modes other than text and voice
	ErrInvalidMode = errors.New("mode must be text or voice")
)

// ConversationStore persists conversation headers
type ConversationStore interface {
	CreateConversation(ctx context.Context, conv *models.Conversation) error
}

// Dependencies are shared by every conversation the manager creates.
// Classifier, Transcript, Conversations and Observer are optional.
type Dependencies struct {
	Catalog       dialogue.Catalog
	CartFor       func(cartKey string) dialogue.CartSink
	Conversations ConversationStore
	Transcript    dialogue.TranscriptWriter
	Classifier    dialogue.CategoryClassifier
	Observer      dialogue.Observer
}

// Session is one live conversation
type Session struct {
	ID        string
	UserID    string
	CartKey   string
	Mode      string
	CreatedAt time.Time

	mu     sync.Mutex
	engine *dialogue.Engine
	closed bool

	// unix nanos, read by Sweep without taking mu
	lastActive atomic.Int64
}

// AccessibleBy reports whether a caller may use the session. Signed-in
// conversations belong to their user; anonymous ones to their cart.
func (s *Session) AccessibleBy(userID, cartKey string) bool {
	if s.UserID != "" {
		return s.UserID == userID
	}
	return s.CartKey == cartKey
}

// State returns a snapshot of the dialogue state
func (s *Session) State() dialogue.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.State()
}

// Manager owns the live conversations
type Manager struct {
	deps        Dependencies
	idleTimeout time.Duration
	now         func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a manager. Conversations idle for longer than
// idleTimeout are dropped by Sweep; zero keeps them forever.
func NewManager(deps Dependencies, idleTimeout time.Duration) *Manager {
	return &Manager{
		deps:        deps,
		idleTimeout: idleTimeout,
		now:         time.Now,
		sessions:    make(map[string]*Session),
	}
}

// Create starts a conversation and returns it with its greeting
func (m *Manager) Create(ctx context.Context, userID, cartKey, mode string) (*Session, dialogue.Reply, error) {
	if mode == "" {
		mode = models.ModeText
	}
	var parser dialogue.IntentParser
	switch mode {
	case models.ModeText:
		parser = dialogue.KeywordParser{}
	case models.ModeVoice:
		parser = dialogue.VoiceParser{Classifier: m.deps.Classifier}
	default:
		return nil, dialogue.Reply{}, ErrInvalidMode
	}
	if cartKey == "" {
		cartKey = userID
	}

	now := m.now()
	id := uuid.New().String()
	if m.deps.Conversations != nil {
		conv := &models.Conversation{ID: id, UserID: userID, Mode: mode, CreatedAt: now, UpdatedAt: now}
		if err := m.deps.Conversations.CreateConversation(ctx, conv); err != nil {
			// the conversation still works, it just won't have a transcript
			log.Printf("session: failed to persist conversation %s: %v", id, err)
		}
	}

	s := &Session{
		ID:        id,
		UserID:    userID,
		CartKey:   cartKey,
		Mode:      mode,
		CreatedAt: now,
		engine: dialogue.NewEngine(dialogue.Config{
			ConversationID: id,
			Catalog:        m.deps.Catalog,
			Parser:         parser,
			Cart:           m.deps.CartFor(cartKey),
			Transcript:     m.deps.Transcript,
			Observer:       m.deps.Observer,
		}),
	}
	s.lastActive.Store(now.UnixNano())

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	s.mu.Lock()
	greeting := s.engine.Greet(ctx)
	s.mu.Unlock()
	return s, greeting, nil
}

// Get returns a live conversation
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Handle runs one turn. Turns of the same conversation are processed one
// at a time, whichever transport they arrive on.
func (m *Manager) Handle(ctx context.Context, id, text string) (dialogue.Reply, error) {
	s, err := m.Get(id)
	if err != nil {
		return dialogue.Reply{}, err
	}

	s.lastActive.Store(m.now().UnixNano())
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return dialogue.Reply{}, ErrNotFound
	}
	reply := s.engine.Handle(ctx, text)
	s.lastActive.Store(m.now().UnixNano())
	return reply, nil
}

// Close ends a conversation and discards its state
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Count returns the number of live conversations
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep drops conversations idle for longer than the idle timeout and
// returns how many were dropped
func (m *Manager) Sweep() int {
	if m.idleTimeout <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.idleTimeout).UnixNano()

	m.mu.RLock()
	var expired []string
	for id, s := range m.sessions {
		if s.lastActive.Load() < cutoff {
			expired = append(expired, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range expired {
		_ = m.Close(id)
	}
	if len(expired) > 0 {
		log.Printf("session: expired %d idle conversations", len(expired))
	}
	return len(expired)
}

// Run sweeps idle conversations every interval until ctx is done
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("invalid sweep interval %s", interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Sweep()
		}
	}
}

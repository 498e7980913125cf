package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bistro/internal/models"
)

var (
	// ErrInvalidChat is returned for histories a model cannot continue
	ErrInvalidChat = errors.New("chat must end with a user message and use only user and assistant roles")
	// ErrNoDish is returned when the model sees no food in a photo
	ErrNoDish = errors.New("no dish recognised in the image")
)

// maxChatHistory bounds how many earlier messages are sent along
const maxChatHistory = 20

const menuChatPrompt = `You are the assistant of AI Bistro, a restaurant that takes orders online.
Help guests find dishes, recommend items and answer questions about ingredients and allergens.
Respect any dietary preference the guest mentions (vegetarian, vegan, gluten-free and so on).
Only recommend dishes from the menu below and quote their prices exactly.
To order, guests can say which category they want, pick a dish, give a quantity and confirm; suggest complementary items along the way.
Be friendly and concise.

Menu:
%s`

const dishPrompt = `What food dish is shown in this image? Respond with just the name of the dish in a single word or short phrase. If there is no food in the image, respond with none.`

// MenuChat answers free-form questions about the menu
type MenuChat struct {
	chatter Chatter
	timeout time.Duration
}

// NewMenuChat creates a menu chat. A zero timeout leaves the caller's
// deadline in charge.
func NewMenuChat(c Chatter, timeout time.Duration) *MenuChat {
	return &MenuChat{chatter: c, timeout: timeout}
}

// Reply continues history with the current menu as context. Only the
// last maxChatHistory messages are sent.
func (m *MenuChat) Reply(ctx context.Context, items []models.MenuItem, history []Message) (string, error) {
	if len(history) == 0 || history[len(history)-1].Role != RoleUser {
		return "", ErrInvalidChat
	}
	for _, msg := range history {
		if msg.Role != RoleUser && msg.Role != RoleAssistant {
			return "", ErrInvalidChat
		}
		if strings.TrimSpace(msg.Content) == "" {
			return "", ErrInvalidChat
		}
	}
	if len(history) > maxChatHistory {
		history = history[len(history)-maxChatHistory:]
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	messages := make([]Message, 0, len(history)+1)
	messages = append(messages, Message{Role: RoleSystem, Content: fmt.Sprintf(menuChatPrompt, DescribeMenu(items))})
	messages = append(messages, history...)

	reply, err := m.chatter.Chat(ctx, messages)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// DescribeMenu renders items one per line for a model prompt
func DescribeMenu(items []models.MenuItem) string {
	var b strings.Builder
	for _, it := range items {
		fmt.Fprintf(&b, "%s: %s. Price: $%s. Category: %s.", it.Name, it.Description, it.Price.StringFixed(2), it.Category)
		if len(it.Dietary) > 0 {
			fmt.Fprintf(&b, " Dietary: %s.", strings.Join(it.Dietary, ", "))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// DishRecognizer names the dish shown in a photo
type DishRecognizer struct {
	describer ImageDescriber
	timeout   time.Duration
}

// NewDishRecognizer creates a recognizer. A zero timeout leaves the
// caller's deadline in charge.
func NewDishRecognizer(d ImageDescriber, timeout time.Duration) *DishRecognizer {
	return &DishRecognizer{describer: d, timeout: timeout}
}

// Recognize returns the dish name the model reads from image
func (r *DishRecognizer) Recognize(ctx context.Context, image []byte, mimeType string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	answer, err := r.describer.DescribeImage(ctx, dishPrompt, image, mimeType)
	if err != nil {
		return "", err
	}
	name := strings.TrimSpace(answer)
	name = strings.Trim(name, "\"'`.!")
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "none") {
		return "", ErrNoDish
	}
	return name, nil
}

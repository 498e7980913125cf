package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bistro/internal/dialogue"
	"bistro/internal/models"
)

const classifyPrompt = `You are the voice ordering assistant of a restaurant.
Decide which menu category the customer is asking about.
Answer with exactly one of: %s, or none if no category fits.

Customer said: "%s"`

// Classifier asks a language model for the category of a voice request
type Classifier struct {
	completer Completer
	timeout   time.Duration
}

// NewClassifier creates a classifier. A zero timeout leaves the caller's
// deadline in charge.
func NewClassifier(c Completer, timeout time.Duration) *Classifier {
	return &Classifier{completer: c, timeout: timeout}
}

// ClassifyCategory implements dialogue.CategoryClassifier. An answer
// naming no known category yields an empty category and no error.
func (c *Classifier) ClassifyCategory(ctx context.Context, text string) (models.MenuCategory, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	names := make([]string, len(models.MenuCategories))
	for i, cat := range models.MenuCategories {
		names[i] = string(cat)
	}
	answer, err := c.completer.Complete(ctx, fmt.Sprintf(classifyPrompt, strings.Join(names, ", "), text))
	if err != nil {
		return "", err
	}
	return ParseCategory(answer), nil
}

// ParseCategory reads a category out of a model answer
func ParseCategory(answer string) models.MenuCategory {
	clean := strings.ToLower(strings.TrimSpace(answer))
	clean = strings.Trim(clean, "\"'`.!")
	if cat, ok := models.ParseMenuCategory(clean); ok {
		return cat
	}
	// models sometimes answer in a sentence or with a singular
	if cat, ok := dialogue.MatchCategory(clean); ok {
		return cat
	}
	return ""
}

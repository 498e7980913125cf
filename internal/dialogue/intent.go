package dialogue

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"bistro/internal/models"
)

// IntentKind classifies an utterance relative to the current phase
type IntentKind string

const (
	// Intent kinds
	IntentCategory   IntentKind = "category"
	IntentSelectItem IntentKind = "selectItem"
	IntentQuantity   IntentKind = "quantity"
	IntentMore       IntentKind = "more"
	IntentConfirm    IntentKind = "confirm"
	IntentUnknown    IntentKind = "unknown"
)

// Intent is the parsed meaning of one customer turn
type Intent struct {
	Kind     IntentKind
	Category models.MenuCategory
	// Number holds the ordinal for selectItem and the count for quantity
	Number int
	// Yes holds the answer for more and confirm
	Yes bool
}

// Unknown is the intent for anything outside the phase's grammar
var Unknown = Intent{Kind: IntentUnknown}

// IntentParser turns raw text into an Intent for the given phase
type IntentParser interface {
	Parse(ctx context.Context, text string, phase Phase) Intent
}

type categoryKeyword struct {
	keywords []string
	category models.MenuCategory
}

// checked in order, first hit wins
var categoryKeywords = []categoryKeyword{
	{[]string{"pizza"}, models.MenuCategoryPizzas},
	{[]string{"salad"}, models.MenuCategorySalads},
	{[]string{"pasta"}, models.MenuCategoryPastas},
	{[]string{"appetizer", "starter"}, models.MenuCategoryAppetizers},
	{[]string{"dessert"}, models.MenuCategoryDesserts},
	{[]string{"main", "entree"}, models.MenuCategoryMainCourses},
	{[]string{"drink", "beverage"}, models.MenuCategoryDrinks},
}

var numberPattern = regexp.MustCompile(`[-+]?\d+(\.\d+)?`)

// KeywordParser recognises typed chat input with fixed keyword tables
type KeywordParser struct{}

// Parse implements IntentParser
func (KeywordParser) Parse(_ context.Context, text string, phase Phase) Intent {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return Unknown
	}

	switch phase {
	case PhaseInitial:
		if c, ok := MatchCategory(lower); ok {
			return Intent{Kind: IntentCategory, Category: c}
		}
	case PhasePresentingOptions:
		if n, ok := ExtractPositiveInt(lower); ok {
			return Intent{Kind: IntentSelectItem, Number: n}
		}
	case PhaseAwaitingQuantity:
		if n, ok := ExtractPositiveInt(lower); ok {
			return Intent{Kind: IntentQuantity, Number: n}
		}
	case PhaseAwaitingMore:
		if yes, ok := yesNo(lower, nil, nil); ok {
			return Intent{Kind: IntentMore, Yes: yes}
		}
	case PhaseAwaitingConfirmation:
		if yes, ok := yesNo(lower, []string{"confirm"}, []string{"cancel"}); ok {
			return Intent{Kind: IntentConfirm, Yes: yes}
		}
	}
	return Unknown
}

// MatchCategory finds the category named anywhere in text
func MatchCategory(text string) (models.MenuCategory, bool) {
	lower := strings.ToLower(text)
	for _, ck := range categoryKeywords {
		for _, kw := range ck.keywords {
			if strings.Contains(lower, kw) {
				return ck.category, true
			}
		}
	}
	return "", false
}

// ExtractPositiveInt returns the first number in text when it is a
// whole number of at least one
func ExtractPositiveInt(text string) (int, bool) {
	m := numberPattern.FindString(text)
	if m == "" || strings.Contains(m, ".") {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// yesNo checks affirmatives first so "yes, no problem" reads as yes
func yesNo(lower string, extraYes, extraNo []string) (bool, bool) {
	if strings.Contains(lower, "yes") || strings.Contains(lower, "yeah") || lower == "y" {
		return true, true
	}
	for _, w := range extraYes {
		if strings.Contains(lower, w) {
			return true, true
		}
	}
	if strings.Contains(lower, "no") || strings.Contains(lower, "nope") || lower == "n" {
		return false, true
	}
	for _, w := range extraNo {
		if strings.Contains(lower, w) {
			return false, true
		}
	}
	return false, false
}

package dialogue

import (
	"context"
	"errors"
	"testing"

	"bistro/internal/menu"
	"bistro/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordParser(t *testing.T) {
	p := KeywordParser{}
	ctx := context.Background()

	tests := []struct {
		name  string
		text  string
		phase Phase
		want  Intent
	}{
		{"pizza", "I want a PIZZA", PhaseInitial, Intent{Kind: IntentCategory, Category: models.MenuCategoryPizzas}},
		{"starter", "any starters?", PhaseInitial, Intent{Kind: IntentCategory, Category: models.MenuCategoryAppetizers}},
		{"entree", "show me an entree", PhaseInitial, Intent{Kind: IntentCategory, Category: models.MenuCategoryMainCourses}},
		{"beverage", "a cold beverage", PhaseInitial, Intent{Kind: IntentCategory, Category: models.MenuCategoryDrinks}},
		{"first keyword wins", "pizza or salad", PhaseInitial, Intent{Kind: IntentCategory, Category: models.MenuCategoryPizzas}},
		{"category outside initial", "pizza", PhaseAwaitingMore, Unknown},
		{"no category", "hello", PhaseInitial, Unknown},
		{"empty", "   ", PhaseInitial, Unknown},
		{"ordinal", "number 2 please", PhasePresentingOptions, Intent{Kind: IntentSelectItem, Number: 2}},
		{"ordinal zero", "0", PhasePresentingOptions, Unknown},
		{"quantity", "3", PhaseAwaitingQuantity, Intent{Kind: IntentQuantity, Number: 3}},
		{"negative quantity", "-3", PhaseAwaitingQuantity, Unknown},
		{"fractional quantity", "2.5", PhaseAwaitingQuantity, Unknown},
		{"word quantity", "abc", PhaseAwaitingQuantity, Unknown},
		{"more yes", "Yeah sure", PhaseAwaitingMore, Intent{Kind: IntentMore, Yes: true}},
		{"more y", "y", PhaseAwaitingMore, Intent{Kind: IntentMore, Yes: true}},
		{"more no", "nope", PhaseAwaitingMore, Intent{Kind: IntentMore}},
		{"more n", "N", PhaseAwaitingMore, Intent{Kind: IntentMore}},
		{"more ambiguous", "maybe", PhaseAwaitingMore, Unknown},
		{"yes beats no", "yes, no problem", PhaseAwaitingMore, Intent{Kind: IntentMore, Yes: true}},
		{"confirm word", "Confirm", PhaseAwaitingConfirmation, Intent{Kind: IntentConfirm, Yes: true}},
		{"cancel word", "cancel it", PhaseAwaitingConfirmation, Intent{Kind: IntentConfirm}},
		{"confirm only in confirmation", "confirm", PhaseAwaitingMore, Unknown},
		{"number in initial", "2", PhaseInitial, Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Parse(ctx, tt.text, tt.phase))
		})
	}
}

func TestExtractPositiveInt(t *testing.T) {
	n, ok := ExtractPositiveInt("give me 12 of them, maybe 3")
	require.True(t, ok)
	assert.Equal(t, 12, n)

	for _, s := range []string{"", "none", "0", "-1", "3.0", "99999999999999999999999"} {
		_, ok := ExtractPositiveInt(s)
		assert.False(t, ok, s)
	}
}

type fakeClassifier struct {
	category models.MenuCategory
	err      error
	calls    int
}

func (f *fakeClassifier) ClassifyCategory(context.Context, string) (models.MenuCategory, error) {
	f.calls++
	return f.category, f.err
}

func TestNormalizeSpeech(t *testing.T) {
	assert.Equal(t, "2", NormalizeSpeech("Um, two."))
	assert.Equal(t, "i'd like the 2 1", NormalizeSpeech("uh I'd like the second one"))
	assert.Equal(t, "yes please", NormalizeSpeech("Yep please!"))
	assert.Equal(t, "", NormalizeSpeech("umm... uh"))
}

func TestVoiceParser(t *testing.T) {
	ctx := context.Background()

	t.Run("spoken numbers", func(t *testing.T) {
		p := VoiceParser{}
		assert.Equal(t, Intent{Kind: IntentQuantity, Number: 3}, p.Parse(ctx, "Three, please.", PhaseAwaitingQuantity))
		assert.Equal(t, Intent{Kind: IntentSelectItem, Number: 2}, p.Parse(ctx, "uh the second", PhasePresentingOptions))
		assert.Equal(t, Unknown, p.Parse(ctx, "zero", PhaseAwaitingQuantity))
	})

	t.Run("sure is an answer only on its own", func(t *testing.T) {
		p := VoiceParser{}
		assert.Equal(t, Intent{Kind: IntentConfirm, Yes: true}, p.Parse(ctx, "Sure.", PhaseAwaitingConfirmation))
		assert.Equal(t, Intent{Kind: IntentMore, Yes: true}, p.Parse(ctx, "um, sure", PhaseAwaitingMore))

		got := p.Parse(ctx, "I'm not sure", PhaseAwaitingConfirmation)
		assert.False(t, got.Yes)
		got = p.Parse(ctx, "not sure", PhaseAwaitingMore)
		assert.False(t, got.Yes)

		assert.Equal(t, Intent{Kind: IntentMore, Yes: false}, p.Parse(ctx, "That's all.", PhaseAwaitingMore))
	})

	t.Run("keywords win over classifier", func(t *testing.T) {
		c := &fakeClassifier{category: models.MenuCategoryDesserts}
		p := VoiceParser{Classifier: c}
		assert.Equal(t, models.MenuCategoryPizzas, p.Parse(ctx, "a pizza", PhaseInitial).Category)
		assert.Zero(t, c.calls)
	})

	t.Run("classifier fills in at start", func(t *testing.T) {
		c := &fakeClassifier{category: models.MenuCategoryDesserts}
		p := VoiceParser{Classifier: c}
		got := p.Parse(ctx, "something sweet", PhaseInitial)
		assert.Equal(t, Intent{Kind: IntentCategory, Category: models.MenuCategoryDesserts}, got)
		assert.Equal(t, 1, c.calls)
	})

	t.Run("classifier not consulted later in the flow", func(t *testing.T) {
		c := &fakeClassifier{category: models.MenuCategoryDesserts}
		p := VoiceParser{Classifier: c}
		assert.Equal(t, Unknown, p.Parse(ctx, "something sweet", PhaseAwaitingMore))
		assert.Zero(t, c.calls)
	})

	t.Run("classifier failure is unknown", func(t *testing.T) {
		p := VoiceParser{Classifier: &fakeClassifier{err: errors.New("timeout")}}
		assert.Equal(t, Unknown, p.Parse(ctx, "something sweet", PhaseInitial))

		p = VoiceParser{Classifier: &fakeClassifier{category: "soups"}}
		assert.Equal(t, Unknown, p.Parse(ctx, "something warm", PhaseInitial))
	})
}

func TestVoiceConversationUsesSameEngine(t *testing.T) {
	cart := &fakeCart{}
	e := NewEngine(Config{
		ConversationID: "voice-1",
		Catalog:        menu.StaticCatalog{},
		Parser:         VoiceParser{Classifier: &fakeClassifier{category: models.MenuCategorySalads}},
		Cart:           cart,
	})

	r := say(t, e, "um, something healthy", "the first one", "two", "nah", "yep")
	assert.True(t, r.Completed)
	assert.Equal(t, []cartCall{{"4", 2}}, cart.calls)
}

package dialogue

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"bistro/internal/menu"
	"bistro/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cartCall struct {
	itemID   string
	quantity int
}

type fakeCart struct {
	calls []cartCall
	err   error
}

func (c *fakeCart) AddLine(_ context.Context, itemID string, quantity int) error {
	c.calls = append(c.calls, cartCall{itemID, quantity})
	return c.err
}

type turn struct {
	role string
	text string
}

type fakeTranscript struct {
	mu    sync.Mutex
	turns []turn
	err   error
}

func (t *fakeTranscript) AppendTurn(_ context.Context, _, role, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return t.err
	}
	t.turns = append(t.turns, turn{role, text})
	return nil
}

type failingCatalog struct{}

func (failingCatalog) ListItems(context.Context, string) ([]models.MenuItem, error) {
	return nil, errors.New("database unavailable")
}

type countingObserver struct {
	turns  map[string]int
	orders int
}

func (o *countingObserver) ObserveTurn(_, intent string) {
	if o.turns == nil {
		o.turns = map[string]int{}
	}
	o.turns[intent]++
}

func (o *countingObserver) ObserveOrder(int, float64) {
	o.orders++
}

func newTestEngine(t *testing.T) (*Engine, *fakeCart, *fakeTranscript) {
	t.Helper()
	cart := &fakeCart{}
	transcript := &fakeTranscript{}
	e := NewEngine(Config{
		ConversationID: "conv-1",
		Catalog:        menu.StaticCatalog{},
		Parser:         KeywordParser{},
		Cart:           cart,
		Transcript:     transcript,
	})
	return e, cart, transcript
}

func say(t *testing.T, e *Engine, inputs ...string) Reply {
	t.Helper()
	var r Reply
	for _, in := range inputs {
		r = e.Handle(context.Background(), in)
	}
	return r
}

func TestPizzaScenario(t *testing.T) {
	e, cart, _ := newTestEngine(t)
	ctx := context.Background()

	r := e.Handle(ctx, "I want a pizza")
	assert.Equal(t, PhasePresentingOptions, r.Phase)
	assert.Contains(t, r.Text, "1. Margherita Pizza - $12.99")
	assert.Contains(t, r.Text, "2. Pepperoni Pizza - $14.99")
	assert.Contains(t, r.Text, "3. Vegetarian Pizza - $13.99")
	assert.Len(t, e.State().Options(), 3)

	r = e.Handle(ctx, "1")
	assert.Equal(t, PhaseAwaitingQuantity, r.Phase)
	require.NotNil(t, e.State().PendingItem)
	assert.Equal(t, "Margherita Pizza", e.State().PendingItem.Name)

	r = e.Handle(ctx, "2")
	assert.Equal(t, PhaseAwaitingMore, r.Phase)
	require.Len(t, r.Draft, 1)
	assert.Equal(t, 2, r.Draft[0].Quantity)
	assert.Nil(t, e.State().PendingItem)

	r = e.Handle(ctx, "no")
	assert.Equal(t, PhaseAwaitingConfirmation, r.Phase)
	assert.Contains(t, r.Text, "2 x Margherita Pizza - $25.98")
	assert.Contains(t, r.Text, "Total: $25.98")
	assert.Equal(t, "25.98", r.Total.StringFixed(2))

	r = e.Handle(ctx, "yes")
	assert.True(t, r.Completed)
	assert.Equal(t, PhaseCompleted, r.Phase)
	assert.Equal(t, []cartCall{{"1", 2}}, cart.calls)
	assert.Contains(t, r.Text, "Your total is $25.98")
	require.Len(t, r.Confirmed, 1)

	st := e.State()
	assert.Equal(t, PhaseInitial, st.Phase)
	assert.Empty(t, st.Lines)
	assert.True(t, st.Total().IsZero())
}

func TestReconfirmAfterCompletionAddsNothing(t *testing.T) {
	e, cart, _ := newTestEngine(t)

	r := say(t, e, "pizza", "1", "2", "no", "yes")
	require.True(t, r.Completed)
	require.Len(t, cart.calls, 1)

	r = say(t, e, "yes")
	assert.False(t, r.Completed)
	assert.Equal(t, PhaseInitial, r.Phase)
	assert.Equal(t, IntentUnknown, r.Intent)
	assert.Len(t, cart.calls, 1)
}

func TestOrdinalRange(t *testing.T) {
	for _, input := range []string{"0", "4", "abc", "-1", "1.5"} {
		t.Run(input, func(t *testing.T) {
			e, _, _ := newTestEngine(t)
			say(t, e, "pizza")
			before := e.State()

			r := say(t, e, input)
			assert.Equal(t, PhasePresentingOptions, r.Phase)
			assert.Equal(t, IntentUnknown, r.Intent)
			assert.Equal(t, "I couldn't find that item. Please try again.", r.Text)
			assert.Nil(t, e.State().PendingItem)
			assert.Equal(t, before.Options(), e.State().Options())
		})
	}

	e, _, _ := newTestEngine(t)
	r := say(t, e, "pizza", "3")
	assert.Equal(t, PhaseAwaitingQuantity, r.Phase)
	assert.Equal(t, "Vegetarian Pizza", e.State().PendingItem.Name)
}

func TestQuantityRejectsInvalid(t *testing.T) {
	for _, input := range []string{"0", "-3", "abc", "2.5"} {
		t.Run(input, func(t *testing.T) {
			e, _, _ := newTestEngine(t)
			say(t, e, "salad", "2")

			r := say(t, e, input)
			assert.Equal(t, PhaseAwaitingQuantity, r.Phase)
			assert.Equal(t, "How many Greek Salad would you like? (Please enter a number)", r.Text)
			assert.Empty(t, r.Draft)
			require.NotNil(t, e.State().PendingItem)
		})
	}
}

func TestCancelThenRestartKeepsDraft(t *testing.T) {
	e, cart, _ := newTestEngine(t)

	r := say(t, e, "dessert", "1", "3", "no")
	require.Equal(t, PhaseAwaitingConfirmation, r.Phase)
	summary := r.Text

	r = say(t, e, "no")
	assert.Equal(t, PhaseAwaitingMore, r.Phase)
	assert.Equal(t, "Order canceled. Would you like to start over? (yes/no)", r.Text)
	assert.Len(t, r.Draft, 1)

	r = say(t, e, "no")
	assert.Equal(t, PhaseAwaitingConfirmation, r.Phase)
	assert.Equal(t, summary, r.Text)
	assert.Empty(t, cart.calls)
}

func TestMultipleLinesTotal(t *testing.T) {
	e, cart, _ := newTestEngine(t)

	r := say(t, e,
		"pizza please", "2", "1",
		"yeah", "something from the starters", "1", "3",
		"y", "pasta", "2", "2",
		"nope",
	)
	require.Equal(t, PhaseAwaitingConfirmation, r.Phase)

	// 14.99 + 3 x 4.99 + 2 x 14.99
	expected := decimal.RequireFromString("59.94")
	assert.True(t, expected.Equal(r.Total), "total %s", r.Total)

	sum := decimal.Zero
	for _, l := range r.Draft {
		sum = sum.Add(l.Item.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	assert.True(t, sum.Equal(r.Total))
	assert.Contains(t, r.Text, "Total: $59.94")
	assert.Contains(t, r.Text, "1. 1 x Pepperoni Pizza - $14.99")
	assert.Contains(t, r.Text, "2. 3 x Garlic Bread - $14.97")
	assert.Contains(t, r.Text, "3. 2 x Fettuccine Alfredo - $29.98")

	say(t, e, "confirm")
	assert.Equal(t, []cartCall{{"2", 1}, {"8", 3}, {"7", 2}}, cart.calls)
}

func TestUnknownLeavesStateUntouched(t *testing.T) {
	e, _, _ := newTestEngine(t)

	r := say(t, e, "hello there")
	assert.Equal(t, PhaseInitial, r.Phase)
	assert.Equal(t, clarifyText, r.Text)

	say(t, e, "pasta", "1", "1")
	before := e.State()
	r = say(t, e, "maybe")
	assert.Equal(t, PhaseAwaitingMore, r.Phase)
	assert.Equal(t, askMoreText, r.Text)
	assert.Equal(t, before, e.State())

	say(t, e, "no")
	r = say(t, e, "hmm")
	assert.Equal(t, PhaseAwaitingConfirmation, r.Phase)
	assert.Equal(t, askConfirmText, r.Text)
}

func TestCategoryOnlyRecognisedAtStart(t *testing.T) {
	e, _, _ := newTestEngine(t)

	r := say(t, e, "pizza", "salad")
	assert.Equal(t, PhasePresentingOptions, r.Phase)
	assert.Equal(t, models.MenuCategoryPizzas, e.State().PendingCategory)
}

func TestEmptyCategoryStaysInitial(t *testing.T) {
	e, _, _ := newTestEngine(t)

	r := say(t, e, "something to drink")
	assert.Equal(t, PhaseInitial, r.Phase)
	assert.Equal(t, "Sorry, we don't have any drinks available right now.", r.Text)
}

func TestCatalogFailureIsNotFatal(t *testing.T) {
	cart := &fakeCart{}
	e := NewEngine(Config{ConversationID: "c", Catalog: failingCatalog{}, Cart: cart})

	r := say(t, e, "pizza")
	assert.Equal(t, PhaseInitial, r.Phase)
	assert.Contains(t, r.Text, "Sorry")

	// with the fallback catalog the conversation carries on
	e = NewEngine(Config{ConversationID: "c", Catalog: menu.FallbackCatalog{Primary: failingCatalog{}}, Cart: cart})
	r = say(t, e, "pizza")
	assert.Equal(t, PhasePresentingOptions, r.Phase)
}

func TestTranscriptRecordsBothRoles(t *testing.T) {
	e, _, transcript := newTestEngine(t)
	ctx := context.Background()

	e.Greet(ctx)
	e.Handle(ctx, "pizza")

	require.Len(t, transcript.turns, 3)
	assert.Equal(t, turn{models.RoleAssistant, greetingText}, transcript.turns[0])
	assert.Equal(t, turn{models.RoleCustomer, "pizza"}, transcript.turns[1])
	assert.Equal(t, models.RoleAssistant, transcript.turns[2].role)
	// multi-line replies are stored verbatim
	assert.Equal(t, 5, strings.Count(transcript.turns[2].text, "\n"))
}

func TestTranscriptFailureDoesNotBlockTransition(t *testing.T) {
	e, cart, transcript := newTestEngine(t)
	transcript.err = errors.New("disk full")

	r := say(t, e, "pizza", "2", "1", "no", "yes")
	assert.True(t, r.Completed)
	assert.Len(t, cart.calls, 1)
}

func TestCartFailureIsLoggedAndSkipped(t *testing.T) {
	e, cart, _ := newTestEngine(t)
	cart.err = errors.New("cart offline")

	r := say(t, e, "pizza", "1", "1", "yes", "salad", "1", "1", "no", "yes")
	assert.True(t, r.Completed)
	assert.Len(t, cart.calls, 2)
	assert.Equal(t, PhaseInitial, e.State().Phase)
}

func TestObserverSeesTurns(t *testing.T) {
	obs := &countingObserver{}
	e := NewEngine(Config{ConversationID: "c", Catalog: menu.StaticCatalog{}, Cart: &fakeCart{}, Observer: obs})

	say(t, e, "pizza", "9", "1", "1", "no", "yes")
	assert.Equal(t, 1, obs.turns[string(IntentCategory)])
	assert.Equal(t, 1, obs.turns[string(IntentUnknown)])
	assert.Equal(t, 1, obs.orders)
}

func TestStateIsACopy(t *testing.T) {
	e, _, _ := newTestEngine(t)
	say(t, e, "pizza", "1", "2")

	st := e.State()
	st.Lines[0].Quantity = 99
	assert.Equal(t, 2, e.State().Lines[0].Quantity)
}

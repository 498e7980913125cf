package dialogue

import (
	"context"
	"log"
	"strings"

	"bistro/internal/models"

	"github.com/shopspring/decimal"
)

// Catalog lists the menu items of a category
type Catalog interface {
	ListItems(ctx context.Context, category string) ([]models.MenuItem, error)
}

// CartSink receives confirmed draft lines
type CartSink interface {
	AddLine(ctx context.Context, itemID string, quantity int) error
}

// TranscriptWriter persists conversation turns
type TranscriptWriter interface {
	AppendTurn(ctx context.Context, conversationID, role, text string) error
}

// Observer is notified of processed turns, typically for metrics
type Observer interface {
	ObserveTurn(phase, intent string)
	ObserveOrder(lines int, total float64)
}

// Config wires an Engine to its collaborators. Transcript and Observer
// are optional.
type Config struct {
	ConversationID string
	Catalog        Catalog
	Parser         IntentParser
	Cart           CartSink
	Transcript     TranscriptWriter
	Observer       Observer
}

// Reply is the result of one turn
type Reply struct {
	Text      string          `json:"reply"`
	Phase     Phase           `json:"phase"`
	Intent    IntentKind      `json:"intent"`
	Draft     []DraftLine     `json:"draft"`
	Total     decimal.Decimal `json:"total"`
	Completed bool            `json:"completed"`
	// Confirmed lists the lines handed to the cart when Completed is set
	Confirmed []DraftLine `json:"confirmed,omitempty"`
}

// Engine runs the ordering dialogue for a single conversation. It is
// not safe for concurrent use; callers serialise turns.
type Engine struct {
	id         string
	catalog    Catalog
	parser     IntentParser
	cart       CartSink
	transcript TranscriptWriter
	observer   Observer
	state      State
}

// NewEngine creates an engine in the INITIAL phase
func NewEngine(cfg Config) *Engine {
	parser := cfg.Parser
	if parser == nil {
		parser = KeywordParser{}
	}
	return &Engine{
		id:         cfg.ConversationID,
		catalog:    cfg.Catalog,
		parser:     parser,
		cart:       cfg.Cart,
		transcript: cfg.Transcript,
		observer:   cfg.Observer,
		state:      State{Phase: PhaseInitial},
	}
}

// ConversationID returns the id turns are recorded under
func (e *Engine) ConversationID() string {
	return e.id
}

// State returns a copy of the current state
func (e *Engine) State() State {
	return e.state.clone()
}

// Greet emits the opening assistant turn
func (e *Engine) Greet(ctx context.Context) Reply {
	e.record(ctx, models.RoleAssistant, greetingText)
	return e.reply(greetingText, IntentUnknown)
}

// Handle processes one customer utterance and returns the assistant reply
func (e *Engine) Handle(ctx context.Context, text string) Reply {
	e.record(ctx, models.RoleCustomer, text)

	intent := e.parser.Parse(ctx, text, e.state.Phase)
	var r Reply
	switch {
	case intent.Kind == IntentCategory && e.state.Phase == PhaseInitial:
		r = e.presentOptions(ctx, intent.Category)
	case intent.Kind == IntentSelectItem && e.state.Phase == PhasePresentingOptions:
		r = e.selectItem(intent.Number)
	case intent.Kind == IntentQuantity && e.state.Phase == PhaseAwaitingQuantity && e.state.PendingItem != nil:
		r = e.addLine(intent.Number)
	case intent.Kind == IntentMore && e.state.Phase == PhaseAwaitingMore:
		r = e.more(intent.Yes)
	case intent.Kind == IntentConfirm && e.state.Phase == PhaseAwaitingConfirmation:
		r = e.confirm(ctx, intent.Yes)
	default:
		r = e.reply(e.reprompt(), IntentUnknown)
	}

	if e.observer != nil {
		e.observer.ObserveTurn(string(r.Phase), string(r.Intent))
	}
	e.record(ctx, models.RoleAssistant, r.Text)
	return r
}

func (e *Engine) presentOptions(ctx context.Context, category models.MenuCategory) Reply {
	items, err := e.catalog.ListItems(ctx, string(category))
	if err != nil {
		log.Printf("dialogue: failed to list %s for %s: %v", category, e.id, err)
		items = nil
	}
	if len(items) == 0 {
		return e.reply(emptyCategoryText(category), IntentCategory)
	}

	e.state.Phase = PhasePresentingOptions
	e.state.PendingCategory = category
	e.state.options = items
	return e.reply(optionsText(category, items), IntentCategory)
}

func (e *Engine) selectItem(ordinal int) Reply {
	if ordinal < 1 || ordinal > len(e.state.options) {
		return e.reply(itemMissingText, IntentUnknown)
	}
	item := e.state.options[ordinal-1]
	e.state.PendingItem = &item
	e.state.Phase = PhaseAwaitingQuantity
	return e.reply(askQuantityText(item), IntentSelectItem)
}

func (e *Engine) addLine(quantity int) Reply {
	item := *e.state.PendingItem
	e.state.Lines = append(e.state.Lines, DraftLine{Item: item, Quantity: quantity})
	e.state.PendingItem = nil
	e.state.PendingCategory = ""
	e.state.options = nil
	e.state.Phase = PhaseAwaitingMore
	return e.reply(addedText(quantity, item), IntentQuantity)
}

func (e *Engine) more(yes bool) Reply {
	if yes {
		e.state.Phase = PhaseInitial
		return e.reply(nextCategory, IntentMore)
	}
	e.state.Phase = PhaseAwaitingConfirmation
	return e.reply(summaryText(e.state.Lines, e.state.Total()), IntentMore)
}

func (e *Engine) confirm(ctx context.Context, yes bool) Reply {
	if !yes {
		e.state.Phase = PhaseAwaitingMore
		return e.reply(canceledText, IntentConfirm)
	}

	// Complete and clear before handing off, so a repeated "yes" finds an
	// empty draft in INITIAL and adds nothing.
	lines := e.state.Lines
	total := e.state.Total()
	e.state.reset()

	for _, l := range lines {
		if err := e.cart.AddLine(ctx, l.Item.ID, l.Quantity); err != nil {
			log.Printf("dialogue: failed to add %s x%d to cart for %s: %v", l.Item.ID, l.Quantity, e.id, err)
		}
	}
	if e.observer != nil {
		f, _ := total.Float64()
		e.observer.ObserveOrder(len(lines), f)
	}

	r := e.reply(completedText(total), IntentConfirm)
	r.Phase = PhaseCompleted
	r.Completed = true
	r.Confirmed = lines
	return r
}

func (e *Engine) reprompt() string {
	switch e.state.Phase {
	case PhasePresentingOptions:
		return itemMissingText
	case PhaseAwaitingQuantity:
		if e.state.PendingItem != nil {
			return askQuantityText(*e.state.PendingItem)
		}
	case PhaseAwaitingMore:
		return askMoreText
	case PhaseAwaitingConfirmation:
		return askConfirmText
	}
	return clarifyText
}

func (e *Engine) reply(text string, kind IntentKind) Reply {
	return Reply{
		Text:   text,
		Phase:  e.state.Phase,
		Intent: kind,
		Draft:  append([]DraftLine(nil), e.state.Lines...),
		Total:  e.state.Total(),
	}
}

func (e *Engine) record(ctx context.Context, role, text string) {
	if e.transcript == nil || strings.TrimSpace(text) == "" {
		return
	}
	if err := e.transcript.AppendTurn(ctx, e.id, role, text); err != nil {
		log.Printf("dialogue: failed to record %s turn for %s: %v", role, e.id, err)
	}
}

package dialogue

import (
	"bistro/internal/models"

	"github.com/shopspring/decimal"
)

// Phase is the position of a conversation in the ordering flow
type Phase string

const (
	// Dialogue phases
	PhaseInitial              Phase = "INITIAL"
	PhasePresentingOptions    Phase = "PRESENTING_OPTIONS"
	PhaseAwaitingQuantity     Phase = "AWAITING_QUANTITY"
	PhaseAwaitingMore         Phase = "AWAITING_MORE"
	PhaseAwaitingConfirmation Phase = "AWAITING_CONFIRMATION"
	PhaseCompleted            Phase = "COMPLETED"
)

// DraftLine is an item and quantity waiting for confirmation
type DraftLine struct {
	Item     models.MenuItem `json:"item"`
	Quantity int             `json:"quantity"`
}

// Amount returns price times quantity
func (l DraftLine) Amount() decimal.Decimal {
	return l.Item.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// State is the conversation state owned by one Engine
type State struct {
	Phase           Phase               `json:"phase"`
	PendingItem     *models.MenuItem    `json:"pending_item,omitempty"`
	PendingCategory models.MenuCategory `json:"pending_category,omitempty"`
	Lines           []DraftLine         `json:"lines"`

	// options is the list last shown to the customer; ordinals index into it
	options []models.MenuItem
}

// Total is always derived from the draft lines
func (s State) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.Lines {
		total = total.Add(l.Amount())
	}
	return total
}

// Options returns the currently listed items
func (s State) Options() []models.MenuItem {
	return s.options
}

func (s *State) reset() {
	s.Phase = PhaseInitial
	s.PendingItem = nil
	s.PendingCategory = ""
	s.Lines = nil
	s.options = nil
}

func (s State) clone() State {
	c := s
	c.Lines = append([]DraftLine(nil), s.Lines...)
	c.options = append([]models.MenuItem(nil), s.options...)
	if s.PendingItem != nil {
		item := *s.PendingItem
		c.PendingItem = &item
	}
	return c
}

package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Styling
var (
	docStyle = lipgloss.NewStyle().Margin(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#0a84ff")).
			Padding(0, 1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#30d158")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#ff453a")).
			Padding(0, 1)

	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true)
	customerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#30d158")).Bold(true)
)

const helpText = "enter: send • /menu [category] • /cart • /checkout <address> • /new • ctrl+c: quit"

// Model defines the application state
type Model struct {
	client         *ApiClient
	mode           string
	conversationID string
	transcript     []string
	phase          string
	status         string
	error          string
	loading        bool

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
}

// Custom message types for the tea.Model
type (
	turnMsg   struct{ turn *Turn }
	noticeMsg struct{ text string }
	errorMsg  struct{ err error }
)

func initialModel(client *ApiClient, mode string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.Placeholder = "What would you like to order?"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	return Model{
		client:   client,
		mode:     mode,
		viewport: viewport.New(80, 20),
		input:    ti,
		spinner:  s,
		loading:  true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textinput.Blink, startConversation(m.client, m.mode))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			if m.conversationID != "" {
				_ = m.client.CloseConversation(m.conversationID)
			}
			return m, tea.Quit
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if text == "" || m.loading {
				return m, nil
			}
			m.input.SetValue("")
			m.error = ""
			m.loading = true
			if strings.HasPrefix(text, "/") {
				cmd := m.command(text)
				return m, cmd
			}
			m.appendLine(customerStyle.Render("You: ") + text)
			return m, sendTurn(m.client, m.conversationID, text)
		}

	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - 8
		m.input.Width = msg.Width - 8
		m.viewport.SetContent(strings.Join(m.transcript, "\n\n"))

	case turnMsg:
		m.loading = false
		m.conversationID = msg.turn.ConversationID
		m.phase = msg.turn.Phase
		m.appendLine(assistantStyle.Render("Bistro: ") + msg.turn.Reply)
		if msg.turn.Completed {
			m.status = "Added to cart"
		}

	case noticeMsg:
		m.loading = false
		m.appendLine(msg.text)

	case errorMsg:
		m.loading = false
		m.error = msg.err.Error()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) appendLine(line string) {
	m.transcript = append(m.transcript, line)
	m.viewport.SetContent(strings.Join(m.transcript, "\n\n"))
	m.viewport.GotoBottom()
}

// command runs a slash command typed into the input
func (m *Model) command(text string) tea.Cmd {
	name, arg, _ := strings.Cut(strings.TrimPrefix(text, "/"), " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "menu":
		return fetchMenu(m.client, arg)
	case "cart":
		return fetchCart(m.client)
	case "checkout":
		return checkout(m.client, arg)
	case "new":
		if m.conversationID != "" {
			_ = m.client.CloseConversation(m.conversationID)
		}
		m.transcript = nil
		m.status = ""
		return startConversation(m.client, m.mode)
	default:
		return func() tea.Msg { return errorMsg{fmt.Errorf("unknown command /%s", name)} }
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Bistro Ordering Assistant"))
	if m.phase != "" {
		b.WriteString(" " + infoStyle.Render(m.phase))
	}
	if m.status != "" {
		b.WriteString(" " + successStyle.Render(m.status))
	}
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(m.spinner.View() + " Waiting for the assistant...\n")
	} else {
		b.WriteString(m.input.View() + "\n")
	}
	if m.error != "" {
		b.WriteString(errorStyle.Render("Error: "+m.error) + "\n")
	}
	b.WriteString(lipgloss.NewStyle().Faint(true).Render(helpText))

	return docStyle.Render(b.String())
}

func startConversation(client *ApiClient, mode string) tea.Cmd {
	return func() tea.Msg {
		turn, err := client.StartConversation(mode)
		if err != nil {
			return errorMsg{err}
		}
		return turnMsg{turn}
	}
}

func sendTurn(client *ApiClient, id, text string) tea.Cmd {
	return func() tea.Msg {
		turn, err := client.SendTurn(id, text)
		if err != nil {
			return errorMsg{err}
		}
		return turnMsg{turn}
	}
}

func fetchMenu(client *ApiClient, category string) tea.Cmd {
	return func() tea.Msg {
		items, err := client.GetMenu(category)
		if err != nil {
			return errorMsg{err}
		}
		var b strings.Builder
		b.WriteString(infoStyle.Render("Menu"))
		for _, it := range items {
			fmt.Fprintf(&b, "\n  %-22s %-14s $%s", it.Name, it.Category, it.Price)
		}
		return noticeMsg{b.String()}
	}
}

func fetchCart(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		cart, err := client.GetCart()
		if err != nil {
			return errorMsg{err}
		}
		var b strings.Builder
		b.WriteString(infoStyle.Render("Cart"))
		if len(cart.Lines) == 0 {
			b.WriteString("\n  (empty)")
		}
		for _, l := range cart.Lines {
			fmt.Fprintf(&b, "\n  %d x %-22s $%s", l.Quantity, l.Name, l.Price)
		}
		fmt.Fprintf(&b, "\n  Subtotal $%s  Tax $%s  Delivery $%s  Total $%s",
			cart.Totals.Subtotal, cart.Totals.Tax, cart.Totals.DeliveryFee, cart.Totals.Total)
		return noticeMsg{b.String()}
	}
}

func checkout(client *ApiClient, address string) tea.Cmd {
	return func() tea.Msg {
		order, err := client.Checkout(address)
		if err != nil {
			return errorMsg{err}
		}
		return noticeMsg{successStyle.Render(fmt.Sprintf("Order #%d placed: %s, total $%s", order.ID, order.Status, order.Total))}
	}
}

func main() {
	mode := flag.String("mode", "text", "Conversation mode: text or voice")
	flag.Parse()

	client := NewApiClient()
	if err := client.CheckHealth(); err != nil {
		fmt.Printf("API server at %s is not available: %v\n", client.BaseURL, err)
		os.Exit(1)
	}

	p := tea.NewProgram(initialModel(client, *mode), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}

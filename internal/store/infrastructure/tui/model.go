// Package tui is the terminal storefront view. It publishes user intents on
// the event bus and renders from the shared application state, which it only
// touches from synchronous Update turns; while a submission is in flight all
// input is ignored.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/arozhkov/storefront/internal/store/application"
	"github.com/arozhkov/storefront/internal/store/domain"
	"github.com/arozhkov/storefront/pkg/events"
)

type screen int

const (
	screenCatalog screen = iota
	screenDetail
	screenBasket
	screenAddress
	screenContacts
	screenSuccess
	screenFailure
)

type catalogLoadedMsg struct {
	products []domain.Product
	err      error
}

type submitDoneMsg struct {
	result domain.OrderResult
	err    error
}

// Model is the bubbletea model for the storefront.
type Model struct {
	log      *slog.Logger
	bus      *events.Bus
	state    *application.State
	checkout *application.Checkout
	client   application.ProductClient
	feed     *feed

	screen     screen
	cursor     int
	selectedID string
	search     string
	searching  bool
	status     string
	busy       bool

	// focus: 0 = text field, 1 = second field (payment or phone)
	focus int
}

// NewModel wires the view to the core.
func NewModel(log *slog.Logger, bus *events.Bus, state *application.State, checkout *application.Checkout, client application.ProductClient) Model {
	return Model{
		log:      log,
		bus:      bus,
		state:    state,
		checkout: checkout,
		client:   client,
		feed:     newFeed(bus),
		status:   "Loading catalog...",
	}
}

func (m Model) Init() tea.Cmd {
	return m.loadCatalogCmd()
}

func (m Model) loadCatalogCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		products, err := client.ListProducts(ctx)
		return catalogLoadedMsg{products: products, err: err}
	}
}

func (m Model) submitCmd() tea.Cmd {
	checkout := m.checkout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		result, err := checkout.Submit(ctx)
		return submitDoneMsg{result: result, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case catalogLoadedMsg:
		if msg.err != nil {
			// Degrade to a clearly empty catalog, never a crash.
			m.log.Error("catalog load failed", "err", msg.err)
			m.state.SetCatalog(nil)
			m.status = "Catalog unavailable: " + msg.err.Error()
			return m, nil
		}
		m.state.SetCatalog(msg.products)
		m.status = ""
		m.cursor = 0
		return m, nil

	case submitDoneMsg:
		m.busy = false
		if msg.err != nil {
			if f := m.feed.Failure(); f != nil && !f.Kind.Recoverable() {
				m.screen = screenFailure
			}
			return m, nil
		}
		m.screen = screenSuccess
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.screen {
	case screenCatalog:
		return m.updateCatalog(msg)
	case screenDetail:
		return m.updateDetail(msg)
	case screenBasket:
		return m.updateBasket(msg)
	case screenAddress:
		return m.updateAddress(msg)
	case screenContacts:
		return m.updateContacts(msg)
	case screenSuccess:
		return m.updateSuccess(msg)
	case screenFailure:
		return m.updateFailure(msg)
	}
	return m, nil
}

func (m Model) visibleProducts() []domain.Product {
	return m.state.SearchCatalog(m.search)
}

func (m Model) updateCatalog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.String() {
		case "enter", "esc":
			m.searching = false
		case "backspace":
			if len(m.search) > 0 {
				m.search = m.search[:len(m.search)-1]
			}
		default:
			if len(msg.Runes) > 0 {
				m.search += string(msg.Runes)
			}
		}
		m.cursor = 0
		return m, nil
	}

	products := m.visibleProducts()
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(products)-1 {
			m.cursor++
		}
	case "/":
		m.searching = true
		m.search = ""
	case "b":
		m.bus.Publish(domain.BasketOpened{})
		m.screen = screenBasket
		m.cursor = 0
	case "r":
		m.status = "Reloading catalog..."
		return m, m.loadCatalogCmd()
	case "enter":
		if m.cursor < len(products) {
			m.selectedID = products[m.cursor].ID
			m.bus.Publish(domain.CardSelected{ID: m.selectedID})
			m.screen = screenDetail
		}
	case " ":
		// Unpriced products cannot enter the basket.
		if m.cursor < len(products) && products[m.cursor].Purchasable() {
			m.bus.Publish(domain.BasketToggled{ID: products[m.cursor].ID})
		}
	}
	return m, nil
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.bus.Publish(domain.ModalDismissed{})
		m.screen = screenCatalog
	case "enter", " ":
		if p, ok := m.state.Product(m.selectedID); ok && p.Purchasable() {
			m.bus.Publish(domain.BasketToggled{ID: m.selectedID})
		}
	case "b":
		m.bus.Publish(domain.BasketOpened{})
		m.screen = screenBasket
		m.cursor = 0
	}
	return m, nil
}

func (m Model) updateBasket(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.state.BasketItems()
	switch msg.String() {
	case "esc", "q":
		m.bus.Publish(domain.ModalDismissed{})
		m.screen = screenCatalog
		m.cursor = 0
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(items)-1 {
			m.cursor++
		}
	case "x", "backspace":
		if m.cursor < len(items) {
			m.bus.Publish(domain.BasketToggled{ID: items[m.cursor].ID})
			if m.cursor > 0 {
				m.cursor--
			}
		}
	case "enter":
		if len(items) == 0 {
			return m, nil
		}
		m.bus.Publish(domain.CheckoutOpened{})
		m.screen = screenAddress
		m.focus = 0
	}
	return m, nil
}

func (m Model) updateAddress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.bus.Publish(domain.ModalDismissed{})
		m.screen = screenCatalog
	case "tab":
		m.focus = (m.focus + 1) % 2
	case "left", "right":
		if m.focus == 1 {
			m.togglePayment()
		}
	case "enter":
		m.bus.Publish(domain.AddressSubmitted{})
		if m.checkout.Phase() == application.PhaseContact {
			m.screen = screenContacts
			m.focus = 0
		}
	case "backspace":
		if m.focus == 0 {
			m.editDraftField(domain.FieldAddress, "", true)
		}
	default:
		if m.focus == 0 && len(msg.Runes) > 0 {
			m.editDraftField(domain.FieldAddress, string(msg.Runes), false)
		}
	}
	return m, nil
}

func (m Model) togglePayment() {
	next := domain.PaymentCard
	if m.state.Draft().Payment == domain.PaymentCard {
		next = domain.PaymentCash
	}
	m.state.SetOrderField(domain.FieldPayment, string(next))
}

func (m Model) editDraftField(field domain.Field, runes string, backspace bool) {
	draft := m.state.Draft()
	var current string
	switch field {
	case domain.FieldAddress:
		current = draft.Address
	case domain.FieldEmail:
		current = draft.Email
	case domain.FieldPhone:
		current = draft.Phone
	}
	if backspace {
		if len(current) > 0 {
			current = current[:len(current)-1]
		}
	} else {
		current += runes
	}
	m.state.SetOrderField(field, current)
}

func (m Model) updateContacts(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	fields := [2]domain.Field{domain.FieldEmail, domain.FieldPhone}
	switch msg.String() {
	case "esc":
		m.bus.Publish(domain.ModalDismissed{})
		m.screen = screenCatalog
	case "tab":
		m.focus = (m.focus + 1) % 2
	case "enter":
		m.bus.Publish(domain.ContactSubmitted{})
		if m.checkout.Phase() != application.PhaseContact {
			return m, nil
		}
		if len(m.feed.ContactErrors()) > 0 {
			return m, nil
		}
		m.busy = true
		m.feed.clearFailure()
		return m, m.submitCmd()
	case "backspace":
		m.editDraftField(fields[m.focus], "", true)
	default:
		if len(msg.Runes) > 0 {
			m.editDraftField(fields[m.focus], string(msg.Runes), false)
		}
	}
	return m, nil
}

func (m Model) updateSuccess(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc", "q":
		m.bus.Publish(domain.ModalDismissed{})
		m.screen = screenCatalog
		m.cursor = 0
	}
	return m, nil
}

func (m Model) updateFailure(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r", "enter":
		// Unrecoverable staleness: forced full refresh.
		m.bus.Publish(domain.ModalDismissed{})
		m.feed.clearFailure()
		m.screen = screenCatalog
		m.cursor = 0
		m.status = "Reloading catalog..."
		return m, m.loadCatalogCmd()
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) View() string {
	b := &strings.Builder{}
	switch m.screen {
	case screenCatalog:
		m.viewCatalog(b)
	case screenDetail:
		m.viewDetail(b)
	case screenBasket:
		m.viewBasket(b)
	case screenAddress:
		m.viewAddress(b)
	case screenContacts:
		m.viewContacts(b)
	case screenSuccess:
		m.viewSuccess(b)
	case screenFailure:
		m.viewFailure(b)
	}
	return b.String()
}

func formatPrice(p domain.Product) string {
	if !p.Purchasable() {
		return "not for sale"
	}
	return fmt.Sprintf("%d syn", p.PriceValue())
}

func (m Model) viewCatalog(b *strings.Builder) {
	fmt.Fprintf(b, "Storefront — basket: %d items\n\n", m.state.BasketCount())
	if m.searching {
		fmt.Fprintf(b, "Search: %s_\n\n", m.search)
	} else if m.search != "" {
		fmt.Fprintf(b, "Filter: %q\n\n", m.search)
	}

	products := m.visibleProducts()
	if len(products) == 0 {
		if m.search != "" {
			fmt.Fprintln(b, "Nothing matches.")
			if suggestion, ok := m.state.SuggestTitle(m.search); ok {
				fmt.Fprintf(b, "Did you mean %q?\n", suggestion)
			}
		} else {
			fmt.Fprintln(b, "The catalog is empty.")
		}
	}
	for i, p := range products {
		marker := " "
		if i == m.cursor {
			marker = ">"
		}
		inBasket := " "
		if m.state.InBasket(p.ID) {
			inBasket = "*"
		}
		fmt.Fprintf(b, " %s [%s] %-34s %12s  %s\n", marker, inBasket, p.Title, formatPrice(p), p.Category)
	}

	if m.status != "" {
		fmt.Fprintf(b, "\n%s\n", m.status)
	}
	fmt.Fprintln(b, "\nControls: up/down move, enter details, space toggle basket, / search, b basket, r reload, q quit")
}

func (m Model) viewDetail(b *strings.Builder) {
	p, ok := m.state.Product(m.selectedID)
	if !ok {
		fmt.Fprintln(b, "This product is gone from the catalog.")
		fmt.Fprintln(b, "\nControls: esc back")
		return
	}
	fmt.Fprintf(b, "%s\n%s\n\n", p.Title, strings.Repeat("=", len(p.Title)))
	fmt.Fprintf(b, "%s\n\n", p.Description)
	fmt.Fprintf(b, "Category: %s\nPrice:    %s\nImage:    %s\n\n", p.Category, formatPrice(p), p.Image)
	if !p.Purchasable() {
		fmt.Fprintln(b, "This item cannot be added to the basket.")
	} else if m.state.InBasket(p.ID) {
		fmt.Fprintln(b, "In basket. Press enter to remove.")
	} else {
		fmt.Fprintln(b, "Press enter to add to basket.")
	}
	fmt.Fprintln(b, "\nControls: enter toggle basket, b basket, esc back")
}

func (m Model) viewBasket(b *strings.Builder) {
	fmt.Fprintln(b, "Basket")
	fmt.Fprintln(b, "======")
	items := m.state.BasketItems()
	if len(items) == 0 {
		fmt.Fprintln(b, "\nThe basket is empty.")
	}
	for i, p := range items {
		marker := " "
		if i == m.cursor {
			marker = ">"
		}
		fmt.Fprintf(b, " %s %-34s %12s\n", marker, p.Title, formatPrice(p))
	}
	fmt.Fprintf(b, "\nTotal: %d syn\n", m.state.Total())
	fmt.Fprintln(b, "\nControls: up/down move, x remove, enter checkout, esc back")
}

func renderField(b *strings.Builder, label, value string, focused bool) {
	marker := " "
	if focused {
		marker = ">"
	}
	fmt.Fprintf(b, " %s %-8s %s\n", marker, label+":", value)
}

func renderErrors(b *strings.Builder, errs []string) {
	for _, e := range errs {
		fmt.Fprintf(b, " ! %s\n", e)
	}
}

func (m Model) viewAddress(b *strings.Builder) {
	fmt.Fprintln(b, "Checkout 1/2 — shipping and payment")
	fmt.Fprintln(b, "-----------------------------------")
	draft := m.state.Draft()
	renderField(b, "address", draft.Address, m.focus == 0)
	payment := string(draft.Payment)
	if payment == "" {
		payment = "(left/right to choose card or cash)"
	}
	renderField(b, "payment", payment, m.focus == 1)
	fmt.Fprintln(b)
	renderErrors(b, m.feed.AddressErrors())
	fmt.Fprintln(b, "\nControls: type to edit, tab switch field, left/right payment, enter next, esc close")
}

func (m Model) viewContacts(b *strings.Builder) {
	fmt.Fprintln(b, "Checkout 2/2 — contacts")
	fmt.Fprintln(b, "-----------------------")
	draft := m.state.Draft()
	renderField(b, "email", draft.Email, m.focus == 0)
	renderField(b, "phone", draft.Phone, m.focus == 1)
	fmt.Fprintln(b)
	renderErrors(b, m.feed.ContactErrors())
	if f := m.feed.Failure(); f != nil && f.Kind.Recoverable() {
		fmt.Fprintf(b, " ! %s (press enter to retry)\n", f.Message)
	}
	if m.busy {
		fmt.Fprintln(b, "\nSubmitting order...")
	}
	fmt.Fprintln(b, "\nControls: type to edit, tab switch field, enter submit, esc close")
}

func (m Model) viewSuccess(b *strings.Builder) {
	fmt.Fprintln(b, "Order placed!")
	fmt.Fprintln(b, "=============")
	if o := m.feed.Order(); o != nil {
		fmt.Fprintf(b, "\nOrder id: %s\nCharged:  %d syn\n", o.OrderID, o.Total)
	}
	fmt.Fprintln(b, "\nControls: enter back to catalog")
}

func (m Model) viewFailure(b *strings.Builder) {
	fmt.Fprintln(b, "Order failed")
	fmt.Fprintln(b, "============")
	if f := m.feed.Failure(); f != nil {
		fmt.Fprintf(b, "\n%s\n", f.Message)
	}
	fmt.Fprintln(b, "\nThe catalog has changed; a reload is required before ordering again.")
	fmt.Fprintln(b, "\nControls: r reload, q quit")
}

package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/arozhkov/storefront/internal/store/application"
	"github.com/arozhkov/storefront/internal/store/domain"
	storehttp "github.com/arozhkov/storefront/internal/store/infrastructure/http"
	"github.com/arozhkov/storefront/internal/store/infrastructure/tui"
	"github.com/arozhkov/storefront/pkg/events"
	"github.com/arozhkov/storefront/pkg/logging"
)

func main() {
	log := logging.New()

	apiURL := env("API_URL", "http://localhost:8081")
	cdnURL := env("CDN_URL", "http://localhost:8081/content")

	bus := events.New(log)
	state := application.NewState(log, bus)
	client := storehttp.NewClient(log, apiURL, cdnURL)
	checkout := application.NewCheckout(log, bus, state, client)

	// Intent wiring: views publish, the core reacts. The async submission is
	// the one exception; the view runs it as a command so the UI stays
	// interactive while the call is in flight.
	bus.Subscribe(domain.TopicBasketToggle, func(e events.Event) {
		state.ToggleBasketItem(e.(domain.BasketToggled).ID)
	})
	bus.Subscribe(domain.TopicCheckoutOpen, func(events.Event) {
		_ = checkout.Open()
	})
	bus.Subscribe(domain.TopicAddressSubmit, func(events.Event) {
		_ = checkout.SubmitAddress()
	})
	bus.Subscribe(domain.TopicContactSubmit, func(events.Event) {
		state.ValidateContactStage()
	})
	bus.Subscribe(domain.TopicModalDismiss, func(events.Event) {
		checkout.Dismiss()
	})
	bus.Subscribe(domain.TopicCardSelect, func(e events.Event) {
		log.Debug("card selected", "id", e.(domain.CardSelected).ID)
	})

	model := tui.NewModel(log, bus, state, checkout, client)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

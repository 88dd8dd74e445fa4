package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/arozhkov/storefront/internal/store/domain"
	"github.com/arozhkov/storefront/pkg/events"
)

// Phase is a step of the checkout flow.
type Phase string

const (
	PhaseBrowsing   Phase = "browsing"
	PhaseAddress    Phase = "address-entry"
	PhaseContact    Phase = "contact-entry"
	PhaseSubmitting Phase = "submitting"
	PhaseSuccess    Phase = "success"
	PhaseFailure    Phase = "failure"
)

func (p Phase) String() string { return string(p) }

var (
	ErrNotInPhase     = errors.New("operation not valid in current checkout phase")
	ErrStageInvalid   = errors.New("stage validation failed")
	ErrOrderInvalid   = errors.New("order validation failed")
	ErrNothingToOrder = errors.New("no purchasable items left in basket")
)

// Checkout sequences the customer through the two checkout forms and the
// remote submission. All transitions are gated by stage validation on the
// shared application state. The phase is read by the rendering goroutine
// while Submit runs in the background, hence the mutex.
type Checkout struct {
	log    *slog.Logger
	bus    *events.Bus
	state  *State
	client ProductClient

	mu    sync.Mutex
	phase Phase
}

// NewCheckout creates the checkout machine in the browsing phase.
func NewCheckout(log *slog.Logger, bus *events.Bus, state *State, client ProductClient) *Checkout {
	return &Checkout{
		log:    log,
		bus:    bus,
		state:  state,
		client: client,
		phase:  PhaseBrowsing,
	}
}

// Phase returns the current phase.
func (c *Checkout) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

func (c *Checkout) setPhase(p Phase) {
	c.mu.Lock()
	c.phase = p
	c.mu.Unlock()
}

// Open moves from browsing into address entry; opening mid-flow is refused.
// The form is pre-filled from whatever draft data survived earlier sessions,
// and the stage is validated immediately so the first paint already shows
// persisted errors.
func (c *Checkout) Open() error {
	if c.Phase() != PhaseBrowsing {
		return ErrNotInPhase
	}
	c.setPhase(PhaseAddress)
	c.bus.Publish(domain.ModalOpened{View: "address"})
	if !c.state.Draft().Empty() {
		c.state.ValidateAddressStage()
	}
	return nil
}

// SubmitAddress advances to contact entry when the address stage validates.
// On re-entry, contact fields that already hold values are re-validated so
// the contact form restores its own error display instead of painting a
// blank valid state.
func (c *Checkout) SubmitAddress() error {
	if c.Phase() != PhaseAddress {
		return ErrNotInPhase
	}
	if !c.state.ValidateAddressStage() {
		return ErrStageInvalid
	}
	c.setPhase(PhaseContact)
	c.bus.Publish(domain.ModalOpened{View: "contacts"})
	draft := c.state.Draft()
	if draft.Email != "" || draft.Phone != "" {
		c.state.ValidateContactStage()
	}
	return nil
}

// Submit runs the final pipeline: refetch the catalog for authoritative
// prices, reconcile the basket against it, recompute the total, re-validate
// the whole order and only then call the remote API. Everything is derived
// after the refetch resolves; the basket may have changed while the fetch
// was in flight, so a pre-fetch snapshot must never be used.
func (c *Checkout) Submit(ctx context.Context) (domain.OrderResult, error) {
	if c.Phase() != PhaseContact {
		return domain.OrderResult{}, ErrNotInPhase
	}
	if !c.state.ValidateContactStage() {
		return domain.OrderResult{}, ErrStageInvalid
	}
	c.setPhase(PhaseSubmitting)

	products, err := c.client.ListProducts(ctx)
	if err != nil {
		c.fail(domain.FailureGeneric, "could not refresh the catalog: "+err.Error())
		return domain.OrderResult{}, err
	}
	c.state.SetCatalog(products)

	if removed := c.state.ReconcileBasket(); len(removed) > 0 {
		c.log.Info("basket reconciled before submit", "removed", removed)
	}
	if c.state.BasketCount() == 0 {
		c.fail(domain.FailureItemUnavailable, "all basket items are no longer available")
		return domain.OrderResult{}, ErrNothingToOrder
	}

	if !c.state.ValidateOrder() {
		c.fail(domain.FailureGeneric, "order data is incomplete")
		return domain.OrderResult{}, ErrOrderInvalid
	}

	draft := c.state.Draft()
	order := domain.Order{
		Payment: draft.Payment,
		Email:   draft.Email,
		Phone:   draft.Phone,
		Address: draft.Address,
		Total:   c.state.Total(),
		Items:   c.state.BasketIDs(),
	}

	result, err := c.client.SubmitOrder(ctx, order)
	if err != nil {
		c.fail(classifyFailure(err), err.Error())
		return domain.OrderResult{}, err
	}

	c.setPhase(PhaseSuccess)
	c.state.ClearBasket()
	c.state.ResetOrder()
	c.bus.Publish(domain.OrderCompleted{OrderID: result.ID, Total: result.Total})
	return result, nil
}

// fail publishes the failure and settles the phase: recoverable failures
// return to contact entry with the entered data intact, the rest land in
// the terminal failure phase that forces a full refresh.
func (c *Checkout) fail(kind domain.FailureKind, message string) {
	if kind.Recoverable() {
		c.setPhase(PhaseContact)
	} else {
		c.setPhase(PhaseFailure)
	}
	c.log.Warn("checkout failed", "kind", string(kind), "message", message)
	c.bus.Publish(domain.CheckoutFailed{Kind: kind, Message: message})
}

// Dismiss returns to browsing from any phase. Form views reset their visual
// state, but the underlying draft data is intentionally preserved for the
// next re-entry; only explicit success or reset clears it.
func (c *Checkout) Dismiss() {
	c.setPhase(PhaseBrowsing)
	c.bus.Publish(domain.ModalClosed{})
}

// classifyFailure maps a remote rejection onto a failure kind by message
// content, mirroring the error strings the storefront API returns.
func classifyFailure(err error) domain.FailureKind {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "no longer available"), strings.Contains(msg, "not sold"):
		return domain.FailureItemUnavailable
	case strings.Contains(msg, "price"):
		return domain.FailurePriceMismatch
	default:
		return domain.FailureGeneric
	}
}

package tui

import (
	"sync"

	"github.com/arozhkov/storefront/internal/store/domain"
	"github.com/arozhkov/storefront/pkg/events"
)

// feed collects the core-to-view events the terminal UI renders from. Bus
// dispatch is synchronous, so by the time an Update call returns, the feed
// already reflects every event that call triggered. Handlers also fire on
// the submission command goroutine, hence the mutex.
type feed struct {
	mu            sync.Mutex
	addressErrors []string
	contactErrors []string
	lastFailure   *domain.CheckoutFailed
	lastOrder     *domain.OrderCompleted
}

func newFeed(bus *events.Bus) *feed {
	f := &feed{}
	bus.Subscribe(domain.TopicAddressValidated, func(e events.Event) {
		ev := e.(domain.AddressValidated)
		f.mu.Lock()
		f.addressErrors = ev.Errors
		f.mu.Unlock()
	})
	bus.Subscribe(domain.TopicContactValidated, func(e events.Event) {
		ev := e.(domain.ContactValidated)
		f.mu.Lock()
		f.contactErrors = ev.Errors
		f.mu.Unlock()
	})
	bus.Subscribe(domain.TopicCheckoutFailed, func(e events.Event) {
		ev := e.(domain.CheckoutFailed)
		f.mu.Lock()
		f.lastFailure = &ev
		f.mu.Unlock()
	})
	bus.Subscribe(domain.TopicOrderCompleted, func(e events.Event) {
		ev := e.(domain.OrderCompleted)
		f.mu.Lock()
		f.lastOrder = &ev
		f.mu.Unlock()
	})
	bus.Subscribe(domain.TopicOrderReset, func(events.Event) {
		f.mu.Lock()
		f.addressErrors = nil
		f.contactErrors = nil
		f.mu.Unlock()
	})
	return f
}

func (f *feed) AddressErrors() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addressErrors
}

func (f *feed) ContactErrors() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.contactErrors
}

func (f *feed) Failure() *domain.CheckoutFailed {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastFailure
}

func (f *feed) Order() *domain.OrderCompleted {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastOrder
}

func (f *feed) clearFailure() {
	f.mu.Lock()
	f.lastFailure = nil
	f.mu.Unlock()
}

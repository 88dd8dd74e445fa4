package domain

import "github.com/arozhkov/storefront/pkg/events"

// The closed set of bus topics. View components publish the intent topics;
// the state and checkout machine publish the rest.
const (
	// view -> core
	TopicBasketOpen    events.Topic = "basket:open"
	TopicCardSelect    events.Topic = "card:select"
	TopicBasketToggle  events.Topic = "basket:toggle-item"
	TopicCheckoutOpen  events.Topic = "order:open"
	TopicAddressSubmit events.Topic = "order:submit-address"
	TopicContactSubmit events.Topic = "order:submit-contact"
	TopicModalDismiss  events.Topic = "modal:dismiss"

	// core -> view
	TopicCatalogChanged   events.Topic = "catalog:changed"
	TopicBasketChanged    events.Topic = "basket:changed"
	TopicAddressValidated events.Topic = "order:address-validated"
	TopicContactValidated events.Topic = "order:contact-validated"
	TopicOrderReset       events.Topic = "order:reset"
	TopicModalOpen        events.Topic = "modal:open"
	TopicModalClose       events.Topic = "modal:close"
	TopicCheckoutFailed   events.Topic = "order:failed"
	TopicOrderCompleted   events.Topic = "order:completed"
)

// BasketOpened is the intent to show the basket.
type BasketOpened struct{}

func (BasketOpened) Topic() events.Topic { return TopicBasketOpen }

// CardSelected is the intent to inspect a product.
type CardSelected struct {
	ID string
}

func (CardSelected) Topic() events.Topic { return TopicCardSelect }

// BasketToggled is the intent to add or remove a product from the basket.
type BasketToggled struct {
	ID string
}

func (BasketToggled) Topic() events.Topic { return TopicBasketToggle }

// CheckoutOpened is the intent to start checkout from the basket.
type CheckoutOpened struct{}

func (CheckoutOpened) Topic() events.Topic { return TopicCheckoutOpen }

// AddressSubmitted is the address/payment form submit intent.
type AddressSubmitted struct{}

func (AddressSubmitted) Topic() events.Topic { return TopicAddressSubmit }

// ContactSubmitted is the contact form submit intent.
type ContactSubmitted struct{}

func (ContactSubmitted) Topic() events.Topic { return TopicContactSubmit }

// ModalDismissed is the intent to close whatever modal is open.
type ModalDismissed struct{}

func (ModalDismissed) Topic() events.Topic { return TopicModalDismiss }

// CatalogChanged announces a wholesale catalog replacement.
type CatalogChanged struct {
	Products []Product
}

func (CatalogChanged) Topic() events.Topic { return TopicCatalogChanged }

// BasketChanged announces any basket mutation.
type BasketChanged struct {
	Items []string
	Count int
}

func (BasketChanged) Topic() events.Topic { return TopicBasketChanged }

// AddressValidated carries the address-stage validation outcome. Errors are
// ordered: the address message precedes the payment message when both fail.
type AddressValidated struct {
	Valid  bool
	Errors []string
}

func (AddressValidated) Topic() events.Topic { return TopicAddressValidated }

// ContactValidated carries the contact-stage validation outcome.
type ContactValidated struct {
	Valid  bool
	Errors []string
}

func (ContactValidated) Topic() events.Topic { return TopicContactValidated }

// OrderReset tells both form views to clear their fields.
type OrderReset struct{}

func (OrderReset) Topic() events.Topic { return TopicOrderReset }

// ModalOpened announces which modal view became visible.
type ModalOpened struct {
	View string
}

func (ModalOpened) Topic() events.Topic { return TopicModalOpen }

// ModalClosed announces modal dismissal.
type ModalClosed struct{}

func (ModalClosed) Topic() events.Topic { return TopicModalClose }

// FailureKind classifies a failed submission.
type FailureKind string

const (
	// FailureItemUnavailable and FailurePriceMismatch are unrecoverable
	// without a full catalog refresh.
	FailureItemUnavailable FailureKind = "item-unavailable"
	FailurePriceMismatch   FailureKind = "price-mismatch"
	// FailureGeneric is retryable by resubmitting from the contact form.
	FailureGeneric FailureKind = "generic"
)

// Recoverable reports whether the customer can retry without reloading.
func (k FailureKind) Recoverable() bool {
	return k == FailureGeneric
}

// CheckoutFailed announces an aborted or rejected submission.
type CheckoutFailed struct {
	Kind    FailureKind
	Message string
}

func (CheckoutFailed) Topic() events.Topic { return TopicCheckoutFailed }

// OrderCompleted announces a successful submission with the authoritative
// total and id returned by the remote API.
type OrderCompleted struct {
	OrderID string
	Total   int64
}

func (OrderCompleted) Topic() events.Topic { return TopicOrderCompleted }

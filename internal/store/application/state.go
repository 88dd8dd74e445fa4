package application

import (
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/arozhkov/storefront/internal/store/domain"
	"github.com/arozhkov/storefront/pkg/events"
)

const (
	msgAddressTooShort = "address must be at least 5 characters"
	msgPaymentUnknown  = "choose a payment method"
	msgEmailInvalid    = "enter a valid email"
	msgPhoneTooShort   = "phone must be at least 10 characters"
	msgPhoneBadChars   = "phone may contain only digits and a leading +"
	msgBasketEmpty     = "basket is empty"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9]+$`)
)

// State is the single mutable application state: catalog, basket, the
// in-progress order draft and the current validation errors. Every mutation
// ends by publishing a change event on the bus. It is constructed once at
// app start and passed by reference. The mutex exists because submission
// runs on a background command while the UI keeps rendering; change events
// are published after the lock is released, so bus handlers may call back
// into State.
type State struct {
	log *slog.Logger
	bus *events.Bus

	mu      sync.Mutex
	catalog []domain.Product
	basket  []string
	draft   domain.OrderDraft
	errs    map[domain.Field]string
}

// NewState creates an empty application state bound to bus.
func NewState(log *slog.Logger, bus *events.Bus) *State {
	return &State{
		log:  log,
		bus:  bus,
		errs: map[domain.Field]string{},
	}
}

// SetCatalog replaces the catalog wholesale and publishes the catalog-changed
// event. A nil or empty list yields an empty catalog; stale data is never
// left displayed as if current.
func (s *State) SetCatalog(products []domain.Product) {
	s.mu.Lock()
	s.catalog = products
	if s.catalog == nil {
		s.catalog = []domain.Product{}
	}
	ev := domain.CatalogChanged{Products: s.catalog}
	s.mu.Unlock()
	s.bus.Publish(ev)
}

// Catalog returns the currently loaded products. The slice is replaced, not
// mutated in place, so it is safe to read after the lock is dropped.
func (s *State) Catalog() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog
}

// Product resolves a catalog entry by id.
func (s *State) Product(id string) (domain.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(id)
}

func (s *State) lookup(id string) (domain.Product, bool) {
	for _, p := range s.catalog {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// InBasket reports basket membership.
func (s *State) InBasket(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inBasket(id)
}

func (s *State) inBasket(id string) bool {
	for _, b := range s.basket {
		if b == id {
			return true
		}
	}
	return false
}

// ToggleBasketItem adds id to the basket if absent, removes it otherwise,
// and publishes the basket-changed event. Ids unknown to the catalog, and
// adds of unpurchasable products, are a logged no-op; removal is always
// allowed so a repriced item can still leave the basket.
func (s *State) ToggleBasketItem(id string) {
	s.mu.Lock()
	p, ok := s.lookup(id)
	if !ok {
		s.mu.Unlock()
		s.log.Warn("toggle for id not in catalog", "id", id)
		return
	}
	if s.inBasket(id) {
		s.removeFromBasket(id)
	} else {
		if !p.Purchasable() {
			s.mu.Unlock()
			s.log.Warn("toggle for unpurchasable item", "id", id)
			return
		}
		s.basket = append(s.basket, id)
	}
	ev := s.basketChangedLocked()
	s.mu.Unlock()
	s.bus.Publish(ev)
}

func (s *State) removeFromBasket(id string) {
	kept := s.basket[:0]
	for _, b := range s.basket {
		if b != id {
			kept = append(kept, b)
		}
	}
	s.basket = kept
}

func (s *State) basketChangedLocked() domain.BasketChanged {
	ids := make([]string, len(s.basket))
	copy(ids, s.basket)
	return domain.BasketChanged{Items: ids, Count: len(ids)}
}

// BasketIDs returns the basket ids in insertion order.
func (s *State) BasketIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.basket))
	copy(out, s.basket)
	return out
}

// BasketCount returns the number of items in the basket.
func (s *State) BasketCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.basket)
}

// BasketItems resolves basket ids against the catalog. Ids that no longer
// resolve are silently dropped from the result; basket and catalog can be
// momentarily inconsistent and that must never abort a render.
func (s *State) BasketItems() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.basketItemsLocked()
}

func (s *State) basketItemsLocked() []domain.Product {
	items := make([]domain.Product, 0, len(s.basket))
	for _, id := range s.basket {
		p, ok := s.lookup(id)
		if !ok {
			s.log.Warn("basket id not in catalog, skipping", "id", id)
			continue
		}
		items = append(items, p)
	}
	return items
}

// Total sums the resolved basket item prices. Unpriced items contribute
// zero.
func (s *State) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, p := range s.basketItemsLocked() {
		total += p.PriceValue()
	}
	return total
}

// ReconcileBasket drops every basket id that no longer resolves against the
// current catalog and returns the removed ids. The basket-changed event is
// published only when something was actually dropped.
func (s *State) ReconcileBasket() []string {
	s.mu.Lock()
	var removed []string
	kept := s.basket[:0]
	for _, id := range s.basket {
		if _, ok := s.lookup(id); ok {
			kept = append(kept, id)
			continue
		}
		removed = append(removed, id)
	}
	s.basket = kept
	if len(removed) == 0 {
		s.mu.Unlock()
		return nil
	}
	ev := s.basketChangedLocked()
	s.mu.Unlock()
	s.log.Info("stale basket items removed", "ids", removed)
	s.bus.Publish(ev)
	return removed
}

// ClearBasket empties the basket and publishes the basket-changed event.
func (s *State) ClearBasket() {
	s.mu.Lock()
	s.basket = nil
	ev := s.basketChangedLocked()
	s.mu.Unlock()
	s.bus.Publish(ev)
}

// Draft returns the current order draft.
func (s *State) Draft() domain.OrderDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// SetOrderField assigns a single draft field. Assignment has no validation
// side effect; stages are validated explicitly.
func (s *State) SetOrderField(field domain.Field, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch field {
	case domain.FieldPayment:
		s.draft.Payment = domain.PaymentMethod(value)
	case domain.FieldAddress:
		s.draft.Address = value
	case domain.FieldEmail:
		s.draft.Email = value
	case domain.FieldPhone:
		s.draft.Phone = value
	default:
		s.log.Warn("unknown order field", "field", string(field))
	}
}

// Errors returns the current validation error map. Errors are recomputed on
// every validation pass, never accumulated.
func (s *State) Errors() map[domain.Field]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[domain.Field]string, len(s.errs))
	for k, v := range s.errs {
		out[k] = v
	}
	return out
}

// ValidateAddressStage checks the address/payment form: the trimmed address
// must be at least 5 characters and the payment method one of the two known
// ones. The result event carries failing-field messages in field order,
// address before payment.
func (s *State) ValidateAddressStage() bool {
	s.mu.Lock()
	delete(s.errs, domain.FieldAddress)
	delete(s.errs, domain.FieldPayment)

	var ordered []string
	if utf8.RuneCountInString(strings.TrimSpace(s.draft.Address)) < 5 {
		s.errs[domain.FieldAddress] = msgAddressTooShort
		ordered = append(ordered, msgAddressTooShort)
	}
	if !domain.KnownPayment(s.draft.Payment) {
		s.errs[domain.FieldPayment] = msgPaymentUnknown
		ordered = append(ordered, msgPaymentUnknown)
	}
	s.mu.Unlock()

	valid := len(ordered) == 0
	s.bus.Publish(domain.AddressValidated{Valid: valid, Errors: ordered})
	return valid
}

// ValidateContactStage checks the contact form: email must have the usual
// local@domain.tld shape; the trimmed phone must be at least 10 characters
// and consist of digits with an optional leading +. Both failures are
// reported together.
func (s *State) ValidateContactStage() bool {
	s.mu.Lock()
	delete(s.errs, domain.FieldEmail)
	delete(s.errs, domain.FieldPhone)

	var ordered []string
	if !emailPattern.MatchString(s.draft.Email) {
		s.errs[domain.FieldEmail] = msgEmailInvalid
		ordered = append(ordered, msgEmailInvalid)
	}
	phone := strings.TrimSpace(s.draft.Phone)
	if utf8.RuneCountInString(phone) < 10 {
		s.errs[domain.FieldPhone] = msgPhoneTooShort
		ordered = append(ordered, msgPhoneTooShort)
	} else if !phonePattern.MatchString(phone) {
		s.errs[domain.FieldPhone] = msgPhoneBadChars
		ordered = append(ordered, msgPhoneBadChars)
	}
	s.mu.Unlock()

	valid := len(ordered) == 0
	s.bus.Publish(domain.ContactValidated{Valid: valid, Errors: ordered})
	return valid
}

// ValidateOrder gates final submission. An empty basket is reported as a
// dedicated items error and short-circuits the stage checks; otherwise both
// stages must pass.
func (s *State) ValidateOrder() bool {
	s.mu.Lock()
	delete(s.errs, domain.FieldItems)
	if len(s.basket) == 0 {
		s.errs[domain.FieldItems] = msgBasketEmpty
		s.mu.Unlock()
		return false
	}
	s.mu.Unlock()
	addressOK := s.ValidateAddressStage()
	contactOK := s.ValidateContactStage()
	return addressOK && contactOK
}

// ResetOrder clears the draft back to its empty defaults, wipes the
// validation errors and publishes the order-reset event consumed by both
// form views.
func (s *State) ResetOrder() {
	s.mu.Lock()
	s.draft = domain.OrderDraft{}
	s.errs = map[domain.Field]string{}
	s.mu.Unlock()
	s.bus.Publish(domain.OrderReset{})
}

package application_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/arozhkov/storefront/internal/store/application"
	"github.com/arozhkov/storefront/internal/store/domain"
	"github.com/arozhkov/storefront/pkg/events"
)

func price(v int64) *int64 { return &v }

func testCatalog() []domain.Product {
	return []domain.Product{
		{ID: "a", Title: "Backlog grooming hamster", Price: price(100), Category: domain.CategorySoftSkill},
		{ID: "b", Title: "Refactoring shovel", Price: price(200), Category: domain.CategoryHardSkill},
		{ID: "c", Title: "Priceless artifact", Price: nil, Category: domain.CategoryOther},
	}
}

func newTestState(t *testing.T) (*application.State, *events.Bus) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := events.New(log)
	return application.NewState(log, bus), bus
}

type recorder struct {
	events []events.Event
}

func (r *recorder) record(e events.Event) {
	r.events = append(r.events, e)
}

func (r *recorder) topics() []events.Topic {
	out := make([]events.Topic, len(r.events))
	for i, e := range r.events {
		out[i] = e.Topic()
	}
	return out
}

func TestToggleBasketItemIdempotentPairing(t *testing.T) {
	state, _ := newTestState(t)
	state.SetCatalog(testCatalog())

	state.ToggleBasketItem("a")
	state.ToggleBasketItem("b")
	state.ToggleBasketItem("a")
	state.ToggleBasketItem("a")

	ids := state.BasketIDs()
	seen := map[string]bool{}
	for _, id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %q in basket %v", id, ids)
		}
		seen[id] = true
	}
	if !state.InBasket("a") || !state.InBasket("b") {
		t.Fatalf("toggle pair should restore membership, basket=%v", ids)
	}

	state.ToggleBasketItem("a")
	state.ToggleBasketItem("b")
	if state.BasketCount() != 0 {
		t.Fatalf("expected empty basket, got %v", state.BasketIDs())
	}
}

func TestToggleUnknownIDIsNoOp(t *testing.T) {
	state, bus := newTestState(t)
	state.SetCatalog(testCatalog())

	rec := &recorder{}
	bus.Subscribe(domain.TopicBasketChanged, rec.record)

	state.ToggleBasketItem("ghost")

	if state.BasketCount() != 0 {
		t.Fatalf("unknown id must not mutate the basket, got %v", state.BasketIDs())
	}
	if len(rec.events) != 0 {
		t.Fatalf("unknown id must not publish basket-changed")
	}
}

func TestToggleUnpricedItemIsRefused(t *testing.T) {
	state, bus := newTestState(t)
	state.SetCatalog(testCatalog())

	rec := &recorder{}
	bus.Subscribe(domain.TopicBasketChanged, rec.record)

	state.ToggleBasketItem("c")

	if state.BasketCount() != 0 {
		t.Fatalf("unpriced item must not enter the basket, got %v", state.BasketIDs())
	}
	if len(rec.events) != 0 {
		t.Fatal("refused add must not publish basket-changed")
	}
}

func TestToggleRemovesItemRepricedToUnpriced(t *testing.T) {
	state, _ := newTestState(t)
	state.SetCatalog(testCatalog())
	state.ToggleBasketItem("a")

	// A catalog refresh drops the price of an item already in the basket.
	state.SetCatalog([]domain.Product{
		{ID: "a", Title: "Backlog grooming hamster", Price: nil, Category: domain.CategorySoftSkill},
	})

	state.ToggleBasketItem("a")
	if state.BasketCount() != 0 {
		t.Fatalf("removal of a now-unpriced item must still work, got %v", state.BasketIDs())
	}
}

func TestTotalSumsResolvedPrices(t *testing.T) {
	state, _ := newTestState(t)
	state.SetCatalog(testCatalog())

	state.ToggleBasketItem("a")
	state.ToggleBasketItem("b")
	if got := state.Total(); got != 300 {
		t.Fatalf("total = %d, want 300", got)
	}

	state.ToggleBasketItem("a")
	if got := state.Total(); got != 200 {
		t.Fatalf("total after removing a = %d, want 200", got)
	}
}

func TestTotalTreatsUnpricedAsZero(t *testing.T) {
	state, _ := newTestState(t)
	state.SetCatalog(testCatalog())

	state.ToggleBasketItem("b")
	state.ToggleBasketItem("c")
	if got := state.Total(); got != 200 {
		t.Fatalf("total = %d, want 200 (nil price counts as zero)", got)
	}
}

func TestBasketItemsDropUnresolvedIDs(t *testing.T) {
	state, _ := newTestState(t)
	state.SetCatalog(testCatalog())
	state.ToggleBasketItem("a")
	state.ToggleBasketItem("b")

	// Refresh drops "b" from the catalog; display resolution must not throw
	// and must skip the stale id.
	state.SetCatalog([]domain.Product{testCatalog()[0]})

	items := state.BasketItems()
	if len(items) != 1 || items[0].ID != "a" {
		t.Fatalf("expected only a to resolve, got %v", items)
	}
}

func TestReconcileBasketRemovesStaleAndPublishes(t *testing.T) {
	state, bus := newTestState(t)
	state.SetCatalog(testCatalog())
	state.ToggleBasketItem("a")
	state.ToggleBasketItem("b")

	state.SetCatalog([]domain.Product{testCatalog()[0]})

	rec := &recorder{}
	bus.Subscribe(domain.TopicBasketChanged, rec.record)

	removed := state.ReconcileBasket()
	if len(removed) != 1 || removed[0] != "b" {
		t.Fatalf("removed = %v, want [b]", removed)
	}
	if got := state.BasketIDs(); len(got) != 1 || got[0] != "a" {
		t.Fatalf("basket = %v, want [a]", got)
	}
	if len(rec.events) != 1 {
		t.Fatalf("expected one basket-changed publish, got %d", len(rec.events))
	}

	// Nothing stale left: no further publish.
	if removed := state.ReconcileBasket(); len(removed) != 0 {
		t.Fatalf("second reconcile removed %v", removed)
	}
	if len(rec.events) != 1 {
		t.Fatalf("reconcile without removals must not publish")
	}
}

func TestValidateAddressStage(t *testing.T) {
	cases := []struct {
		name    string
		address string
		payment domain.PaymentMethod
		valid   bool
		errs    []string
	}{
		{"both valid", "Kremlin, 1", domain.PaymentCard, true, nil},
		{"short address", "abc", domain.PaymentCash, false, []string{"address must be at least 5 characters"}},
		{"whitespace address", "        ", domain.PaymentCard, false, []string{"address must be at least 5 characters"}},
		{"no payment", "Kremlin, 1", domain.PaymentUnset, false, []string{"choose a payment method"}},
		{"both invalid", "ab", "", false, []string{
			"address must be at least 5 characters",
			"choose a payment method",
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			state, bus := newTestState(t)
			rec := &recorder{}
			bus.Subscribe(domain.TopicAddressValidated, rec.record)

			state.SetOrderField(domain.FieldAddress, tc.address)
			state.SetOrderField(domain.FieldPayment, string(tc.payment))

			if got := state.ValidateAddressStage(); got != tc.valid {
				t.Fatalf("valid = %v, want %v", got, tc.valid)
			}
			if len(rec.events) != 1 {
				t.Fatalf("expected one validation event, got %d", len(rec.events))
			}
			ev := rec.events[0].(domain.AddressValidated)
			if ev.Valid != tc.valid {
				t.Fatalf("event valid = %v, want %v", ev.Valid, tc.valid)
			}
			if len(ev.Errors) != len(tc.errs) {
				t.Fatalf("errors = %v, want %v", ev.Errors, tc.errs)
			}
			for i := range tc.errs {
				if ev.Errors[i] != tc.errs[i] {
					t.Fatalf("error order mismatch: %v, want %v", ev.Errors, tc.errs)
				}
			}
		})
	}
}

func TestValidateContactStage(t *testing.T) {
	cases := []struct {
		name  string
		email string
		phone string
		valid bool
	}{
		{"valid", "dev@example.com", "+71234567890", true},
		{"short phone", "dev@example.com", "12345", false},
		{"letters in phone", "dev@example.com", "555-CALL-NOW", false},
		{"bad email", "not-an-email", "+71234567890", false},
		{"missing tld", "dev@example", "+71234567890", false},
		{"plain digits ok", "dev@example.com", "4951234567", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			state, _ := newTestState(t)
			state.SetOrderField(domain.FieldEmail, tc.email)
			state.SetOrderField(domain.FieldPhone, tc.phone)
			if got := state.ValidateContactStage(); got != tc.valid {
				t.Fatalf("valid = %v, want %v", got, tc.valid)
			}
		})
	}
}

func TestValidateContactStagePhoneLengthCountsRunes(t *testing.T) {
	state, _ := newTestState(t)
	state.SetOrderField(domain.FieldEmail, "dev@example.com")
	// Five runes, fifteen bytes: byte length would sail past the minimum.
	state.SetOrderField(domain.FieldPhone, "①②③④⑤")

	if state.ValidateContactStage() {
		t.Fatal("five-character phone reported as valid")
	}
	if got := state.Errors()[domain.FieldPhone]; got != "phone must be at least 10 characters" {
		t.Fatalf("phone error = %q, want the too-short message", got)
	}
}

func TestValidateContactStageReportsBothFailures(t *testing.T) {
	state, bus := newTestState(t)
	rec := &recorder{}
	bus.Subscribe(domain.TopicContactValidated, rec.record)

	state.SetOrderField(domain.FieldEmail, "nope")
	state.SetOrderField(domain.FieldPhone, "123")
	if state.ValidateContactStage() {
		t.Fatal("expected invalid contact stage")
	}
	ev := rec.events[0].(domain.ContactValidated)
	if len(ev.Errors) != 2 {
		t.Fatalf("expected both failures reported together, got %v", ev.Errors)
	}
}

func TestValidateOrderEmptyBasketShortCircuits(t *testing.T) {
	state, bus := newTestState(t)
	rec := &recorder{}
	bus.SubscribeMatch("order:*", rec.record)

	if state.ValidateOrder() {
		t.Fatal("empty basket must fail full validation")
	}
	if got := state.Errors()[domain.FieldItems]; got != "basket is empty" {
		t.Fatalf("items error = %q", got)
	}
	// Short-circuit: no stage validation events were published.
	if len(rec.events) != 0 {
		t.Fatalf("expected no stage events, got %v", rec.topics())
	}
}

func TestValidateOrderRunsBothStages(t *testing.T) {
	state, _ := newTestState(t)
	state.SetCatalog(testCatalog())
	state.ToggleBasketItem("a")

	state.SetOrderField(domain.FieldAddress, "Lenina street 5")
	state.SetOrderField(domain.FieldPayment, "card")
	state.SetOrderField(domain.FieldEmail, "dev@example.com")
	state.SetOrderField(domain.FieldPhone, "+71234567890")
	if !state.ValidateOrder() {
		t.Fatalf("expected valid order, errors=%v", state.Errors())
	}

	state.SetOrderField(domain.FieldPhone, "12")
	if state.ValidateOrder() {
		t.Fatal("expected invalid order with bad phone")
	}
}

func TestResetOrderRestoresEmptyDefaults(t *testing.T) {
	state, bus := newTestState(t)
	rec := &recorder{}
	bus.Subscribe(domain.TopicOrderReset, rec.record)

	state.SetOrderField(domain.FieldAddress, "ab")
	state.SetOrderField(domain.FieldPayment, "card")
	state.ValidateAddressStage()
	if len(state.Errors()) == 0 {
		t.Fatal("expected validation errors before reset")
	}

	state.ResetOrder()

	if !state.Draft().Empty() {
		t.Fatalf("draft not reset: %+v", state.Draft())
	}
	if len(state.Errors()) != 0 {
		t.Fatalf("errors not cleared: %v", state.Errors())
	}
	if len(rec.events) != 1 {
		t.Fatalf("expected one order-reset event, got %d", len(rec.events))
	}
}

func TestSetCatalogNilBecomesEmpty(t *testing.T) {
	state, bus := newTestState(t)
	rec := &recorder{}
	bus.Subscribe(domain.TopicCatalogChanged, rec.record)

	state.SetCatalog(nil)

	if state.Catalog() == nil || len(state.Catalog()) != 0 {
		t.Fatalf("catalog = %v, want empty non-nil", state.Catalog())
	}
	if len(rec.events) != 1 {
		t.Fatalf("expected catalog-changed publish")
	}
}

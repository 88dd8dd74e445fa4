package events_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/arozhkov/storefront/pkg/events"
)

type testEvent struct {
	topic events.Topic
	value string
}

func (e testEvent) Topic() events.Topic { return e.topic }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSubscribePublish(t *testing.T) {
	bus := events.New(discardLogger())
	var got []string
	bus.Subscribe("basket:changed", func(e events.Event) {
		got = append(got, e.(testEvent).value)
	})

	bus.Publish(testEvent{topic: "basket:changed", value: "one"})

	if len(got) != 1 || got[0] != "one" {
		t.Fatalf("expected one delivery, got %v", got)
	}
}

func TestPublishWithoutSubscribersIsNoOp(t *testing.T) {
	bus := events.New(discardLogger())
	bus.Publish(testEvent{topic: "catalog:changed"})
}

func TestRegistrationOrderPreserved(t *testing.T) {
	bus := events.New(discardLogger())
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		bus.Subscribe("order:reset", func(events.Event) {
			order = append(order, i)
		})
	}

	bus.Publish(testEvent{topic: "order:reset"})

	for i, v := range order {
		if v != i {
			t.Fatalf("handlers ran out of registration order: %v", order)
		}
	}
	if len(order) != 5 {
		t.Fatalf("expected 5 deliveries, got %d", len(order))
	}
}

func TestPanickingHandlerDoesNotStopFanOut(t *testing.T) {
	bus := events.New(discardLogger())
	var after bool
	bus.Subscribe("basket:changed", func(events.Event) {
		panic("broken view")
	})
	bus.Subscribe("basket:changed", func(events.Event) {
		after = true
	})

	bus.Publish(testEvent{topic: "basket:changed"})

	if !after {
		t.Fatal("handler after the panicking one was not invoked")
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	bus := events.New(discardLogger())
	var count int
	sub := bus.Subscribe("modal:open", func(events.Event) { count++ })

	bus.Publish(testEvent{topic: "modal:open"})
	sub.Cancel()
	sub.Cancel()
	bus.Publish(testEvent{topic: "modal:open"})

	if count != 1 {
		t.Fatalf("expected exactly one delivery, got %d", count)
	}
}

func TestWildcardSubscription(t *testing.T) {
	bus := events.New(discardLogger())
	var topics []events.Topic
	bus.SubscribeMatch("basket:*", func(e events.Event) {
		topics = append(topics, e.Topic())
	})

	bus.Publish(testEvent{topic: "basket:changed"})
	bus.Publish(testEvent{topic: "basket:open"})
	bus.Publish(testEvent{topic: "catalog:changed"})

	if len(topics) != 2 || topics[0] != "basket:changed" || topics[1] != "basket:open" {
		t.Fatalf("wildcard matched wrong topics: %v", topics)
	}
}

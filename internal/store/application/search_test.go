package application_test

import (
	"testing"

	"github.com/arozhkov/storefront/internal/store/domain"
)

func TestSearchCatalogSubstring(t *testing.T) {
	state, _ := newTestState(t)
	state.SetCatalog(testCatalog())

	hits := state.SearchCatalog("SHOVEL")
	if len(hits) != 1 || hits[0].ID != "b" {
		t.Fatalf("hits = %v, want the shovel", hits)
	}

	if hits := state.SearchCatalog("teapot"); len(hits) != 0 {
		t.Fatalf("expected no hits, got %v", hits)
	}

	if hits := state.SearchCatalog(""); len(hits) != len(testCatalog()) {
		t.Fatalf("empty query must return the whole catalog, got %d", len(hits))
	}
}

func TestSuggestTitle(t *testing.T) {
	state, _ := newTestState(t)
	state.SetCatalog([]domain.Product{
		{ID: "a", Title: "Shovel", Price: price(100)},
		{ID: "b", Title: "Teapot", Price: price(200)},
	})

	got, ok := state.SuggestTitle("shvel")
	if !ok || got != "Shovel" {
		t.Fatalf("suggestion = %q ok=%v, want Shovel", got, ok)
	}

	if _, ok := state.SuggestTitle("quantum abacus"); ok {
		t.Fatal("distant query must yield no suggestion")
	}

	if _, ok := state.SuggestTitle("   "); ok {
		t.Fatal("blank query must yield no suggestion")
	}
}

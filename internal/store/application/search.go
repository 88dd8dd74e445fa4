package application

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/arozhkov/storefront/internal/store/domain"
)

// suggestMaxDistance caps how far a title may be from the query to still
// count as a typo rather than a different word.
const suggestMaxDistance = 3

// SearchCatalog returns the products whose title contains query,
// case-insensitively. An empty query returns the whole catalog.
func (s *State) SearchCatalog(query string) []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return s.catalog
	}
	var hits []domain.Product
	for _, p := range s.catalog {
		if strings.Contains(strings.ToLower(p.Title), q) {
			hits = append(hits, p)
		}
	}
	return hits
}

// SuggestTitle returns the catalog title closest to query when a search
// produced no hits, so the view can offer a "did you mean" correction.
// The second return is false when nothing is close enough.
func (s *State) SuggestTitle(query string) (string, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	best := ""
	bestDist := suggestMaxDistance + 1
	for _, p := range s.catalog {
		dist := levenshtein.ComputeDistance(q, strings.ToLower(p.Title))
		if dist < bestDist {
			best = p.Title
			bestDist = dist
		}
	}
	if best == "" {
		return "", false
	}
	return best, true
}

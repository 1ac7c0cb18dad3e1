// Package search filters rendered cards by a live text query.
package search

import (
	"strings"
	"sync"

	"github.com/starford/depot/internal/card"
)

// Index holds the rendered cards of one view in render order together with
// their visibility. Cards are only ever hidden, never removed.
type Index struct {
	mu      sync.RWMutex
	cards   []card.Card
	visible []bool
	query   string
}

// NewIndex returns an empty Index.
func NewIndex() *Index {
	return &Index{}
}

// Reset drops every card and clears the query.
func (ix *Index) Reset() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.cards = nil
	ix.visible = nil
	ix.query = ""
}

// Add appends a card, applying the current query to it, and returns its
// position and visibility.
func (ix *Index) Add(c card.Card) (int, bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	visible := c.Matches(ix.query)
	ix.cards = append(ix.cards, c)
	ix.visible = append(ix.visible, visible)
	return len(ix.cards) - 1, visible
}

// Apply filters every card against query and returns the resulting
// visibility in card order.
func (ix *Index) Apply(query string) []bool {
	q := strings.ToLower(query)

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.query = q
	for i, c := range ix.cards {
		ix.visible[i] = c.Matches(q)
	}
	return append([]bool(nil), ix.visible...)
}

// Visible returns the current visibility in card order.
func (ix *Index) Visible() []bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return append([]bool(nil), ix.visible...)
}

// Cards returns a copy of the cards in render order.
func (ix *Index) Cards() []card.Card {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return append([]card.Card(nil), ix.cards...)
}

// Len returns the number of cards.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.cards)
}

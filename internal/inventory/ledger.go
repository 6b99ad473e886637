// Package inventory keeps per-kind power-up counts for one player. It stands
// in for the purchasing collaborator: it only counts, it never sells.
package inventory

import (
	"errors"
	"fmt"
	"sync"

	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/game"
)

var ErrEmpty = errors.New("no units left")

type Ledger struct {
	mu     sync.Mutex
	counts map[game.PowerUpKind]int
}

// New returns a ledger holding start units of every power-up kind.
func New(start int) *Ledger {
	l := &Ledger{counts: make(map[game.PowerUpKind]int)}
	for _, k := range game.PowerUpKinds {
		l.counts[k] = max(start, 0)
	}
	return l
}

// FromCounts builds a ledger from saved counts. Kinds absent from counts
// start at zero.
func FromCounts(counts map[game.PowerUpKind]int) *Ledger {
	l := New(0)
	for k, n := range counts {
		l.counts[k] = max(n, 0)
	}
	return l
}

func (l *Ledger) Count(kind game.PowerUpKind) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counts[kind]
}

func (l *Ledger) Consume(kind game.PowerUpKind) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.counts[kind] <= 0 {
		return fmt.Errorf("consume %s: %w", kind, ErrEmpty)
	}
	l.counts[kind]--
	return nil
}

// Grant adds n units of kind.
func (l *Ledger) Grant(kind game.PowerUpKind, n int) {
	if n <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counts[kind] += n
}

// Counts returns a copy of all counts.
func (l *Ledger) Counts() map[game.PowerUpKind]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[game.PowerUpKind]int, len(l.counts))
	for k, n := range l.counts {
		out[k] = n
	}
	return out
}

package inventory

import (
	"testing"

	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerConsume(t *testing.T) {
	l := New(1)
	assert.Equal(t, 1, l.Count(game.KindMagicWand))

	require.NoError(t, l.Consume(game.KindMagicWand))
	assert.Zero(t, l.Count(game.KindMagicWand))
	assert.ErrorIs(t, l.Consume(game.KindMagicWand), ErrEmpty)
	assert.Equal(t, 1, l.Count(game.KindUndoMove))
}

func TestLedgerGrantAndCounts(t *testing.T) {
	l := FromCounts(map[game.PowerUpKind]int{game.KindPieceSwap: 2, game.KindUndoMove: -4})
	l.Grant(game.KindLineBlaster, 3)
	l.Grant(game.KindLineBlaster, -1)

	counts := l.Counts()
	assert.Equal(t, 2, counts[game.KindPieceSwap])
	assert.Equal(t, 0, counts[game.KindUndoMove])
	assert.Equal(t, 3, counts[game.KindLineBlaster])
	assert.Equal(t, 0, counts[game.KindMagicWand])

	counts[game.KindPieceSwap] = 100
	assert.Equal(t, 2, l.Count(game.KindPieceSwap))
}

package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPowerUpNotOwned(t *testing.T) {
	s := newTestSession(t)
	s.board.Set(0, 0, Cell{Filled: true, Color: 1})

	for _, p := range []PowerUp{MagicWand{}, PieceSwap{}, UndoMove{}, LineBlaster{}} {
		res := s.UsePowerUp(p, 0)
		assert.False(t, res.Success, p.Kind())
		assert.Equal(t, CodeNotOwned, res.Error, p.Kind())
		assert.False(t, res.Consumed)
	}
	assert.Equal(t, 1, s.board.FilledCount())
	assert.False(t, s.PowerUpState().AwaitingLineSelection)
}

func TestParsePowerUp(t *testing.T) {
	for _, kind := range PowerUpKinds {
		p, err := ParsePowerUp(string(kind))
		require.NoError(t, err)
		assert.Equal(t, kind, p.Kind())
	}
	_, err := ParsePowerUp("bomb")
	assert.Error(t, err)
}

func TestUndoRestoresPreCommitSnapshot(t *testing.T) {
	s := newTestSession(t, ShapeCornerNW, ShapeSingle, ShapeLine3H)
	fillRow(s.board, 3, 5)
	drop(t, s, 2, Point{0, 0})
	boardBefore := s.Board()
	handBefore := s.Hand()
	scoreBefore := s.Score()

	res := drop(t, s, 1, Point{5, 3})
	require.True(t, res.OK())
	require.Greater(t, s.Score(), scoreBefore)
	require.Equal(t, 1, s.View().LinesCleared)
	require.Equal(t, 2, s.View().Placements)

	undo := s.UsePowerUp(UndoMove{}, 1)
	require.True(t, undo.Success)
	assert.True(t, undo.Consumed)
	assert.Equal(t, boardBefore.Cells, s.board.Cells)
	assert.Equal(t, handBefore, s.Hand())
	assert.Equal(t, scoreBefore, s.Score())
	assert.Equal(t, 0, s.View().LinesCleared)
	assert.Equal(t, 1, s.View().Placements)

	again := s.UsePowerUp(UndoMove{}, 1)
	assert.False(t, again.Success)
	assert.Equal(t, CodeAlreadyUsed, again.Error)
	assert.Equal(t, boardBefore.Cells, s.board.Cells)
}

func TestUndoAfterOtherPowerUpHasNothingToUndo(t *testing.T) {
	s := newTestSession(t)
	drop(t, s, 0, Point{0, 0})
	drop(t, s, 1, Point{4, 4})
	require.True(t, s.UsePowerUp(UndoMove{}, 1).Success)
	require.True(t, s.UsePowerUp(MagicWand{}, 1).Success)
	assert.Equal(t, CodeNothingToUndo, s.UsePowerUp(UndoMove{}, 1).Error)

	drop(t, s, 1, Point{4, 4})
	require.True(t, s.UsePowerUp(UndoMove{}, 1).Success)
	require.True(t, s.UsePowerUp(PieceSwap{}, 1).Success)
	assert.Equal(t, CodeNothingToUndo, s.UsePowerUp(UndoMove{}, 1).Error)
}

func TestUndoWithoutCommit(t *testing.T) {
	s := newTestSession(t)
	res := s.UsePowerUp(UndoMove{}, 3)
	assert.Equal(t, CodeNothingToUndo, res.Error)
}

func TestMagicWandRemovesOneCell(t *testing.T) {
	s := newTestSession(t)
	assert.Equal(t, CodeBoardEmpty, s.UsePowerUp(MagicWand{}, 1).Error)

	s.board.Set(2, 2, Cell{Filled: true, Color: 1})
	s.board.Set(5, 6, Cell{Filled: true, Color: 1})
	res := s.UsePowerUp(MagicWand{}, 1)

	require.True(t, res.Success)
	assert.True(t, res.Consumed)
	assert.Equal(t, 1, s.board.FilledCount())
	assert.Zero(t, res.Cleared.Lines())
}

func TestMagicWandRadius(t *testing.T) {
	rules := DefaultRules()
	rules.WandRadius = 1
	s := NewSession(rules, 3)
	for y := 0; y < 8; y++ {
		fillRow(s.board, y, 7-y)
	}
	s.board.Set(0, 7, Cell{})
	s.board.Set(7, 0, Cell{})
	before := s.board.FilledCount()

	res := s.UsePowerUp(MagicWand{}, 1)

	require.True(t, res.Success)
	removed := before - s.board.FilledCount()
	assert.GreaterOrEqual(t, removed, 1)
	assert.LessOrEqual(t, removed, 9)
}

func TestPieceSwapKeepsBoard(t *testing.T) {
	s := newTestSession(t)
	s.board.Set(3, 3, Cell{Filled: true, Color: 2})
	s.hand[0] = nil
	drop(t, s, 1, Point{0, 0})
	require.True(t, s.HasUndo())
	board := s.Board()

	res := s.UsePowerUp(PieceSwap{}, 1)

	require.True(t, res.Success)
	assert.Equal(t, board.Cells, s.board.Cells)
	assert.Len(t, s.hand, 3)
	for _, p := range s.hand {
		assert.NotNil(t, p)
	}
	assert.False(t, s.HasUndo())
}

func TestLineBlasterFlow(t *testing.T) {
	s := newTestSession(t)
	s.board.Set(1, 4, Cell{Filled: true, Color: 2})
	s.board.Set(6, 4, Cell{Filled: true, Color: 2})
	s.board.Set(6, 1, Cell{Filled: true, Color: 2})

	assert.Equal(t, CodeNoSelection, s.SelectLine(Row, 4).Error)

	res := s.UsePowerUp(LineBlaster{}, 1)
	require.True(t, res.Success)
	assert.False(t, res.Consumed)
	assert.True(t, s.PowerUpState().AwaitingLineSelection)
	assert.Equal(t, KindLineBlaster, s.PowerUpState().Active)

	assert.Equal(t, CodeSelectionPending, s.UsePowerUp(MagicWand{}, 1).Error)
	assert.Equal(t, CodeInvalidLine, s.SelectLine(Row, 8).Error)

	sel := s.SelectLine(Row, 4)
	require.True(t, sel.Success)
	assert.True(t, sel.Consumed)
	assert.Equal(t, 2, sel.Cleared.Cells)
	assert.Equal(t, 1, s.board.FilledCount())
	assert.False(t, s.PowerUpState().AwaitingLineSelection)
	assert.Zero(t, s.Score())
}

func TestAbortLineSelection(t *testing.T) {
	s := newTestSession(t)
	assert.False(t, s.AbortLineSelection())

	s.UsePowerUp(LineBlaster{}, 1)
	assert.True(t, s.AbortLineSelection())
	assert.Equal(t, PowerUpState{}, s.PowerUpState())

	res := drop(t, s, 0, Point{0, 0})
	assert.True(t, res.OK())
}

func TestPowerUpRejectedMidDrag(t *testing.T) {
	s := newTestSession(t)
	require.True(t, s.StartDrag(0, Vec{}, Vec{}))
	assert.Equal(t, CodeDragInProgress, s.UsePowerUp(PieceSwap{}, 1).Error)
}

func TestPowerUpCanRescueGameOver(t *testing.T) {
	s := newTestSession(t, ShapeSquare3, ShapeSquare3, ShapeSquare3)
	for y := 0; y < 8; y++ {
		fillRow(s.board, y, y)
	}
	s.refreshGameOver()
	require.True(t, s.IsGameOver())

	s.UsePowerUp(LineBlaster{}, 1)
	s.SelectLine(Row, 0)
	s.UsePowerUp(LineBlaster{}, 1)
	s.SelectLine(Row, 1)
	s.UsePowerUp(LineBlaster{}, 1)
	s.SelectLine(Row, 2)

	assert.False(t, s.IsGameOver())
}

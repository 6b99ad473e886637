package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func piece(id ShapeID) *ActivePiece {
	s, _ := ShapeByID(id)
	return &ActivePiece{ShapeID: id, Color: s.Color}
}

// newTestSession returns an 8x8 session with an empty board and a known hand.
func newTestSession(t *testing.T, hand ...ShapeID) *Session {
	t.Helper()
	s := NewSession(DefaultRules(), 42)
	s.board = NewBoard(8)
	if len(hand) == 0 {
		hand = []ShapeID{ShapeSingle, ShapeSingle, ShapeSingle}
	}
	s.hand = make(Hand, len(hand))
	for i, id := range hand {
		s.hand[i] = piece(id)
	}
	s.refreshGameOver()
	return s
}

// drop drags slot i onto the anchor and releases it.
func drop(t *testing.T, s *Session, i int, anchor Point) Placement {
	t.Helper()
	require.True(t, s.StartDrag(i, Vec{}, Vec{}))
	bp := Vec{X: float64(anchor.X) + 0.4, Y: float64(anchor.Y) + 0.4}
	require.True(t, s.UpdateDrag(Vec{X: 1, Y: 1}, &bp))
	return s.EndDrag()
}

func TestNewSessionDealsFullHand(t *testing.T) {
	s := NewSession(DefaultRules(), 1)

	assert.Len(t, s.Hand(), 3)
	assert.False(t, s.Hand().IsEmpty())
	assert.Zero(t, s.Score())
	assert.False(t, s.IsGameOver())
	assert.True(t, s.CanContinue())
	assert.Equal(t, 8, s.Board().Size)
}

func TestSameSeedSameHand(t *testing.T) {
	a := NewSession(DefaultRules(), 7)
	b := NewSession(DefaultRules(), 7)
	assert.Equal(t, a.Hand(), b.Hand())
}

func TestScenarioPlaceCornerOnEmptyBoard(t *testing.T) {
	s := newTestSession(t, ShapeCornerNW, ShapeSingle, ShapeSingle)
	require.True(t, s.CanPlace(0, Point{0, 0}))

	res := drop(t, s, 0, Point{0, 0})

	require.True(t, res.OK())
	filledInRow0 := 0
	for x := 0; x < 8; x++ {
		if s.board.Cells[0][x].Filled {
			filledInRow0++
		}
	}
	assert.Equal(t, 2, filledInRow0)
	assert.Zero(t, res.Cleared.Lines())
	assert.Equal(t, 3, res.Points)
	assert.Equal(t, 3, s.Score())
}

func TestScenarioCompletingRowClearsIt(t *testing.T) {
	s := newTestSession(t)
	fillRow(s.board, 3, 5)

	res := drop(t, s, 0, Point{5, 3})

	require.True(t, res.OK())
	assert.Equal(t, []int{3}, res.Cleared.Rows)
	assert.Equal(t, 8, res.Cleared.Cells)
	assert.Equal(t, 1+10, s.Score())
	assert.Zero(t, s.board.FilledCount())
	assert.Equal(t, 1, s.View().LinesCleared)
}

func TestMultiLineComboScore(t *testing.T) {
	s := newTestSession(t)
	fillRow(s.board, 0, 0)
	fillColumn(s.board, 0, 0)

	res := drop(t, s, 0, Point{0, 0})

	require.True(t, res.OK())
	assert.Equal(t, 2, res.Cleared.Lines())
	assert.Equal(t, 15, res.Cleared.Cells)
	assert.Equal(t, 1+50, res.Points)
}

func TestBestScoreTracksAndSurvivesRestart(t *testing.T) {
	s := newTestSession(t)
	fillRow(s.board, 3, 5)
	drop(t, s, 0, Point{5, 3})
	require.Equal(t, 11, s.BestScore())

	s.Restart()
	assert.Zero(t, s.Score())
	assert.Equal(t, 11, s.BestScore())
	assert.Zero(t, s.board.FilledCount())
	assert.False(t, s.Hand().IsEmpty())
	assert.True(t, s.CanContinue())
	assert.False(t, s.HasUndo())
	assert.False(t, s.DragState().IsDragging)

	s.SetBestScore(5)
	assert.Equal(t, 11, s.BestScore())
}

func TestGameOverWhenNothingFits(t *testing.T) {
	s := newTestSession(t, ShapeSingle, ShapeSquare3, ShapeSquare3)
	// A checkerboard of holes leaves room for singles only.
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if (x+y)%2 == 0 && !(x == 7 && y == 7) {
				s.board.Set(x, y, Cell{Filled: true, Color: 1})
			}
		}
	}
	require.False(t, s.CanPieceBePlaced(1))

	res := drop(t, s, 0, Point{1, 0})

	require.True(t, res.OK())
	assert.True(t, res.GameOver)
	assert.True(t, s.IsGameOver())
	assert.False(t, s.StartDrag(1, Vec{}, Vec{}))
}

func TestContinueClearsRowsOnce(t *testing.T) {
	s := newTestSession(t, ShapeSquare3, ShapeSquare3, ShapeSquare3)
	for y := 0; y < 8; y++ {
		fillRow(s.board, y, y)
	}
	s.refreshGameOver()
	require.True(t, s.IsGameOver())

	res := s.Continue()

	require.True(t, res.OK)
	assert.Len(t, res.RowsCleared, 4)
	for _, y := range res.RowsCleared {
		assert.True(t, s.board.RowIsEmpty(y))
	}
	assert.Equal(t, 8*7-4*7, s.board.FilledCount())
	assert.False(t, s.IsGameOver())
	assert.False(t, s.CanContinue())

	s.gameOver = true
	assert.Equal(t, CodeContinueUsed, s.Continue().Error)
}

func TestContinueRequiresGameOver(t *testing.T) {
	s := newTestSession(t)
	res := s.Continue()
	assert.False(t, res.OK)
	assert.Equal(t, CodeNotGameOver, res.Error)
	assert.True(t, s.CanContinue())
}

func TestSaveRestore(t *testing.T) {
	s := newTestSession(t, ShapeCornerNW, ShapeSingle, ShapeLine3H)
	drop(t, s, 0, Point{2, 2})
	saved := s.Save()

	other := NewSession(DefaultRules(), 99)
	require.NoError(t, other.Restore(saved))

	assert.Equal(t, s.board.Cells, other.board.Cells)
	assert.Equal(t, s.Hand(), other.Hand())
	assert.Equal(t, s.Score(), other.Score())
	assert.Equal(t, s.BestScore(), other.BestScore())
	assert.Equal(t, 1, other.View().Placements)
	assert.False(t, other.HasUndo())
}

func TestRestoreRejectsMismatch(t *testing.T) {
	s := newTestSession(t)
	saved := s.Save()

	small := NewSession(Rules{BoardSize: 6}, 1)
	assert.ErrorIs(t, small.Restore(saved), ErrBoardDimension)

	saved.Hand = saved.Hand[:2]
	assert.ErrorIs(t, NewSession(DefaultRules(), 1).Restore(saved), ErrHandSize)

	saved = s.Save()
	saved.Board = saved.Board[:10]
	assert.ErrorIs(t, NewSession(DefaultRules(), 1).Restore(saved), ErrBoardDimension)
}

package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fillRow(b *Board, y int, skip ...int) {
	for x := 0; x < b.Size; x++ {
		if containsInt(skip, x) {
			continue
		}
		b.Set(x, y, Cell{Filled: true, Color: 7})
	}
}

func fillColumn(b *Board, x int, skip ...int) {
	for y := 0; y < b.Size; y++ {
		if containsInt(skip, y) {
			continue
		}
		b.Set(x, y, Cell{Filled: true, Color: 7})
	}
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func TestCanPlaceMatchesDefinition(t *testing.T) {
	b := NewBoard(8)
	b.Set(3, 3, Cell{Filled: true, Color: 2})
	b.Set(7, 0, Cell{Filled: true, Color: 2})

	for _, shape := range Shapes() {
		for y := -2; y < b.Size+2; y++ {
			for x := -2; x < b.Size+2; x++ {
				want := true
				for _, c := range shape.Cells {
					ax, ay := x+c.X, y+c.Y
					if ax < 0 || ay < 0 || ax >= b.Size || ay >= b.Size || b.Cells[ay][ax].Filled {
						want = false
						break
					}
				}
				assert.Equal(t, want, b.CanPlace(shape, x, y), "shape %s at (%d,%d)", shape.Name, x, y)
			}
		}
	}
}

func TestCanPlaceEmptyShapeFails(t *testing.T) {
	assert.False(t, NewBoard(8).CanPlace(Shape{}, 0, 0))
}

func TestPlaceReturnsAffectedCells(t *testing.T) {
	b := NewBoard(8)
	p := ActivePiece{ShapeID: ShapeCornerNW, Color: 5}

	require.True(t, b.CanPlace(p.Shape(), 0, 0))
	placed := b.Place(p, Point{X: 0, Y: 0})

	assert.ElementsMatch(t, []Point{{0, 0}, {1, 0}, {0, 1}}, placed)
	assert.Equal(t, Cell{Filled: true, Color: 5}, b.At(1, 0))
	assert.Equal(t, 3, b.FilledCount())
}

func TestClearFullLinesCountsIntersectionOnce(t *testing.T) {
	b := NewBoard(8)
	fillRow(b, 2)
	fillColumn(b, 4)
	b.Set(0, 7, Cell{Filled: true, Color: 1})
	before := b.FilledCount()
	require.Equal(t, 8+8-1+1, before)

	res := b.ClearFullLines()

	assert.Equal(t, []int{2}, res.Rows)
	assert.Equal(t, []int{4}, res.Columns)
	assert.Equal(t, 15, res.Cells)
	assert.Equal(t, 2, res.Lines())
	assert.Equal(t, before-res.Cells, b.FilledCount())

	rows, cols := b.FullLines()
	assert.Empty(t, rows)
	assert.Empty(t, cols)
}

func TestClearLineIgnoresFullness(t *testing.T) {
	b := NewBoard(8)
	b.Set(1, 5, Cell{Filled: true, Color: 1})
	b.Set(6, 5, Cell{Filled: true, Color: 1})
	b.Set(6, 2, Cell{Filled: true, Color: 1})

	res := b.ClearLine(Row, 5)
	assert.Equal(t, 2, res.Cells)
	assert.Equal(t, 1, b.FilledCount())

	res = b.ClearLine(Column, 6)
	assert.Equal(t, 1, res.Cells)
	assert.Zero(t, b.FilledCount())

	assert.Zero(t, b.ClearLine(Row, 8).Lines())
}

func TestFlatRoundTrip(t *testing.T) {
	b := NewBoard(8)
	b.Set(2, 3, Cell{Filled: true, Color: 4})
	b.Set(7, 7, Cell{Filled: true, Color: 1})

	got, err := BoardFromFlat(b.ToFlat(), 8)
	require.NoError(t, err)
	assert.Equal(t, b.Cells, got.Cells)

	_, err = BoardFromFlat(b.ToFlat(), 9)
	assert.ErrorIs(t, err, ErrBoardDimension)
}

func TestHasFit(t *testing.T) {
	b := NewBoard(4)
	for y := 0; y < 4; y++ {
		fillRow(b, y)
	}
	b.Set(3, 3, Cell{})
	single, _ := ShapeByID(ShapeSingle)
	domino, _ := ShapeByID(ShapeDominoH)

	assert.True(t, b.HasFit(single))
	assert.False(t, b.HasFit(domino))
}

func TestShapeCatalog(t *testing.T) {
	for i, s := range Shapes() {
		assert.Equal(t, ShapeID(i), s.ID)
		assert.NotEmpty(t, s.Cells, s.Name)
		assert.Positive(t, s.Color, s.Name)
	}
	sq, ok := ShapeByID(ShapeSquare3)
	require.True(t, ok)
	assert.Equal(t, 3, sq.Width())
	assert.Equal(t, 3, sq.Height())
	assert.True(t, sq.Contains(2, 2))

	_, ok = ShapeByID(shapeCount)
	assert.False(t, ok)
}

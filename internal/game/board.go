package game

import "errors"

// DefaultBoardSize is the edge length of a standard square board.
const DefaultBoardSize = 8

// ErrBoardDimension reports a board whose shape does not match the session.
var ErrBoardDimension = errors.New("board dimension mismatch")

// Point is an integer grid coordinate. X is the column, Y the row.
type Point struct {
	X, Y int
}

type Cell struct {
	Filled bool
	Color  int
}

// Board is a square grid of cells addressed as Cells[y][x].
type Board struct {
	Cells [][]Cell
	Size  int
}

func NewBoard(size int) *Board {
	cells := make([][]Cell, size)
	for i := range cells {
		cells[i] = make([]Cell, size)
	}
	return &Board{
		Cells: cells,
		Size:  size,
	}
}

func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && x < b.Size && y >= 0 && y < b.Size
}

// At returns the cell at (x, y). Out-of-bounds coordinates read as filled so
// that callers probing the edge fail closed.
func (b *Board) At(x, y int) Cell {
	if !b.InBounds(x, y) {
		return Cell{Filled: true}
	}
	return b.Cells[y][x]
}

func (b *Board) Set(x, y int, c Cell) {
	if b.InBounds(x, y) {
		b.Cells[y][x] = c
	}
}

// CanPlace reports whether every cell of shape, offset by the anchor, lies on
// the board and is empty.
func (b *Board) CanPlace(shape Shape, anchorX, anchorY int) bool {
	if len(shape.Cells) == 0 {
		return false
	}
	for _, c := range shape.Cells {
		x := anchorX + c.X
		y := anchorY + c.Y
		if !b.InBounds(x, y) {
			return false
		}
		if b.Cells[y][x].Filled {
			return false
		}
	}
	return true
}

// Place writes the piece onto the board and returns the coordinates it
// filled. Callers must check CanPlace first; Place does not validate.
func (b *Board) Place(p ActivePiece, anchor Point) []Point {
	shape := p.Shape()
	placed := make([]Point, 0, len(shape.Cells))
	for _, c := range shape.Cells {
		pt := Point{X: anchor.X + c.X, Y: anchor.Y + c.Y}
		b.Set(pt.X, pt.Y, Cell{Filled: true, Color: p.Color})
		placed = append(placed, pt)
	}
	return placed
}

// HasFit reports whether shape fits anywhere on the board.
func (b *Board) HasFit(shape Shape) bool {
	for y := 0; y < b.Size; y++ {
		for x := 0; x < b.Size; x++ {
			if b.CanPlace(shape, x, y) {
				return true
			}
		}
	}
	return false
}

// FilledCount returns the number of filled cells.
func (b *Board) FilledCount() int {
	n := 0
	for y := range b.Cells {
		for x := range b.Cells[y] {
			if b.Cells[y][x].Filled {
				n++
			}
		}
	}
	return n
}

// FilledCells lists filled coordinates in row-major order.
func (b *Board) FilledCells() []Point {
	var pts []Point
	for y := 0; y < b.Size; y++ {
		for x := 0; x < b.Size; x++ {
			if b.Cells[y][x].Filled {
				pts = append(pts, Point{X: x, Y: y})
			}
		}
	}
	return pts
}

// RowIsEmpty reports whether row y has no filled cell.
func (b *Board) RowIsEmpty(y int) bool {
	for x := 0; x < b.Size; x++ {
		if b.Cells[y][x].Filled {
			return false
		}
	}
	return true
}

func (b *Board) Clone() *Board {
	c := NewBoard(b.Size)
	for y := range b.Cells {
		copy(c.Cells[y], b.Cells[y])
	}
	return c
}

// ToFlat returns the board as a flat array of color indices (0 = empty).
func (b *Board) ToFlat() []int {
	flat := make([]int, b.Size*b.Size)
	for y := 0; y < b.Size; y++ {
		for x := 0; x < b.Size; x++ {
			if b.Cells[y][x].Filled {
				color := b.Cells[y][x].Color
				if color == 0 {
					color = 1
				}
				flat[y*b.Size+x] = color
			}
		}
	}
	return flat
}

// BoardFromFlat reconstructs a Board from a flat color-index array.
func BoardFromFlat(flat []int, size int) (*Board, error) {
	if size <= 0 || len(flat) != size*size {
		return nil, ErrBoardDimension
	}
	b := NewBoard(size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if v := flat[y*size+x]; v != 0 {
				b.Cells[y][x] = Cell{Filled: true, Color: v}
			}
		}
	}
	return b, nil
}

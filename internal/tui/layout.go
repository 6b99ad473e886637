package tui

import "github.com/alexlanpowell/blocktopia-v0-sub000/internal/game"

// Screen layout. The view is drawn from the top-left corner so mouse
// coordinates map directly onto these positions.
const (
	cellWidth    = 2
	boardOriginX = 1 // left border
	boardOriginY = 2 // title line, top border
	slotCells    = 5
	slotWidth    = slotCells*cellWidth + 2
	handRows     = slotCells
)

// Layout locates the board and hand for a board of Size cells per side.
type Layout struct {
	Size int
}

func (l Layout) Geometry() game.Geometry {
	return game.Geometry{
		OriginX: boardOriginX,
		OriginY: boardOriginY,
		CellW:   cellWidth,
		CellH:   1,
		Size:    l.Size,
	}
}

// HandTop is the first screen row of the hand: below the bottom border and
// one blank line.
func (l Layout) HandTop() int {
	return boardOriginY + l.Size + 2
}

// SlotAt returns the hand slot under screen position (x, y) and the offset
// of that position from the slot's top-left corner.
func (l Layout) SlotAt(x, y, handSize int) (int, game.Vec, bool) {
	top := l.HandTop()
	if x < 0 || y < top || y >= top+handRows {
		return 0, game.Vec{}, false
	}
	slot := x / slotWidth
	dx := x - slot*slotWidth
	if slot >= handSize || dx >= slotCells*cellWidth {
		return 0, game.Vec{}, false
	}
	return slot, game.Vec{X: float64(dx), Y: float64(y - top)}, true
}

// CellAt returns the board cell under screen position (x, y).
func (l Layout) CellAt(x, y int) (col, row int, ok bool) {
	col = (x - boardOriginX) / cellWidth
	row = y - boardOriginY
	if x < boardOriginX || y < boardOriginY || col >= l.Size || row >= l.Size {
		return 0, 0, false
	}
	return col, row, true
}

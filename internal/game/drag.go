package game

import "math"

// Vec is a floating-point screen or board coordinate.
type Vec struct {
	X, Y float64
}

func (v Vec) Sub(o Vec) Vec { return Vec{X: v.X - o.X, Y: v.Y - o.Y} }

// Geometry maps screen coordinates onto the board. CellW and CellH are the
// on-screen size of one cell.
type Geometry struct {
	OriginX, OriginY float64
	CellW, CellH     float64
	Size             int
}

// ToBoard converts a pointer position into floating board coordinates of the
// piece anchor. touchOffset is the distance from the anchor's top-left corner
// to the contact point, in screen units. ok is false off the board.
func (g Geometry) ToBoard(pointer, touchOffset Vec) (Vec, bool) {
	if g.CellW <= 0 || g.CellH <= 0 {
		return Vec{}, false
	}
	p := pointer.Sub(touchOffset)
	bx := (p.X - g.OriginX) / g.CellW
	by := (p.Y - g.OriginY) / g.CellH
	n := float64(g.Size)
	// Half a cell of slack so a piece dropped slightly past the left or top
	// edge still snaps to column or row zero.
	if bx < -0.5 || by < -0.5 || bx >= n || by >= n {
		return Vec{}, false
	}
	return Vec{X: math.Max(bx, 0), Y: math.Max(by, 0)}, true
}

// DragState is the pointer-driven sub-state. When IsDragging is false no
// other field is meaningful. A nil BoardPos means the pointer is off the board.
type DragState struct {
	IsDragging  bool
	PieceIndex  int
	Pointer     Vec
	TouchOffset Vec
	BoardPos    *Vec

	// Anchor and Fits are the preview derived from BoardPos.
	Anchor *Point
	Fits   bool
}

func (d DragState) clone() DragState {
	if d.BoardPos != nil {
		bp := *d.BoardPos
		d.BoardPos = &bp
	}
	if d.Anchor != nil {
		a := *d.Anchor
		d.Anchor = &a
	}
	return d
}

// AnchorFor floors a floating board position to the candidate anchor.
func AnchorFor(boardPos Vec) Point {
	return Point{X: int(math.Floor(boardPos.X)), Y: int(math.Floor(boardPos.Y))}
}

// DragOutcome is the terminal classification of a drag.
type DragOutcome int

const (
	// Ignored means the call arrived with no drag in progress.
	Ignored DragOutcome = iota
	Committed
	Rejected
	Cancelled
)

func (o DragOutcome) String() string {
	switch o {
	case Committed:
		return "committed"
	case Rejected:
		return "rejected"
	case Cancelled:
		return "cancelled"
	default:
		return "ignored"
	}
}

// RejectReason explains a Rejected outcome.
type RejectReason string

const (
	RejectOffBoard         RejectReason = "off_board"
	RejectBlocked          RejectReason = "blocked"
	RejectSelectionPending RejectReason = "selection_pending"
)

// Placement is the result of EndDrag.
type Placement struct {
	Outcome    DragOutcome
	Reason     RejectReason
	PieceIndex int
	Piece      ActivePiece
	Anchor     Point
	Placed     []Point
	Cleared    ClearResult
	Points     int
	HandDealt  bool
	GameOver   bool
}

func (p Placement) OK() bool { return p.Outcome == Committed }

// StartDrag picks up hand slot pieceIndex. It is rejected while another
// drag is in progress, after game over, or for an empty slot.
func (s *Session) StartDrag(pieceIndex int, pointer, touchOffset Vec) bool {
	if s.drag.IsDragging || s.gameOver {
		return false
	}
	if _, ok := s.hand.Piece(pieceIndex); !ok {
		return false
	}
	s.drag = DragState{
		IsDragging:  true,
		PieceIndex:  pieceIndex,
		Pointer:     pointer,
		TouchOffset: touchOffset,
	}
	return true
}

// UpdateDrag records the latest pointer sample and refreshes the preview.
// It never touches the board.
func (s *Session) UpdateDrag(pointer Vec, boardPos *Vec) bool {
	if !s.drag.IsDragging {
		return false
	}
	s.drag.Pointer = pointer
	if boardPos == nil {
		s.drag.BoardPos = nil
		s.drag.Anchor = nil
		s.drag.Fits = false
		return true
	}
	bp := *boardPos
	anchor := AnchorFor(bp)
	s.drag.BoardPos = &bp
	s.drag.Anchor = &anchor
	s.drag.Fits = s.CanPlace(s.drag.PieceIndex, anchor)
	return true
}

// EndDrag resolves the drag. A legal drop commits: the undo snapshot is
// captured, the piece placed and removed from the hand, full lines cleared,
// the score updated, the hand re-dealt if empty and game over re-evaluated.
// Anything else leaves the board untouched. The machine is idle afterwards.
func (s *Session) EndDrag() Placement {
	if !s.drag.IsDragging {
		return Placement{Outcome: Ignored}
	}
	d := s.drag
	s.drag = DragState{}

	res := Placement{Outcome: Rejected, PieceIndex: d.PieceIndex}
	if s.power.AwaitingLineSelection {
		res.Reason = RejectSelectionPending
		return res
	}
	if d.BoardPos == nil {
		res.Reason = RejectOffBoard
		return res
	}
	piece, ok := s.hand.Piece(d.PieceIndex)
	if !ok {
		res.Reason = RejectBlocked
		return res
	}
	anchor := AnchorFor(*d.BoardPos)
	res.Piece = piece
	res.Anchor = anchor
	if !s.board.CanPlace(piece.Shape(), anchor.X, anchor.Y) {
		res.Reason = RejectBlocked
		return res
	}

	s.undo = &UndoSnapshot{
		Board:      s.board.Clone(),
		Score:      s.score,
		Hand:       s.hand.Clone(),
		Lines:      s.lines,
		Placements: s.placements,
	}
	s.undoSpent = false

	res.Outcome = Committed
	res.Placed = s.board.Place(piece, anchor)
	s.hand[d.PieceIndex] = nil
	res.Cleared = s.board.ClearFullLines()
	res.Points = s.rules.Scoring.Award(len(res.Placed), res.Cleared.Lines())
	s.addScore(res.Points)
	s.lines += res.Cleared.Lines()
	s.placements++

	if s.hand.IsEmpty() {
		s.hand = s.gen.Deal(s.rules.HandSize, s.board, s.rules.HandFitRetries)
		res.HandDealt = true
	}
	s.refreshGameOver()
	res.GameOver = s.gameOver
	return res
}

// CancelDrag abandons the drag without touching the board. It is a no-op
// when no drag is in progress, so a cancel racing a finished EndDrag can
// never undo the commit.
func (s *Session) CancelDrag() bool {
	if !s.drag.IsDragging {
		return false
	}
	s.drag = DragState{}
	return true
}

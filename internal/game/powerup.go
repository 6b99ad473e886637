package game

import "fmt"

// PowerUpKind names a power-up variant on the wire and in inventories.
type PowerUpKind string

const (
	KindMagicWand   PowerUpKind = "magic_wand"
	KindPieceSwap   PowerUpKind = "piece_swap"
	KindUndoMove    PowerUpKind = "undo_move"
	KindLineBlaster PowerUpKind = "line_blaster"
)

// PowerUpKinds lists every variant in display order.
var PowerUpKinds = []PowerUpKind{KindMagicWand, KindPieceSwap, KindUndoMove, KindLineBlaster}

// ErrorCode is a stable, caller-facing failure code.
type ErrorCode string

const (
	CodeNotOwned         ErrorCode = "not_owned"
	CodeAlreadyUsed      ErrorCode = "already_used"
	CodeNothingToUndo    ErrorCode = "nothing_to_undo"
	CodeBoardEmpty       ErrorCode = "board_empty"
	CodeSelectionPending ErrorCode = "selection_pending"
	CodeNoSelection      ErrorCode = "no_selection"
	CodeInvalidLine      ErrorCode = "invalid_line"
	CodeDragInProgress   ErrorCode = "drag_in_progress"
	CodeUnknownPowerUp   ErrorCode = "unknown_power_up"
	CodeNotGameOver      ErrorCode = "not_game_over"
	CodeContinueUsed     ErrorCode = "continue_used"
)

// PowerUpState tracks an activated power-up that needs further input.
// While AwaitingLineSelection is set normal drag commits are refused.
type PowerUpState struct {
	Active                PowerUpKind
	AwaitingLineSelection bool
}

// PowerUpResult is returned by every power-up operation. Consumed tells the
// inventory collaborator to charge one unit of Kind.
type PowerUpResult struct {
	Kind     PowerUpKind
	Success  bool
	Message  string
	Error    ErrorCode
	Consumed bool
	Cleared  ClearResult
}

func failed(kind PowerUpKind, code ErrorCode) PowerUpResult {
	return PowerUpResult{Kind: kind, Error: code}
}

// PowerUp is the closed set of power-up effects. The unexported method keeps
// other packages from adding variants.
type PowerUp interface {
	Kind() PowerUpKind
	apply(s *Session) PowerUpResult
}

type MagicWand struct{}
type PieceSwap struct{}
type UndoMove struct{}
type LineBlaster struct{}

func (MagicWand) Kind() PowerUpKind { return KindMagicWand }
func (PieceSwap) Kind() PowerUpKind { return KindPieceSwap }
func (UndoMove) Kind() PowerUpKind { return KindUndoMove }
func (LineBlaster) Kind() PowerUpKind { return KindLineBlaster }

// ParsePowerUp maps a wire name to its variant.
func ParsePowerUp(name string) (PowerUp, error) {
	switch PowerUpKind(name) {
	case KindMagicWand:
		return MagicWand{}, nil
	case KindPieceSwap:
		return PieceSwap{}, nil
	case KindUndoMove:
		return UndoMove{}, nil
	case KindLineBlaster:
		return LineBlaster{}, nil
	}
	return nil, fmt.Errorf("%s: %q", CodeUnknownPowerUp, name)
}

// UsePowerUp applies p. owned is the caller's inventory count for p's kind;
// with none owned the call fails with CodeNotOwned and changes nothing.
// Decrementing the inventory is the caller's job, driven by Consumed.
func (s *Session) UsePowerUp(p PowerUp, owned int) PowerUpResult {
	if p == nil {
		return failed("", CodeUnknownPowerUp)
	}
	kind := p.Kind()
	if owned <= 0 {
		return failed(kind, CodeNotOwned)
	}
	if s.power.AwaitingLineSelection {
		return failed(kind, CodeSelectionPending)
	}
	if s.drag.IsDragging {
		return failed(kind, CodeDragInProgress)
	}
	res := p.apply(s)
	res.Kind = kind
	return res
}

func (MagicWand) apply(s *Session) PowerUpResult {
	filled := s.board.FilledCells()
	if len(filled) == 0 {
		return failed(KindMagicWand, CodeBoardEmpty)
	}
	target := filled[s.rng.Intn(len(filled))]
	r := s.rules.WandRadius
	removed := 0
	for y := target.Y - r; y <= target.Y+r; y++ {
		for x := target.X - r; x <= target.X+r; x++ {
			if s.board.InBounds(x, y) && s.board.Cells[y][x].Filled {
				s.board.Set(x, y, Cell{})
				removed++
			}
		}
	}
	// Removing cells cannot complete a line; the scan keeps the board
	// invariant that no full line survives a mutation.
	cleared := s.board.ClearFullLines()
	s.dropUndo()
	s.refreshGameOver()
	return PowerUpResult{
		Success:  true,
		Consumed: true,
		Message:  fmt.Sprintf("removed %d cell(s)", removed),
		Cleared:  cleared,
	}
}

func (PieceSwap) apply(s *Session) PowerUpResult {
	s.hand = s.gen.Deal(s.rules.HandSize, s.board, s.rules.HandFitRetries)
	s.dropUndo()
	s.refreshGameOver()
	return PowerUpResult{Success: true, Consumed: true, Message: "new pieces dealt"}
}

func (UndoMove) apply(s *Session) PowerUpResult {
	if s.undo == nil {
		if s.undoSpent {
			return failed(KindUndoMove, CodeAlreadyUsed)
		}
		return failed(KindUndoMove, CodeNothingToUndo)
	}
	s.board = s.undo.Board.Clone()
	s.score = s.undo.Score
	s.hand = s.undo.Hand.Clone()
	s.lines = s.undo.Lines
	s.placements = s.undo.Placements
	s.undo = nil
	s.undoSpent = true
	s.refreshGameOver()
	return PowerUpResult{Success: true, Consumed: true, Message: "last move undone"}
}

func (LineBlaster) apply(s *Session) PowerUpResult {
	s.power = PowerUpState{Active: KindLineBlaster, AwaitingLineSelection: true}
	return PowerUpResult{Success: true, Message: "select a row or column"}
}

// SelectLine completes a pending line blaster by emptying the chosen row or
// column, full or not. No points are awarded.
func (s *Session) SelectLine(axis Axis, index int) PowerUpResult {
	if !s.power.AwaitingLineSelection {
		return failed(KindLineBlaster, CodeNoSelection)
	}
	if index < 0 || index >= s.board.Size || (axis != Row && axis != Column) {
		return failed(KindLineBlaster, CodeInvalidLine)
	}
	cleared := s.board.ClearLine(axis, index)
	s.power = PowerUpState{}
	s.dropUndo()
	s.refreshGameOver()
	return PowerUpResult{
		Kind:     KindLineBlaster,
		Success:  true,
		Consumed: true,
		Message:  fmt.Sprintf("cleared %s %d", axis, index),
		Cleared:  cleared,
	}
}

// AbortLineSelection leaves line-selection mode without charging anything.
func (s *Session) AbortLineSelection() bool {
	if !s.power.AwaitingLineSelection {
		return false
	}
	s.power = PowerUpState{}
	return true
}

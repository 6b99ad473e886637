package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/engine"
	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/game"
)

var ErrUnknownType = errors.New("unknown message type")

// DecodeCommand turns a client envelope into a processor command.
func DecodeCommand(env RawEnvelope) (engine.Command, error) {
	switch env.Type {
	case MsgStartDrag:
		var p StartDragPayload
		if err := decodePayload(env, &p); err != nil {
			return nil, err
		}
		return engine.StartDrag{
			PieceIndex:  p.PieceIndex,
			Pointer:     game.Vec{X: p.PointerX, Y: p.PointerY},
			TouchOffset: game.Vec{X: p.OffsetX, Y: p.OffsetY},
		}, nil
	case MsgUpdateDrag:
		var p UpdateDragPayload
		if err := decodePayload(env, &p); err != nil {
			return nil, err
		}
		cmd := engine.UpdateDrag{Pointer: game.Vec{X: p.PointerX, Y: p.PointerY}}
		if p.BoardX != nil && p.BoardY != nil {
			cmd.BoardPos = &game.Vec{X: *p.BoardX, Y: *p.BoardY}
		}
		return cmd, nil
	case MsgEndDrag:
		return engine.EndDrag{}, nil
	case MsgCancelDrag:
		return engine.CancelDrag{}, nil
	case MsgUsePowerUp:
		var p UsePowerUpPayload
		if err := decodePayload(env, &p); err != nil {
			return nil, err
		}
		return engine.UsePowerUp{Kind: game.PowerUpKind(p.Kind)}, nil
	case MsgSelectLine:
		var p SelectLinePayload
		if err := decodePayload(env, &p); err != nil {
			return nil, err
		}
		axis, err := parseAxis(p.Axis)
		if err != nil {
			return nil, err
		}
		return engine.SelectLine{Axis: axis, Index: p.Index}, nil
	case MsgAbortLineSelection:
		return engine.AbortLineSelection{}, nil
	case MsgRestart:
		return engine.Restart{}, nil
	case MsgContinue:
		return engine.Continue{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
}

func decodePayload(env RawEnvelope, v interface{}) error {
	if len(env.Payload) == 0 || string(env.Payload) == "null" {
		return fmt.Errorf("%s: missing payload", env.Type)
	}
	if err := json.Unmarshal(env.Payload, v); err != nil {
		return fmt.Errorf("%s: %w", env.Type, err)
	}
	return nil
}

func parseAxis(s string) (game.Axis, error) {
	switch s {
	case "row":
		return game.Row, nil
	case "column":
		return game.Column, nil
	}
	return 0, fmt.Errorf("%s: %q", game.CodeInvalidLine, s)
}

// EncodeCommand is the inverse of DecodeCommand.
func EncodeCommand(cmd engine.Command) (Envelope, error) {
	switch c := cmd.(type) {
	case engine.StartDrag:
		return Envelope{Type: MsgStartDrag, Payload: StartDragPayload{
			PieceIndex: c.PieceIndex,
			PointerX:   c.Pointer.X,
			PointerY:   c.Pointer.Y,
			OffsetX:    c.TouchOffset.X,
			OffsetY:    c.TouchOffset.Y,
		}}, nil
	case engine.UpdateDrag:
		p := UpdateDragPayload{PointerX: c.Pointer.X, PointerY: c.Pointer.Y}
		if c.BoardPos != nil {
			x, y := c.BoardPos.X, c.BoardPos.Y
			p.BoardX, p.BoardY = &x, &y
		}
		return Envelope{Type: MsgUpdateDrag, Payload: p}, nil
	case engine.EndDrag:
		return Envelope{Type: MsgEndDrag}, nil
	case engine.CancelDrag:
		return Envelope{Type: MsgCancelDrag}, nil
	case engine.UsePowerUp:
		return Envelope{Type: MsgUsePowerUp, Payload: UsePowerUpPayload{Kind: string(c.Kind)}}, nil
	case engine.SelectLine:
		return Envelope{Type: MsgSelectLine, Payload: SelectLinePayload{Axis: c.Axis.String(), Index: c.Index}}, nil
	case engine.AbortLineSelection:
		return Envelope{Type: MsgAbortLineSelection}, nil
	case engine.Restart:
		return Envelope{Type: MsgRestart}, nil
	case engine.Continue:
		return Envelope{Type: MsgContinue}, nil
	}
	return Envelope{}, fmt.Errorf("%w: %T", ErrUnknownType, cmd)
}

// NewState builds the wire snapshot of v. inventory may be nil.
func NewState(seq uint64, v game.View, inventory map[game.PowerUpKind]int) StatePayload {
	st := StatePayload{
		Seq:                   seq,
		Score:                 v.Score,
		BestScore:             v.BestScore,
		LinesCleared:          v.LinesCleared,
		Placements:            v.Placements,
		GameOver:              v.GameOver,
		CanContinue:           v.CanContinue,
		HasUndo:               v.HasUndo,
		ActivePowerUp:         string(v.PowerUp.Active),
		AwaitingLineSelection: v.PowerUp.AwaitingLineSelection,
		Inventory:             make(map[string]int, len(inventory)),
	}
	if v.Board != nil {
		st.Size = v.Board.Size
		st.Board = v.Board.ToFlat()
	}
	for kind, n := range inventory {
		st.Inventory[string(kind)] = n
	}

	st.Hand = make([]HandSlot, len(v.Hand))
	for i, p := range v.Hand {
		if p == nil {
			st.Hand[i] = HandSlot{Empty: true}
			continue
		}
		shape := p.Shape()
		slot := HandSlot{Shape: shape.Name, Color: p.Color, Cells: cellsOf(shape.Cells, 0, 0)}
		if v.Board != nil {
			slot.Fits = v.Board.HasFit(shape)
		}
		st.Hand[i] = slot
	}

	if d := v.Drag; d.IsDragging {
		dv := &DragView{
			PieceIndex: d.PieceIndex,
			PointerX:   d.Pointer.X,
			PointerY:   d.Pointer.Y,
			Fits:       d.Fits,
		}
		if d.Anchor != nil {
			dv.OnBoard = true
			dv.AnchorX, dv.AnchorY = d.Anchor.X, d.Anchor.Y
			if p, ok := v.Hand.Piece(d.PieceIndex); ok {
				for _, c := range cellsOf(p.Shape().Cells, d.Anchor.X, d.Anchor.Y) {
					if v.Board == nil || v.Board.InBounds(c.X, c.Y) {
						dv.Preview = append(dv.Preview, c)
					}
				}
			}
		}
		st.Drag = dv
	}
	return st
}

func cellsOf(points []game.Point, dx, dy int) []CellPos {
	out := make([]CellPos, len(points))
	for i, p := range points {
		out[i] = CellPos{X: p.X + dx, Y: p.Y + dy}
	}
	return out
}

// ResultEnvelope returns the result message for res, if its command
// produces one.
func ResultEnvelope(res engine.Result) (Envelope, bool) {
	switch {
	case res.Placement != nil:
		p := res.Placement
		return Envelope{Type: MsgDragResult, Payload: DragResultPayload{
			Outcome:    p.Outcome.String(),
			Reason:     string(p.Reason),
			PieceIndex: p.PieceIndex,
			Placed:     cellsOf(p.Placed, 0, 0),
			Rows:       p.Cleared.Rows,
			Columns:    p.Cleared.Columns,
			Points:     p.Points,
			HandDealt:  p.HandDealt,
			GameOver:   p.GameOver,
		}}, true
	case res.PowerUp != nil:
		p := res.PowerUp
		return Envelope{Type: MsgPowerUpResult, Payload: PowerUpResultPayload{
			Kind:     string(p.Kind),
			Success:  p.Success,
			Message:  p.Message,
			Error:    string(p.Error),
			Consumed: p.Consumed,
			Rows:     p.Cleared.Rows,
			Columns:  p.Cleared.Columns,
			Cells:    p.Cleared.Cells,
		}}, true
	case res.Continue != nil:
		c := res.Continue
		return Envelope{Type: MsgContinueResult, Payload: ContinueResultPayload{
			OK:          c.OK,
			RowsCleared: c.RowsCleared,
			Error:       string(c.Error),
		}}, true
	}
	return Envelope{}, false
}

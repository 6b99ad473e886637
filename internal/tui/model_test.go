package tui

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/engine"
	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/game"
	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/netclient"
	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/protocol"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a Driver that keeps what it was sent.
type recorder struct {
	cmds []engine.Command
}

func (r *recorder) Send(cmd engine.Command) error {
	r.cmds = append(r.cmds, cmd)
	return nil
}

func testState() *protocol.StatePayload {
	s := game.NewSession(game.DefaultRules(), 9)
	st := protocol.NewState(1, s.View(), nil)
	return &st
}

func mouse(action tea.MouseAction, button tea.MouseButton, x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: action, Button: button}
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestLayoutHitTesting(t *testing.T) {
	l := Layout{Size: 8}
	assert.Equal(t, 12, l.HandTop())

	slot, off, ok := l.SlotAt(slotWidth+3, 13, 3)
	require.True(t, ok)
	assert.Equal(t, 1, slot)
	assert.Equal(t, game.Vec{X: 3, Y: 1}, off)

	_, _, ok = l.SlotAt(slotWidth*3+1, 12, 3)
	assert.False(t, ok, "past the last slot")
	_, _, ok = l.SlotAt(slotCells*cellWidth+1, 12, 3)
	assert.False(t, ok, "gap between slots")
	_, _, ok = l.SlotAt(1, 11, 3)
	assert.False(t, ok, "above the hand")

	col, row, ok := l.CellAt(boardOriginX+5, boardOriginY+7)
	require.True(t, ok)
	assert.Equal(t, 2, col)
	assert.Equal(t, 7, row)
	_, _, ok = l.CellAt(0, boardOriginY)
	assert.False(t, ok)
	_, _, ok = l.CellAt(boardOriginX+16, boardOriginY)
	assert.False(t, ok)
}

func TestPressedCellLandsUnderPointer(t *testing.T) {
	l := Layout{Size: 8}
	// Grab the right half of the piece's second column, release on the
	// right half of board cell (4, 5).
	offset := game.Vec{X: 3, Y: 0}
	pointer := game.Vec{X: boardOriginX + 4*cellWidth + 1 + cellWidth, Y: boardOriginY + 5}
	pos, ok := l.Geometry().ToBoard(pointer, offset)
	require.True(t, ok)
	assert.Equal(t, game.Point{X: 4, Y: 5}, game.AnchorFor(pos))
}

func TestMouseDragSendsCommands(t *testing.T) {
	rec := &recorder{}
	m := NewModel(rec, testState())
	top := Layout{Size: 8}.HandTop()

	m = update(t, m, mouse(tea.MouseActionPress, tea.MouseButtonLeft, 0, top))
	m = update(t, m, mouse(tea.MouseActionMotion, tea.MouseButtonLeft, boardOriginX, boardOriginY))
	m = update(t, m, mouse(tea.MouseActionRelease, tea.MouseButtonNone, boardOriginX, boardOriginY))

	require.Len(t, rec.cmds, 4)
	assert.Equal(t, engine.StartDrag{PieceIndex: 0, Pointer: game.Vec{X: 0, Y: float64(top)}}, rec.cmds[0])
	upd, ok := rec.cmds[1].(engine.UpdateDrag)
	require.True(t, ok)
	require.NotNil(t, upd.BoardPos)
	assert.Equal(t, game.Vec{X: 0, Y: 0}, *upd.BoardPos)
	assert.IsType(t, engine.EndDrag{}, rec.cmds[3])
	assert.Nil(t, m.drag)
}

func TestRightClickCancelsDrag(t *testing.T) {
	rec := &recorder{}
	m := NewModel(rec, testState())
	top := Layout{Size: 8}.HandTop()

	m = update(t, m, mouse(tea.MouseActionPress, tea.MouseButtonLeft, 0, top))
	m = update(t, m, mouse(tea.MouseActionPress, tea.MouseButtonRight, 0, 0))
	require.Len(t, rec.cmds, 2)
	assert.IsType(t, engine.CancelDrag{}, rec.cmds[1])

	// A release after the cancel is not a drop.
	update(t, m, mouse(tea.MouseActionRelease, tea.MouseButtonNone, 0, 0))
	assert.Len(t, rec.cmds, 2)
}

func TestLineSelectionClicks(t *testing.T) {
	rec := &recorder{}
	st := testState()
	st.AwaitingLineSelection = true
	m := NewModel(rec, st)

	m = update(t, m, mouse(tea.MouseActionPress, tea.MouseButtonLeft, boardOriginX+2, boardOriginY+3))
	update(t, m, mouse(tea.MouseActionPress, tea.MouseButtonRight, boardOriginX+2, boardOriginY+3))
	assert.Equal(t, []engine.Command{
		engine.SelectLine{Axis: game.Row, Index: 3},
		engine.SelectLine{Axis: game.Column, Index: 1},
	}, rec.cmds)
}

func TestKeysMapToCommands(t *testing.T) {
	rec := &recorder{}
	m := NewModel(rec, testState())
	for _, k := range []string{"w", "s", "u", "b", "c", "r"} {
		m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
	}
	assert.Equal(t, []engine.Command{
		engine.UsePowerUp{Kind: game.KindMagicWand},
		engine.UsePowerUp{Kind: game.KindPieceSwap},
		engine.UsePowerUp{Kind: game.KindUndoMove},
		engine.UsePowerUp{Kind: game.KindLineBlaster},
		engine.Continue{},
		engine.Restart{},
	}, rec.cmds)
}

func TestResultMessages(t *testing.T) {
	raw, err := json.Marshal(protocol.PowerUpResultPayload{Kind: "undo_move", Error: "nothing_to_undo"})
	require.NoError(t, err)

	m := NewModel(&recorder{}, testState())
	m = update(t, m, netclient.ServerMsg{Type: protocol.MsgPowerUpResult, Raw: raw})
	assert.Equal(t, "undo_move failed: nothing_to_undo", m.message)
	assert.Contains(t, m.View(), "undo_move failed")
}

func TestViewWithoutState(t *testing.T) {
	m := NewModel(&recorder{}, nil)
	assert.Contains(t, m.View(), "Connecting")

	m = update(t, m, netclient.StateMsg{State: *testState()})
	assert.Contains(t, m.View(), "Score: 0")
}

func TestLocalForwarding(t *testing.T) {
	s := game.NewSession(game.DefaultRules(), 4)
	proc := engine.New(s, nil)
	msgs := make(chan tea.Msg, 16)
	proc.Subscribe(Forward(func(m tea.Msg) { msgs <- m }, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go proc.Run(ctx)

	_, err := proc.Do(ctx, engine.UsePowerUp{Kind: game.KindMagicWand})
	require.NoError(t, err)

	res := (<-msgs).(netclient.ServerMsg)
	assert.Equal(t, protocol.MsgPowerUpResult, res.Type)
	st := (<-msgs).(netclient.StateMsg)
	assert.Equal(t, uint64(1), st.State.Seq)
}

// Package tui is the terminal front-end. It turns mouse drags and keys into
// engine commands and draws the latest state snapshot, whether the game runs
// in-process or on a remote server.
package tui

import (
	"encoding/json"
	"fmt"

	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/engine"
	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/game"
	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/netclient"
	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/protocol"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Driver delivers commands to the game. *netclient.Client is one.
type Driver interface {
	Send(cmd engine.Command) error
}

var powerUpKeys = map[game.PowerUpKind]string{
	game.KindMagicWand:   "w",
	game.KindPieceSwap:   "s",
	game.KindUndoMove:    "u",
	game.KindLineBlaster: "b",
}

// LineMark is the row or column a pending line blaster would clear.
type LineMark struct {
	Axis  game.Axis
	Index int
}

func (l *LineMark) covers(x, y int) bool {
	if l == nil {
		return false
	}
	if l.Axis == game.Column {
		return x == l.Index
	}
	return y == l.Index
}

// drag is the client side of an in-flight drag.
type drag struct {
	piece  int
	offset game.Vec
}

// --- Model ---

type Model struct {
	driver   Driver
	state    *protocol.StatePayload
	playerID string
	token    string
	width    int
	height   int

	drag      *drag
	highlight *LineMark
	message   string

	// Error
	err          error
	disconnected bool
}

// NewModel creates a model driving the game through driver. initial may be
// nil when the first state arrives later, as with a remote server.
func NewModel(driver Driver, initial *protocol.StatePayload) Model {
	return Model{driver: driver, state: initial}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// --- Update ---

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	// Game messages
	case netclient.ConnectedMsg:
		m.playerID = msg.PlayerID
		m.token = msg.Token
		return m, nil
	case netclient.StateMsg:
		st := msg.State
		if m.state == nil || st.Seq >= m.state.Seq || st.Seq == 0 {
			m.state = &st
		}
		if !st.AwaitingLineSelection {
			m.highlight = nil
		}
		return m, nil
	case netclient.ServerMsg:
		m.message = describeResult(msg)
		return m, nil
	case netclient.DisconnectedMsg:
		m.disconnected = true
		m.err = msg.Err
		return m, nil
	}
	return m, nil
}

func (m *Model) send(cmd engine.Command) {
	if err := m.driver.Send(cmd); err != nil {
		m.err = err
		m.message = err.Error()
	}
}

// --- Key handlers ---

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	}
	if m.state == nil {
		return m, nil
	}

	switch msg.String() {
	case "esc":
		if m.drag != nil {
			m.drag = nil
			m.send(engine.CancelDrag{})
		} else if m.state.AwaitingLineSelection {
			m.highlight = nil
			m.send(engine.AbortLineSelection{})
		}
	case "w":
		m.send(engine.UsePowerUp{Kind: game.KindMagicWand})
	case "s":
		m.send(engine.UsePowerUp{Kind: game.KindPieceSwap})
	case "u":
		m.send(engine.UsePowerUp{Kind: game.KindUndoMove})
	case "b":
		m.send(engine.UsePowerUp{Kind: game.KindLineBlaster})
	case "c":
		m.send(engine.Continue{})
	case "r":
		m.drag = nil
		m.message = ""
		m.send(engine.Restart{})
	}
	return m, nil
}

// --- Mouse handlers ---

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.state == nil {
		return m, nil
	}
	layout := Layout{Size: m.state.Size}

	if m.state.AwaitingLineSelection {
		return m.handleLineSelection(layout, msg)
	}

	pointer := game.Vec{X: float64(msg.X), Y: float64(msg.Y)}
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonRight && m.drag != nil {
			m.drag = nil
			m.send(engine.CancelDrag{})
			return m, nil
		}
		if msg.Button != tea.MouseButtonLeft || m.drag != nil || m.state.GameOver {
			return m, nil
		}
		slot, offset, ok := layout.SlotAt(msg.X, msg.Y, len(m.state.Hand))
		if !ok || m.state.Hand[slot].Empty {
			return m, nil
		}
		m.drag = &drag{piece: slot, offset: offset}
		m.send(engine.StartDrag{PieceIndex: slot, Pointer: pointer, TouchOffset: offset})
	case tea.MouseActionMotion:
		if m.drag == nil {
			return m, nil
		}
		m.send(m.updateFor(layout, pointer))
	case tea.MouseActionRelease:
		if m.drag == nil {
			return m, nil
		}
		// The release position is the drop position.
		m.send(m.updateFor(layout, pointer))
		m.drag = nil
		m.send(engine.EndDrag{})
	}
	return m, nil
}

func (m Model) updateFor(layout Layout, pointer game.Vec) engine.UpdateDrag {
	cmd := engine.UpdateDrag{Pointer: pointer}
	if pos, ok := layout.Geometry().ToBoard(pointer, m.drag.offset); ok {
		cmd.BoardPos = &pos
	}
	return cmd
}

func (m Model) handleLineSelection(layout Layout, msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	col, row, onBoard := layout.CellAt(msg.X, msg.Y)
	switch msg.Action {
	case tea.MouseActionMotion:
		m.highlight = nil
		if onBoard {
			m.highlight = &LineMark{Axis: game.Row, Index: row}
		}
	case tea.MouseActionPress:
		if !onBoard {
			return m, nil
		}
		switch msg.Button {
		case tea.MouseButtonLeft:
			m.highlight = &LineMark{Axis: game.Row, Index: row}
			m.send(engine.SelectLine{Axis: game.Row, Index: row})
		case tea.MouseButtonRight:
			m.highlight = &LineMark{Axis: game.Column, Index: col}
			m.send(engine.SelectLine{Axis: game.Column, Index: col})
		}
	}
	return m, nil
}

// describeResult turns a result message into the status line text.
func describeResult(msg netclient.ServerMsg) string {
	switch msg.Type {
	case protocol.MsgDragResult:
		var p protocol.DragResultPayload
		if json.Unmarshal(msg.Raw, &p) != nil {
			return ""
		}
		switch {
		case p.Outcome == game.Committed.String() && p.Points > 0:
			return fmt.Sprintf("+%d", p.Points)
		case p.Outcome == game.Rejected.String() && p.Reason == string(game.RejectBlocked):
			return "that piece does not fit there"
		}
	case protocol.MsgPowerUpResult:
		var p protocol.PowerUpResultPayload
		if json.Unmarshal(msg.Raw, &p) != nil {
			return ""
		}
		if p.Success {
			return fmt.Sprintf("%s: %s", p.Kind, p.Message)
		}
		return fmt.Sprintf("%s failed: %s", p.Kind, p.Error)
	case protocol.MsgContinueResult:
		var p protocol.ContinueResultPayload
		if json.Unmarshal(msg.Raw, &p) != nil {
			return ""
		}
		if p.OK {
			return fmt.Sprintf("continued, cleared %d row(s)", len(p.RowsCleared))
		}
		return fmt.Sprintf("continue failed: %s", p.Error)
	case protocol.MsgError:
		var p protocol.ErrorPayload
		if json.Unmarshal(msg.Raw, &p) == nil {
			return p.Message
		}
	}
	return ""
}

// --- View ---

func (m Model) View() string {
	if m.disconnected {
		return m.renderCentered("Disconnected from server.\nPress Ctrl+C to exit.")
	}
	if m.state == nil {
		return m.renderCentered("Connecting to server...")
	}

	st := m.state
	board := RenderBoard(st, m.highlight)
	info := lipgloss.NewStyle().
		MaxHeight(st.Size + 2).
		Render(RenderInfo(st))

	return RenderTitle() + "\n" +
		lipgloss.JoinHorizontal(lipgloss.Top, board, info) + "\n\n" +
		RenderHand(st) + "\n\n" +
		RenderStatus(st, m.message) + "\n" +
		RenderControls()
}

func (m Model) renderCentered(content string) string {
	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// PlayerID is the ID the server assigned, if any.
func (m Model) PlayerID() string {
	return m.playerID
}

// Token is the resume token the server issued, if any.
func (m Model) Token() string {
	return m.token
}

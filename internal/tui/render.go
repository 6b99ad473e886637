package tui

import (
	"fmt"
	"strings"

	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/game"
	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/protocol"
	"github.com/charmbracelet/lipgloss"
)

var (
	colors = []string{
		"0",
		"196",
		"46",
		"226",
		"21",
		"201",
		"51",
	}

	emptyCell = "··"
	blockCell = "██"
	ghostCell = "▒▒"

	boardStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("15"))

	infoStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("15"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("51"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	fitStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46"))

	blockedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	gameOverStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))
)

func colorStyle(idx int) lipgloss.Style {
	c := "248"
	if idx > 0 && idx < len(colors) {
		c = colors[idx]
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
}

// RenderBoard draws the board with the drag ghost and, while a line blaster
// is pending, the highlighted line under the pointer.
func RenderBoard(st *protocol.StatePayload, highlight *LineMark) string {
	ghost := make(map[protocol.CellPos]bool)
	ghostFits := false
	if st.Drag != nil && st.Drag.OnBoard {
		ghostFits = st.Drag.Fits
		for _, c := range st.Drag.Preview {
			ghost[c] = true
		}
	}

	var sb strings.Builder
	for y := 0; y < st.Size; y++ {
		for x := 0; x < st.Size; x++ {
			v := 0
			if i := y*st.Size + x; i < len(st.Board) {
				v = st.Board[i]
			}
			switch {
			case ghost[protocol.CellPos{X: x, Y: y}] && ghostFits:
				sb.WriteString(fitStyle.Render(ghostCell))
			case ghost[protocol.CellPos{X: x, Y: y}]:
				sb.WriteString(blockedStyle.Render(ghostCell))
			case highlight.covers(x, y):
				sb.WriteString(blockedStyle.Render(blockCell))
			case v != 0:
				sb.WriteString(colorStyle(v).Render(blockCell))
			default:
				sb.WriteString(dimStyle.Render(emptyCell))
			}
		}
		if y < st.Size-1 {
			sb.WriteString("\n")
		}
	}
	return boardStyle.Render(sb.String())
}

// RenderHand draws the hand slots side by side, slotWidth columns each.
// The slot being dragged is dimmed.
func RenderHand(st *protocol.StatePayload) string {
	dragging := -1
	if st.Drag != nil {
		dragging = st.Drag.PieceIndex
	}

	rows := make([]strings.Builder, handRows)
	for i, slot := range st.Hand {
		cells := make(map[protocol.CellPos]bool, len(slot.Cells))
		for _, c := range slot.Cells {
			cells[c] = true
		}
		style := colorStyle(slot.Color)
		if i == dragging || !slot.Fits {
			style = dimStyle
		}
		for y := 0; y < handRows; y++ {
			for x := 0; x < slotWidth/cellWidth; x++ {
				if cells[protocol.CellPos{X: x, Y: y}] {
					rows[y].WriteString(style.Render(blockCell))
				} else {
					rows[y].WriteString("  ")
				}
			}
		}
	}

	lines := make([]string, handRows)
	for i := range rows {
		lines[i] = strings.TrimRight(rows[i].String(), " ")
	}
	return strings.Join(lines, "\n")
}

// RenderInfo draws the score panel beside the board.
func RenderInfo(st *protocol.StatePayload) string {
	var sb strings.Builder

	sb.WriteString(infoStyle.Render(fmt.Sprintf("Score: %d", st.Score)) + "\n")
	sb.WriteString(infoStyle.Render(fmt.Sprintf("Best:  %d", st.BestScore)) + "\n")
	sb.WriteString(infoStyle.Render(fmt.Sprintf("Lines: %d", st.LinesCleared)) + "\n\n")

	sb.WriteString(infoStyle.Render(titleStyle.Render("POWER-UPS")) + "\n")
	for _, kind := range game.PowerUpKinds {
		sb.WriteString(infoStyle.Render(fmt.Sprintf("[%s] %-12s %d",
			powerUpKeys[kind], kind, st.Inventory[string(kind)])) + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// RenderStatus is the line under the hand: mode prompts, game over and the
// last result message.
func RenderStatus(st *protocol.StatePayload, message string) string {
	switch {
	case st.GameOver && st.CanContinue:
		return gameOverStyle.Render("GAME OVER") + infoStyle.Render("[c] continue  [r] restart  [q] quit")
	case st.GameOver:
		return gameOverStyle.Render("GAME OVER") + infoStyle.Render(fmt.Sprintf("Score: %d  [r] restart  [q] quit", st.Score))
	case st.AwaitingLineSelection:
		return titleStyle.Render("LINE BLASTER") + infoStyle.Render("left-click a row, right-click a column, esc to abort")
	case message != "":
		return infoStyle.Render(message)
	}
	return ""
}

func RenderControls() string {
	return dimStyle.Render("drag pieces with the mouse · right-click/esc cancel · r restart · q quit")
}

func RenderTitle() string {
	return titleStyle.Render("B L O C K T O P I A")
}

package engine

import "github.com/alexlanpowell/blocktopia-v0-sub000/internal/game"

// Command is a discrete request to the processor. The set is closed.
type Command interface {
	command()
}

// StartDrag picks up a hand piece. TouchOffset is the distance from the
// piece's anchor to the contact point.
type StartDrag struct {
	PieceIndex  int
	Pointer     game.Vec
	TouchOffset game.Vec
}

// UpdateDrag is a pointer sample. A nil BoardPos means off the board.
// Consecutive queued updates are coalesced.
type UpdateDrag struct {
	Pointer  game.Vec
	BoardPos *game.Vec
}

type EndDrag struct{}

type CancelDrag struct{}

type UsePowerUp struct {
	Kind game.PowerUpKind
}

// SelectLine picks the row or column for a pending line blaster.
type SelectLine struct {
	Axis  game.Axis
	Index int
}

type AbortLineSelection struct{}

type Restart struct{}

type Continue struct{}

func (StartDrag) command() {}
func (UpdateDrag) command() {}
func (EndDrag) command() {}
func (CancelDrag) command() {}
func (UsePowerUp) command() {}
func (SelectLine) command() {}
func (AbortLineSelection) command() {}
func (Restart) command() {}
func (Continue) command() {}

// Result is the processor's answer to one command. OK mirrors the boolean
// the caller-facing operation returns; the detail pointers are set for the
// commands that produce them.
type Result struct {
	OK        bool
	Placement *game.Placement
	PowerUp   *game.PowerUpResult
	Continue  *game.ContinueResult
}

// Event is published to subscribers after every applied command.
type Event struct {
	Seq     uint64
	Command Command
	Result  Result
	View    game.View
}

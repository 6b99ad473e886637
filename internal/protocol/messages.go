package protocol

import "encoding/json"

// MessageType identifies the kind of message sent over the wire.
type MessageType string

const (
	// Server -> Client messages
	MsgAssignID       MessageType = "assign_id"
	MsgState          MessageType = "state"
	MsgDragResult     MessageType = "drag_result"
	MsgPowerUpResult  MessageType = "power_up_result"
	MsgContinueResult MessageType = "continue_result"
	MsgError          MessageType = "error"

	// Client -> Server messages
	MsgStartDrag          MessageType = "start_drag"
	MsgUpdateDrag         MessageType = "update_drag"
	MsgEndDrag            MessageType = "end_drag"
	MsgCancelDrag         MessageType = "cancel_drag"
	MsgUsePowerUp         MessageType = "use_power_up"
	MsgSelectLine         MessageType = "select_line"
	MsgAbortLineSelection MessageType = "abort_line_selection"
	MsgRestart            MessageType = "restart"
	MsgContinue           MessageType = "continue"
)

// Envelope is the top-level wire format for all messages.
type Envelope struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload"`
}

// RawEnvelope is an Envelope whose payload has not been decoded yet.
type RawEnvelope struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// --- Server -> Client payloads ---

// AssignIDPayload is sent when a client first connects. Token resumes the
// same player on a later connection.
type AssignIDPayload struct {
	PlayerID string `json:"player_id"`
	Token    string `json:"token"`
}

// CellPos is one board coordinate.
type CellPos struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// HandSlot is one hand position. Empty slots carry no shape.
type HandSlot struct {
	Empty bool      `json:"empty"`
	Shape string    `json:"shape,omitempty"`
	Color int       `json:"color,omitempty"`
	Cells []CellPos `json:"cells,omitempty"`
	Fits  bool      `json:"fits"`
}

// DragView is the in-flight drag with its placement preview.
type DragView struct {
	PieceIndex int       `json:"piece_index"`
	PointerX   float64   `json:"pointer_x"`
	PointerY   float64   `json:"pointer_y"`
	OnBoard    bool      `json:"on_board"`
	AnchorX    int       `json:"anchor_x"`
	AnchorY    int       `json:"anchor_y"`
	Fits       bool      `json:"fits"`
	Preview    []CellPos `json:"preview,omitempty"`
}

// StatePayload is a full snapshot of one player's game.
type StatePayload struct {
	Seq  uint64 `json:"seq"`
	Size int    `json:"size"`
	// Board is a flat array: Size * Size cells, row-major.
	// Each value is a color index (0 = empty).
	Board                 []int          `json:"board"`
	Hand                  []HandSlot     `json:"hand"`
	Score                 int            `json:"score"`
	BestScore             int            `json:"best_score"`
	LinesCleared          int            `json:"lines_cleared"`
	Placements            int            `json:"placements"`
	GameOver              bool           `json:"game_over"`
	CanContinue           bool           `json:"can_continue"`
	HasUndo               bool           `json:"has_undo"`
	Drag                  *DragView      `json:"drag,omitempty"`
	ActivePowerUp         string         `json:"active_power_up,omitempty"`
	AwaitingLineSelection bool           `json:"awaiting_line_selection"`
	Inventory             map[string]int `json:"inventory"`
}

// DragResultPayload reports how a drag ended.
type DragResultPayload struct {
	Outcome    string    `json:"outcome"`
	Reason     string    `json:"reason,omitempty"`
	PieceIndex int       `json:"piece_index"`
	Placed     []CellPos `json:"placed,omitempty"`
	Rows       []int     `json:"rows,omitempty"`
	Columns    []int     `json:"columns,omitempty"`
	Points     int       `json:"points"`
	HandDealt  bool      `json:"hand_dealt"`
	GameOver   bool      `json:"game_over"`
}

// PowerUpResultPayload reports a power-up activation or line selection.
type PowerUpResultPayload struct {
	Kind     string `json:"kind"`
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
	Consumed bool   `json:"consumed"`
	Rows     []int  `json:"rows,omitempty"`
	Columns  []int  `json:"columns,omitempty"`
	Cells    int    `json:"cells"`
}

// ContinueResultPayload reports a continue attempt.
type ContinueResultPayload struct {
	OK          bool   `json:"ok"`
	RowsCleared []int  `json:"rows_cleared,omitempty"`
	Error       string `json:"error,omitempty"`
}

// ErrorPayload is sent when a client message cannot be handled.
type ErrorPayload struct {
	Message string `json:"message"`
}

// --- Client -> Server payloads ---

// StartDragPayload picks up a hand piece.
type StartDragPayload struct {
	PieceIndex int     `json:"piece_index"`
	PointerX   float64 `json:"pointer_x"`
	PointerY   float64 `json:"pointer_y"`
	OffsetX    float64 `json:"offset_x"`
	OffsetY    float64 `json:"offset_y"`
}

// UpdateDragPayload is a pointer sample. BoardX/BoardY are null when the
// pointer is off the board.
type UpdateDragPayload struct {
	PointerX float64  `json:"pointer_x"`
	PointerY float64  `json:"pointer_y"`
	BoardX   *float64 `json:"board_x"`
	BoardY   *float64 `json:"board_y"`
}

// UsePowerUpPayload activates a power-up by kind name.
type UsePowerUpPayload struct {
	Kind string `json:"kind"`
}

// SelectLinePayload chooses the line for a pending line blaster.
type SelectLinePayload struct {
	Axis  string `json:"axis"` // "row" or "column"
	Index int    `json:"index"`
}

// --- HTTP Request/Response types ---

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Players int    `json:"players"`
	Queued  int    `json:"queued"`
}

// ErrorResponse is returned by HTTP endpoints on failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

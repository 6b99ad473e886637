package game

import (
	"errors"
	"math/rand"
)

// ErrHandSize reports a saved hand whose slot count does not match the rules.
var ErrHandSize = errors.New("hand size mismatch")

// UndoSnapshot is the state captured immediately before the last commit.
type UndoSnapshot struct {
	Board      *Board
	Score      int
	Hand       Hand
	Lines      int
	Placements int
}

// Session owns one game: board, hand, scores and the drag and power-up
// sub-states. It is not safe for concurrent use; engine.Processor serializes
// access to it.
type Session struct {
	rules Rules
	rng   *rand.Rand
	gen   *PieceGenerator

	board       *Board
	hand        Hand
	score       int
	bestScore   int
	lines       int
	placements  int
	gameOver    bool
	canContinue bool

	drag  DragState
	power PowerUpState

	undo      *UndoSnapshot
	undoSpent bool
}

// NewSession starts a fresh game. A zero board size, hand size, combo table
// or continue row count takes the default; every other field is used as
// given, so start from DefaultRules to tweak.
func NewSession(rules Rules, seed int64) *Session {
	rng := rand.New(rand.NewSource(seed))
	s := &Session{
		rules: rules.normalized(),
		rng:   rng,
		gen:   NewPieceGenerator(rng),
	}
	s.reset()
	return s
}

func (s *Session) reset() {
	s.board = NewBoard(s.rules.BoardSize)
	s.hand = s.gen.Deal(s.rules.HandSize, s.board, s.rules.HandFitRetries)
	s.score = 0
	s.lines = 0
	s.placements = 0
	s.gameOver = false
	s.canContinue = true
	s.drag = DragState{}
	s.power = PowerUpState{}
	s.undo = nil
	s.undoSpent = false
}

// Restart throws the current game away. The best score survives.
func (s *Session) Restart() {
	s.bestScore = max(s.bestScore, s.score)
	s.reset()
}

// ContinueResult reports the outcome of Continue.
type ContinueResult struct {
	OK          bool
	RowsCleared []int
	Error       ErrorCode
}

// Continue is the one-shot rescue after a game over: it empties up to
// ContinueRows randomly chosen non-empty rows and resumes play.
func (s *Session) Continue() ContinueResult {
	if !s.gameOver {
		return ContinueResult{Error: CodeNotGameOver}
	}
	if !s.canContinue {
		return ContinueResult{Error: CodeContinueUsed}
	}

	var candidates []int
	for y := 0; y < s.board.Size; y++ {
		if !s.board.RowIsEmpty(y) {
			candidates = append(candidates, y)
		}
	}
	s.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if len(candidates) > s.rules.ContinueRows {
		candidates = candidates[:s.rules.ContinueRows]
	}
	for _, y := range candidates {
		s.board.ClearLine(Row, y)
	}

	// A hand that still cannot move would strand the player.
	if !s.hand.AnyFits(s.board) {
		s.hand = s.gen.Deal(s.rules.HandSize, s.board, s.rules.HandFitRetries)
	}

	s.gameOver = false
	s.canContinue = false
	s.dropUndo()
	return ContinueResult{OK: true, RowsCleared: candidates}
}

// CanPieceBePlaced reports whether the piece in hand slot i has any legal
// anchor on the board.
func (s *Session) CanPieceBePlaced(i int) bool {
	p, ok := s.hand.Piece(i)
	if !ok {
		return false
	}
	return s.board.HasFit(p.Shape())
}

// CanPlace validates a placement of hand slot i at the anchor.
func (s *Session) CanPlace(i int, anchor Point) bool {
	p, ok := s.hand.Piece(i)
	if !ok {
		return false
	}
	return s.board.CanPlace(p.Shape(), anchor.X, anchor.Y)
}

func (s *Session) refreshGameOver() {
	for i := range s.hand {
		if s.CanPieceBePlaced(i) {
			s.gameOver = false
			return
		}
	}
	s.gameOver = true
}

func (s *Session) addScore(points int) {
	if points <= 0 {
		return
	}
	s.score += points
	s.bestScore = max(s.bestScore, s.score)
}

func (s *Session) Score() int { return s.score }
func (s *Session) BestScore() int { return s.bestScore }
func (s *Session) IsGameOver() bool { return s.gameOver }
func (s *Session) CanContinue() bool { return s.canContinue }
func (s *Session) Rules() Rules { return s.rules }
func (s *Session) Board() *Board { return s.board.Clone() }
func (s *Session) Hand() Hand { return s.hand.Clone() }
func (s *Session) DragState() DragState { return s.drag.clone() }
func (s *Session) PowerUpState() PowerUpState { return s.power }
// dropUndo forgets the snapshot after a mutation that is not undoable. The
// next undo then has nothing to undo rather than being already used.
func (s *Session) dropUndo() {
	s.undo = nil
	s.undoSpent = false
}

func (s *Session) HasUndo() bool { return s.undo != nil }

// SetBestScore seeds the best score, e.g. from persistence. It never lowers it.
func (s *Session) SetBestScore(v int) {
	s.bestScore = max(s.bestScore, v)
}

// View is a read-only copy of everything a renderer needs.
type View struct {
	Board        *Board
	Hand         Hand
	Score        int
	BestScore    int
	LinesCleared int
	Placements   int
	GameOver     bool
	CanContinue  bool
	HasUndo      bool
	Drag         DragState
	PowerUp      PowerUpState
}

func (s *Session) View() View {
	return View{
		Board:        s.board.Clone(),
		Hand:         s.hand.Clone(),
		Score:        s.score,
		BestScore:    s.bestScore,
		LinesCleared: s.lines,
		Placements:   s.placements,
		GameOver:     s.gameOver,
		CanContinue:  s.canContinue,
		HasUndo:      s.undo != nil,
		Drag:         s.drag.clone(),
		PowerUp:      s.power,
	}
}

// SavedGame is the persisted form of a session. Transient drag, power-up and
// undo state is not saved.
type SavedGame struct {
	Size         int            `json:"size"`
	Board        []int          `json:"board"`
	Hand         []*ActivePiece `json:"hand"`
	Score        int            `json:"score"`
	BestScore    int            `json:"best_score"`
	LinesCleared int            `json:"lines_cleared"`
	Placements   int            `json:"placements"`
	GameOver     bool           `json:"game_over"`
	CanContinue  bool           `json:"can_continue"`
}

func (s *Session) Save() SavedGame {
	return SavedGame{
		Size:         s.board.Size,
		Board:        s.board.ToFlat(),
		Hand:         s.hand.Clone(),
		Score:        s.score,
		BestScore:    s.bestScore,
		LinesCleared: s.lines,
		Placements:   s.placements,
		GameOver:     s.gameOver,
		CanContinue:  s.canContinue,
	}
}

// Restore replaces the session state with a saved game. The saved board must
// match the session's board size and hand size.
func (s *Session) Restore(g SavedGame) error {
	if g.Size != s.rules.BoardSize {
		return ErrBoardDimension
	}
	board, err := BoardFromFlat(g.Board, g.Size)
	if err != nil {
		return err
	}
	if len(g.Hand) != s.rules.HandSize {
		return ErrHandSize
	}
	hand := Hand(g.Hand).Clone()
	for _, p := range hand {
		if p != nil && !p.ShapeID.Valid() {
			return ErrHandSize
		}
	}
	if hand.IsEmpty() {
		hand = s.gen.Deal(s.rules.HandSize, board, s.rules.HandFitRetries)
	}

	s.board = board
	s.hand = hand
	s.score = max(g.Score, 0)
	s.bestScore = max(s.bestScore, g.BestScore, s.score)
	s.lines = g.LinesCleared
	s.placements = g.Placements
	s.canContinue = g.CanContinue
	s.drag = DragState{}
	s.power = PowerUpState{}
	s.undo = nil
	s.undoSpent = false
	s.refreshGameOver()
	return nil
}

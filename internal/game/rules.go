package game

import "math"

// ScoreTable holds the scoring constants. Combo[i] multiplies the line bonus
// when i+1 lines clear at once; the last entry applies to anything larger.
type ScoreTable struct {
	PointsPerCell int
	LinePoints    int
	Combo         []float64
}

// Multiplier returns the combo factor for n simultaneous lines.
func (t ScoreTable) Multiplier(n int) float64 {
	if n <= 0 {
		return 0
	}
	if len(t.Combo) == 0 {
		return 1
	}
	if n > len(t.Combo) {
		return t.Combo[len(t.Combo)-1]
	}
	return t.Combo[n-1]
}

// Award returns the points for placing cells and clearing lines in one commit.
func (t ScoreTable) Award(cellsPlaced, lines int) int {
	base := cellsPlaced * t.PointsPerCell
	if lines <= 0 {
		return max(base, 0)
	}
	bonus := int(math.Round(float64(lines*t.LinePoints) * t.Multiplier(lines)))
	return max(base, 0) + max(bonus, 0)
}

// Rules are the product-tunable constants of a session.
type Rules struct {
	BoardSize int
	HandSize  int
	Scoring   ScoreTable

	// ContinueRows is how many non-empty rows a continue clears.
	ContinueRows int
	// WandRadius 0 clears a single cell; r > 0 clears the (2r+1)² square
	// centred on the chosen filled cell.
	WandRadius int
	// HandFitRetries bounds re-deals looking for a hand with a legal move.
	HandFitRetries int
}

func DefaultRules() Rules {
	return Rules{
		BoardSize: DefaultBoardSize,
		HandSize:  3,
		Scoring: ScoreTable{
			PointsPerCell: 1,
			LinePoints:    10,
			Combo:         []float64{1, 2.5, 4, 6},
		},
		ContinueRows:   4,
		WandRadius:     0,
		HandFitRetries: 3,
	}
}

// normalized defaults the sizes, combo table and continue rows when unset
// and clamps the remaining counts at zero.
func (r Rules) normalized() Rules {
	d := DefaultRules()
	if r.BoardSize <= 0 {
		r.BoardSize = d.BoardSize
	}
	if r.HandSize <= 0 {
		r.HandSize = d.HandSize
	}
	if r.Scoring.PointsPerCell < 0 {
		r.Scoring.PointsPerCell = 0
	}
	if r.Scoring.LinePoints < 0 {
		r.Scoring.LinePoints = 0
	}
	if len(r.Scoring.Combo) == 0 {
		r.Scoring.Combo = d.Scoring.Combo
	}
	if r.ContinueRows <= 0 {
		r.ContinueRows = d.ContinueRows
	}
	if r.WandRadius < 0 {
		r.WandRadius = 0
	}
	if r.HandFitRetries < 0 {
		r.HandFitRetries = 0
	}
	return r
}

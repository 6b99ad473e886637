package game

import (
	"math/rand"
)

// ShapeID identifies an entry in the shape catalog.
type ShapeID int

const (
	ShapeSingle ShapeID = iota
	ShapeDominoH
	ShapeDominoV
	ShapeLine3H
	ShapeLine3V
	ShapeLine4H
	ShapeLine4V
	ShapeLine5H
	ShapeLine5V
	ShapeSquare2
	ShapeSquare3
	ShapeCornerNW
	ShapeCornerNE
	ShapeCornerSW
	ShapeCornerSE
	ShapeT
	ShapeL
	ShapeJ
	ShapeS
	ShapeZ
	ShapeBigCornerNW
	ShapeBigCornerSE
	shapeCount
)

// Shape is an immutable set of cell offsets relative to the anchor. Anchors
// are the top-left of the shape's bounding box.
type Shape struct {
	ID    ShapeID
	Name  string
	Cells []Point
	Color int
}

// Width and Height of the bounding box.
func (s Shape) Width() int {
	w := 0
	for _, c := range s.Cells {
		if c.X+1 > w {
			w = c.X + 1
		}
	}
	return w
}

func (s Shape) Height() int {
	h := 0
	for _, c := range s.Cells {
		if c.Y+1 > h {
			h = c.Y + 1
		}
	}
	return h
}

// Contains reports whether the offset (dx, dy) is part of the shape.
func (s Shape) Contains(dx, dy int) bool {
	for _, c := range s.Cells {
		if c.X == dx && c.Y == dy {
			return true
		}
	}
	return false
}

func pts(coords ...int) []Point {
	out := make([]Point, 0, len(coords)/2)
	for i := 0; i+1 < len(coords); i += 2 {
		out = append(out, Point{X: coords[i], Y: coords[i+1]})
	}
	return out
}

var shapeCatalog = [shapeCount]Shape{
	ShapeSingle:      {Name: "single", Cells: pts(0, 0), Color: 1},
	ShapeDominoH:     {Name: "domino-h", Cells: pts(0, 0, 1, 0), Color: 2},
	ShapeDominoV:     {Name: "domino-v", Cells: pts(0, 0, 0, 1), Color: 2},
	ShapeLine3H:      {Name: "line3-h", Cells: pts(0, 0, 1, 0, 2, 0), Color: 3},
	ShapeLine3V:      {Name: "line3-v", Cells: pts(0, 0, 0, 1, 0, 2), Color: 3},
	ShapeLine4H:      {Name: "line4-h", Cells: pts(0, 0, 1, 0, 2, 0, 3, 0), Color: 6},
	ShapeLine4V:      {Name: "line4-v", Cells: pts(0, 0, 0, 1, 0, 2, 0, 3), Color: 6},
	ShapeLine5H:      {Name: "line5-h", Cells: pts(0, 0, 1, 0, 2, 0, 3, 0, 4, 0), Color: 1},
	ShapeLine5V:      {Name: "line5-v", Cells: pts(0, 0, 0, 1, 0, 2, 0, 3, 0, 4), Color: 1},
	ShapeSquare2:     {Name: "square2", Cells: pts(0, 0, 1, 0, 0, 1, 1, 1), Color: 3},
	ShapeSquare3:     {Name: "square3", Cells: pts(0, 0, 1, 0, 2, 0, 0, 1, 1, 1, 2, 1, 0, 2, 1, 2, 2, 2), Color: 4},
	ShapeCornerNW:    {Name: "corner-nw", Cells: pts(0, 0, 1, 0, 0, 1), Color: 5},
	ShapeCornerNE:    {Name: "corner-ne", Cells: pts(0, 0, 1, 0, 1, 1), Color: 5},
	ShapeCornerSW:    {Name: "corner-sw", Cells: pts(0, 0, 0, 1, 1, 1), Color: 5},
	ShapeCornerSE:    {Name: "corner-se", Cells: pts(1, 0, 0, 1, 1, 1), Color: 5},
	ShapeT:           {Name: "t", Cells: pts(0, 0, 1, 0, 2, 0, 1, 1), Color: 5},
	ShapeL:           {Name: "l", Cells: pts(0, 0, 0, 1, 0, 2, 1, 2), Color: 3},
	ShapeJ:           {Name: "j", Cells: pts(1, 0, 1, 1, 1, 2, 0, 2), Color: 4},
	ShapeS:           {Name: "s", Cells: pts(1, 0, 2, 0, 0, 1, 1, 1), Color: 2},
	ShapeZ:           {Name: "z", Cells: pts(0, 0, 1, 0, 1, 1, 2, 1), Color: 1},
	ShapeBigCornerNW: {Name: "big-corner-nw", Cells: pts(0, 0, 1, 0, 2, 0, 0, 1, 0, 2), Color: 6},
	ShapeBigCornerSE: {Name: "big-corner-se", Cells: pts(2, 0, 2, 1, 0, 2, 1, 2, 2, 2), Color: 6},
}

func init() {
	for i := range shapeCatalog {
		shapeCatalog[i].ID = ShapeID(i)
	}
}

// Valid reports whether id names a catalog entry.
func (id ShapeID) Valid() bool {
	return id >= 0 && id < shapeCount
}

// ShapeByID returns the catalog entry for id.
func ShapeByID(id ShapeID) (Shape, bool) {
	if !id.Valid() {
		return Shape{}, false
	}
	return shapeCatalog[id], true
}

// Shapes returns a copy of the full catalog.
func Shapes() []Shape {
	out := make([]Shape, len(shapeCatalog))
	copy(out, shapeCatalog[:])
	return out
}

// ActivePiece is a dealt piece: a catalog shape plus the color it renders in.
type ActivePiece struct {
	ShapeID ShapeID `json:"shape"`
	Color   int     `json:"color"`
}

func (p ActivePiece) Shape() Shape {
	s, _ := ShapeByID(p.ShapeID)
	return s
}

// PieceGenerator deals pieces from the catalog. When created with the same
// seed, two generators produce identical sequences.
type PieceGenerator struct {
	rng *rand.Rand
}

// NewPieceGenerator creates a seeded generator.
func NewPieceGenerator(rng *rand.Rand) *PieceGenerator {
	return &PieceGenerator{rng: rng}
}

// Next returns a random catalog piece.
func (pg *PieceGenerator) Next() ActivePiece {
	s := shapeCatalog[pg.rng.Intn(int(shapeCount))]
	return ActivePiece{ShapeID: s.ID, Color: s.Color}
}

// Deal fills a hand of n pieces. With retries > 0 it re-deals until at least
// one piece fits on board or the retries run out.
func (pg *PieceGenerator) Deal(n int, board *Board, retries int) Hand {
	hand := pg.deal(n)
	for i := 0; i < retries && board != nil; i++ {
		if hand.AnyFits(board) {
			break
		}
		hand = pg.deal(n)
	}
	return hand
}

func (pg *PieceGenerator) deal(n int) Hand {
	hand := make(Hand, n)
	for i := range hand {
		p := pg.Next()
		hand[i] = &p
	}
	return hand
}

// Hand is the ordered set of pieces on offer. A nil slot has been played.
type Hand []*ActivePiece

// Piece returns the piece in slot i.
func (h Hand) Piece(i int) (ActivePiece, bool) {
	if i < 0 || i >= len(h) || h[i] == nil {
		return ActivePiece{}, false
	}
	return *h[i], true
}

// IsEmpty reports whether every slot has been played.
func (h Hand) IsEmpty() bool {
	for _, p := range h {
		if p != nil {
			return false
		}
	}
	return true
}

// AnyFits reports whether at least one remaining piece has a legal placement.
func (h Hand) AnyFits(b *Board) bool {
	for _, p := range h {
		if p != nil && b.HasFit(p.Shape()) {
			return true
		}
	}
	return false
}

func (h Hand) Clone() Hand {
	c := make(Hand, len(h))
	for i, p := range h {
		if p != nil {
			cp := *p
			c[i] = &cp
		}
	}
	return c
}

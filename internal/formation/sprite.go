package formation

import "github.com/google/uuid"

// Row is the legacy front/back grouping. Explicit coordinates supersede it
// for placement, but it still drives the pitch model and old share links.
type Row int

const (
	Front Row = iota
	Back
)

func (r Row) String() string {
	if r == Front {
		return "front"
	}
	return "back"
}

// code is the single-character wire form used by every link generation.
func (r Row) code() byte {
	if r == Front {
		return 'f'
	}
	return 'b'
}

func rowFromCode(s string) Row {
	if s == "f" || s == "front" {
		return Front
	}
	return Back
}

// Position bounds, relative to stage center.
const (
	MinX = -350
	MaxX = 350
	MinY = -70
	MaxY = 40
	MinZ = 1

	DefaultZ = 10
)

// Sprite is one placed singer.
type Sprite struct {
	ID            string
	TemplateIndex int
	Row           Row
	Flipped       bool
	X             int
	Y             int
	Z             int

	// Transient UI state, never persisted.
	Singing  bool
	Selected bool
}

// New returns a sprite at stage center with a fresh id.
func New(templateIndex int, row Row) Sprite {
	return Sprite{
		ID:            NewID(),
		TemplateIndex: templateIndex,
		Row:           row,
		Z:             DefaultZ,
	}
}

// NewID returns an id that is never reused.
func NewID() string {
	return uuid.NewString()
}

// Clamp forces position fields back into their valid ranges.
func (s *Sprite) Clamp() {
	s.X = ClampX(s.X)
	s.Y = ClampY(s.Y)
	s.Z = ClampZ(s.Z)
}

func ClampX(x int) int { return clampInt(x, MinX, MaxX) }

func ClampY(y int) int { return clampInt(y, MinY, MaxY) }

func ClampZ(z int) int {
	if z < MinZ {
		return MinZ
	}
	return z
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

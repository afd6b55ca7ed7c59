package choir

import "github.com/iburimskiy/cog-choir/internal/formation"

// Row placement used by Randomize.
const (
	randomSize    = 7
	frontSpacing  = 150
	backSpacing   = 130
	frontY        = 20
	backY         = -45
	backZ         = 5
	randomFrontLo = 3
	randomFrontHi = 4
)

// Randomize replaces the choir with seven random singers: three in front and
// four behind, or the other way round.
func (c *Choir) Randomize() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.elevated {
		return ErrElevatedActive
	}

	c.silenceLocked()

	front := randomFrontLo
	if c.rng.Float64() > 0.5 {
		front = randomFrontHi
	}
	back := randomSize - front

	sprites := make([]formation.Sprite, 0, randomSize)
	sprites = append(sprites, c.randomRow(formation.Back, back)...)
	sprites = append(sprites, c.randomRow(formation.Front, front)...)
	c.sprites = sprites
	return nil
}

func (c *Choir) randomRow(row formation.Row, n int) []formation.Sprite {
	spacing, y, z := frontSpacing, frontY, formation.DefaultZ
	if row == formation.Back {
		spacing, y, z = backSpacing, backY, backZ
	}

	out := make([]formation.Sprite, n)
	for i := range out {
		s := formation.New(c.rng.IntN(len(c.cat)), row)
		s.Flipped = c.rng.Float64() > 0.5
		s.X = int((float64(i) - float64(n-1)/2) * float64(spacing))
		s.Y = y
		s.Z = z
		s.Clamp()
		out[i] = s
	}
	return out
}

package choir

import (
	"fmt"

	"github.com/iburimskiy/cog-choir/internal/formation"
)

// Add places a new singer of the given template at stage center.
func (c *Choir) Add(templateIndex int, row formation.Row) (formation.Sprite, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.elevated {
		return formation.Sprite{}, ErrElevatedActive
	}
	if !c.cat.Valid(templateIndex) {
		return formation.Sprite{}, fmt.Errorf("%w: %d", ErrInvalidTemplate, templateIndex)
	}
	if c.rowCount(row) >= c.maxPerRow {
		return formation.Sprite{}, fmt.Errorf("%w: %s", ErrRowFull, row)
	}

	s := formation.New(templateIndex, row)
	s.Flipped = c.rng.Float64() > 0.5
	s.Singing = c.allSinging && c.canSing(s)
	c.sprites = append(c.sprites, s)
	return s, nil
}

// AddByLabel adds a singer looked up by template label.
func (c *Choir) AddByLabel(label string, row formation.Row) (formation.Sprite, error) {
	idx := c.cat.IndexOf(label)
	if idx < 0 {
		return formation.Sprite{}, fmt.Errorf("%w: %q", ErrInvalidTemplate, label)
	}
	return c.Add(idx, row)
}

// AddRandom adds a singer with a random template.
func (c *Choir) AddRandom(row formation.Row) (formation.Sprite, error) {
	return c.Add(c.rng.IntN(len(c.cat)), row)
}

// Remove deletes a singer, silencing it first.
func (c *Choir) Remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.elevated {
		return ErrElevatedActive
	}
	i := c.index(id)
	if i < 0 {
		return ErrUnknownSprite
	}

	c.eng.Stop(id)
	c.sprites = append(c.sprites[:i], c.sprites[i+1:]...)
	if len(c.sprites) == 0 {
		c.silenceLocked()
	}
	return nil
}

// Clear removes every singer.
func (c *Choir) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.elevated {
		return ErrElevatedActive
	}
	c.silenceLocked()
	c.sprites = nil
	return nil
}

// Move sets a singer's horizontal position.
func (c *Choir) Move(id string, x int) error {
	return c.edit(id, true, func(s *formation.Sprite) {
		s.X = x
	})
}

// MoveXY sets a singer's horizontal and vertical position.
func (c *Choir) MoveXY(id string, x, y int) error {
	return c.edit(id, true, func(s *formation.Sprite) {
		s.X = x
		s.Y = y
	})
}

// Flip mirrors a singer.
func (c *Choir) Flip(id string) error {
	return c.edit(id, false, func(s *formation.Sprite) {
		s.Flipped = !s.Flipped
	})
}

// BringForward draws a singer one step closer.
func (c *Choir) BringForward(id string) error {
	return c.edit(id, true, func(s *formation.Sprite) {
		s.Z++
	})
}

// SendBackward draws a singer one step further away.
func (c *Choir) SendBackward(id string) error {
	return c.edit(id, true, func(s *formation.Sprite) {
		s.Z--
	})
}

// edit applies f to a singer and re-clamps it. Placement edits are refused
// while the elevated melody plays.
func (c *Choir) edit(id string, placement bool, f func(*formation.Sprite)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if placement && c.elevated {
		return ErrElevatedActive
	}
	i := c.index(id)
	if i < 0 {
		return ErrUnknownSprite
	}
	f(&c.sprites[i])
	c.sprites[i].Clamp()
	return nil
}

// Select makes id the only selected singer.
func (c *Choir) Select(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index(id) < 0 {
		return ErrUnknownSprite
	}
	for i := range c.sprites {
		c.sprites[i].Selected = c.sprites[i].ID == id
	}
	return nil
}

// ClearSelection deselects everything.
func (c *Choir) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.sprites {
		c.sprites[i].Selected = false
	}
}

// Selected returns the selected singer, if any.
func (c *Choir) Selected() (formation.Sprite, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.selected(); i >= 0 {
		return c.sprites[i], true
	}
	return formation.Sprite{}, false
}

func (c *Choir) selected() int {
	for i := range c.sprites {
		if c.sprites[i].Selected {
			return i
		}
	}
	return -1
}

// DragSelected moves the selected singer by a pointer delta. It reports
// whether anything moved.
func (c *Choir) DragSelected(dx, dy int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.elevated {
		return false
	}
	i := c.selected()
	if i < 0 {
		return false
	}
	s := &c.sprites[i]
	x, y := s.X, s.Y
	s.X += dx
	s.Y += dy
	s.Clamp()
	return s.X != x || s.Y != y
}

// NudgeSelected moves the selected singer one fixed step.
func (c *Choir) NudgeSelected(d Direction) bool {
	switch d {
	case Left:
		return c.DragSelected(-c.nudgeStep, 0)
	case Right:
		return c.DragSelected(c.nudgeStep, 0)
	case Up:
		return c.DragSelected(0, -c.nudgeStep)
	case Down:
		return c.DragSelected(0, c.nudgeStep)
	}
	return false
}

package choir

import (
	"context"
	"fmt"

	"github.com/iburimskiy/cog-choir/internal/formation"
)

// TriggerSinging plays one pitched note for a singer. A singer has at most
// one note at a time; a new trigger cuts the previous one. The first call
// may block while the shared sample is decoded.
func (c *Choir) TriggerSinging(ctx context.Context, id string) error {
	c.mu.Lock()
	_, err := c.singable(id)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	buf, err := c.lib.Load(ctx, c.assets.Singer)
	if err != nil {
		return fmt.Errorf("load singer sample: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// The choir may have changed while the sample was loading.
	i, err := c.singable(id)
	if err != nil {
		return err
	}

	// Only one kind of singing is audible at a time.
	if c.allSinging {
		c.eng.StopLoop()
		c.allSinging = false
		c.setSinging(func(formation.Sprite) bool { return false })
	}

	s := &c.sprites[i]
	tmpl, _ := c.cat.At(s.TemplateIndex)
	index, size := c.rowPosition(i)
	ratio := c.model.Ratio(tmpl.Class, s.Row, index, size)

	if _, err := c.eng.Sing(id, buf, ratio); err != nil {
		s.Singing = false
		return err
	}
	s.Singing = true
	return nil
}

func (c *Choir) singable(id string) (int, error) {
	if c.elevated {
		return -1, ErrElevatedActive
	}
	i := c.index(id)
	if i < 0 {
		return -1, ErrUnknownSprite
	}
	if !c.canSing(c.sprites[i]) {
		return -1, ErrCannotSing
	}
	return i, nil
}

// ToggleLoopMelody switches the looping melody and the "all singing" state.
// It returns the new state.
func (c *Choir) ToggleLoopMelody(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.elevated {
		c.mu.Unlock()
		return false, ErrElevatedActive
	}
	if c.allSinging {
		c.eng.StopLoop()
		c.allSinging = false
		c.setSinging(func(formation.Sprite) bool { return false })
		c.mu.Unlock()
		return false, nil
	}
	if len(c.sprites) == 0 {
		c.mu.Unlock()
		return false, ErrEmptyChoir
	}
	c.mu.Unlock()

	buf, err := c.lib.Load(ctx, c.assets.Loop)
	if err != nil {
		return false, fmt.Errorf("load loop melody: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.elevated {
		return false, ErrElevatedActive
	}
	if c.allSinging {
		return true, nil
	}
	if len(c.sprites) == 0 {
		return false, ErrEmptyChoir
	}

	c.eng.StopAll()
	if err := c.eng.StartLoop(buf, c.volume); err != nil {
		c.setSinging(func(formation.Sprite) bool { return false })
		return false, err
	}
	c.allSinging = true
	c.setSinging(c.canSing)
	return true, nil
}

// TriggerElevatedMelody plays the full melody once with every capable singer
// joining in. Everything else falls silent for its duration and the choir
// cannot be rearranged until it ends.
func (c *Choir) TriggerElevatedMelody(ctx context.Context) error {
	c.mu.Lock()
	err := c.checkElevated()
	c.mu.Unlock()
	if err != nil {
		return err
	}

	buf, err := c.lib.Load(ctx, c.assets.Elevated)
	if err != nil {
		return fmt.Errorf("load elevated melody: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkElevated(); err != nil {
		return err
	}

	c.silenceLocked()
	token, err := c.eng.PlayOnce(buf, c.volume)
	if err != nil {
		return err
	}
	c.elevated = true
	c.elevatedToken = token
	c.setSinging(c.canSing)
	return nil
}

func (c *Choir) checkElevated() error {
	if c.elevated {
		return ErrElevatedActive
	}
	if len(c.sprites) == 0 {
		return ErrEmptyChoir
	}
	if c.elevatedCount > 0 && len(c.sprites) != c.elevatedCount {
		return fmt.Errorf("%w: have %d, need %d", ErrChoirIncomplete, len(c.sprites), c.elevatedCount)
	}
	return nil
}

package choir

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/url"
	"sync"
	"time"

	"github.com/faiface/beep"

	"github.com/iburimskiy/cog-choir/internal/catalog"
	"github.com/iburimskiy/cog-choir/internal/formation"
	"github.com/iburimskiy/cog-choir/internal/pitch"
	"github.com/iburimskiy/cog-choir/internal/voice"
)

// Loader hands out shared, read-only decoded samples.
type Loader interface {
	Load(ctx context.Context, path string) (*beep.Buffer, error)
}

// Assets names the three audio files the choir uses.
type Assets struct {
	Singer   string
	Loop     string
	Elevated string
}

// Options configures a Choir. Zero values pick the defaults noted per field.
type Options struct {
	Catalog       catalog.Catalog // default catalog.Default()
	Assets        Assets
	MelodyVolume  float64 // default 0.7
	ElevatedCount int     // singers needed for the elevated melody; 0 means any
	MaxPerRow     int     // default 4
	NudgeStep     int     // default 10
	Rand          *rand.Rand
}

// Direction is an arrow-key nudge.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

// Choir holds the canonical, ordered list of placed singers and applies
// every user operation to it. Audio runs on its own thread; its
// notifications only take effect when the owner calls Pump.
type Choir struct {
	cat    catalog.Catalog
	lib    Loader
	eng    *voice.Engine
	model  *pitch.Model
	rng    *rand.Rand
	assets Assets

	volume        float64
	elevatedCount int
	maxPerRow     int
	nudgeStep     int

	mu            sync.Mutex
	sprites       []formation.Sprite
	allSinging    bool
	elevated      bool
	elevatedToken uint64
}

// New creates an empty choir.
func New(lib Loader, eng *voice.Engine, opts Options) *Choir {
	c := &Choir{
		cat:           opts.Catalog,
		lib:           lib,
		eng:           eng,
		rng:           opts.Rand,
		assets:        opts.Assets,
		volume:        opts.MelodyVolume,
		elevatedCount: opts.ElevatedCount,
		maxPerRow:     opts.MaxPerRow,
		nudgeStep:     opts.NudgeStep,
	}
	if c.cat == nil {
		c.cat = catalog.Default()
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	if c.volume == 0 {
		c.volume = 0.7
	}
	if c.maxPerRow == 0 {
		c.maxPerRow = 4
	}
	if c.nudgeStep == 0 {
		c.nudgeStep = 10
	}
	c.model = pitch.NewModel(c.rng)
	return c
}

// Catalog returns the template catalog.
func (c *Choir) Catalog() catalog.Catalog {
	return c.cat
}

// Sprites returns a snapshot of the singers in display order.
func (c *Choir) Sprites() []formation.Sprite {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]formation.Sprite, len(c.sprites))
	copy(out, c.sprites)
	return out
}

// Sprite returns the singer with the given id.
func (c *Choir) Sprite(id string) (formation.Sprite, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.index(id); i >= 0 {
		return c.sprites[i], true
	}
	return formation.Sprite{}, false
}

// Len returns the number of singers.
func (c *Choir) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sprites)
}

// RowCount returns how many singers stand in row.
func (c *Choir) RowCount(row formation.Row) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rowCount(row)
}

// AllSinging reports whether the loop melody is switched on.
func (c *Choir) AllSinging() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.allSinging
}

// Elevated reports whether the elevated melody is playing.
func (c *Choir) Elevated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elevated
}

// ElevatedProgress returns the elapsed and total time of the elevated melody.
func (c *Choir) ElevatedProgress() (elapsed, total time.Duration, ok bool) {
	if !c.Elevated() {
		return 0, 0, false
	}
	return c.eng.OnceProgress()
}

// ElevatedReady reports whether the elevated melody may start now.
func (c *Choir) ElevatedReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checkElevated() == nil
}

// Encode returns the share encoding of the current formation.
func (c *Choir) Encode() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return formation.Encode(c.sprites)
}

// ShareURL stores the formation in base's query string.
func (c *Choir) ShareURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse share base: %w", err)
	}
	formation.Store(u, c.Sprites())
	return u.String(), nil
}

// Restore replaces the formation with the one in link, which may be a full
// share URL or a bare encoding.
func (c *Choir) Restore(link string) (int, error) {
	sprites, err := formation.FromLink(c.cat, link)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.elevated {
		return 0, ErrElevatedActive
	}
	c.silenceLocked()
	c.sprites = sprites
	return len(sprites), nil
}

// Pump applies everything the audio thread has reported since the last
// call: finished triggers clear their singer's flag and a finished elevated
// melody releases the choir. Notifications for superseded triggers are
// ignored. It reports whether any state changed.
func (c *Choir) Pump() bool {
	events := c.eng.Events()
	if len(events) == 0 {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	changed := false
	for _, ev := range events {
		switch ev.Kind {
		case voice.VoiceEnded:
			if !c.eng.Release(ev.ID, ev.Token) {
				continue
			}
			if i := c.index(ev.ID); i >= 0 {
				c.sprites[i].Singing = false
				changed = true
			}
		case voice.MelodyEnded:
			if !c.elevated || ev.Token != c.elevatedToken || !c.eng.ReleaseOnce(ev.Token) {
				continue
			}
			c.elevated = false
			c.elevatedToken = 0
			c.setSinging(func(formation.Sprite) bool { return false })
			changed = true
		}
	}
	return changed
}

// silenceLocked stops every sound and clears every singing flag.
func (c *Choir) silenceLocked() {
	c.eng.StopAll()
	c.eng.StopLoop()
	c.allSinging = false
	c.setSinging(func(formation.Sprite) bool { return false })
}

func (c *Choir) setSinging(f func(formation.Sprite) bool) {
	for i := range c.sprites {
		c.sprites[i].Singing = f(c.sprites[i])
	}
}

func (c *Choir) canSing(s formation.Sprite) bool {
	t, ok := c.cat.At(s.TemplateIndex)
	return ok && t.CanSing()
}

func (c *Choir) index(id string) int {
	for i := range c.sprites {
		if c.sprites[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Choir) rowCount(row formation.Row) int {
	n := 0
	for _, s := range c.sprites {
		if s.Row == row {
			n++
		}
	}
	return n
}

// rowPosition returns the 0-based place of sprites[i] among the singers of
// its row, in display order, and the size of that row.
func (c *Choir) rowPosition(i int) (index, size int) {
	row := c.sprites[i].Row
	for j, s := range c.sprites {
		if s.Row != row {
			continue
		}
		if j < i {
			index++
		}
		size++
	}
	return index, size
}

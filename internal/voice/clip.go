package voice

import (
	"github.com/faiface/beep"

	"github.com/iburimskiy/cog-choir/internal/pitch"
)

// clip bounds a source to length frames, shapes it with an optional envelope
// and reports its natural end. All fields after construction are guarded by
// the output lock.
type clip struct {
	src    beep.Streamer
	token  uint64
	length int // frames; negative means unbounded
	hold   int
	env    *pitch.Envelope
	onEnd  func()

	pos     int
	stopped bool
	ended   bool
}

func (c *clip) Stream(samples [][2]float64) (int, bool) {
	if c.stopped || c.ended {
		return 0, false
	}
	if c.length >= 0 {
		if c.pos >= c.length {
			c.end()
			return 0, false
		}
		if rem := c.length - c.pos; len(samples) > rem {
			samples = samples[:rem]
		}
	}

	n, ok := c.src.Stream(samples)
	if c.env != nil {
		for i := range samples[:n] {
			g := c.env.Frames(c.pos+i, c.hold, c.length)
			samples[i][0] *= g
			samples[i][1] *= g
		}
	}
	c.pos += n

	if !ok {
		c.end()
		return n, n > 0
	}
	if c.length >= 0 && c.pos >= c.length {
		c.end()
	}
	return n, true
}

func (c *clip) Err() error { return c.src.Err() }

// stop silences the clip without reporting an end.
func (c *clip) stop() {
	c.stopped = true
}

func (c *clip) end() {
	if c.ended || c.stopped {
		return
	}
	c.ended = true
	if c.onEnd != nil {
		c.onEnd()
	}
}

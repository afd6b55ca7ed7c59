package pitch

import "time"

// Envelope holds Level until Hold, then ramps linearly to silence at Length.
type Envelope struct {
	Level  float64
	Hold   time.Duration
	Length time.Duration
}

// Trigger is the envelope of a single singer trigger.
var Trigger = Envelope{
	Level:  0.4,
	Hold:   700 * time.Millisecond,
	Length: time.Second,
}

// At returns the gain at offset t.
func (e Envelope) At(t time.Duration) float64 {
	switch {
	case t < 0 || t >= e.Length:
		return 0
	case t < e.Hold:
		return e.Level
	}
	return e.Level * float64(e.Length-t) / float64(e.Length-e.Hold)
}

// Frames is At in sample units: hold and length are frame counts.
func (e Envelope) Frames(i, hold, length int) float64 {
	switch {
	case i < 0 || i >= length:
		return 0
	case i < hold:
		return e.Level
	}
	return e.Level * float64(length-i) / float64(length-hold)
}

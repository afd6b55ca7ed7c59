package voice

import (
	"math"
	"sync"

	"github.com/faiface/beep"
)

// Meter wraps a beep.Streamer and records the last N samples into a ring buffer
// so the stage can draw the level of whatever the choir is singing.
type Meter struct {
	Source    beep.Streamer
	buffer    [][2]float64
	nextIndex int
	mu        sync.RWMutex
}

// NewMeter taps src with a ring of ringSize frames.
func NewMeter(src beep.Streamer, ringSize int) *Meter {
	return &Meter{
		Source: src,
		buffer: make([][2]float64, ringSize),
	}
}

func (m *Meter) Stream(samples [][2]float64) (int, bool) {
	n, ok := m.Source.Stream(samples)
	if n > 0 {
		m.mu.Lock()
		for i := 0; i < n; i++ {
			m.buffer[m.nextIndex] = samples[i]
			m.nextIndex++
			if m.nextIndex >= len(m.buffer) {
				m.nextIndex = 0
			}
		}
		m.mu.Unlock()
	}
	return n, ok
}

func (m *Meter) Err() error { return m.Source.Err() }

// snapshot returns up to last n samples (stereo) from the ring buffer (most recent last).
func (m *Meter) snapshot(n int) [][2]float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if n > len(m.buffer) {
		n = len(m.buffer)
	}
	out := make([][2]float64, n)
	idx := m.nextIndex - n
	if idx < 0 {
		idx += len(m.buffer)
	}
	for i := range out {
		out[i] = m.buffer[idx]
		idx++
		if idx >= len(m.buffer) {
			idx = 0
		}
	}
	return out
}

// Bands splits the last window frames into n bands and returns a compressed
// RMS level per band, roughly in [0,1].
func (m *Meter) Bands(n, window int) []float64 {
	samples := m.snapshot(window)
	bands := make([]float64, n)
	if len(samples) == 0 || n == 0 {
		return bands
	}

	segment := len(samples) / n
	if segment < 1 {
		segment = 1
	}
	for i := range bands {
		start := i * segment
		if start >= len(samples) {
			break
		}
		end := start + segment
		if end > len(samples) {
			end = len(samples)
		}

		var sumSquares float64
		for _, s := range samples[start:end] {
			mono := (s[0] + s[1]) * 0.5
			sumSquares += mono * mono
		}
		rms := math.Sqrt(sumSquares / float64(end-start))
		bands[i] = math.Pow(rms, 0.3)
	}
	return bands
}

package pitch

import (
	"math"
	"math/rand/v2"

	"github.com/iburimskiy/cog-choir/internal/catalog"
	"github.com/iburimskiy/cog-choir/internal/formation"
)

const (
	// SpreadStep is the semitone distance between neighbours in a row.
	SpreadStep = 1.0
	// RowBias raises the front row and lowers the back row.
	RowBias = 1.0
	// DefaultJitter bounds the per-trigger random detune, in semitones.
	DefaultJitter = 0.3
)

// Short singers sit above the shared sample, tall ones below it.
var typeBias = map[string]float64{
	catalog.ClassShortFront: 3,
	catalog.ClassShortSide:  2,
	catalog.ClassTallFront:  -3,
	catalog.ClassTallSide:   -2,
}

// TypeBias returns the semitone bias for a template class, 0 if unknown.
func TypeBias(class string) float64 {
	return typeBias[class]
}

// Semitones computes the jitter-free pitch offset of a singer at position
// index (0-based) in a row of rowSize singers.
func Semitones(class string, row formation.Row, index, rowSize int) float64 {
	p := TypeBias(class)
	if rowSize > 1 {
		p += (float64(index) - float64(rowSize-1)/2) * SpreadStep
	}
	if row == formation.Front {
		p += RowBias
	} else {
		p -= RowBias
	}
	return p
}

// Ratio converts semitones to an equal-tempered playback rate.
func Ratio(semitones float64) float64 {
	return math.Pow(2, semitones/12)
}

// Model adds per-trigger jitter on top of Semitones.
type Model struct {
	Jitter float64
	rng    *rand.Rand
}

// NewModel returns a model drawing jitter from rng.
func NewModel(rng *rand.Rand) *Model {
	return &Model{Jitter: DefaultJitter, rng: rng}
}

// Semitones returns the jittered pitch offset.
func (m *Model) Semitones(class string, row formation.Row, index, rowSize int) float64 {
	p := Semitones(class, row, index, rowSize)
	if m.Jitter > 0 {
		p += (m.rng.Float64()*2 - 1) * m.Jitter
	}
	return p
}

// Ratio returns the jittered playback rate.
func (m *Model) Ratio(class string, row formation.Row, index, rowSize int) float64 {
	return Ratio(m.Semitones(class, row, index, rowSize))
}

package voice

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

var ErrNoOutput = errors.New("audio output unavailable")

// Output mixes streamers. Lock must be held to change the state of a
// streamer that is already playing.
type Output interface {
	Play(s beep.Streamer) error
	Lock()
	Unlock()
}

// SpeakerOutput plays through the system speaker. Everything goes through
// one mixer so the meter sees the full mix.
type SpeakerOutput struct {
	mixer *beep.Mixer
	meter *Meter
}

// NewSpeakerOutput initializes the speaker. latency is the device buffer length.
func NewSpeakerOutput(rate beep.SampleRate, latency time.Duration, meterSize int) (*SpeakerOutput, error) {
	if err := speaker.Init(rate, rate.N(latency)); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	o := &SpeakerOutput{mixer: &beep.Mixer{}}
	o.meter = NewMeter(o.mixer, meterSize)
	speaker.Play(o.meter)
	return o, nil
}

func (o *SpeakerOutput) Play(s beep.Streamer) error {
	speaker.Lock()
	o.mixer.Add(s)
	speaker.Unlock()
	return nil
}

func (o *SpeakerOutput) Lock()   { speaker.Lock() }
func (o *SpeakerOutput) Unlock() { speaker.Unlock() }

// Meter returns the tap on the final mix.
func (o *SpeakerOutput) Meter() *Meter { return o.meter }

// Close drops everything still playing.
func (o *SpeakerOutput) Close() {
	speaker.Clear()
}

// SilentOutput is used when no audio device could be opened. Every Play
// fails, so callers never believe a sound started.
type SilentOutput struct {
	mu sync.Mutex
}

func (o *SilentOutput) Play(beep.Streamer) error { return ErrNoOutput }
func (o *SilentOutput) Lock()                    { o.mu.Lock() }
func (o *SilentOutput) Unlock()                  { o.mu.Unlock() }

// ManualOutput is an output driven by its owner instead of a device: audio
// only advances when Advance is called. Used for offline rendering and tests.
type ManualOutput struct {
	mu    sync.Mutex
	rate  beep.SampleRate
	mixer beep.Mixer
}

// NewManualOutput returns an idle manual output at rate.
func NewManualOutput(rate beep.SampleRate) *ManualOutput {
	return &ManualOutput{rate: rate}
}

func (o *ManualOutput) Play(s beep.Streamer) error {
	o.mu.Lock()
	o.mixer.Add(s)
	o.mu.Unlock()
	return nil
}

func (o *ManualOutput) Lock()   { o.mu.Lock() }
func (o *ManualOutput) Unlock() { o.mu.Unlock() }

// Advance mixes d worth of audio and returns it.
func (o *ManualOutput) Advance(d time.Duration) [][2]float64 {
	return o.AdvanceFrames(o.rate.N(d))
}

// AdvanceFrames mixes n frames and returns them.
func (o *ManualOutput) AdvanceFrames(n int) [][2]float64 {
	out := make([][2]float64, n)
	o.mu.Lock()
	defer o.mu.Unlock()
	// Stream in small chunks like a device callback would.
	const chunk = 512
	for i := 0; i < n; i += chunk {
		j := i + chunk
		if j > n {
			j = n
		}
		o.mixer.Stream(out[i:j])
	}
	return out
}

// Playing returns the number of streamers still in the mix.
func (o *ManualOutput) Playing() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.mixer.Len()
}

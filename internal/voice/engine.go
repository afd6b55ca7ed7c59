package voice

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"

	"github.com/iburimskiy/cog-choir/internal/pitch"
)

var ErrNoSample = errors.New("no sample buffer")

// EventKind tells what finished on the audio thread.
type EventKind int

const (
	// VoiceEnded: a singer's trigger ran its full envelope.
	VoiceEnded EventKind = iota
	// MelodyEnded: the one-shot melody played to its last sample.
	MelodyEnded
)

// Event is posted from the audio thread and consumed by the owner of the
// engine on its own thread via Events.
type Event struct {
	Kind  EventKind
	ID    string
	Token uint64
}

// Engine owns every live playback: at most one voice per singer id, an
// optional looping melody and an optional one-shot melody.
type Engine struct {
	out  Output
	rate beep.SampleRate
	env  pitch.Envelope

	mu     sync.Mutex
	next   uint64
	voices map[string]*clip
	loop   *clip
	once   *clip

	boxMu sync.Mutex
	box   []Event
}

// NewEngine creates an engine playing through out at rate.
func NewEngine(out Output, rate beep.SampleRate) *Engine {
	return &Engine{
		out:    out,
		rate:   rate,
		env:    pitch.Trigger,
		voices: make(map[string]*clip),
	}
}

// Rate returns the output sample rate.
func (e *Engine) Rate() beep.SampleRate {
	return e.rate
}

// Sing starts a voice for id at the given playback ratio, replacing any voice
// id already has. The returned token identifies this trigger in events.
func (e *Engine) Sing(id string, buf *beep.Buffer, ratio float64) (uint64, error) {
	if buf == nil || buf.Len() == 0 {
		return 0, ErrNoSample
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopLocked(id)

	e.next++
	token := e.next
	loop := beep.Loop(-1, buf.Streamer(0, buf.Len()))
	env := e.env
	c := &clip{
		src:    beep.ResampleRatio(resampleQuality, ratio, loop),
		token:  token,
		length: e.rate.N(env.Length),
		hold:   e.rate.N(env.Hold),
		env:    &env,
		onEnd:  func() { e.post(Event{Kind: VoiceEnded, ID: id, Token: token}) },
	}
	if err := e.out.Play(c); err != nil {
		return 0, fmt.Errorf("start voice %s: %w", id, err)
	}
	e.voices[id] = c
	return token, nil
}

// Stop silences id's voice, if any, without posting an event.
func (e *Engine) Stop(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stopLocked(id)
}

// StopAll silences every singer voice.
func (e *Engine) StopAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for id := range e.voices {
		e.stopLocked(id)
	}
}

func (e *Engine) stopLocked(id string) bool {
	c, ok := e.voices[id]
	if !ok {
		return false
	}
	e.out.Lock()
	c.stop()
	e.out.Unlock()
	delete(e.voices, id)
	return true
}

// Release forgets id's voice after its VoiceEnded event. It reports whether
// token still names the current voice; stale tokens change nothing.
func (e *Engine) Release(id string, token uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.voices[id]
	if !ok || c.token != token {
		return false
	}
	delete(e.voices, id)
	return true
}

// Live reports whether id has a voice.
func (e *Engine) Live(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.voices[id]
	return ok
}

// Voices returns the number of live singer voices.
func (e *Engine) Voices() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.voices)
}

// StartLoop plays buf continuously at volume until StopLoop.
func (e *Engine) StartLoop(buf *beep.Buffer, volume float64) error {
	if buf == nil || buf.Len() == 0 {
		return ErrNoSample
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loop != nil {
		return nil
	}

	c := &clip{
		src:    &effects.Gain{Streamer: beep.Loop(-1, buf.Streamer(0, buf.Len())), Gain: volume - 1},
		length: -1,
	}
	if err := e.out.Play(c); err != nil {
		return fmt.Errorf("start loop melody: %w", err)
	}
	e.loop = c
	return nil
}

// StopLoop silences the looping melody.
func (e *Engine) StopLoop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loop == nil {
		return
	}
	e.out.Lock()
	e.loop.stop()
	e.out.Unlock()
	e.loop = nil
}

// Looping reports whether the loop melody is playing.
func (e *Engine) Looping() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loop != nil
}

// PlayOnce plays buf once at volume, replacing any previous one-shot. A
// MelodyEnded event carrying the returned token is posted on natural end.
func (e *Engine) PlayOnce(buf *beep.Buffer, volume float64) (uint64, error) {
	if buf == nil || buf.Len() == 0 {
		return 0, ErrNoSample
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopOnceLocked()

	e.next++
	token := e.next
	c := &clip{
		src:    &effects.Gain{Streamer: buf.Streamer(0, buf.Len()), Gain: volume - 1},
		token:  token,
		length: buf.Len(),
		onEnd:  func() { e.post(Event{Kind: MelodyEnded, Token: token}) },
	}
	if err := e.out.Play(c); err != nil {
		return 0, fmt.Errorf("start melody: %w", err)
	}
	e.once = c
	return token, nil
}

// StopOnce silences the one-shot melody without posting an event.
func (e *Engine) StopOnce() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopOnceLocked()
}

func (e *Engine) stopOnceLocked() {
	if e.once == nil {
		return
	}
	e.out.Lock()
	e.once.stop()
	e.out.Unlock()
	e.once = nil
}

// ReleaseOnce forgets the one-shot after its MelodyEnded event.
func (e *Engine) ReleaseOnce(token uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.once == nil || e.once.token != token {
		return false
	}
	e.once = nil
	return true
}

// OnceProgress returns the elapsed and total time of the one-shot melody.
func (e *Engine) OnceProgress() (elapsed, total time.Duration, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.once == nil {
		return 0, 0, false
	}
	e.out.Lock()
	pos := e.once.pos
	e.out.Unlock()
	return e.rate.D(pos), e.rate.D(e.once.length), true
}

// Events drains the notifications posted since the last call.
func (e *Engine) Events() []Event {
	e.boxMu.Lock()
	defer e.boxMu.Unlock()
	evs := e.box
	e.box = nil
	return evs
}

func (e *Engine) post(ev Event) {
	e.boxMu.Lock()
	e.box = append(e.box, ev)
	e.boxMu.Unlock()
}

package voice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"
	"golang.org/x/sync/singleflight"
)

// resampleQuality is passed to beep's resampler for rate conversion and pitch.
const resampleQuality = 4

var (
	ErrUnsupportedFormat = errors.New("unsupported audio file type")
	ErrEmptySample       = errors.New("audio file has no samples")
)

// Library decodes audio files into shared in-memory buffers. Each path is
// decoded at most once; callers arriving during a decode wait for it. Failed
// decodes are not remembered, so a later Load retries.
type Library struct {
	rate   beep.SampleRate
	decode func(path string, rate beep.SampleRate) (*beep.Buffer, error)

	group   singleflight.Group
	decodes atomic.Int64

	mu    sync.RWMutex
	cache map[string]*beep.Buffer
}

// NewLibrary returns a library producing buffers at rate.
func NewLibrary(rate beep.SampleRate) *Library {
	return &Library{
		rate:   rate,
		decode: DecodeFile,
		cache:  make(map[string]*beep.Buffer),
	}
}

// Load returns the decoded buffer for path. The buffer must be treated as
// read-only.
func (l *Library) Load(ctx context.Context, path string) (*beep.Buffer, error) {
	if buf, ok := l.cached(path); ok {
		return buf, nil
	}

	ch := l.group.DoChan(path, func() (any, error) {
		if buf, ok := l.cached(path); ok {
			return buf, nil
		}
		l.decodes.Add(1)
		buf, err := l.decode(path, l.rate)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.cache[path] = buf
		l.mu.Unlock()
		return buf, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*beep.Buffer), nil
	}
}

// Loaded reports whether path has been decoded successfully.
func (l *Library) Loaded(path string) bool {
	_, ok := l.cached(path)
	return ok
}

// Decodes returns how many decodes have been started.
func (l *Library) Decodes() int {
	return int(l.decodes.Load())
}

func (l *Library) cached(path string) (*beep.Buffer, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	buf, ok := l.cache[path]
	return buf, ok
}

// DecodeFile reads a wav, mp3 or flac file fully into a buffer at rate.
func DecodeFile(path string, rate beep.SampleRate) (*beep.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	defer streamer.Close()

	var src beep.Streamer = streamer
	if format.SampleRate != rate {
		src = beep.Resample(resampleQuality, format.SampleRate, rate, streamer)
	}

	buf := beep.NewBuffer(beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2})
	buf.Append(src)
	if err := streamer.Err(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptySample)
	}
	return buf, nil
}

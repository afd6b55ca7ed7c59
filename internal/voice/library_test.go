package voice

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
)

func writeWav(t *testing.T, dir, name string, rate beep.SampleRate, frames int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	format := beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
	if err := wav.Encode(f, constBuffer(rate, frames, 0.5).Streamer(0, frames), format); err != nil {
		t.Fatalf("encode wav: %v", err)
	}
	return path
}

// --- DecodeFile ---

func TestDecodeFileWav(t *testing.T) {
	path := writeWav(t, t.TempDir(), "singer.wav", 8000, 400)
	buf, err := DecodeFile(path, 8000)
	if err != nil {
		t.Fatalf("DecodeFile: %v", err)
	}
	if buf.Len() != 400 {
		t.Errorf("Len = %d, want 400", buf.Len())
	}
	if buf.Format().SampleRate != 8000 {
		t.Errorf("rate = %d, want 8000", buf.Format().SampleRate)
	}
}

func TestDecodeFileResamples(t *testing.T) {
	path := writeWav(t, t.TempDir(), "SINGER.WAV", 8000, 800)
	buf, err := DecodeFile(path, 16000)
	if err != nil {
		t.Fatalf("DecodeFile: %v", err)
	}
	if got := buf.Len(); got < 1590 || got > 1610 {
		t.Errorf("Len = %d, want about 1600", got)
	}
}

func TestDecodeFileErrors(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(txt, []byte("la la la"), 0o644); err != nil {
		t.Fatal(err)
	}
	broken := filepath.Join(dir, "broken.wav")
	if err := os.WriteFile(broken, []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := DecodeFile(txt, 8000); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("txt: err = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := DecodeFile(filepath.Join(dir, "missing.wav"), 8000); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing: err = %v, want ErrNotExist", err)
	}
	if _, err := DecodeFile(broken, 8000); err == nil {
		t.Error("broken wav decoded without error")
	}
}

// --- Library ---

func TestLibraryDecodesOnce(t *testing.T) {
	path := writeWav(t, t.TempDir(), "singer.wav", 8000, 100)
	lib := NewLibrary(8000)

	first, err := lib.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	second, err := lib.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if first != second {
		t.Error("second Load returned a different buffer")
	}
	if lib.Decodes() != 1 {
		t.Errorf("Decodes = %d, want 1", lib.Decodes())
	}
	if !lib.Loaded(path) {
		t.Error("Loaded = false after successful load")
	}
}

func TestLibraryConcurrentCallersShareDecode(t *testing.T) {
	lib := NewLibrary(testRate)
	started := make(chan struct{})
	release := make(chan struct{})
	lib.decode = func(string, beep.SampleRate) (*beep.Buffer, error) {
		close(started)
		<-release
		return constBuffer(testRate, 10, 1), nil
	}

	const callers = 8
	var wg sync.WaitGroup
	bufs := make([]*beep.Buffer, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			bufs[i], errs[i] = lib.Load(context.Background(), "singer.wav")
		}(i)
	}

	<-started
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := range bufs {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if bufs[i] != bufs[0] {
			t.Errorf("caller %d got a different buffer", i)
		}
	}
	if lib.Decodes() != 1 {
		t.Errorf("Decodes = %d, want 1", lib.Decodes())
	}
}

func TestLibraryRetriesAfterFailure(t *testing.T) {
	lib := NewLibrary(testRate)
	fail := true
	lib.decode = func(string, beep.SampleRate) (*beep.Buffer, error) {
		if fail {
			return nil, errors.New("codec exploded")
		}
		return constBuffer(testRate, 10, 1), nil
	}

	if _, err := lib.Load(context.Background(), "singer.wav"); err == nil {
		t.Fatal("first Load should fail")
	}
	if lib.Loaded("singer.wav") {
		t.Error("failed decode was cached")
	}

	fail = false
	if _, err := lib.Load(context.Background(), "singer.wav"); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if lib.Decodes() != 2 {
		t.Errorf("Decodes = %d, want 2", lib.Decodes())
	}
}

func TestLibraryLoadHonoursContext(t *testing.T) {
	lib := NewLibrary(testRate)
	release := make(chan struct{})
	defer close(release)
	lib.decode = func(string, beep.SampleRate) (*beep.Buffer, error) {
		<-release
		return constBuffer(testRate, 10, 1), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := lib.Load(ctx, "singer.wav"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want DeadlineExceeded", err)
	}
}

// --- Meter ---

func TestMeterBands(t *testing.T) {
	m := NewMeter(constBuffer(testRate, 1000, 0.25).Streamer(0, 1000), 256)
	buf := make([][2]float64, 300)
	if n, ok := m.Stream(buf); n != 300 || !ok {
		t.Fatalf("Stream = %d, %v", n, ok)
	}

	bands := m.Bands(8, 256)
	if len(bands) != 8 {
		t.Fatalf("len(bands) = %d, want 8", len(bands))
	}
	for i, b := range bands {
		if !approx(b, 0.6598, 0.001) {
			t.Errorf("band %d = %v, want 0.25^0.3", i, b)
		}
	}
}

func TestMeterSnapshotOrder(t *testing.T) {
	var next float64
	src := beep.StreamerFunc(func(s [][2]float64) (int, bool) {
		for i := range s {
			next++
			s[i] = [2]float64{next, next}
		}
		return len(s), true
	})
	m := NewMeter(src, 4)
	m.Stream(make([][2]float64, 6))

	got := m.snapshot(3)
	want := []float64{4, 5, 6}
	for i := range want {
		if got[i][0] != want[i] {
			t.Errorf("snapshot[%d] = %v, want %v", i, got[i][0], want[i])
		}
	}
}

func TestMeterEmpty(t *testing.T) {
	m := NewMeter(beep.Silence(0), 16)
	for i, b := range m.Bands(4, 16) {
		if b != 0 {
			t.Errorf("band %d = %v on silence", i, b)
		}
	}
}

package main

import (
	"context"
	"errors"
	"log"
	"math/rand/v2"
	"os"
	"time"

	"github.com/faiface/beep"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/iburimskiy/cog-choir/internal/catalog"
	"github.com/iburimskiy/cog-choir/internal/choir"
	"github.com/iburimskiy/cog-choir/internal/config"
	"github.com/iburimskiy/cog-choir/internal/stage"
	"github.com/iburimskiy/cog-choir/internal/voice"
)

func main() {
	cfg := config.Load()
	rate := beep.SampleRate(cfg.SampleRate)

	var (
		out   voice.Output
		meter *voice.Meter
	)
	spk, err := voice.NewSpeakerOutput(rate, cfg.Latency, config.MeterRingSize)
	if err != nil {
		log.Printf("audio disabled: %v", err)
		out = &voice.SilentOutput{}
	} else {
		defer spk.Close()
		out = spk
		meter = spk.Meter()
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	lib := voice.NewLibrary(rate)
	c := choir.New(lib, voice.NewEngine(out, rate), choir.Options{
		Catalog: catalog.Default(),
		Assets: choir.Assets{
			Singer:   cfg.SingerSample,
			Loop:     cfg.LoopMelody,
			Elevated: cfg.ElevatedMelody,
		},
		MelodyVolume:  cfg.MelodyVolume,
		ElevatedCount: cfg.ElevatedCount,
		MaxPerRow:     config.MaxPerRow,
		NudgeStep:     cfg.NudgeStep,
		Rand:          rand.New(rand.NewPCG(seed, seed>>1)),
	})

	if link := startLink(); link != "" {
		n, err := c.Restore(link)
		if err != nil {
			log.Printf("restore %q: %v", link, err)
		} else {
			log.Printf("restored %d singers", n)
		}
	}

	// Warm the singer sample so the first click plays without a decode.
	go func() {
		if _, err := lib.Load(context.Background(), cfg.SingerSample); err != nil {
			log.Printf("preload %s: %v", cfg.SingerSample, err)
		}
	}()

	ebiten.SetWindowSize(config.WindowWidth, config.WindowHeight)
	ebiten.SetWindowTitle("Cog Choir - click a statue to sing, L: loop, E: elevated, S: share, Esc/Q: quit")

	g := stage.New(c, meter, cfg)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}

// startLink returns a share link from the command line or CHOIR_LINK.
func startLink() string {
	if len(os.Args) > 1 {
		return os.Args[1]
	}
	return os.Getenv("CHOIR_LINK")
}

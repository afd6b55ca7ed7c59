// Package stage draws the choir with ebiten and turns mouse and keyboard
// input into choir operations.
package stage

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/iburimskiy/cog-choir/internal/choir"
	"github.com/iburimskiy/cog-choir/internal/config"
	"github.com/iburimskiy/cog-choir/internal/layout"
	"github.com/iburimskiy/cog-choir/internal/voice"
)

const (
	colorShiftSpeed = 0.002
	loadTimeout     = 10 * time.Second
)

// Game implements ebiten.Game for the choir stage.
type Game struct {
	choir *choir.Choir
	meter *voice.Meter
	cfg   config.Config
	geo   layout.Stage

	// input
	drag    layout.Drag
	buttons []*button
	pressed *button

	// viz
	audioData  []float64
	time       float64
	colorPhase float64

	// results of background work
	errs    chan error
	notices chan string

	lastErr error
	notice  string
}

// New creates the stage. meter may be nil when there is no audio device.
func New(c *choir.Choir, meter *voice.Meter, cfg config.Config) *Game {
	g := &Game{
		choir: c,
		meter: meter,
		cfg:   cfg,
		geo: layout.Stage{
			CenterX:     config.WindowWidth / 2,
			CenterY:     config.StageCenterY,
			Width:       config.SpriteWidth,
			ShortHeight: config.ShortHeight,
			TallHeight:  config.TallHeight,
		},
		errs:    make(chan error, 8),
		notices: make(chan string, 8),
	}
	g.buttons = g.newButtons()
	return g
}

func (g *Game) Update() error {
	g.collect()
	g.choir.Pump()

	if g.handleKeys() {
		return ebiten.Termination
	}
	g.handleMouse()

	g.time += 1.0 / 60.0
	g.colorPhase += colorShiftSpeed
	g.updateAudioData()
	return nil
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return config.WindowWidth, config.WindowHeight
}

// async runs f off the game loop. Loading a sample the first time can take
// a while and dialogs block until closed.
func (g *Game) async(f func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		if err := f(ctx); err != nil {
			select {
			case g.errs <- err:
			default:
			}
		}
	}()
}

func (g *Game) say(msg string) {
	select {
	case g.notices <- msg:
	default:
	}
}

func (g *Game) collect() {
	for {
		select {
		case err := <-g.errs:
			g.report(err)
		case msg := <-g.notices:
			g.notice = msg
			g.lastErr = nil
		default:
			return
		}
	}
}

// report shows err in the status line. Refusals that the user can see for
// themselves are dropped.
func (g *Game) report(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, choir.ErrElevatedActive) || errors.Is(err, choir.ErrCannotSing) {
		return
	}
	log.Printf("stage: %v", err)
	g.lastErr = err
}

func (g *Game) updateAudioData() {
	if g.meter == nil {
		return
	}
	bands := g.meter.Bands(config.MeterBands, config.MeterWindow)
	if len(g.audioData) != len(bands) {
		g.audioData = make([]float64, len(bands))
	}
	for i, mag := range bands {
		g.audioData[i] = config.SmoothingFactor*g.audioData[i] + (1-config.SmoothingFactor)*mag
	}
}

// level is the smoothed overall loudness in [0,1].
func (g *Game) level() float64 {
	if len(g.audioData) == 0 {
		return 0
	}
	var sum float64
	for _, v := range g.audioData {
		sum += v
	}
	return clamp01(sum / float64(len(g.audioData)))
}

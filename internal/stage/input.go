package stage

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/ncruces/zenity"

	"github.com/iburimskiy/cog-choir/internal/choir"
	"github.com/iburimskiy/cog-choir/internal/config"
	"github.com/iburimskiy/cog-choir/internal/formation"
)

// Held arrow keys repeat after this many ticks, every repeatEvery ticks.
const (
	repeatDelay = 20
	repeatEvery = 3
)

type button struct {
	label    func() string
	x, y     int
	action   func()
	disabled func() bool
	hovered  bool
}

func (b *button) contains(x, y int) bool {
	return x >= b.x && x <= b.x+config.ButtonWidth &&
		y >= b.y && y <= b.y+config.ButtonHeight
}

func (b *button) enabled() bool {
	return b.disabled == nil || !b.disabled()
}

func fixed(s string) func() string { return func() string { return s } }

func (g *Game) newButtons() []*button {
	elevated := func() bool { return g.choir.Elevated() }
	bs := []*button{
		{label: fixed("Add Front"), action: func() { g.addRandom(formation.Front) }, disabled: elevated},
		{label: fixed("Add Back"), action: func() { g.addRandom(formation.Back) }, disabled: elevated},
		{label: fixed("Randomize"), action: g.randomize, disabled: elevated},
		{
			label: func() string {
				if g.choir.AllSinging() {
					return "Stop Loop"
				}
				return "Loop"
			},
			action:   g.toggleLoop,
			disabled: elevated,
		},
		{
			label:    fixed("Elevated"),
			action:   g.elevate,
			disabled: func() bool { return !g.choir.ElevatedReady() },
		},
		{label: fixed("Share"), action: g.share},
		{label: fixed("Open"), action: g.open, disabled: elevated},
	}
	for i, b := range bs {
		b.x = config.ButtonX + i*(config.ButtonWidth+config.ButtonGap)
		b.y = config.ButtonY
	}
	return bs
}

// handleKeys applies keyboard shortcuts and reports whether to quit.
func (g *Game) handleKeys() bool {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return true
	}

	nudges := []struct {
		key ebiten.Key
		dir choir.Direction
	}{
		{ebiten.KeyArrowLeft, choir.Left},
		{ebiten.KeyArrowRight, choir.Right},
		{ebiten.KeyArrowUp, choir.Up},
		{ebiten.KeyArrowDown, choir.Down},
	}
	for _, n := range nudges {
		if repeating(n.key) {
			g.choir.NudgeSelected(n.dir)
		}
	}

	digits := []ebiten.Key{ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4}
	for i, k := range digits {
		if !inpututil.IsKeyJustPressed(k) {
			continue
		}
		row := formation.Front
		if ebiten.IsKeyPressed(ebiten.KeyShift) {
			row = formation.Back
		}
		_, err := g.choir.Add(i, row)
		g.report(err)
	}

	if sel, ok := g.choir.Selected(); ok {
		switch {
		case inpututil.IsKeyJustPressed(ebiten.KeyDelete), inpututil.IsKeyJustPressed(ebiten.KeyBackspace):
			g.report(g.choir.Remove(sel.ID))
		case inpututil.IsKeyJustPressed(ebiten.KeyF):
			g.report(g.choir.Flip(sel.ID))
		case inpututil.IsKeyJustPressed(ebiten.KeyPageUp):
			g.report(g.choir.BringForward(sel.ID))
		case inpututil.IsKeyJustPressed(ebiten.KeyPageDown):
			g.report(g.choir.SendBackward(sel.ID))
		case inpututil.IsKeyJustPressed(ebiten.KeySpace):
			g.sing(sel.ID)
		}
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.randomize()
	case inpututil.IsKeyJustPressed(ebiten.KeyL):
		g.toggleLoop()
	case inpututil.IsKeyJustPressed(ebiten.KeyE):
		g.elevate()
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		g.report(g.choir.Clear())
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		g.share()
	case inpututil.IsKeyJustPressed(ebiten.KeyO):
		g.open()
	}
	return false
}

func repeating(k ebiten.Key) bool {
	d := inpututil.KeyPressDuration(k)
	return d == 1 || (d > repeatDelay && d%repeatEvery == 0)
}

func (g *Game) handleMouse() {
	mx, my := ebiten.CursorPosition()
	var hovered *button
	for _, b := range g.buttons {
		b.hovered = b.contains(mx, my)
		if b.hovered {
			hovered = b
		}
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		switch {
		case hovered != nil:
			g.pressed = hovered
		default:
			g.pick(mx, my)
		}
	}

	if g.drag.Active() && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		if dx, dy := g.drag.Move(mx, my); dx != 0 || dy != 0 {
			g.choir.DragSelected(dx, dy)
		}
	}

	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		if g.pressed != nil && g.pressed == hovered && g.pressed.enabled() {
			g.pressed.action()
		}
		g.pressed = nil
		g.drag.End()
	}
}

// pick selects and sings the topmost singer under the pointer, or clears
// the selection when there is none.
func (g *Game) pick(mx, my int) {
	sprites := g.choir.Sprites()
	i := g.geo.HitTest(sprites, g.choir.Catalog(), float64(mx), float64(my))
	if i < 0 {
		g.choir.ClearSelection()
		return
	}
	id := sprites[i].ID
	if err := g.choir.Select(id); err != nil {
		g.report(err)
		return
	}
	g.drag.Start(mx, my)
	g.sing(id)
}

func (g *Game) sing(id string) {
	g.async(func(ctx context.Context) error {
		return g.choir.TriggerSinging(ctx, id)
	})
}

func (g *Game) addRandom(row formation.Row) {
	_, err := g.choir.AddRandom(row)
	g.report(err)
}

func (g *Game) randomize() {
	g.report(g.choir.Randomize())
}

func (g *Game) toggleLoop() {
	g.async(func(ctx context.Context) error {
		_, err := g.choir.ToggleLoopMelody(ctx)
		return err
	})
}

func (g *Game) elevate() {
	g.async(g.choir.TriggerElevatedMelody)
}

// share shows the link for the current formation in a dialog the user can
// copy from.
func (g *Game) share() {
	link, err := g.choir.ShareURL(g.cfg.ShareBaseURL)
	if err != nil {
		g.report(err)
		return
	}
	log.Printf("share link: %s", link)
	g.say("Share link: " + link)
	g.async(func(context.Context) error {
		_, err := zenity.Entry("Copy this link to share your choir:",
			zenity.Title("Share Choir"),
			zenity.EntryText(link),
		)
		if err != nil && !errors.Is(err, zenity.ErrCanceled) {
			return fmt.Errorf("share dialog: %w", err)
		}
		return nil
	})
}

// open asks for a share link or bare encoding and restores it.
func (g *Game) open() {
	g.async(func(context.Context) error {
		link, err := zenity.Entry("Paste a choir link:", zenity.Title("Open Choir"))
		if err != nil {
			if errors.Is(err, zenity.ErrCanceled) {
				return nil
			}
			return fmt.Errorf("open dialog: %w", err)
		}
		n, err := g.choir.Restore(link)
		if err != nil {
			return fmt.Errorf("restore: %w", err)
		}
		log.Printf("restored %d singers", n)
		g.say(fmt.Sprintf("Restored %d singers", n))
		return nil
	})
}

package stage

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/iburimskiy/cog-choir/internal/config"
	"github.com/iburimskiy/cog-choir/internal/formation"
	"github.com/iburimskiy/cog-choir/internal/layout"
)

func (g *Game) Draw(screen *ebiten.Image) {
	g.drawBackground(screen)
	g.drawFloor(screen)
	g.drawSprites(screen)
	g.drawButtons(screen)
	g.drawProgressBar(screen)
	g.drawAudioBar(screen)

	status := fmt.Sprintf("%d singers | click: sing, drag: move, arrows: nudge, F: flip, Del: remove, 1-4 / Shift+1-4: add", g.choir.Len())
	switch {
	case g.choir.Elevated():
		status = "Elevated melody - the choir is locked until it ends"
	case g.choir.AllSinging():
		status += " | Loop on"
	}
	if g.lastErr != nil {
		status += " | Error: " + g.lastErr.Error()
	} else if g.notice != "" {
		status += " | " + g.notice
	}
	ebitenutil.DebugPrintAt(screen, status, 12, 12)
}

func (g *Game) drawBackground(screen *ebiten.Image) {
	// Slow dusk gradient, brighter while the choir sings
	lift := 10 * g.level()
	for y := 0; y < config.WindowHeight; y++ {
		ratio := float64(y) / float64(config.WindowHeight)
		r := uint8(18 + lift + 12*math.Sin(g.time*0.3+ratio*math.Pi))
		gv := uint8(14 + lift + 8*math.Cos(g.time*0.2+ratio*math.Pi))
		b := uint8(24 + lift + 14*math.Sin(g.time*0.4+ratio*math.Pi))
		vector.StrokeLine(screen, 0, float32(y), float32(config.WindowWidth), float32(y), 1, color.RGBA{R: r, G: gv, B: b, A: 255}, false)
	}
}

func (g *Game) drawFloor(screen *ebiten.Image) {
	top := float32(g.geo.CenterY + formation.MinY - 10)
	bottom := float32(g.geo.CenterY + formation.MaxY + 10)
	left := float32(g.geo.CenterX + formation.MinX - g.geo.Width)
	width := float32(formation.MaxX-formation.MinX) + 2*float32(g.geo.Width)
	vector.DrawFilledRect(screen, left, top, width, bottom-top, color.RGBA{R: 40, G: 34, B: 30, A: 160}, false)
	vector.StrokeRect(screen, left, top, width, bottom-top, 1, color.RGBA{R: 90, G: 76, B: 60, A: 200}, false)
}

func (g *Game) drawSprites(screen *ebiten.Image) {
	sprites := g.choir.Sprites()
	cat := g.choir.Catalog()
	for _, i := range layout.DrawOrder(sprites) {
		s := sprites[i]
		t, _ := cat.At(s.TemplateIndex)
		r := g.geo.Rect(s, t)
		x, y, w, h := float32(r.X), float32(r.Y), float32(r.W), float32(r.H)
		head := w * 0.35
		hx, hy := x+w/2, y+head

		if s.Singing {
			glow := float32(head * (1.6 + 0.8*float32(g.level())))
			hue := (g.colorPhase + float64(i)*0.1) * 360
			cr, cg, cb := hsvToRgb(hue, 0.5, 1)
			vector.DrawFilledCircle(screen, hx, hy, glow, color.RGBA{R: cr, G: cg, B: cb, A: 90}, false)
		}

		body := bodyColor(t, s.Singing)
		vector.DrawFilledRect(screen, x, y+head*1.6, w, h-head*1.6, body, false)
		vector.DrawFilledCircle(screen, hx, hy, head, body, false)

		// Eye on the side the statue faces.
		eye := hx + head*0.45
		if s.Flipped {
			eye = hx - head*0.45
		}
		vector.DrawFilledCircle(screen, eye, hy-head*0.1, head*0.15, color.RGBA{R: 30, G: 24, B: 20, A: 255}, false)

		if s.Selected {
			vector.StrokeRect(screen, x-3, y-3, w+6, h+6, 2, color.RGBA{R: 240, G: 230, B: 160, A: 255}, false)
		}
	}
}

func (g *Game) drawButtons(screen *ebiten.Image) {
	for _, b := range g.buttons {
		g.drawButton(screen, b)
	}
}

func (g *Game) drawButton(screen *ebiten.Image, b *button) {
	// Button background
	var bgColor color.Color
	switch {
	case !b.enabled():
		bgColor = color.RGBA{R: 55, G: 58, B: 66, A: 255} // Disabled
	case g.pressed == b:
		bgColor = color.RGBA{R: 60, G: 80, B: 120, A: 255} // Pressed
	case b.hovered:
		bgColor = color.RGBA{R: 80, G: 100, B: 140, A: 255} // Hovered
	default:
		bgColor = color.RGBA{R: 100, G: 120, B: 160, A: 255} // Normal
	}

	x, y := float32(b.x), float32(b.y)
	vector.DrawFilledRect(screen, x, y, config.ButtonWidth, config.ButtonHeight, bgColor, false)
	vector.StrokeRect(screen, x, y, config.ButtonWidth, config.ButtonHeight, 2, color.RGBA{R: 150, G: 170, B: 200, A: 255}, false)

	text := b.label()
	textWidth := len(text) * 6 // debug font glyph width
	ebitenutil.DebugPrintAt(screen, text, b.x+(config.ButtonWidth-textWidth)/2, b.y+(config.ButtonHeight-16)/2)
}

// drawProgressBar shows how far the elevated melody has played.
func (g *Game) drawProgressBar(screen *ebiten.Image) {
	elapsed, total, ok := g.choir.ElevatedProgress()
	if !ok || total == 0 {
		return
	}

	barHeight := 12
	barY := config.WindowHeight - 130
	barWidth := config.WindowWidth - 40
	barX := 20
	progress := clamp01(float64(elapsed) / float64(total))

	vector.DrawFilledRect(screen, float32(barX), float32(barY), float32(barWidth), float32(barHeight), color.RGBA{R: 25, G: 30, B: 40, A: 200}, false)
	vector.StrokeRect(screen, float32(barX), float32(barY), float32(barWidth), float32(barHeight), 2, color.RGBA{R: 70, G: 80, B: 100, A: 255}, false)
	if progress > 0 {
		hue := (g.colorPhase + progress*180) * 360
		r, gv, b := hsvToRgb(hue, 0.8, 0.9)
		vector.DrawFilledRect(screen, float32(barX), float32(barY), float32(progress*float64(barWidth)), float32(barHeight), color.RGBA{R: r, G: gv, B: b, A: 180}, false)
	}

	ebitenutil.DebugPrintAt(screen, formatDuration(elapsed), barX, barY+barHeight+4)
	totalTime := formatDuration(total)
	ebitenutil.DebugPrintAt(screen, totalTime, barX+barWidth-len(totalTime)*6, barY+barHeight+4)
}

func (g *Game) drawAudioBar(screen *ebiten.Image) {
	if len(g.audioData) == 0 {
		return
	}

	barHeight := 60
	barY := config.WindowHeight - barHeight - 20
	barWidth := config.WindowWidth - 40
	barX := 20
	segmentWidth := float64(barWidth) / float64(len(g.audioData))

	vector.DrawFilledRect(screen, float32(barX), float32(barY), float32(barWidth), float32(barHeight), color.RGBA{R: 20, G: 25, B: 35, A: 200}, false)
	vector.StrokeRect(screen, float32(barX), float32(barY), float32(barWidth), float32(barHeight), 2, color.RGBA{R: 60, G: 70, B: 90, A: 255}, false)

	for i, v := range g.audioData {
		segmentX := float64(barX) + float64(i)*segmentWidth
		segmentHeight := v * float64(barHeight-10)
		if segmentHeight < 2 {
			segmentHeight = 2
		}

		freqRatio := float64(i) / float64(len(g.audioData))
		hue := (g.colorPhase + freqRatio*180) * 360
		r, gv, b := hsvToRgb(hue, 0.8, 0.9)
		segmentColor := color.RGBA{R: r, G: gv, B: b, A: uint8(100 + 155*clamp01(v))}

		segmentY := float64(barY) + float64(barHeight) - segmentHeight
		vector.DrawFilledRect(screen, float32(segmentX), float32(segmentY), float32(segmentWidth-1), float32(segmentHeight), segmentColor, false)
	}
}

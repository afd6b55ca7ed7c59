// Package layout maps stage coordinates to screen rectangles.
package layout

import (
	"sort"

	"github.com/iburimskiy/cog-choir/internal/catalog"
	"github.com/iburimskiy/cog-choir/internal/formation"
)

// Per-step depth scale. A sprite at formation.DefaultZ draws at full size.
const (
	depthStep = 0.04
	minScale  = 0.5
	maxScale  = 1.6
)

// Rect is a screen-space rectangle.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether (px, py) lies inside r.
func (r Rect) Contains(px, py float64) bool {
	return px >= r.X && px < r.X+r.W && py >= r.Y && py < r.Y+r.H
}

// Stage places sprites on a screen. Stage coordinates are relative to
// (CenterX, CenterY), where a sprite's feet stand.
type Stage struct {
	CenterX     float64
	CenterY     float64
	Width       float64
	ShortHeight float64
	TallHeight  float64
}

// Scale returns the draw scale for depth z.
func Scale(z int) float64 {
	s := 1 + float64(z-formation.DefaultZ)*depthStep
	if s < minScale {
		return minScale
	}
	if s > maxScale {
		return maxScale
	}
	return s
}

// Rect returns the screen rectangle of s.
func (st Stage) Rect(s formation.Sprite, t catalog.Template) Rect {
	h := st.ShortHeight
	if t.Tall() {
		h = st.TallHeight
	}
	k := Scale(s.Z)
	w, h := st.Width*k, h*k
	footX := st.CenterX + float64(s.X)
	footY := st.CenterY + float64(s.Y)
	return Rect{X: footX - w/2, Y: footY - h, W: w, H: h}
}

// DrawOrder returns sprite indices back to front: lower Z first, ties in
// list order.
func DrawOrder(sprites []formation.Sprite) []int {
	order := make([]int, len(sprites))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return sprites[order[a]].Z < sprites[order[b]].Z
	})
	return order
}

// HitTest returns the index of the topmost sprite under (px, py), or -1.
func (st Stage) HitTest(sprites []formation.Sprite, cat catalog.Catalog, px, py float64) int {
	order := DrawOrder(sprites)
	for k := len(order) - 1; k >= 0; k-- {
		i := order[k]
		t, _ := cat.At(sprites[i].TemplateIndex)
		if st.Rect(sprites[i], t).Contains(px, py) {
			return i
		}
	}
	return -1
}

// Drag turns pointer motion into stage deltas. Stage units are screen
// pixels, so deltas pass through unscaled.
type Drag struct {
	lastX, lastY int
	active       bool
}

// Start begins a drag at the pointer position.
func (d *Drag) Start(x, y int) {
	d.lastX, d.lastY = x, y
	d.active = true
}

// Active reports whether a drag is in progress.
func (d *Drag) Active() bool { return d.active }

// Move returns the delta since the previous call.
func (d *Drag) Move(x, y int) (dx, dy int) {
	if !d.active {
		return 0, 0
	}
	dx, dy = x-d.lastX, y-d.lastY
	d.lastX, d.lastY = x, y
	return dx, dy
}

// End stops the drag.
func (d *Drag) End() { d.active = false }

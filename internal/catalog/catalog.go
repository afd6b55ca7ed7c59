package catalog

// Template is a static sprite definition selectable when adding a singer.
type Template struct {
	BodyImg string
	HeadImg string
	Class   string
	Label   string

	// VisualOnly templates never sing: they are skipped by individual
	// triggers, the loop melody and the elevated melody.
	VisualOnly bool
}

// CanSing reports whether sprites of this template take part in audio.
func (t Template) CanSing() bool {
	return !t.VisualOnly
}

// Tall reports whether the template uses the tall body.
func (t Template) Tall() bool {
	switch t.Class {
	case ClassTallFront, ClassTallSide:
		return true
	}
	return false
}

const (
	ClassShortFront = "singer-short-front"
	ClassShortSide  = "singer-short-side"
	ClassTallFront  = "singer-tall-front"
	ClassTallSide   = "singer-tall-side"
)

// Catalog is an ordered, read-only list of templates. Sprites refer to
// entries by index, so the order is part of the share link format.
type Catalog []Template

// Default returns the cogwork statue catalog.
func Default() Catalog {
	return Catalog{
		{
			BodyImg: "assets/Cog_Choir__0004_short_front.png",
			HeadImg: "assets/Cog_Choir__0003_short_front_head.png",
			Class:   ClassShortFront,
			Label:   "Short Front",
		},
		{
			BodyImg: "assets/Cog_Choir__0006_right_short.png",
			HeadImg: "assets/Cog_Choir__0005_right_short_head.png",
			Class:   ClassShortSide,
			Label:   "Short Side",
		},
		{
			BodyImg: "assets/Cog_Choir__0002_tall_front.png",
			HeadImg: "assets/Cog_Choir__0001_tall_front_head.png",
			Class:   ClassTallFront,
			Label:   "Tall Front",
		},
		{
			BodyImg: "assets/Cog_Choir__0008_right_tall.png",
			HeadImg: "assets/Cog_Choir__0007_right_tall_head.png",
			Class:   ClassTallSide,
			Label:   "Tall Side",
		},
	}
}

// Valid reports whether i indexes an entry.
func (c Catalog) Valid(i int) bool {
	return i >= 0 && i < len(c)
}

// At returns the template at i.
func (c Catalog) At(i int) (Template, bool) {
	if !c.Valid(i) {
		return Template{}, false
	}
	return c[i], true
}

// IndexOf looks a template up by its label, returning -1 when absent.
func (c Catalog) IndexOf(label string) int {
	for i, t := range c {
		if t.Label == label {
			return i
		}
	}
	return -1
}

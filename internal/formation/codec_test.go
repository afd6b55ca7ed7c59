package formation

import (
	"net/url"
	"testing"

	"github.com/iburimskiy/cog-choir/internal/catalog"
)

// placement drops ids and transient flags for comparison.
type placement struct {
	idx     int
	row     Row
	flipped bool
	x, z, y int
}

func placements(sprites []Sprite) []placement {
	out := make([]placement, len(sprites))
	for i, s := range sprites {
		out[i] = placement{s.TemplateIndex, s.Row, s.Flipped, s.X, s.Z, s.Y}
	}
	return out
}

func equalPlacements(t *testing.T, got, want []placement) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d sprites, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sprite[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

// --- Encode ---

func TestEncodeEmpty(t *testing.T) {
	if got := Encode(nil); got != "" {
		t.Errorf("Encode(nil) = %q, want empty", got)
	}
}

func TestEncodeCompact(t *testing.T) {
	tests := []struct {
		name   string
		sprite Sprite
		want   string
	}{
		{"center", Sprite{TemplateIndex: 0, Row: Front, Z: 10}, "0f0dw.a.dw"},
		{"flipped back", Sprite{TemplateIndex: 3, Row: Back, Flipped: true, Z: 1}, "3b1dw.1.dw"},
		{"far left low", Sprite{TemplateIndex: 1, Row: Front, X: MinX, Y: MinY, Z: 10}, "1f046.a.by"},
		{"far right high", Sprite{TemplateIndex: 2, Row: Back, X: MaxX, Y: MaxY, Z: 36}, "2b0nm.10.f0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Encode([]Sprite{tt.sprite}); got != tt.want {
				t.Errorf("Encode = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncodeJoinsRecords(t *testing.T) {
	got := Encode([]Sprite{
		{TemplateIndex: 0, Row: Front, Z: 10},
		{TemplateIndex: 1, Row: Back, Z: 10},
	})
	if want := "0f0dw.a.dw,1b0dw.a.dw"; got != want {
		t.Errorf("Encode = %q, want %q", got, want)
	}
}

// --- Round trip ---

func TestRoundTrip(t *testing.T) {
	cat := catalog.Default()
	in := []Sprite{
		{TemplateIndex: 2, Row: Back, Flipped: true, X: -350, Z: 1, Y: -70},
		{TemplateIndex: 0, Row: Front, X: 0, Z: 10, Y: 0},
		{TemplateIndex: 3, Row: Front, X: 350, Z: 99, Y: 40},
		{TemplateIndex: 1, Row: Back, X: -17, Z: 12, Y: 23},
		{TemplateIndex: 0, Row: Front, X: 0, Z: 10, Y: 0},
	}
	out := Decode(cat, Encode(in))
	equalPlacements(t, placements(out), placements(in))
}

func TestRoundTripSingleSprite(t *testing.T) {
	cat := catalog.Default()
	in := []Sprite{{TemplateIndex: 1, Row: Back, Flipped: true, X: 120, Z: 7, Y: -30}}
	out := Decode(cat, Encode(in))
	equalPlacements(t, placements(out), placements(in))
}

func TestRoundTripEveryCoordinate(t *testing.T) {
	cat := catalog.Default()
	var in []Sprite
	for x := MinX; x <= MaxX; x += 25 {
		for y := MinY; y <= MaxY; y += 10 {
			in = append(in, Sprite{TemplateIndex: (x + 350) % 4, Row: Row((y + 70) % 2), X: x, Y: y, Z: 1 + (x+350)/25})
		}
	}
	out := Decode(cat, Encode(in))
	equalPlacements(t, placements(out), placements(in))
}

func TestDecodeResetsTransientState(t *testing.T) {
	cat := catalog.Default()
	in := []Sprite{
		{ID: "keep-me-not", TemplateIndex: 0, Singing: true, Selected: true, Z: 10},
		{ID: "keep-me-not", TemplateIndex: 1, Singing: true, Z: 10},
	}
	out := Decode(cat, Encode(in))
	seen := map[string]bool{}
	for i, s := range out {
		if s.Singing || s.Selected {
			t.Errorf("sprite[%d] kept transient flags: %+v", i, s)
		}
		if s.ID == "" || s.ID == "keep-me-not" {
			t.Errorf("sprite[%d] id = %q, want fresh id", i, s.ID)
		}
		if seen[s.ID] {
			t.Errorf("duplicate id %q", s.ID)
		}
		seen[s.ID] = true
	}
}

// --- Clamping ---

func TestDecodeClampsY(t *testing.T) {
	cat := catalog.Default()
	tests := []struct {
		y, want int
	}{
		{-600, MinY},
		{-71, MinY},
		{41, MaxY},
		{400, MaxY},
	}
	for _, tt := range tests {
		in := []Sprite{{TemplateIndex: 0, Z: 10, Y: tt.y}}
		first := Decode(cat, Encode(in))
		if len(first) != 1 || first[0].Y != tt.want {
			t.Fatalf("y=%d decoded to %+v, want Y=%d", tt.y, first, tt.want)
		}
		second := Decode(cat, Encode(first))
		if len(second) != 1 || second[0].Y != tt.want {
			t.Errorf("y=%d second pass = %+v, want Y=%d", tt.y, second, tt.want)
		}
	}
}

func TestDecodeClampsXAndZ(t *testing.T) {
	cat := catalog.Default()
	out := Decode(cat, Encode([]Sprite{{TemplateIndex: 0, X: 900, Z: 0}, {TemplateIndex: 0, X: -450, Z: -3}}))
	if len(out) != 2 {
		t.Fatalf("got %d sprites, want 2", len(out))
	}
	if out[0].X != MaxX || out[0].Z != MinZ {
		t.Errorf("sprite[0] = X %d Z %d, want X %d Z %d", out[0].X, out[0].Z, MaxX, MinZ)
	}
	if out[1].X != MinX || out[1].Z != MinZ {
		t.Errorf("sprite[1] = X %d Z %d, want X %d Z %d", out[1].X, out[1].Z, MinX, MinZ)
	}
}

// --- Format detection ---

func TestDecodeCompactWinsOverUnderscore(t *testing.T) {
	cat := catalog.Default()
	// "_" is not a base-36 digit, so the x field falls back to its default.
	out := Decode(cat, "0f0d_.a.dw,1b1dw.5.dw")
	want := []placement{
		{0, Front, false, DefaultX, 10, 0},
		{1, Back, true, 0, 5, 0},
	}
	equalPlacements(t, placements(out), want)
}

func TestDecodeUnderscore(t *testing.T) {
	cat := catalog.Default()
	out := Decode(cat, "0_f_1_-120_12_-30|3_b_0_200_4_15")
	want := []placement{
		{0, Front, true, -120, 12, -30},
		{3, Back, false, 200, 4, 15},
	}
	equalPlacements(t, placements(out), want)
}

func TestDecodeUnderscoreFallbacksAndClamp(t *testing.T) {
	cat := catalog.Default()
	out := Decode(cat, "1_b_1_x_y_z|2_f_0_10_3_-300|2_f_0_10_3")
	want := []placement{
		{1, Back, true, DefaultX, DefaultZ, DefaultY},
		{2, Front, false, 10, 3, MinY},
	}
	equalPlacements(t, placements(out), want)
}

func TestDecodeOldest(t *testing.T) {
	cat := catalog.Default()
	out := Decode(cat, "0f1-2b0-3f0")
	want := []placement{
		{0, Front, true, DefaultX, DefaultZ, DefaultY},
		{2, Back, false, DefaultX, DefaultZ, DefaultY},
		{3, Front, false, DefaultX, DefaultZ, DefaultY},
	}
	equalPlacements(t, placements(out), want)
}

// --- Partial recovery ---

func TestDecodeDropsInvalidRecords(t *testing.T) {
	cat := catalog.Default()
	tests := []struct {
		name   string
		config string
		want   int
	}{
		{"empty", "", 0},
		{"out of bounds index", "99f0aa.a.aa", 0},
		{"index past catalog", "7f0dw.a.dw,0f0dw.a.dw", 1},
		{"non-digit index", "xf0dw.a.dw,1b0dw.a.dw", 1},
		{"short compact record", "0f0a.a,1b0dw.a.dw", 1},
		{"too many fields", "0f0dw.a.dw.dw,1b0dw.a.dw", 1},
		{"oldest wrong length", "0f-1b0-2f11", 1},
		{"underscore bad index", "9_f_0_0_10_0|0_f_0_0_10_0", 1},
		{"garbage", "hello world", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Decode(cat, tt.config)
			if out == nil {
				t.Fatal("Decode returned nil, want empty slice")
			}
			if len(out) != tt.want {
				t.Errorf("Decode(%q) = %d sprites, want %d", tt.config, len(out), tt.want)
			}
		})
	}
}

func TestDecodeSmallCatalog(t *testing.T) {
	cat := catalog.Default()[:2]
	out := Decode(cat, "0f0-1b0-2f0-3b0")
	if len(out) != 2 {
		t.Errorf("got %d sprites, want 2 for a two-entry catalog", len(out))
	}
}

// --- Links ---

func TestStoreAndLoad(t *testing.T) {
	cat := catalog.Default()
	u, _ := url.Parse("https://example.org/choir?lang=en")
	in := []Sprite{{TemplateIndex: 1, Row: Back, X: -40, Z: 3, Y: 12}, {TemplateIndex: 2, X: 90, Z: 10}}

	Store(u, in)
	if got := u.Query().Get("lang"); got != "en" {
		t.Errorf("Store dropped unrelated params: lang=%q", got)
	}
	equalPlacements(t, placements(Load(cat, u)), placements(in))

	Store(u, nil)
	if _, ok := u.Query()[Param]; ok {
		t.Errorf("Store(nil) left %q param in %s", Param, u)
	}
	if out := Load(cat, u); len(out) != 0 {
		t.Errorf("Load without param = %d sprites, want 0", len(out))
	}
}

func TestFromLink(t *testing.T) {
	cat := catalog.Default()
	tests := []struct {
		link string
		want int
	}{
		{"https://example.org/?choir=0f0dw.a.dw%2C1b1dw.a.dw", 2},
		{"  0f1-2b0  ", 2},
		{"0f0dw.a.dw", 1},
		{"https://example.org/?other=1", 0},
		{"", 0},
	}
	for _, tt := range tests {
		out, err := FromLink(cat, tt.link)
		if err != nil {
			t.Errorf("FromLink(%q) error: %v", tt.link, err)
			continue
		}
		if len(out) != tt.want {
			t.Errorf("FromLink(%q) = %d sprites, want %d", tt.link, len(out), tt.want)
		}
	}
}

func TestFromLinkBadURL(t *testing.T) {
	if _, err := FromLink(catalog.Default(), "http://[::1/?choir=0f0"); err == nil {
		t.Error("FromLink with malformed URL should fail")
	}
}

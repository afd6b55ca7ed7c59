package formation

import "testing"

func TestNew(t *testing.T) {
	s := New(2, Back)
	if s.ID == "" {
		t.Error("New sprite has empty id")
	}
	if s.X != 0 || s.Y != 0 || s.Z != DefaultZ {
		t.Errorf("New sprite position = (%d, %d, %d), want (0, 0, %d)", s.X, s.Y, s.Z, DefaultZ)
	}
	if s.Singing || s.Selected || s.Flipped {
		t.Errorf("New sprite has flags set: %+v", s)
	}
	if other := New(2, Back); other.ID == s.ID {
		t.Error("two sprites share an id")
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		in, want Sprite
	}{
		{Sprite{X: 0, Y: 0, Z: 10}, Sprite{X: 0, Y: 0, Z: 10}},
		{Sprite{X: -351, Y: -71, Z: 0}, Sprite{X: MinX, Y: MinY, Z: MinZ}},
		{Sprite{X: 351, Y: 41, Z: -5}, Sprite{X: MaxX, Y: MaxY, Z: MinZ}},
		{Sprite{X: 350, Y: 40, Z: 1000}, Sprite{X: 350, Y: 40, Z: 1000}},
	}
	for _, tt := range tests {
		got := tt.in
		got.Clamp()
		if got != tt.want {
			t.Errorf("Clamp(%+v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestRowString(t *testing.T) {
	if Front.String() != "front" || Back.String() != "back" {
		t.Errorf("Row strings = %q, %q", Front, Back)
	}
	if rowFromCode("f") != Front || rowFromCode("front") != Front {
		t.Error("front codes not recognised")
	}
	if rowFromCode("b") != Back || rowFromCode("?") != Back {
		t.Error("anything else should decode as back")
	}
}

package formation

import (
	"strconv"
	"strings"

	"github.com/iburimskiy/cog-choir/internal/catalog"
)

// Three link generations are understood. They are told apart by their
// delimiters, which never overlap between generations:
//
//	compact    0f1dw.a.dw,2b0ce.5.cm    (current, written by Encode)
//	underscore 0_f_1_0_10_0|2_b_0_-40_5_-20
//	oldest     0f1-2b0
const (
	recordSep      = ","
	fieldSep       = "."
	legacySep      = "|"
	legacyFieldSep = "_"
	oldestSep      = "-"

	// coordBias lifts negative coordinates into non-negative base-36 digits.
	coordBias = 500

	compactPrefix    = 3
	compactMinRecord = 6
	legacyFields     = 6
	oldestRecord     = 3
)

// Fallbacks for numeric fields that fail to parse.
const (
	DefaultX = 0
	DefaultY = 0
)

// Encode renders sprites in the compact format. Order is preserved. An empty
// formation encodes to "", which callers must treat as "no parameter".
func Encode(sprites []Sprite) string {
	records := make([]string, 0, len(sprites))
	for _, s := range sprites {
		if s.TemplateIndex < 0 || s.TemplateIndex > 9 {
			continue
		}
		var b strings.Builder
		b.WriteByte(byte('0' + s.TemplateIndex))
		b.WriteByte(s.Row.code())
		if s.Flipped {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
		b.WriteString(strconv.FormatInt(int64(s.X+coordBias), 36))
		b.WriteString(fieldSep)
		b.WriteString(strconv.FormatInt(int64(s.Z), 36))
		b.WriteString(fieldSep)
		b.WriteString(strconv.FormatInt(int64(s.Y+coordBias), 36))
		records = append(records, b.String())
	}
	return strings.Join(records, recordSep)
}

// Decode parses any link generation. Records that do not resolve to a
// catalog entry are dropped; the rest are returned in order with fresh ids.
func Decode(cat catalog.Catalog, config string) []Sprite {
	if config == "" {
		return []Sprite{}
	}
	var sprites []Sprite
	switch {
	case isCompact(config):
		sprites = decodeCompact(cat, config)
	case isUnderscore(config):
		sprites = decodeUnderscore(cat, config)
	default:
		sprites = decodeOldest(cat, config)
	}
	for i := range sprites {
		sprites[i].ID = NewID()
	}
	return sprites
}

// A single compact record carries no record separator, so the field
// separator alone identifies the generation. Neither older format uses it.
func isCompact(config string) bool {
	return strings.Contains(config, fieldSep)
}

func isUnderscore(config string) bool {
	return strings.Contains(config, legacyFieldSep)
}

func decodeCompact(cat catalog.Catalog, config string) []Sprite {
	sprites := []Sprite{}
	for _, rec := range strings.Split(config, recordSep) {
		if len(rec) < compactMinRecord {
			continue
		}
		idx, ok := parseIndex(cat, rec[:1])
		if !ok {
			continue
		}
		fields := strings.Split(rec[compactPrefix:], fieldSep)
		if len(fields) != 3 {
			continue
		}
		s := Sprite{
			TemplateIndex: idx,
			Row:           rowFromCode(rec[1:2]),
			Flipped:       rec[2] == '1',
			X:             parseRadix(fields[0], 36, DefaultX+coordBias) - coordBias,
			Z:             parseRadix(fields[1], 36, DefaultZ),
			Y:             parseRadix(fields[2], 36, DefaultY+coordBias) - coordBias,
		}
		s.Clamp()
		sprites = append(sprites, s)
	}
	return sprites
}

func decodeUnderscore(cat catalog.Catalog, config string) []Sprite {
	sprites := []Sprite{}
	for _, rec := range strings.Split(config, legacySep) {
		f := strings.Split(rec, legacyFieldSep)
		if len(f) != legacyFields {
			continue
		}
		idx, ok := parseIndex(cat, f[0])
		if !ok {
			continue
		}
		s := Sprite{
			TemplateIndex: idx,
			Row:           rowFromCode(f[1]),
			Flipped:       f[2] == "1" || f[2] == "true",
			X:             parseRadix(f[3], 10, DefaultX),
			Z:             parseRadix(f[4], 10, DefaultZ),
			Y:             parseRadix(f[5], 10, DefaultY),
		}
		s.Clamp()
		sprites = append(sprites, s)
	}
	return sprites
}

func decodeOldest(cat catalog.Catalog, config string) []Sprite {
	sprites := []Sprite{}
	for _, rec := range strings.Split(config, oldestSep) {
		if len(rec) != oldestRecord {
			continue
		}
		idx, ok := parseIndex(cat, rec[:1])
		if !ok {
			continue
		}
		sprites = append(sprites, Sprite{
			TemplateIndex: idx,
			Row:           rowFromCode(rec[1:2]),
			Flipped:       rec[2] == '1',
			X:             DefaultX,
			Y:             DefaultY,
			Z:             DefaultZ,
		})
	}
	return sprites
}

func parseIndex(cat catalog.Catalog, s string) (int, bool) {
	idx, err := strconv.Atoi(s)
	if err != nil || !cat.Valid(idx) {
		return 0, false
	}
	return idx, true
}

func parseRadix(s string, base, fallback int) int {
	v, err := strconv.ParseInt(s, base, 32)
	if err != nil {
		return fallback
	}
	return int(v)
}

package formation

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/iburimskiy/cog-choir/internal/catalog"
)

// Param is the query parameter carrying the encoded formation.
const Param = "choir"

// Load reads the formation from u. A missing parameter is an empty formation.
func Load(cat catalog.Catalog, u *url.URL) []Sprite {
	return Decode(cat, u.Query().Get(Param))
}

// Store writes sprites into u, removing the parameter when there is nothing
// to persist.
func Store(u *url.URL, sprites []Sprite) {
	q := u.Query()
	if enc := Encode(sprites); enc != "" {
		q.Set(Param, enc)
	} else {
		q.Del(Param)
	}
	u.RawQuery = q.Encode()
}

// FromLink accepts either a full share link or a bare encoded value.
func FromLink(cat catalog.Catalog, link string) ([]Sprite, error) {
	link = strings.TrimSpace(link)
	if !strings.Contains(link, "://") && !strings.HasPrefix(link, "?") {
		return Decode(cat, link), nil
	}
	u, err := url.Parse(link)
	if err != nil {
		return nil, fmt.Errorf("parse share link: %w", err)
	}
	return Load(cat, u), nil
}

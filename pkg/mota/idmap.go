// Package mota converts mota tower maps into Tiled JSON maps.
//
// A mota map stores each grid ("bgmap", "map") as rows of raw tile codes and a
// sparse "tileProp" overlay keyed by "x,y". Raw codes are remapped to Tiled gids
// through an IDMap; overlay cells become objects instead of tiles.
package mota

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/Faultbox/tiledconv/pkg/encoding"
)

// IDMap errors.
var (
	ErrUnknownTileset = errors.New("idmap references unknown tileset")
	ErrInvalidIDMap   = errors.New("invalid idmap document")
)

// TilesetOffset is a tileset and the first gid assigned to it.
type TilesetOffset struct {
	Name     string
	FirstGID int
}

// IDMap resolves raw mota tile codes to gids. It is read-only once loaded.
type IDMap struct {
	tilesets []TilesetOffset
	offsets  map[string]int
	codes    map[int]int
}

// LoadIDMap reads an IDMap document from disk.
func LoadIDMap(path string) (*IDMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("idmap %s: %w", path, err)
		}
		return nil, fmt.Errorf("reading idmap %s: %w", path, err)
	}
	m, err := ParseIDMap(data)
	if err != nil {
		return nil, fmt.Errorf("idmap %s: %w", path, err)
	}
	return m, nil
}

// ParseIDMap parses an IDMap document:
//
//	{"tilesets": {"<name>": <firstgid>}, "map": {"<code>": {"tileset": "<name>", "id": <local>}}}
//
// Every code resolves to firstgid(tileset) + local. A code naming a tileset
// without an offset is a configuration error.
func ParseIDMap(data []byte) (*IDMap, error) {
	text, err := encoding.DecodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIDMap, err)
	}
	if !gjson.ValidBytes(text) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrInvalidIDMap)
	}
	doc := gjson.ParseBytes(text)

	tilesets := doc.Get("tilesets")
	if !tilesets.IsObject() {
		return nil, fmt.Errorf("%w: missing tilesets section", ErrInvalidIDMap)
	}
	codes := doc.Get("map")
	if !codes.IsObject() {
		return nil, fmt.Errorf("%w: missing map section", ErrInvalidIDMap)
	}

	m := &IDMap{
		offsets: make(map[string]int),
		codes:   make(map[int]int),
	}

	tilesets.ForEach(func(k, v gjson.Result) bool {
		name := strings.TrimSpace(k.String())
		var offset int
		if offset, err = intValue(v); err != nil {
			err = fmt.Errorf("%w: tileset %q offset: %v", ErrInvalidIDMap, name, err)
			return false
		}
		if _, seen := m.offsets[name]; !seen {
			m.tilesets = append(m.tilesets, TilesetOffset{Name: name})
		}
		m.offsets[name] = offset
		return true
	})
	if err != nil {
		return nil, err
	}
	for i := range m.tilesets {
		m.tilesets[i].FirstGID = m.offsets[m.tilesets[i].Name]
	}

	codes.ForEach(func(k, v gjson.Result) bool {
		var code, local int
		if code, err = strconv.Atoi(strings.TrimSpace(k.String())); err != nil {
			err = fmt.Errorf("%w: code %q: %v", ErrInvalidIDMap, k.String(), err)
			return false
		}
		tileset := strings.TrimSpace(v.Get("tileset").String())
		if local, err = intValue(v.Get("id")); err != nil {
			err = fmt.Errorf("%w: code %d id: %v", ErrInvalidIDMap, code, err)
			return false
		}
		offset, ok := m.offsets[tileset]
		if !ok {
			err = fmt.Errorf("%w: %q (code %d)", ErrUnknownTileset, tileset, code)
			return false
		}
		m.codes[code] = offset + local
		return true
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// intValue reads an integer written as a JSON number or a numeric string.
func intValue(r gjson.Result) (int, error) {
	switch r.Type {
	case gjson.Number:
		return int(r.Int()), nil
	case gjson.String:
		return strconv.Atoi(strings.TrimSpace(r.Str))
	default:
		return 0, fmt.Errorf("expected integer, got %q", r.Raw)
	}
}

// Resolve returns the gid for a raw code.
func (m *IDMap) Resolve(code int) (int, bool) {
	gid, ok := m.codes[code]
	return gid, ok
}

// Tilesets returns the tileset offsets in document order.
func (m *IDMap) Tilesets() []TilesetOffset {
	return m.tilesets
}

// Len returns the number of mapped codes.
func (m *IDMap) Len() int {
	return len(m.codes)
}

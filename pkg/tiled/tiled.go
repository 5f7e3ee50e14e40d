// Package tiled models Tiled map editor documents and renders Tiled JSON as TMX/TSX.
package tiled

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Document errors.
var (
	ErrNotFound     = errors.New("document not found")
	ErrMalformed    = errors.New("malformed document")
	ErrNoTiles      = errors.New("tileset document has no tiles")
	ErrNotMap       = errors.New("document has no layers")
	ErrMissingField = errors.New("missing required field")
	ErrTilesetOrder = errors.New("tileset firstgid values are not increasing")
	ErrLayerID      = errors.New("invalid layer id")
	ErrObjectID     = errors.New("invalid object id")
	ErrGIDRange     = errors.New("gid outside every tileset")
)

// Flip flags stored in the high bits of a gid.
const (
	FlippedHorizontally uint64 = 0x80000000
	FlippedVertically   uint64 = 0x40000000
	FlippedDiagonally   uint64 = 0x20000000
	RotatedHexagonal120 uint64 = 0x10000000

	flipMask = FlippedHorizontally | FlippedVertically | FlippedDiagonally | RotatedHexagonal120
)

// BareGID strips flip flags from a gid.
func BareGID(gid uint64) uint64 {
	return gid &^ flipMask
}

// LayerKind discriminates the Layer union.
type LayerKind int

// Layer kinds.
const (
	KindTileLayer LayerKind = iota
	KindObjectGroup
)

// String returns the Tiled JSON type name.
func (k LayerKind) String() string {
	switch k {
	case KindTileLayer:
		return "tilelayer"
	case KindObjectGroup:
		return "objectgroup"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Map is a whole tile map.
type Map struct {
	Orientation  string
	RenderOrder  string
	Width        uint32
	Height       uint32
	TileWidth    uint32
	TileHeight   uint32
	Infinite     bool
	NextLayerID  uint32
	NextObjectID uint32
	Tilesets     []Tileset
	Layers       []Layer
}

// ownsGID reports whether some tileset covers gid once its flip flags are
// stripped. The tileset with the greatest firstgid not above the bare gid owns
// it; an embedded owner with a tile count must also contain it. Tilesets are
// assumed to be in firstgid order.
func (m *Map) ownsGID(gid uint64) bool {
	bare := BareGID(gid)
	owner := -1
	for i, ts := range m.Tilesets {
		if uint64(ts.FirstGID) <= bare {
			owner = i
		}
	}
	if owner < 0 {
		return false
	}
	ts := &m.Tilesets[owner]
	if !ts.IsExternal() && ts.TileCount > 0 {
		return bare < uint64(ts.FirstGID)+uint64(ts.TileCount)
	}
	return true
}

// Validate checks the id-space invariants of the map: firstgid values strictly
// increase without overlapping the previous embedded tileset, layer and object
// ids are unique and below their next-id counters, and every non-zero gid in
// tile data or on an object belongs to a tileset.
func (m *Map) Validate() error {
	var prevEnd uint64
	for i, ts := range m.Tilesets {
		first := uint64(ts.FirstGID)
		if i > 0 && first < prevEnd {
			return fmt.Errorf("%w: tileset %d firstgid %d < %d", ErrTilesetOrder, i, first, prevEnd)
		}
		prevEnd = first + 1
		if !ts.IsExternal() && ts.TileCount > 0 {
			prevEnd = first + uint64(ts.TileCount)
		}
	}

	layerIDs := make(map[uint32]bool)
	objectIDs := make(map[uint32]bool)
	for _, l := range m.Layers {
		if l.ID == 0 || l.ID >= m.NextLayerID || layerIDs[l.ID] {
			return fmt.Errorf("%w: %d (next %d)", ErrLayerID, l.ID, m.NextLayerID)
		}
		layerIDs[l.ID] = true
		for i, gid := range l.Data {
			if gid != 0 && !m.ownsGID(uint64(gid)) {
				return fmt.Errorf("%w: layer %q cell %d gid %d", ErrGIDRange, l.Name, i, gid)
			}
		}
		for _, o := range l.Objects {
			if o.ID == 0 || o.ID >= m.NextObjectID || objectIDs[o.ID] {
				return fmt.Errorf("%w: %d (next %d)", ErrObjectID, o.ID, m.NextObjectID)
			}
			objectIDs[o.ID] = true
			if o.GID != 0 && !m.ownsGID(o.GID) {
				return fmt.Errorf("%w: object %d gid %d", ErrGIDRange, o.ID, o.GID)
			}
		}
	}
	return nil
}

// Grid describes the tile grid of an image-collection tileset.
type Grid struct {
	Orientation string
	Width       uint32
	Height      uint32
}

// Image is an image reference. Images are never opened.
type Image struct {
	Source string
	Width  uint32
	Height uint32
}

// Tileset is either an external reference (Source set) or an embedded definition.
type Tileset struct {
	FirstGID uint32
	Source   string

	Version      string
	TiledVersion string
	Name         string
	TileWidth    uint32
	TileHeight   uint32
	TileCount    uint32
	Columns      uint32
	Grid         *Grid
	Image        *Image
	Tiles        []Tile
}

// IsExternal reports whether the tileset lives in a separate document.
func (ts *Tileset) IsExternal() bool {
	return ts.Source != ""
}

// Tile is a single image tile of a collection tileset.
type Tile struct {
	ID          uint32
	Image       string
	ImageWidth  uint32
	ImageHeight uint32
}

// Layer is a tile layer or an object group.
type Layer struct {
	Kind    LayerKind
	ID      uint32
	Name    string
	Visible bool

	// Tile layer fields. Data holds decoded gids; RawData holds data that was
	// already encoded (base64, possibly compressed) and is passed through.
	Width       int
	Height      int
	Data        []uint32
	RawData     string
	Encoding    string
	Compression string

	// Object group fields.
	Objects []Object
}

// CSV renders Data as comma separated gids without a trailing separator.
func (l *Layer) CSV() string {
	var sb strings.Builder
	for i, gid := range l.Data {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatUint(uint64(gid), 10))
	}
	return sb.String()
}

// Object is a freely positioned entity in an object group.
type Object struct {
	ID         uint32
	GID        uint64
	X          float64
	Y          float64
	Width      int
	Height     int
	Properties []Property
}

// Property is a typed custom property.
type Property struct {
	Name  string
	Type  string
	Value any
}

package mota

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/Faultbox/tiledconv/pkg/tiled"
)

// Diagnostic records a raw code with no IDMap entry. The cell is written as 0.
type Diagnostic struct {
	Layer string
	Col   int
	Row   int
	Code  int
}

// String returns a human-readable description.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s[%d,%d]: unresolved tile code %d", d.Layer, d.Col, d.Row, d.Code)
}

// Session holds the state of one document conversion. Create a new session per
// document; nothing in it may be shared between maps.
type Session struct {
	idmap        *IDMap
	overlay      *Overlay
	nextLayerID  uint32
	nextObjectID uint32
	diagnostics  []Diagnostic
}

// NewSession starts a conversion with fresh layer and object counters.
func NewSession(idmap *IDMap, overlay *Overlay) *Session {
	if overlay == nil {
		overlay = NewOverlay()
	}
	return &Session{
		idmap:        idmap,
		overlay:      overlay,
		nextLayerID:  1,
		nextObjectID: 1,
	}
}

// Diagnostics returns the unresolved codes seen so far.
func (s *Session) Diagnostics() []Diagnostic {
	return s.diagnostics
}

// NextLayerID returns the next unallocated layer id.
func (s *Session) NextLayerID() uint32 {
	return s.nextLayerID
}

// NextObjectID returns the next unallocated object id.
func (s *Session) NextObjectID() uint32 {
	return s.nextObjectID
}

// gridField finds a top-level field by exact name without path syntax.
func gridField(doc gjson.Result, name string) gjson.Result {
	var found gjson.Result
	doc.ForEach(func(k, v gjson.Result) bool {
		if k.String() == name {
			found = v
			return false
		}
		return true
	})
	return found
}

// TranspileLayer converts the named grid of doc into a tile layer.
//
// Codes found in the IDMap become gids unless the overlay has an entry for the
// cell on this layer; such cells are written as 0 and the entry records the gid
// so it can become an object. It returns nil when the grid is absent or empty,
// or when no cell produced a static tile.
func (s *Session) TranspileLayer(doc gjson.Result, name string) (*tiled.Layer, error) {
	grid := gridField(doc, name)
	if !grid.IsArray() {
		return nil, nil
	}
	rows := grid.Array()
	if len(rows) == 0 {
		return nil, nil
	}

	// gjson wraps a scalar into a one-element array; a flat grid must not pass.
	for row, r := range rows {
		if !r.IsArray() {
			return nil, fmt.Errorf("%w: %s row %d is not an array", ErrMalformed, name, row)
		}
	}

	width := len(rows[0].Array())
	height := len(rows)
	data := make([]uint32, 0, width*height)
	remapped := false

	for row, r := range rows {
		cells := r.Array()
		if len(cells) != width {
			return nil, fmt.Errorf("%w: %s row %d has %d cells, expected %d", ErrRaggedGrid, name, row, len(cells), width)
		}
		for col, cell := range cells {
			if cell.Type != gjson.Number {
				return nil, fmt.Errorf("%w: %s[%d,%d] is not a tile code: %s", ErrMalformed, name, col, row, cell.Raw)
			}
			code := int(cell.Int())
			if code == 0 {
				data = append(data, 0)
				continue
			}

			gid, ok := s.idmap.Resolve(code)
			if !ok {
				s.diagnostics = append(s.diagnostics, Diagnostic{Layer: name, Col: col, Row: row, Code: code})
				data = append(data, 0)
				continue
			}

			if info, ok := s.overlay.Lookup(Coord{Col: col, Row: row}, name); ok {
				info.GID = gid
				info.Consumed = true
				data = append(data, 0)
				continue
			}

			remapped = true
			data = append(data, uint32(gid))
		}
	}

	if !remapped {
		return nil, nil
	}

	layer := &tiled.Layer{
		Kind:    tiled.KindTileLayer,
		ID:      s.nextLayerID,
		Name:    name,
		Visible: true,
		Width:   width,
		Height:  height,
		Data:    data,
	}
	s.nextLayerID++
	return layer, nil
}

// BuildObjects turns consumed overlay entries into an object group, in overlay
// order. Entries no grid consumed are dropped. It returns nil when there are
// no objects.
func (s *Session) BuildObjects(name string, tileWidth, tileHeight int) *tiled.Layer {
	var objects []tiled.Object
	s.overlay.Each(func(c Coord, info *ObjectInfo) {
		if !info.Consumed {
			return
		}
		objects = append(objects, tiled.Object{
			ID:     s.nextObjectID,
			GID:    uint64(info.GID),
			X:      float64(c.Col * tileWidth),
			Y:      float64(c.Row * tileHeight),
			Width:  tileWidth,
			Height: tileHeight,
			Properties: []tiled.Property{
				{Name: "id", Type: "int", Value: info.Value},
			},
		})
		s.nextObjectID++
	})
	if len(objects) == 0 {
		return nil
	}

	layer := &tiled.Layer{
		Kind:    tiled.KindObjectGroup,
		ID:      s.nextLayerID,
		Name:    name,
		Visible: true,
		Objects: objects,
	}
	s.nextLayerID++
	return layer
}

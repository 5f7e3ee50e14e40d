package tiled

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/Faultbox/tiledconv/pkg/encoding"
)

// parseDocument decodes raw bytes into a top-level JSON object.
func parseDocument(data []byte) (gjson.Result, error) {
	text, err := encoding.DecodeDocument(data)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !gjson.ValidBytes(text) {
		return gjson.Result{}, fmt.Errorf("%w: invalid JSON", ErrMalformed)
	}
	doc := gjson.ParseBytes(text)
	if !doc.IsObject() {
		return gjson.Result{}, fmt.Errorf("%w: top level is not an object", ErrMalformed)
	}
	return doc, nil
}

// present reports whether a field exists and is not null.
func present(r gjson.Result) bool {
	return r.Exists() && r.Type != gjson.Null
}

func isNumeric(r gjson.Result) bool {
	switch r.Type {
	case gjson.Number:
		return true
	case gjson.String:
		_, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64)
		return err == nil
	default:
		return false
	}
}

// requireUint reads a numeric field that must be present.
func requireUint(obj gjson.Result, key string) (uint32, error) {
	r := obj.Get(key)
	if !isNumeric(r) {
		return 0, fmt.Errorf("%w: %w: %s", ErrMalformed, ErrMissingField, key)
	}
	return uint32(r.Uint()), nil
}

// optUint reads a numeric field, defaulting to 0. Booleans read as 0/1.
func optUint(obj gjson.Result, key string) uint32 {
	return uint32(obj.Get(key).Uint())
}

func orOne(v uint32) uint32 {
	if v == 0 {
		return 1
	}
	return v
}

// DecodeTileset decodes a standalone tileset JSON document.
func DecodeTileset(data []byte) (*Tileset, error) {
	doc, err := parseDocument(data)
	if err != nil {
		return nil, err
	}
	if !present(doc.Get("tiles")) {
		return nil, ErrNoTiles
	}

	ts := &Tileset{
		Version:      doc.Get("version").String(),
		TiledVersion: doc.Get("tiledversion").String(),
		Name:         doc.Get("name").String(),
	}
	required := []struct {
		key string
		dst *uint32
	}{
		{"tilewidth", &ts.TileWidth},
		{"tileheight", &ts.TileHeight},
		{"tilecount", &ts.TileCount},
		{"columns", &ts.Columns},
	}
	for _, f := range required {
		if *f.dst, err = requireUint(doc, f.key); err != nil {
			return nil, err
		}
	}

	if err := decodeTilesetBody(doc, ts, ""); err != nil {
		return nil, err
	}
	return ts, nil
}

// decodeTilesetBody fills the grid, atlas image and tiles of ts. Image paths are
// normalised and stripped of dirPrefix.
func decodeTilesetBody(obj gjson.Result, ts *Tileset, dirPrefix string) error {
	if grid := obj.Get("grid"); grid.IsObject() {
		ts.Grid = &Grid{
			Orientation: grid.Get("orientation").String(),
			Width:       optUint(grid, "width"),
			Height:      optUint(grid, "height"),
		}
	}

	if img := obj.Get("image"); img.Type == gjson.String && img.Str != "" {
		ts.Image = &Image{
			Source: encoding.RelativeTo(dirPrefix, img.Str),
			Width:  optUint(obj, "imagewidth"),
			Height: optUint(obj, "imageheight"),
		}
	}

	tiles := obj.Get("tiles")
	if !present(tiles) {
		return nil
	}
	if !tiles.IsArray() {
		return fmt.Errorf("%w: tiles is not an array", ErrMalformed)
	}

	var err error
	tiles.ForEach(func(_, t gjson.Result) bool {
		var tile Tile
		if tile.ID, err = requireUint(t, "id"); err != nil {
			err = fmt.Errorf("tile %d: %w", len(ts.Tiles), err)
			return false
		}
		if img := t.Get("image"); present(img) {
			tile.Image = encoding.RelativeTo(dirPrefix, img.String())
		}
		tile.ImageWidth = optUint(t, "imagewidth")
		tile.ImageHeight = optUint(t, "imageheight")
		ts.Tiles = append(ts.Tiles, tile)
		return true
	})
	return err
}

// DecodeMap decodes a Tiled JSON map. It returns ErrNotMap when the document
// has no layers array. docPath locates the map so that tileset and image paths
// can be made relative to it; pass "" to leave them as written.
func DecodeMap(data []byte, docPath string) (*Map, error) {
	doc, err := parseDocument(data)
	if err != nil {
		return nil, err
	}
	layers := doc.Get("layers")
	if !present(layers) {
		return nil, ErrNotMap
	}
	if !layers.IsArray() {
		return nil, fmt.Errorf("%w: layers is not an array", ErrMalformed)
	}

	dirPrefix := ""
	if docPath != "" {
		dirPrefix = encoding.DirPrefix(docPath)
	}

	m := &Map{
		Orientation:  doc.Get("orientation").String(),
		RenderOrder:  doc.Get("renderorder").String(),
		Width:        optUint(doc, "width"),
		Height:       optUint(doc, "height"),
		TileWidth:    optUint(doc, "tilewidth"),
		TileHeight:   optUint(doc, "tileheight"),
		Infinite:     doc.Get("infinite").Bool(),
		NextLayerID:  orOne(optUint(doc, "nextlayerid")),
		NextObjectID: orOne(optUint(doc, "nextobjectid")),
	}

	for _, t := range doc.Get("tilesets").Array() {
		ts := Tileset{FirstGID: optUint(t, "firstgid")}
		if src := t.Get("source"); present(src) {
			ts.Source = encoding.ReplaceExt(encoding.RelativeTo(dirPrefix, src.String()), ".tsx")
		} else {
			ts.Name = t.Get("name").String()
			ts.TileWidth = optUint(t, "tilewidth")
			ts.TileHeight = optUint(t, "tileheight")
			ts.TileCount = optUint(t, "tilecount")
			ts.Columns = optUint(t, "columns")
			if err := decodeTilesetBody(t, &ts, dirPrefix); err != nil {
				return nil, fmt.Errorf("tileset %q: %w", ts.Name, err)
			}
		}
		m.Tilesets = append(m.Tilesets, ts)
	}

	for _, l := range layers.Array() {
		layer, ok, err := decodeLayer(l)
		if err != nil {
			return nil, err
		}
		if ok {
			m.Layers = append(m.Layers, layer)
		}
	}
	return m, nil
}

// decodeLayer decodes one layer. Layers without data or objects and layer
// types other than tile layers and object groups are skipped.
func decodeLayer(l gjson.Result) (Layer, bool, error) {
	layer := Layer{
		ID:      optUint(l, "id"),
		Name:    l.Get("name").String(),
		Visible: l.Get("visible").Bool(),
	}

	switch l.Get("type").String() {
	case "tilelayer":
		data := l.Get("data")
		if !present(data) {
			return Layer{}, false, nil
		}
		layer.Kind = KindTileLayer
		layer.Width = int(l.Get("width").Int())
		layer.Height = int(l.Get("height").Int())
		layer.Compression = l.Get("compression").String()
		if data.IsArray() {
			cells := data.Array()
			layer.Data = make([]uint32, len(cells))
			for i, c := range cells {
				gid, err := cellGID(c)
				if err != nil {
					return Layer{}, false, fmt.Errorf("layer %q cell %d: %w", layer.Name, i, err)
				}
				layer.Data[i] = gid
			}
			layer.Encoding = "csv"
		} else {
			layer.RawData = data.String()
			layer.Encoding = l.Get("encoding").String()
		}
		return layer, true, nil

	case "objectgroup":
		objects := l.Get("objects")
		if !present(objects) {
			return Layer{}, false, nil
		}
		layer.Kind = KindObjectGroup
		for _, o := range objects.Array() {
			layer.Objects = append(layer.Objects, Object{
				ID:     optUint(o, "id"),
				GID:    o.Get("gid").Uint(),
				X:      o.Get("x").Float(),
				Y:      o.Get("y").Float(),
				Width:  int(o.Get("width").Int()),
				Height: int(o.Get("height").Int()),
			})
		}
		return layer, true, nil

	default:
		return Layer{}, false, nil
	}
}

// cellGID reads one entry of a tile layer data array. Gids, flip flags
// included, are unsigned 32-bit integers.
func cellGID(c gjson.Result) (uint32, error) {
	if c.Type != gjson.Number || c.Num < 0 || c.Num > math.MaxUint32 || c.Num != math.Trunc(c.Num) {
		return 0, fmt.Errorf("%w: %s is not a gid", ErrMalformed, c.Raw)
	}
	return uint32(c.Uint()), nil
}

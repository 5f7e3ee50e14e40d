package mota

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/Faultbox/tiledconv/pkg/encoding"
	"github.com/Faultbox/tiledconv/pkg/tiled"
)

// Document errors.
var (
	ErrNotFound     = errors.New("mota document not found")
	ErrMalformed    = errors.New("malformed mota document")
	ErrMissingField = errors.New("missing required field")
	ErrRaggedGrid   = errors.New("grid rows differ in length")
)

// Output document constants.
const (
	TiledVersion = "1.10.2"
	MapVersion   = "1.10"
)

// Options controls how mota documents are converted.
type Options struct {
	TileWidth    int
	TileHeight   int
	Layers       []string // grids converted, bottom first
	OverlayLayer string   // grid the tileProp overlay applies to
	ObjectLayer  string   // name of the synthesised object group
	OutputDir    string   // "" writes next to the source, replacing it
}

// DefaultOptions returns the options the mota tower maps use.
func DefaultOptions() Options {
	return Options{
		TileWidth:    32,
		TileHeight:   32,
		Layers:       []string{"bgmap", "map"},
		OverlayLayer: "map",
		ObjectLayer:  "objects",
	}
}

// Converter converts mota documents with a shared IDMap.
type Converter struct {
	idmap *IDMap
	opts  Options
}

// NewConverter creates a converter. Zero tile sizes and empty names fall back
// to DefaultOptions.
func NewConverter(idmap *IDMap, opts Options) *Converter {
	def := DefaultOptions()
	if opts.TileWidth <= 0 {
		opts.TileWidth = def.TileWidth
	}
	if opts.TileHeight <= 0 {
		opts.TileHeight = def.TileHeight
	}
	if len(opts.Layers) == 0 {
		opts.Layers = def.Layers
	}
	if opts.OverlayLayer == "" {
		opts.OverlayLayer = def.OverlayLayer
	}
	if opts.ObjectLayer == "" {
		opts.ObjectLayer = def.ObjectLayer
	}
	return &Converter{idmap: idmap, opts: opts}
}

// Result is a converted document.
type Result struct {
	Map         *tiled.Map
	Document    []byte
	Diagnostics []Diagnostic
}

type tilesetRef struct {
	FirstGID int    `json:"firstgid"`
	Source   string `json:"source"`
}

type mapHeader struct {
	CompressionLevel int               `json:"compressionlevel"`
	Height           uint32            `json:"height"`
	Infinite         bool              `json:"infinite"`
	Layers           []json.RawMessage `json:"layers"`
	NextLayerID      uint32            `json:"nextlayerid"`
	NextObjectID     uint32            `json:"nextobjectid"`
	Orientation      string            `json:"orientation"`
	RenderOrder      string            `json:"renderorder"`
	TiledVersion     string            `json:"tiledversion"`
	TileHeight       uint32            `json:"tileheight"`
	Tilesets         []tilesetRef      `json:"tilesets"`
	TileWidth        uint32            `json:"tilewidth"`
	Type             string            `json:"type"`
	Version          string            `json:"version"`
	Width            uint32            `json:"width"`
}

func requireInt(doc gjson.Result, key string) (int, error) {
	v, err := intValue(doc.Get(key))
	if err != nil {
		return 0, fmt.Errorf("%w: %w: %s", ErrMalformed, ErrMissingField, key)
	}
	return v, nil
}

// Convert converts one mota document to a Tiled JSON map.
func (c *Converter) Convert(data []byte) (*Result, error) {
	text, err := encoding.DecodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !gjson.ValidBytes(text) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformed)
	}
	doc := gjson.ParseBytes(text)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: top level is not an object", ErrMalformed)
	}

	width, err := requireInt(doc, "width")
	if err != nil {
		return nil, err
	}
	height, err := requireInt(doc, "height")
	if err != nil {
		return nil, err
	}

	overlay, err := parseTileProp(doc.Get("tileProp"), c.opts.OverlayLayer)
	if err != nil {
		return nil, err
	}

	s := NewSession(c.idmap, overlay)
	m := &tiled.Map{
		Orientation: "orthogonal",
		RenderOrder: "right-down",
		Width:       uint32(width),
		Height:      uint32(height),
		TileWidth:   uint32(c.opts.TileWidth),
		TileHeight:  uint32(c.opts.TileHeight),
	}
	for _, ts := range c.idmap.Tilesets() {
		m.Tilesets = append(m.Tilesets, tiled.Tileset{FirstGID: uint32(ts.FirstGID), Source: ts.Name})
	}

	for _, name := range c.opts.Layers {
		layer, err := s.TranspileLayer(doc, name)
		if err != nil {
			return nil, err
		}
		if layer != nil {
			m.Layers = append(m.Layers, *layer)
		}
	}
	if objects := s.BuildObjects(c.opts.ObjectLayer, c.opts.TileWidth, c.opts.TileHeight); objects != nil {
		m.Layers = append(m.Layers, *objects)
	}
	m.NextLayerID = s.NextLayerID()
	m.NextObjectID = s.NextObjectID()

	out, err := encodeMap(m)
	if err != nil {
		return nil, err
	}
	return &Result{Map: m, Document: out, Diagnostics: s.Diagnostics()}, nil
}

// encodeMap writes the map header, then appends each layer to it.
func encodeMap(m *tiled.Map) ([]byte, error) {
	h := mapHeader{
		CompressionLevel: -1,
		Height:           m.Height,
		Layers:           []json.RawMessage{},
		NextLayerID:      m.NextLayerID,
		NextObjectID:     m.NextObjectID,
		Orientation:      m.Orientation,
		RenderOrder:      m.RenderOrder,
		TiledVersion:     TiledVersion,
		TileHeight:       m.TileHeight,
		Tilesets:         []tilesetRef{},
		TileWidth:        m.TileWidth,
		Type:             "map",
		Version:          MapVersion,
		Width:            m.Width,
	}
	for _, ts := range m.Tilesets {
		h.Tilesets = append(h.Tilesets, tilesetRef{FirstGID: int(ts.FirstGID), Source: ts.Source})
	}

	doc, err := json.Marshal(h)
	if err != nil {
		return nil, err
	}
	for _, l := range m.Layers {
		raw, err := json.Marshal(l)
		if err != nil {
			return nil, fmt.Errorf("encoding layer %q: %w", l.Name, err)
		}
		if doc, err = sjson.SetRawBytes(doc, "layers.-1", raw); err != nil {
			return nil, fmt.Errorf("appending layer %q: %w", l.Name, err)
		}
	}
	// Width 0 keeps every array multi-line, so layers sit at a fixed depth.
	doc = pretty.PrettyOptions(doc, &pretty.Options{Indent: "\t"})

	// Tile data is laid out one grid row per line, as the map reads.
	for i, l := range m.Layers {
		if l.Kind != tiled.KindTileLayer || l.Data == nil {
			continue
		}
		if doc, err = sjson.SetRawBytes(doc, fmt.Sprintf("layers.%d.data", i), gridJSON(l.Data, l.Width, "\t\t\t")); err != nil {
			return nil, fmt.Errorf("laying out layer %q: %w", l.Name, err)
		}
	}
	return doc, nil
}

// gridJSON renders data as a JSON array with width values per line. indent is
// the indentation of the line holding the array's key.
func gridJSON(data []uint32, width int, indent string) []byte {
	if len(data) == 0 {
		return []byte("[]")
	}
	if width <= 0 {
		width = len(data)
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, v := range data {
		switch {
		case i == 0:
			buf.WriteString("\n" + indent + "\t")
		case i%width == 0:
			buf.WriteString(",\n" + indent + "\t")
		default:
			buf.WriteString(", ")
		}
		buf.WriteString(strconv.FormatUint(uint64(v), 10))
	}
	buf.WriteString("\n" + indent + "]")
	return buf.Bytes()
}

// OutputPath returns where the converted document for path is written. The
// extension stays .json.
func (c *Converter) OutputPath(path string) string {
	out := encoding.ReplaceExt(path, ".json")
	if c.opts.OutputDir == "" {
		return out
	}
	return filepath.Join(c.opts.OutputDir, filepath.Base(out))
}

// ConvertFile converts a mota document on disk and writes the result.
func (c *Converter) ConvertFile(path string) (string, *Result, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return "", nil, fmt.Errorf("reading %s: %w", path, err)
	}

	res, err := c.Convert(data)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", path, err)
	}

	out := c.OutputPath(path)
	if c.opts.OutputDir != "" {
		if err := os.MkdirAll(c.opts.OutputDir, 0755); err != nil {
			return "", nil, err
		}
	}
	if err := os.WriteFile(out, res.Document, 0644); err != nil {
		return "", nil, fmt.Errorf("writing %s: %w", out, err)
	}
	return out, res, nil
}

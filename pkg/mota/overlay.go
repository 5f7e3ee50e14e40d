package mota

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Coord is a grid cell position.
type Coord struct {
	Col int
	Row int
}

// ObjectInfo is an overlay entry: a cell that becomes an object carrying Value
// once a tile on Layer is found beneath it.
type ObjectInfo struct {
	GID      int  // resolved gid of the consumed tile
	Consumed bool // set once a grid cell has been turned into this object
	Value    int
	Layer    string
}

// Overlay is the per-document set of object cells, kept in insertion order.
type Overlay struct {
	entries map[Coord]*ObjectInfo
	order   []Coord
}

// NewOverlay creates an empty overlay.
func NewOverlay() *Overlay {
	return &Overlay{entries: make(map[Coord]*ObjectInfo)}
}

// Set stores an entry. Replacing an entry keeps its original position.
func (o *Overlay) Set(c Coord, info ObjectInfo) {
	if e, ok := o.entries[c]; ok {
		*e = info
		return
	}
	e := info
	o.entries[c] = &e
	o.order = append(o.order, c)
}

// Lookup returns the entry at c if it applies to layer.
func (o *Overlay) Lookup(c Coord, layer string) (*ObjectInfo, bool) {
	e, ok := o.entries[c]
	if !ok || e.Layer != layer {
		return nil, false
	}
	return e, true
}

// Len returns the number of entries.
func (o *Overlay) Len() int {
	return len(o.order)
}

// Each calls fn for every entry in insertion order.
func (o *Overlay) Each(fn func(Coord, *ObjectInfo)) {
	for _, c := range o.order {
		fn(c, o.entries[c])
	}
}

// parseTileProp builds an overlay from a tileProp object ({"x,y": value}).
// Every entry is tagged with layer.
func parseTileProp(props gjson.Result, layer string) (*Overlay, error) {
	o := NewOverlay()
	if !props.IsObject() {
		return o, nil
	}

	var err error
	props.ForEach(func(k, v gjson.Result) bool {
		var c Coord
		if c, err = parseCoord(k.String()); err != nil {
			return false
		}
		var value int
		if value, err = intValue(v); err != nil {
			err = fmt.Errorf("%w: tileProp %q: %v", ErrMalformed, k.String(), err)
			return false
		}
		o.Set(c, ObjectInfo{Value: value, Layer: layer})
		return true
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

func parseCoord(key string) (Coord, error) {
	parts := strings.Split(key, ",")
	if len(parts) != 2 {
		return Coord{}, fmt.Errorf("%w: tileProp key %q is not \"x,y\"", ErrMalformed, key)
	}
	x, errX := strconv.Atoi(strings.TrimSpace(parts[0]))
	y, errY := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errX != nil || errY != nil || x < 0 || y < 0 {
		return Coord{}, fmt.Errorf("%w: tileProp key %q", ErrMalformed, key)
	}
	return Coord{Col: x, Row: y}, nil
}

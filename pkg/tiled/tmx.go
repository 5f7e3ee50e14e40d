package tiled

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

// TMX writer version attributes.
const (
	TMXVersion      = "1.10"
	TMXTiledVersion = "1.10.1"
)

// attr escapes an attribute value. Plain values pass through unchanged.
func attr(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func bit(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// EncodeTSX renders a standalone tileset as TSX.
func EncodeTSX(ts *Tileset) []byte {
	var buf bytes.Buffer
	buf.WriteString(xmlHeader)
	fmt.Fprintf(&buf, "<tileset version=\"%s\" tiledversion=\"%s\" name=\"%s\" tilewidth=\"%d\" tileheight=\"%d\" tilecount=\"%d\" columns=\"%d\">\n",
		attr(ts.Version), attr(ts.TiledVersion), attr(ts.Name), ts.TileWidth, ts.TileHeight, ts.TileCount, ts.Columns)
	if g := ts.Grid; g != nil {
		fmt.Fprintf(&buf, "\t<grid orientation=\"%s\" width=\"%d\" height=\"%d\"/>\n", attr(g.Orientation), g.Width, g.Height)
	}
	for _, t := range ts.Tiles {
		fmt.Fprintf(&buf, "\t<tile id=\"%d\">\n\t\t<image width=\"%d\" height=\"%d\" source=\"%s\"/>\n\t</tile>\n",
			t.ID, t.ImageWidth, t.ImageHeight, attr(t.Image))
	}
	buf.WriteString("</tileset>")
	return buf.Bytes()
}

// EncodeTMX renders a map as TMX. Paths in m are written as stored; DecodeMap
// already made them relative to the map document.
func EncodeTMX(m *Map) []byte {
	var buf bytes.Buffer
	buf.WriteString(xmlHeader)
	fmt.Fprintf(&buf, "<map version=\"%s\" tiledversion=\"%s\" orientation=\"%s\" renderorder=\"%s\" width=\"%d\" height=\"%d\" tilewidth=\"%d\" tileheight=\"%d\" infinite=\"%d\" nextlayerid=\"%d\" nextobjectid=\"%d\">\n",
		TMXVersion, TMXTiledVersion, attr(m.Orientation), attr(m.RenderOrder), m.Width, m.Height,
		m.TileWidth, m.TileHeight, bit(m.Infinite), orOne(m.NextLayerID), orOne(m.NextObjectID))

	for i := range m.Tilesets {
		writeTileset(&buf, &m.Tilesets[i])
	}

	for i := range m.Layers {
		l := &m.Layers[i]
		switch l.Kind {
		case KindTileLayer:
			writeTileLayer(&buf, l)
		case KindObjectGroup:
			writeObjectGroup(&buf, l)
		}
	}

	buf.WriteString("</map>")
	return buf.Bytes()
}

func writeTileset(buf *bytes.Buffer, ts *Tileset) {
	if ts.IsExternal() {
		fmt.Fprintf(buf, "\t<tileset firstgid=\"%d\" source=\"%s\"/>\n", ts.FirstGID, attr(ts.Source))
		return
	}

	fmt.Fprintf(buf, "\t<tileset firstgid=\"%d\" name=\"%s\" tilewidth=\"%d\" tileheight=\"%d\" tilecount=\"%d\" columns=\"%d\">\n",
		ts.FirstGID, attr(ts.Name), ts.TileWidth, ts.TileHeight, ts.TileCount, ts.Columns)
	if g := ts.Grid; g != nil {
		fmt.Fprintf(buf, "\t\t<grid orientation=\"%s\" width=\"%d\" height=\"%d\"/>\n", attr(g.Orientation), g.Width, g.Height)
	}
	if img := ts.Image; img != nil {
		fmt.Fprintf(buf, "\t\t<image source=\"%s\" width=\"%d\" height=\"%d\"/>\n", attr(img.Source), img.Width, img.Height)
	}
	for _, t := range ts.Tiles {
		if t.Image == "" {
			continue
		}
		fmt.Fprintf(buf, "\t\t<tile id=\"%d\">\n\t\t\t<image source=\"%s\"/>\n\t\t</tile>\n", t.ID, attr(t.Image))
	}
	buf.WriteString("\t</tileset>\n")
}

func writeTileLayer(buf *bytes.Buffer, l *Layer) {
	data := l.RawData
	if l.Data != nil {
		data = l.CSV()
	}
	fmt.Fprintf(buf, "\t<layer id=\"%d\" name=\"%s\" width=\"%d\" height=\"%d\" visible=\"%d\">\n",
		l.ID, attr(l.Name), l.Width, l.Height, bit(l.Visible))
	fmt.Fprintf(buf, "\t\t<data encoding=\"%s\" compression=\"%s\">\n\t\t\t%s\n\t\t</data>\n\t</layer>\n",
		attr(l.Encoding), attr(l.Compression), data)
}

func writeObjectGroup(buf *bytes.Buffer, l *Layer) {
	fmt.Fprintf(buf, "\t<objectgroup id=\"%d\" name=\"%s\" visible=\"%d\">\n", l.ID, attr(l.Name), bit(l.Visible))
	for _, o := range l.Objects {
		fmt.Fprintf(buf, "\t\t<object id=\"%d\" gid=\"%d\" x=\"%s\" y=\"%s\" width=\"%d\" height=\"%d\"/>\n",
			o.ID, o.GID, formatFloat(o.X), formatFloat(o.Y), o.Width, o.Height)
	}
	buf.WriteString("\t</objectgroup>\n")
}

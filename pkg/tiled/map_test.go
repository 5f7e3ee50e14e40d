package tiled

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testMapJSON = `{
	"orientation":"orthogonal","renderorder":"right-down",
	"width":2,"height":2,"tilewidth":32,"tileheight":32,"infinite":false,
	"nextlayerid":4,"nextobjectid":3,
	"tilesets":[
		{"firstgid":1,"source":"tiles\\terrain.json"},
		{"firstgid":10,"name":"props","tilewidth":32,"tileheight":32,"tilecount":2,"columns":0,
		 "tiles":[{"id":0,"image":"img\\chest.png"},{"id":1,"image":"img/door.png"}]}
	],
	"layers":[
		{"id":1,"name":"ground","type":"tilelayer","width":2,"height":2,"visible":true,"data":[1,2,0,3]},
		{"id":2,"name":"things","type":"objectgroup","visible":false,"objects":[
			{"id":1,"gid":2147483659,"x":32,"y":64.5,"width":32,"height":32}
		]},
		{"id":3,"name":"group","type":"group","layers":[]}
	]
}`

const testMapTMX = `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" tiledversion="1.10.1" orientation="orthogonal" renderorder="right-down" width="2" height="2" tilewidth="32" tileheight="32" infinite="0" nextlayerid="4" nextobjectid="3">
	<tileset firstgid="1" source="tiles/terrain.tsx"/>
	<tileset firstgid="10" name="props" tilewidth="32" tileheight="32" tilecount="2" columns="0">
		<tile id="0">
			<image source="img/chest.png"/>
		</tile>
		<tile id="1">
			<image source="img/door.png"/>
		</tile>
	</tileset>
	<layer id="1" name="ground" width="2" height="2" visible="1">
		<data encoding="csv" compression="">
			1,2,0,3
		</data>
	</layer>
	<objectgroup id="2" name="things" visible="0">
		<object id="1" gid="2147483659" x="32" y="64.5" width="32" height="32"/>
	</objectgroup>
</map>`

func TestEncodeTMX_Full(t *testing.T) {
	m, err := DecodeMap([]byte(testMapJSON), "")
	if err != nil {
		t.Fatalf("DecodeMap failed: %v", err)
	}

	if got := string(EncodeTMX(m)); got != testMapTMX {
		t.Errorf("unexpected TMX:\n%s\nexpected:\n%s", got, testMapTMX)
	}
}

func TestDecodeMap_NotMap(t *testing.T) {
	_, err := DecodeMap([]byte(`{"tiles":[]}`), "")
	if !errors.Is(err, ErrNotMap) {
		t.Errorf("expected ErrNotMap, got %v", err)
	}

	_, err = DecodeMap([]byte(`{"layers":`), "")
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}

func TestDecodeMap_CounterDefaults(t *testing.T) {
	m, err := DecodeMap([]byte(`{"layers":[],"nextlayerid":0}`), "")
	if err != nil {
		t.Fatalf("DecodeMap failed: %v", err)
	}
	if m.NextLayerID != 1 || m.NextObjectID != 1 {
		t.Errorf("expected counters to default to 1, got %d/%d", m.NextLayerID, m.NextObjectID)
	}

	out := string(EncodeTMX(m))
	if !strings.Contains(out, `nextlayerid="1" nextobjectid="1"`) {
		t.Errorf("expected default counters in header, got:\n%s", out)
	}
}

func TestDecodeMap_EncodedData(t *testing.T) {
	data := `{"layers":[{"id":1,"name":"b64","type":"tilelayer","width":1,"height":1,"visible":true,
		"data":"AQAAAA==","encoding":"base64","compression":"zlib"}]}`

	m, err := DecodeMap([]byte(data), "")
	if err != nil {
		t.Fatalf("DecodeMap failed: %v", err)
	}

	out := string(EncodeTMX(m))
	want := "\t\t<data encoding=\"base64\" compression=\"zlib\">\n\t\t\tAQAAAA==\n\t\t</data>\n"
	if !strings.Contains(out, want) {
		t.Errorf("expected encoded data to pass through, got:\n%s", out)
	}
}

func TestDecodeMap_DataCells(t *testing.T) {
	layerDoc := func(data string) []byte {
		return []byte(`{"layers":[{"id":1,"name":"g","type":"tilelayer","width":2,"height":1,"visible":true,"data":` + data + `}]}`)
	}

	m, err := DecodeMap(layerDoc(`[3221225473,4294967295]`), "")
	if err != nil {
		t.Fatalf("DecodeMap failed: %v", err)
	}
	if got := m.Layers[0].CSV(); got != "3221225473,4294967295" {
		t.Errorf("expected flagged gids kept, got %s", got)
	}

	for _, data := range []string{`[3221225473,-1]`, `[1,4294967296]`, `[1.5,0]`, `["1",0]`, `[null,0]`} {
		if _, err := DecodeMap(layerDoc(data), ""); !errors.Is(err, ErrMalformed) {
			t.Errorf("%s: expected ErrMalformed, got %v", data, err)
		}
	}
}

func TestDecodeMap_SkipsEmptyLayers(t *testing.T) {
	data := `{"layers":[
		{"id":1,"type":"tilelayer","name":"nodata"},
		{"id":2,"type":"objectgroup","name":"noobjects","objects":null},
		{"id":3,"type":"imagelayer","name":"img","image":"bg.png"},
		{"id":4,"type":"objectgroup","name":"empty","objects":[]}
	]}`

	m, err := DecodeMap([]byte(data), "")
	if err != nil {
		t.Fatalf("DecodeMap failed: %v", err)
	}
	if len(m.Layers) != 1 || m.Layers[0].Name != "empty" {
		t.Fatalf("expected only the empty object group to survive, got %+v", m.Layers)
	}

	out := string(EncodeTMX(m))
	if !strings.Contains(out, "\t<objectgroup id=\"4\" name=\"empty\" visible=\"0\">\n\t</objectgroup>\n") {
		t.Errorf("expected empty object group, got:\n%s", out)
	}
}

func TestDecodeMap_StripsMapDirectory(t *testing.T) {
	data := `{"layers":[],"tilesets":[
		{"firstgid":1,"source":"assets/maps/sets/a.json"},
		{"firstgid":5,"source":"../shared/b"},
		{"firstgid":9,"name":"atlas","tilecount":4,"image":"assets\\maps\\atlas.png","imagewidth":64,"imageheight":64}
	]}`

	m, err := DecodeMap([]byte(data), "assets/maps/level.json")
	if err != nil {
		t.Fatalf("DecodeMap failed: %v", err)
	}

	if got := m.Tilesets[0].Source; got != "sets/a.tsx" {
		t.Errorf("expected sets/a.tsx, got %s", got)
	}
	if got := m.Tilesets[1].Source; got != "../shared/b.tsx" {
		t.Errorf("expected ../shared/b.tsx, got %s", got)
	}
	if img := m.Tilesets[2].Image; img == nil || img.Source != "atlas.png" {
		t.Fatalf("expected atlas image atlas.png, got %+v", img)
	}

	out := string(EncodeTMX(m))
	if !strings.Contains(out, "\t\t<image source=\"atlas.png\" width=\"64\" height=\"64\"/>\n") {
		t.Errorf("expected atlas image element, got:\n%s", out)
	}
}

func TestEncodeTMX_TilesetOrderPreserved(t *testing.T) {
	data := `{"layers":[],"tilesets":[
		{"firstgid":1,"source":"a.json"},
		{"firstgid":100,"source":"b.json"},
		{"firstgid":250,"source":"c.json"}
	]}`

	m, err := DecodeMap([]byte(data), "")
	if err != nil {
		t.Fatalf("DecodeMap failed: %v", err)
	}
	out := string(EncodeTMX(m))

	a := strings.Index(out, `firstgid="1"`)
	b := strings.Index(out, `firstgid="100"`)
	c := strings.Index(out, `firstgid="250"`)
	if a < 0 || b <= a || c <= b {
		t.Errorf("expected tilesets in increasing firstgid order, got:\n%s", out)
	}
}

func TestEncodeTMX_EscapesAttributes(t *testing.T) {
	m := &Map{Layers: []Layer{{Kind: KindTileLayer, ID: 1, Name: `a&"b"`, Data: []uint32{}}}}
	out := string(EncodeTMX(m))
	if !strings.Contains(out, `name="a&amp;&#34;b&#34;"`) {
		t.Errorf("expected escaped layer name, got:\n%s", out)
	}
}

func TestMapValidate(t *testing.T) {
	valid := &Map{
		NextLayerID:  3,
		NextObjectID: 2,
		Tilesets: []Tileset{
			{FirstGID: 1, Name: "a", TileCount: 10},
			{FirstGID: 20, Source: "b.tsx"},
			{FirstGID: 21, Source: "c.tsx"},
		},
		Layers: []Layer{
			{Kind: KindTileLayer, ID: 1, Data: []uint32{0, 1, 10, 20, 21, 40}},
			{Kind: KindObjectGroup, ID: 2, Objects: []Object{{ID: 1, GID: FlippedHorizontally | 10}}},
		},
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("expected valid map, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(m *Map)
		err    error
	}{
		{"overlapping tileset", func(m *Map) { m.Tilesets[1].FirstGID = 5 }, ErrTilesetOrder},
		{"equal firstgid", func(m *Map) { m.Tilesets[2].FirstGID = 20 }, ErrTilesetOrder},
		{"layer id at counter", func(m *Map) { m.Layers[1].ID = 3 }, ErrLayerID},
		{"duplicate layer id", func(m *Map) { m.Layers[1].ID = 1 }, ErrLayerID},
		{"object id at counter", func(m *Map) { m.Layers[1].Objects[0].ID = 2 }, ErrObjectID},
		{"object gid past embedded tileset", func(m *Map) { m.Layers[1].Objects[0].GID = FlippedVertically | 11 }, ErrGIDRange},
		{"gid below first tileset", func(m *Map) { m.Tilesets[0].FirstGID = 2 }, ErrGIDRange},
		{"no tilesets", func(m *Map) { m.Tilesets = nil }, ErrGIDRange},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := *valid
			m.Tilesets = append([]Tileset(nil), valid.Tilesets...)
			m.Layers = []Layer{valid.Layers[0], {Kind: KindObjectGroup, ID: 2, Objects: []Object{{ID: 1, GID: FlippedHorizontally | 10}}}}
			tc.mutate(&m)
			if err := m.Validate(); !errors.Is(err, tc.err) {
				t.Errorf("expected %v, got %v", tc.err, err)
			}
		})
	}
}

func TestLayerMarshalJSON(t *testing.T) {
	tile := Layer{Kind: KindTileLayer, ID: 1, Name: "map", Visible: true, Width: 2, Height: 1, Data: []uint32{0, 20}}
	raw, err := json.Marshal(tile)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(raw), `"data":[0,20]`) || !strings.Contains(string(raw), `"type":"tilelayer"`) {
		t.Errorf("unexpected tile layer JSON: %s", raw)
	}

	group := Layer{Kind: KindObjectGroup, ID: 2, Name: "objects", Visible: true, Objects: []Object{
		{ID: 1, GID: 20, X: 32, Width: 32, Height: 32, Properties: []Property{{Name: "id", Type: "int", Value: 7}}},
	}}
	raw, err = json.Marshal(group)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	want := `"properties":[{"name":"id","type":"int","value":7}]`
	if !strings.Contains(string(raw), want) {
		t.Errorf("expected %s in %s", want, raw)
	}
}

func TestConvertMapFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "level.json")
	if err := os.WriteFile(path, []byte(testMapJSON), 0644); err != nil {
		t.Fatalf("failed to write map: %v", err)
	}

	out, m, err := ConvertMapFile(path)
	if err != nil {
		t.Fatalf("ConvertMapFile failed: %v", err)
	}
	if m == nil || len(m.Layers) == 0 {
		t.Errorf("expected decoded map to be returned, got %+v", m)
	}
	if out != filepath.Join(dir, "level.tmx") {
		t.Errorf("expected level.tmx, got %s", out)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if string(data) != testMapTMX {
		t.Errorf("unexpected TMX file content:\n%s", data)
	}

	if _, _, err := ConvertMapFile(filepath.Join(dir, "nope.json")); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestBareGID(t *testing.T) {
	if got := BareGID(2147483659); got != 11 {
		t.Errorf("expected 11, got %d", got)
	}
}

package mota

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const testIDMap = `{
	"tilesets": {"terrains.tsx": 1, " enemys.tsx ": "100", "items.tsx": 200},
	"map": {
		"1":  {"tileset": "terrains.tsx", "id": 0},
		" 5": {"tileset": "terrains.tsx", "id": 19},
		"201": {"tileset": "enemys.tsx ", "id": "3"},
		"21": {"tileset": "items.tsx", "id": 0}
	}
}`

func TestParseIDMap(t *testing.T) {
	m, err := ParseIDMap([]byte(testIDMap))
	if err != nil {
		t.Fatalf("ParseIDMap failed: %v", err)
	}

	tests := []struct {
		code int
		gid  int
	}{
		{1, 1},
		{5, 20},
		{201, 103},
		{21, 200},
	}
	for _, tc := range tests {
		gid, ok := m.Resolve(tc.code)
		if !ok {
			t.Errorf("code %d: expected mapping", tc.code)
			continue
		}
		if gid != tc.gid {
			t.Errorf("code %d: expected gid %d, got %d", tc.code, tc.gid, gid)
		}
	}

	if _, ok := m.Resolve(999); ok {
		t.Error("expected unmapped code to be absent")
	}
	if m.Len() != 4 {
		t.Errorf("expected 4 codes, got %d", m.Len())
	}
}

func TestParseIDMap_TilesetOrder(t *testing.T) {
	m, err := ParseIDMap([]byte(testIDMap))
	if err != nil {
		t.Fatalf("ParseIDMap failed: %v", err)
	}

	want := []TilesetOffset{{"terrains.tsx", 1}, {"enemys.tsx", 100}, {"items.tsx", 200}}
	got := m.Tilesets()
	if len(got) != len(want) {
		t.Fatalf("expected %d tilesets, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tileset %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestParseIDMap_UnknownTileset(t *testing.T) {
	data := `{"tilesets":{"a":1},"map":{"7":{"tileset":"b","id":0}}}`
	_, err := ParseIDMap([]byte(data))
	if !errors.Is(err, ErrUnknownTileset) {
		t.Errorf("expected ErrUnknownTileset, got %v", err)
	}
}

func TestParseIDMap_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", `{"tilesets":`},
		{"no tilesets", `{"map":{}}`},
		{"no map", `{"tilesets":{}}`},
		{"bad offset", `{"tilesets":{"a":"x"},"map":{}}`},
		{"bad code", `{"tilesets":{"a":1},"map":{"x":{"tileset":"a","id":0}}}`},
		{"bad id", `{"tilesets":{"a":1},"map":{"1":{"tileset":"a","id":null}}}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseIDMap([]byte(tc.data))
			if !errors.Is(err, ErrInvalidIDMap) {
				t.Errorf("expected ErrInvalidIDMap, got %v", err)
			}
		})
	}
}

func TestLoadIDMap(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "idmap.json")
	if err := os.WriteFile(path, []byte(testIDMap), 0644); err != nil {
		t.Fatalf("failed to write idmap: %v", err)
	}

	m, err := LoadIDMap(path)
	if err != nil {
		t.Fatalf("LoadIDMap failed: %v", err)
	}
	if m.Len() != 4 {
		t.Errorf("expected 4 codes, got %d", m.Len())
	}

	_, err = LoadIDMap(filepath.Join(dir, "missing.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

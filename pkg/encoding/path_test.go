package encoding

import "testing"

func TestNormalizePath(t *testing.T) {
	if got := NormalizePath(`img\tiles\a.png`); got != "img/tiles/a.png" {
		t.Errorf("expected img/tiles/a.png, got %s", got)
	}
}

func TestReplaceExt(t *testing.T) {
	tests := []struct {
		in, ext, want string
	}{
		{"maps/level.json", ".tmx", "maps/level.tmx"},
		{"tiles.json", ".tsx", "tiles.tsx"},
		{`a\b\c.json`, ".tsx", `a\b\c.tsx`},
		{"maps/noext", ".tsx", "maps/noext.tsx"},
		{"dir.v2/noext", ".tsx", "dir.v2/noext.tsx"},
		{"maps/.hidden", ".tsx", "maps/.hidden.tsx"},
	}

	for _, tc := range tests {
		if got := ReplaceExt(tc.in, tc.ext); got != tc.want {
			t.Errorf("ReplaceExt(%q, %q): expected %q, got %q", tc.in, tc.ext, tc.want, got)
		}
	}
}

func TestDirPrefixAndRelativeTo(t *testing.T) {
	dir := DirPrefix(`assets\maps\level.json`)
	if dir != "assets/maps/" {
		t.Fatalf("expected assets/maps/, got %s", dir)
	}

	if got := RelativeTo(dir, `assets\maps\tiles\a.png`); got != "tiles/a.png" {
		t.Errorf("expected tiles/a.png, got %s", got)
	}
	if got := RelativeTo(dir, "../shared/b.png"); got != "../shared/b.png" {
		t.Errorf("expected relative path untouched, got %s", got)
	}
	if got := DirPrefix("level.json"); got != "" {
		t.Errorf("expected empty prefix for working directory, got %q", got)
	}
	if got := RelativeTo("", `x\y.png`); got != "x/y.png" {
		t.Errorf("expected x/y.png, got %s", got)
	}
}

package tiled

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/Faultbox/tiledconv/pkg/encoding"
)

// Status is the outcome of a tileset conversion. The numeric values are
// stable; callers use them to decide what to do with a file next.
type Status int

// Tileset conversion outcomes.
const (
	StatusNotFound  Status = 0 // input does not exist
	StatusConverted Status = 1 // TSX written
	StatusMalformed Status = 2 // unreadable, invalid JSON, bad fields or write failure
	StatusNoTiles   Status = 3 // valid JSON without a tiles key: not a tileset
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusNotFound:
		return "NotFound"
	case StatusConverted:
		return "Converted"
	case StatusMalformed:
		return "Malformed"
	case StatusNoTiles:
		return "NoTiles"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// StatusOf classifies a tileset conversion error.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusConverted
	case errors.Is(err, ErrNotFound):
		return StatusNotFound
	case errors.Is(err, ErrNoTiles):
		return StatusNoTiles
	default:
		return StatusMalformed
	}
}

// TSXPath returns the TSX output path for a tileset document.
func TSXPath(path string) string {
	return encoding.ReplaceExt(path, ".tsx")
}

// TMXPath returns the TMX output path for a map document.
func TMXPath(path string) string {
	return encoding.ReplaceExt(path, ".tmx")
}

func readDocument(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// ConvertTilesetFile converts a tileset JSON document to a TSX file next to it.
func ConvertTilesetFile(path string) (Status, error) {
	data, err := readDocument(path)
	if err != nil {
		return StatusOf(err), err
	}

	ts, err := DecodeTileset(data)
	if err != nil {
		err = fmt.Errorf("%s: %w", path, err)
		return StatusOf(err), err
	}

	if err := os.WriteFile(TSXPath(path), EncodeTSX(ts), 0644); err != nil {
		return StatusMalformed, fmt.Errorf("writing %s: %w", TSXPath(path), err)
	}
	return StatusConverted, nil
}

// ConvertMapFile converts a Tiled JSON map to a TMX file next to it and returns
// the output path with the decoded map. Documents without layers yield ErrNotMap.
func ConvertMapFile(path string) (string, *Map, error) {
	data, err := readDocument(path)
	if err != nil {
		return "", nil, err
	}

	m, err := DecodeMap(data, path)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", path, err)
	}

	out := TMXPath(path)
	if err := os.WriteFile(out, EncodeTMX(m), 0644); err != nil {
		return "", nil, fmt.Errorf("writing %s: %w", out, err)
	}
	return out, m, nil
}

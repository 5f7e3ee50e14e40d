// Package encoding provides text and path helpers for map documents.
package encoding

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DecodeDocument converts raw document bytes to UTF-8 text.
// A UTF-8 or UTF-16 byte order mark is honoured and stripped. Input that is not
// valid UTF-8 after that is decoded as GBK, which older mota tooling wrote.
// Surrounding whitespace is trimmed.
func DecodeDocument(data []byte) ([]byte, error) {
	text, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), data)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(text) {
		text, err = GBKToUTF8(text)
		if err != nil {
			return nil, err
		}
	}
	return bytes.TrimSpace(text), nil
}

// GBKToUTF8 converts GBK encoded bytes to UTF-8.
func GBKToUTF8(data []byte) ([]byte, error) {
	result, _, err := transform.Bytes(simplifiedchinese.GBK.NewDecoder(), data)
	if err != nil {
		return nil, err
	}
	return result, nil
}

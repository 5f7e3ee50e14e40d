package encoding

import (
	"path"
	"strings"
)

// NormalizePath converts backslashes to forward slashes.
// Tiled writes native separators on Windows; TMX/TSX references always use "/".
func NormalizePath(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// ReplaceExt swaps the extension of p for ext, appending ext when p has none.
// Works on both separator styles.
func ReplaceExt(p, ext string) string {
	slash := strings.LastIndexAny(p, "/\\")
	dot := strings.LastIndexByte(p, '.')
	if dot <= slash+1 {
		return p + ext
	}
	return p[:dot] + ext
}

// DirPrefix returns the slash-terminated directory of a document path, or ""
// when the document lives in the working directory.
func DirPrefix(docPath string) string {
	dir := path.Dir(NormalizePath(docPath))
	if dir == "." || dir == "/" {
		return ""
	}
	return dir + "/"
}

// RelativeTo normalises p and strips the document directory prefix from it.
func RelativeTo(dirPrefix, p string) string {
	p = NormalizePath(p)
	if dirPrefix == "" {
		return p
	}
	return strings.TrimPrefix(p, dirPrefix)
}

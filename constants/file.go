package constants

import "strings"

// Source kinds recorded for processed charts.
const (
	SourceText  = "TEXT"
	SourceImage = "IMAGE"
)

// AllowedImageExtensions holds the image formats accepted for OCR.
var AllowedImageExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"bmp":  {},
	"tiff": {},
	"tif":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsImageExt reports whether ext (with or without dot) is an accepted image format.
func IsImageExt(ext string) bool {
	_, ok := AllowedImageExtensions[NormalizeExt(ext)]
	return ok
}

// MapExtToSource returns SourceImage for image extensions and SourceText for
// plain text files, or "" when the extension is not supported.
func MapExtToSource(ext string) string {
	e := NormalizeExt(ext)
	if IsImageExt(e) {
		return SourceImage
	}
	switch e {
	case "txt", "text":
		return SourceText
	}
	return ""
}

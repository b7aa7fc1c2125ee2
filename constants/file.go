package constants

import "strings"

// AllowedExtensions holds the image extensions the pipeline accepts from
// capture or import.
var AllowedExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"gif":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsSupportedImage reports whether ext (with or without dot) is an image
// format the preprocessor can decode.
func IsSupportedImage(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}

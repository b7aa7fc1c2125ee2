// Package recognize wraps the external text-recognition engine. The engine
// is a black box mapping image -> text; nothing is assumed about its
// output's casing, line structure, or accuracy.
package recognize

import "context"

// Engine is the recognition boundary: a preprocessed (or original) image
// file in, recognized text out.
type Engine interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
}

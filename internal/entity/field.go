package entity

// Field is a best-effort extracted value with a heuristic confidence score.
// Confidence is always defined in [0.0, 1.0]; it is 0.0 whenever Value is nil.
// No value is ever auto-committed — the caller copies accepted values into a
// transaction record.
type Field[T any] struct {
	Value      *T      `json:"value"`
	Confidence float32 `json:"confidence"`
}

// NewField wraps a value with its confidence.
func NewField[T any](value T, confidence float32) Field[T] {
	return Field[T]{Value: &value, Confidence: clamp(confidence)}
}

// EmptyField is the "nothing found" result: (nil, 0.0).
func EmptyField[T any]() Field[T] {
	return Field[T]{}
}

// Found reports whether a value was extracted.
func (f Field[T]) Found() bool {
	return f.Value != nil
}

func clamp(c float32) float32 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

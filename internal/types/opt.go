package types

// Opt is a two-state wrapper distinguishing "never specified" from an
// explicit value, including explicit false and explicit empty string.
// Merge precedence only lets a source win a field it explicitly set, so a
// nullable primitive is not enough here.
type Opt[T any] struct {
	value T
	set   bool
}

// Set wraps an explicit value.
func Set[T any](v T) Opt[T] {
	return Opt[T]{value: v, set: true}
}

// Unset returns the unset state. Equivalent to the zero value.
func Unset[T any]() Opt[T] {
	return Opt[T]{}
}

// IsSet reports whether a value was explicitly provided.
func (o Opt[T]) IsSet() bool {
	return o.set
}

// Get returns the value and whether it was set.
func (o Opt[T]) Get() (T, bool) {
	return o.value, o.set
}

// Value returns the wrapped value, or the zero value when unset.
func (o Opt[T]) Value() T {
	return o.value
}

// Or returns the wrapped value when set, otherwise the fallback.
func (o Opt[T]) Or(fallback T) T {
	if o.set {
		return o.value
	}
	return fallback
}

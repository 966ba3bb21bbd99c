package util

// Ptr returns a pointer to the given value.
// This is a generic helper for creating pointers to literals,
// used heavily for optional LSP wire fields.
func Ptr[T any](v T) *T {
	return &v
}

// PtrIfNonEmpty returns a pointer to s, or nil when s is empty.
// LSP optional string fields are omitted entirely rather than sent as "".
func PtrIfNonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the value p points to, or def when p is nil.
func Deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

// Package utils holds small helpers shared across the API model packages.
package utils

// Ptr returns a pointer to v. Useful when populating optional or
// presence-checked model fields from literals.
func Ptr[T any](v T) *T {
	return &v
}

// Value dereferences v, returning the zero value for a nil pointer.
func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

package domain

// InsertAt returns s with vs inserted before position i. An index past the end
// appends.
func InsertAt[T any](s []T, i int, vs ...T) []T {
	if i < 0 {
		i = 0
	}
	if i >= len(s) {
		return append(s, vs...)
	}
	out := make([]T, 0, len(s)+len(vs))
	out = append(out, s[:i]...)
	out = append(out, vs...)
	return append(out, s[i:]...)
}

// Append returns s with vs added at the end.
func Append[T any](s []T, vs ...T) []T {
	return append(s, vs...)
}

// RemoveAt returns s without the element at i. Out of range indices return s
// unchanged.
func RemoveAt[T any](s []T, i int) []T {
	if i < 0 || i >= len(s) {
		return s
	}
	out := make([]T, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}

// Remove returns s without the first occurrence of v, and whether v was found.
func Remove[T comparable](s []T, v T) ([]T, bool) {
	i := IndexOf(s, v)
	if i < 0 {
		return s, false
	}
	return RemoveAt(s, i), true
}

// IndexOf returns the position of v in s, or -1.
func IndexOf[T comparable](s []T, v T) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

package util

import "strings"

// SanitizeFilename replaces every character outside [A-Za-z0-9._-] with '_'.
// Applying it twice yields the same result as applying it once.
func SanitizeFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if isSafeRune(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	return b.String()
}

// MaxFilenameLen is the longest name most filesystems accept for one path element.
const MaxFilenameLen = 255

// IsSafeFilename reports whether name is usable as a flat storage key: non-empty,
// at most MaxFilenameLen bytes, restricted to [A-Za-z0-9._-] and not a relative
// directory reference.
func IsSafeFilename(name string) bool {
	if name == "" || name == "." || name == ".." || len(name) > MaxFilenameLen {
		return false
	}
	for _, r := range name {
		if !isSafeRune(r) {
			return false
		}
	}
	return true
}

func isSafeRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.', r == '_', r == '-':
		return true
	default:
		return false
	}
}

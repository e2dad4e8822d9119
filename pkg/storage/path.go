package storage

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Path is a hierarchical name for a stored file: an ordered sequence of
// components, rendered with forward slashes regardless of platform. The
// zero value is the root of the backend's namespace. Paths are immutable;
// Child returns a derived path without modifying the receiver.
type Path struct {
	parts []string
}

// ParsePath splits a slash-separated logical name into a Path. Empty
// components are dropped, so "a//b/" equals "a/b". Components may not
// name the parent directory; that would let a logical name escape the
// backend's base directory.
func ParsePath(name string) (Path, error) {
	raw := strings.Split(name, "/")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		if part == "" || part == "." {
			continue
		}
		if part == ".." {
			return Path{}, fmt.Errorf("path %q escapes the storage root", name)
		}
		parts = append(parts, part)
	}
	return Path{parts: parts}, nil
}

// MustParsePath is ParsePath for static names known to be valid.
func MustParsePath(name string) Path {
	p, err := ParsePath(name)
	if err != nil {
		panic(err)
	}
	return p
}

// Child returns the path one level below p named part.
func (p Path) Child(part string) Path {
	parts := make([]string, len(p.parts)+1)
	copy(parts, p.parts)
	parts[len(p.parts)] = part
	return Path{parts: parts}
}

// Base returns the final component, or "" for the root path.
func (p Path) Base() string {
	if len(p.parts) == 0 {
		return ""
	}
	return p.parts[len(p.parts)-1]
}

// IsRoot reports whether p has no components.
func (p Path) IsRoot() bool {
	return len(p.parts) == 0
}

// String renders the path slash-separated, e.g. "a/b/f".
func (p Path) String() string {
	return strings.Join(p.parts, "/")
}

// Filesystem maps the path to a concrete location under base using the
// platform separator.
func (p Path) Filesystem(base string) string {
	return filepath.Join(base, filepath.FromSlash(p.String()))
}

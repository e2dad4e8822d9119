package storage

import "fmt"

// CacheMode selects how opened files interact with the OS page cache.
// The mode is translated into open flags at every open and create call;
// beyond being applied consistently, the exact kernel semantics are
// platform-defined.
type CacheMode int

const (
	// CachePage uses the page cache normally (the default).
	CachePage CacheMode = iota
	// CacheDirect bypasses the page cache with O_DIRECT. Callers must
	// use aligned buffers (NewAlignedBuffer) for reads and writes.
	CacheDirect
)

// ParseCacheMode maps a configuration string onto a CacheMode.
func ParseCacheMode(s string) (CacheMode, error) {
	switch s {
	case "", "page":
		return CachePage, nil
	case "direct":
		return CacheDirect, nil
	default:
		return CachePage, fmt.Errorf("unknown cache mode %q", s)
	}
}

func (m CacheMode) String() string {
	switch m {
	case CacheDirect:
		return "direct"
	default:
		return "page"
	}
}

// Config carries the settings a backend factory needs to construct a
// backend instance.
type Config struct {
	// Base is the directory (or backend-specific location) files live
	// under.
	Base string
	// Cache is applied to every open and create.
	Cache CacheMode
}

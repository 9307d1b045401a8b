package cache

import "strings"

// ScopedKeyer wraps a Keyer with a prefix so that several media devices
// can share one cache without seeing each other's artifacts.
//
//	k := NewScopedKeyer(NewDefaultKeyer(), DeviceScope("/dev/media1"))
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(dotHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(dotHash, opts)
}

// DeviceScope returns the key prefix for a topology source name, e.g.
// "device:media1:" for /dev/media1.
func DeviceScope(source string) string {
	name := strings.TrimPrefix(source, "/dev/")
	name = strings.NewReplacer("/", "_", ":", "_").Replace(name)
	if name == "" {
		name = "default"
	}
	return "device:" + name + ":"
}

//go:build !linux && !freebsd && !darwin

package arena

// mapSlab falls back to the Go heap on platforms without wired anonymous
// mappings.
func mapSlab(size int) ([]byte, error) {
	return make([]byte, size), nil
}

// unmapSlab is a no-op for heap-backed slabs; the garbage collector reclaims
// them once the arena drops its references.
func unmapSlab([]byte) error {
	return nil
}

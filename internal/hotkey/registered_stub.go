//go:build !darwin

package hotkey

// newRegisteredSource only exists on macOS; other platforms always take the
// global hook path.
func newRegisteredSource(Binding) (edgeSource, bool) {
	return nil, false
}

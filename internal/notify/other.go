//go:build !darwin && !linux

package notify

// stubDesktop is a no-op notifier for unsupported platforms.
type stubDesktop struct{}

func newPlatformDesktop() Desktop {
	return &stubDesktop{}
}

func (d *stubDesktop) Send(title, message string) error { return nil }

// IsSupported returns false for unsupported platforms.
func (d *stubDesktop) IsSupported() bool { return false }

// Without a known player binary every sound falls back to the terminal bell.
func newPlatformPlayer() *CommandPlayer {
	return &CommandPlayer{}
}

package audio

import "errors"

// Sentinel errors for the capture engine. Wrapped values carry the
// backend name and underlying cause; match with errors.Is.
var (
	// ErrNoInputDevice means the host has no default capture device
	ErrNoInputDevice = errors.New("no input device available")

	// ErrNoSupportedConfig means no device configuration matches the
	// requested sample rate, channel count and float32 format
	ErrNoSupportedConfig = errors.New("no supported stream configuration")

	// ErrStreamConstruction means the OS rejected the stream parameters
	ErrStreamConstruction = errors.New("failed to build input stream")

	// ErrStreamStart means the OS refused to activate a built stream
	ErrStreamStart = errors.New("failed to start input stream")
)

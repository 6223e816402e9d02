// Package audio captures live microphone input and converts it to
// 16-bit PCM for the transcription pipeline.
package audio

// Config holds audio capture configuration
type Config struct {
	// SampleRate in Hz (16000 is what speech models expect)
	SampleRate int
	// Channels is the input channel count (1 = mono)
	Channels int
	// BufferSize is the requested frames-per-callback hint
	BufferSize int
}

// DefaultConfig returns the standard speech-recognition capture config
func DefaultConfig() Config {
	return Config{
		SampleRate: 16000,
		Channels:   1,
		BufferSize: 4096,
	}
}

// State is the capture state machine value
type State int

const (
	StateIdle State = iota
	StateRecording
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// AudioData is an owned sequence of PCM16LE bytes produced by draining
// a capture session. Ownership transfers to the caller.
type AudioData []byte

// SampleFormat identifies the raw sample encoding a device delivers
type SampleFormat int

const (
	// FormatF32 is 32-bit float, the only input format this engine accepts
	FormatF32 SampleFormat = iota
	FormatS16
)

// Device describes an audio input device
type Device struct {
	ID      string
	Name    string
	Default bool
}

// SupportedConfig describes one input configuration a device offers
type SupportedConfig struct {
	Channels      int
	Format        SampleFormat
	MinSampleRate int
	MaxSampleRate int
}

// StreamConfig is a resolved, device-specific stream configuration.
// Immutable once negotiation picks it.
type StreamConfig struct {
	SampleRate int
	Channels   int
}

// DataCallback receives sample chunks on the hardware callback thread.
// The slice is only valid for the duration of the call; implementations
// must not retain it. It must never block.
type DataCallback func(samples []float32)

// ErrorCallback receives asynchronous stream errors
type ErrorCallback func(err error)

// Stream is a live subscription to the OS audio subsystem. Close
// releases the subscription; after Close the callbacks stop firing.
type Stream interface {
	Start() error
	Close() error
}

// Host abstracts the platform audio subsystem so the capture engine can
// run against PortAudio, miniaudio, or a deterministic test double.
type Host interface {
	// DefaultInputDevice returns the system default capture device
	DefaultInputDevice() (*Device, error)

	// InputDevices lists every capture device the host exposes
	InputDevices() ([]Device, error)

	// SupportedInputConfigs enumerates the input configurations the
	// device offers
	SupportedInputConfigs(dev *Device) ([]SupportedConfig, error)

	// BuildInputStream constructs (but does not start) an input stream
	// delivering float32 chunks to onData
	BuildInputStream(dev *Device, cfg StreamConfig, bufferSize int, onData DataCallback, onErr ErrorCallback) (Stream, error)

	// Close releases the host. Streams must be closed first.
	Close() error
}

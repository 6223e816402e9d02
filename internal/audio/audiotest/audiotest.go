// Package audiotest provides a deterministic in-memory audio host so
// capture behavior can be tested without hardware. Tests drive the
// sample-delivery callback synchronously through Push and assert on
// stream lifecycle through OpenStreams.
package audiotest

import (
	"errors"
	"sync"

	"github.com/JasonLovesDoggo/flowwhispr/internal/audio"
)

// Host implements audio.Host entirely in memory.
type Host struct {
	mu       sync.Mutex
	device   *audio.Device
	configs  []audio.SupportedConfig
	buildErr error
	startErr error
	streams  []*Stream
	closed   bool
}

// NewHost returns a Host with one default mono float32 device
// supporting 8000-48000 Hz.
func NewHost() *Host {
	return &Host{
		device: &audio.Device{ID: "mock-0", Name: "Mock Microphone", Default: true},
		configs: []audio.SupportedConfig{
			{Channels: 1, Format: audio.FormatF32, MinSampleRate: 8000, MaxSampleRate: 48000},
			{Channels: 2, Format: audio.FormatF32, MinSampleRate: 8000, MaxSampleRate: 48000},
		},
	}
}

// RemoveDevice simulates a machine with no capture device.
func (h *Host) RemoveDevice() {
	h.mu.Lock()
	h.device = nil
	h.mu.Unlock()
}

// SetConfigs replaces the advertised input configurations.
func (h *Host) SetConfigs(configs []audio.SupportedConfig) {
	h.mu.Lock()
	h.configs = configs
	h.mu.Unlock()
}

// FailBuild makes the next BuildInputStream calls fail with err.
func (h *Host) FailBuild(err error) {
	h.mu.Lock()
	h.buildErr = err
	h.mu.Unlock()
}

// FailStart makes Start on subsequently built streams fail with err.
func (h *Host) FailStart(err error) {
	h.mu.Lock()
	h.startErr = err
	h.mu.Unlock()
}

func (h *Host) DefaultInputDevice() (*audio.Device, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.device == nil {
		return nil, errors.New("no default capture device")
	}
	dev := *h.device
	return &dev, nil
}

func (h *Host) InputDevices() ([]audio.Device, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.device == nil {
		return nil, nil
	}
	return []audio.Device{*h.device}, nil
}

func (h *Host) SupportedInputConfigs(*audio.Device) ([]audio.SupportedConfig, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]audio.SupportedConfig(nil), h.configs...), nil
}

func (h *Host) BuildInputStream(_ *audio.Device, cfg audio.StreamConfig, _ int, onData audio.DataCallback, onErr audio.ErrorCallback) (audio.Stream, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.buildErr != nil {
		return nil, h.buildErr
	}
	s := &Stream{
		host:     h,
		config:   cfg,
		onData:   onData,
		onErr:    onErr,
		startErr: h.startErr,
	}
	h.streams = append(h.streams, s)
	return s, nil
}

func (h *Host) Close() error {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	return nil
}

// Push delivers a chunk to every running stream, exactly as the
// hardware callback thread would. The chunk is handed to the callback
// directly; callers must not mutate it afterwards.
func (h *Host) Push(samples []float32) {
	h.mu.Lock()
	running := make([]*Stream, 0, len(h.streams))
	for _, s := range h.streams {
		if s.started && !s.closed {
			running = append(running, s)
		}
	}
	h.mu.Unlock()

	for _, s := range running {
		s.onData(samples)
	}
}

// OpenStreams reports how many built streams have not been closed.
// A clean teardown always drives this back to zero.
func (h *Host) OpenStreams() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, s := range h.streams {
		if !s.closed {
			n++
		}
	}
	return n
}

// BuiltStreams reports how many streams were ever constructed.
func (h *Host) BuiltStreams() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.streams)
}

// Closed reports whether the host itself was closed.
func (h *Host) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Stream is an in-memory audio.Stream.
type Stream struct {
	host     *Host
	config   audio.StreamConfig
	onData   audio.DataCallback
	onErr    audio.ErrorCallback
	startErr error
	started  bool
	closed   bool
}

func (s *Stream) Start() error {
	s.host.mu.Lock()
	defer s.host.mu.Unlock()
	if s.startErr != nil {
		return s.startErr
	}
	s.started = true
	return nil
}

func (s *Stream) Close() error {
	s.host.mu.Lock()
	defer s.host.mu.Unlock()
	s.closed = true
	return nil
}

// FailAsync delivers an asynchronous stream error to the error callback.
func (s *Stream) FailAsync(err error) {
	s.onErr(err)
}

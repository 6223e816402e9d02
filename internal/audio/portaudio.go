package audio

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/rs/zerolog"
)

// portAudioHost is the default real backend, built on PortAudio
// callback streams.
type portAudioHost struct {
	log zerolog.Logger

	mu      sync.Mutex
	devices map[string]*portaudio.DeviceInfo
}

// NewPortAudioHost initializes PortAudio and returns a Host backed by
// it. Close terminates PortAudio; all streams must be closed first.
func NewPortAudioHost(log zerolog.Logger) (Host, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return &portAudioHost{
		log:     log,
		devices: make(map[string]*portaudio.DeviceInfo),
	}, nil
}

func (h *portAudioHost) DefaultInputDevice() (*Device, error) {
	info, err := portaudio.DefaultInputDevice()
	if err != nil {
		return nil, fmt.Errorf("portaudio: %w", err)
	}
	h.remember(info)
	return &Device{ID: info.Name, Name: info.Name, Default: true}, nil
}

func (h *portAudioHost) InputDevices() ([]Device, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("portaudio: failed to enumerate devices: %w", err)
	}
	defaultInfo, _ := portaudio.DefaultInputDevice()

	result := make([]Device, 0, len(infos))
	for _, info := range infos {
		if info.MaxInputChannels <= 0 {
			continue
		}
		h.remember(info)
		result = append(result, Device{
			ID:      info.Name,
			Name:    info.Name,
			Default: info == defaultInfo,
		})
	}
	return result, nil
}

func (h *portAudioHost) SupportedInputConfigs(dev *Device) ([]SupportedConfig, error) {
	info := h.lookup(dev.ID)
	if info == nil {
		return nil, fmt.Errorf("portaudio: unknown device %q", dev.ID)
	}

	// PortAudio does not expose discrete per-format rate ranges; it
	// delivers float32 natively and accepts any rate the device can
	// run at. Advertise one config per channel count.
	maxRate := int(info.DefaultSampleRate)
	if maxRate < 48000 {
		maxRate = 48000
	}
	configs := make([]SupportedConfig, 0, info.MaxInputChannels)
	for ch := 1; ch <= info.MaxInputChannels; ch++ {
		configs = append(configs, SupportedConfig{
			Channels:      ch,
			Format:        FormatF32,
			MinSampleRate: 8000,
			MaxSampleRate: maxRate,
		})
	}
	return configs, nil
}

func (h *portAudioHost) BuildInputStream(dev *Device, cfg StreamConfig, bufferSize int, onData DataCallback, onErr ErrorCallback) (Stream, error) {
	info := h.lookup(dev.ID)
	if info == nil {
		return nil, fmt.Errorf("portaudio: unknown device %q", dev.ID)
	}

	params := portaudio.LowLatencyParameters(info, nil)
	params.Input.Channels = cfg.Channels
	params.SampleRate = float64(cfg.SampleRate)
	params.FramesPerBuffer = bufferSize

	// PortAudio invokes this on its own high-priority thread.
	stream, err := portaudio.OpenStream(params, func(in []float32) {
		onData(in)
	})
	if err != nil {
		return nil, fmt.Errorf("portaudio: open stream: %w", err)
	}

	return &portAudioStream{stream: stream}, nil
}

func (h *portAudioHost) Close() error {
	return portaudio.Terminate()
}

func (h *portAudioHost) remember(info *portaudio.DeviceInfo) {
	h.mu.Lock()
	h.devices[info.Name] = info
	h.mu.Unlock()
}

func (h *portAudioHost) lookup(id string) *portaudio.DeviceInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.devices[id]
}

type portAudioStream struct {
	stream *portaudio.Stream
	closed bool
}

func (s *portAudioStream) Start() error {
	return s.stream.Start()
}

func (s *portAudioStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	// Stop errors if the stream never started; Close is what releases it.
	_ = s.stream.Stop()
	return s.stream.Close()
}

package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/rs/zerolog"
)

// malgoHost is the alternate real backend, built on miniaudio. Unlike
// PortAudio it resamples and converts formats internally, so any
// reasonable rate request succeeds.
type malgoHost struct {
	ctx *malgo.AllocatedContext
	log zerolog.Logger

	mu      sync.Mutex
	devices map[string]malgo.DeviceID
}

// NewMalgoHost initializes a miniaudio context and returns a Host
// backed by it.
func NewMalgoHost(log zerolog.Logger) (Host, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		log.Trace().Str("backend", "miniaudio").Msg(strings.TrimSpace(message))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize miniaudio context: %w", err)
	}
	return &malgoHost{
		ctx:     ctx,
		log:     log,
		devices: make(map[string]malgo.DeviceID),
	}, nil
}

func (h *malgoHost) DefaultInputDevice() (*Device, error) {
	infos, err := h.ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("miniaudio: failed to enumerate devices: %w", err)
	}
	if len(infos) == 0 {
		return nil, fmt.Errorf("miniaudio: no capture devices")
	}

	chosen := infos[0]
	for _, info := range infos {
		if info.IsDefault != 0 {
			chosen = info
			break
		}
	}

	id := chosen.ID.String()
	h.remember(id, chosen.ID)
	return &Device{ID: id, Name: chosen.Name(), Default: true}, nil
}

func (h *malgoHost) InputDevices() ([]Device, error) {
	infos, err := h.ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("miniaudio: failed to enumerate devices: %w", err)
	}

	result := make([]Device, 0, len(infos))
	for _, info := range infos {
		id := info.ID.String()
		h.remember(id, info.ID)
		result = append(result, Device{
			ID:      id,
			Name:    info.Name(),
			Default: info.IsDefault != 0,
		})
	}
	return result, nil
}

func (h *malgoHost) SupportedInputConfigs(_ *Device) ([]SupportedConfig, error) {
	// miniaudio converts sample format and rate internally, so every
	// device effectively supports float32 across the usable range.
	return []SupportedConfig{
		{Channels: 1, Format: FormatF32, MinSampleRate: 8000, MaxSampleRate: 192000},
		{Channels: 2, Format: FormatF32, MinSampleRate: 8000, MaxSampleRate: 192000},
	}, nil
}

func (h *malgoHost) BuildInputStream(dev *Device, cfg StreamConfig, bufferSize int, onData DataCallback, onErr ErrorCallback) (Stream, error) {
	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = uint32(cfg.Channels)
	deviceConfig.SampleRate = uint32(cfg.SampleRate)
	if bufferSize > 0 {
		deviceConfig.PeriodSizeInFrames = uint32(bufferSize)
	}
	if !dev.Default {
		if id, ok := h.lookup(dev.ID); ok {
			deviceConfig.Capture.DeviceID = id.Pointer()
		}
	}

	// Scratch buffer reused across callbacks; onData must not retain
	// the slice, so this never races.
	var conv []float32
	callbacks := malgo.DeviceCallbacks{
		Data: func(_, pInput []byte, frameCount uint32) {
			n := int(frameCount) * cfg.Channels
			if cap(conv) < n {
				conv = make([]float32, n)
			}
			conv = conv[:n]
			for i := 0; i < n; i++ {
				conv[i] = math.Float32frombits(binary.LittleEndian.Uint32(pInput[i*4:]))
			}
			onData(conv)
		},
	}

	device, err := malgo.InitDevice(h.ctx.Context, deviceConfig, callbacks)
	if err != nil {
		return nil, fmt.Errorf("miniaudio: init device: %w", err)
	}
	return &malgoStream{device: device}, nil
}

func (h *malgoHost) Close() error {
	if err := h.ctx.Uninit(); err != nil {
		return fmt.Errorf("miniaudio: uninit context: %w", err)
	}
	h.ctx.Free()
	return nil
}

func (h *malgoHost) remember(id string, raw malgo.DeviceID) {
	h.mu.Lock()
	h.devices[id] = raw
	h.mu.Unlock()
}

func (h *malgoHost) lookup(id string) (malgo.DeviceID, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	raw, ok := h.devices[id]
	return raw, ok
}

type malgoStream struct {
	device *malgo.Device
	closed bool
}

func (s *malgoStream) Start() error {
	return s.device.Start()
}

func (s *malgoStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.device.Uninit()
	return nil
}

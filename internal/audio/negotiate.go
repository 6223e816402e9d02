package audio

import (
	"fmt"

	"github.com/rs/zerolog"
)

// resolveStreamConfig negotiates a device and stream configuration
// against the host: default input device, then the first supported
// float32 config matching the requested channel count whose sample-rate
// range contains the requested rate. The chosen config's rate is fixed
// to exactly the requested value. Read-only apart from logging.
func resolveStreamConfig(host Host, cfg Config, log zerolog.Logger) (*Device, StreamConfig, error) {
	dev, err := host.DefaultInputDevice()
	if err != nil {
		return nil, StreamConfig{}, fmt.Errorf("%w: %v", ErrNoInputDevice, err)
	}
	if dev == nil {
		return nil, StreamConfig{}, ErrNoInputDevice
	}

	log.Info().Str("device", dev.Name).Msg("Using input device")

	supported, err := host.SupportedInputConfigs(dev)
	if err != nil {
		return nil, StreamConfig{}, fmt.Errorf("%w: querying supported configs: %v", ErrNoSupportedConfig, err)
	}

	for _, sc := range supported {
		if sc.Channels != cfg.Channels || sc.Format != FormatF32 {
			continue
		}
		if sc.MinSampleRate <= cfg.SampleRate && cfg.SampleRate <= sc.MaxSampleRate {
			resolved := StreamConfig{
				SampleRate: cfg.SampleRate,
				Channels:   cfg.Channels,
			}
			log.Debug().
				Int("sample_rate", resolved.SampleRate).
				Int("channels", resolved.Channels).
				Msg("Resolved stream config")
			return dev, resolved, nil
		}
	}

	return nil, StreamConfig{}, fmt.Errorf("%w: %d Hz, %d channel(s), float32",
		ErrNoSupportedConfig, cfg.SampleRate, cfg.Channels)
}

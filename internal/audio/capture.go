package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// session is the cross-thread shared state: one lock guards both the
// state flag and the sample queue, so a chunk delivered exactly at a
// stop/start boundary lands wholly in one session or the other, never
// split between both.
type session struct {
	mu      sync.Mutex
	state   State
	samples []float32
}

// Capture records audio from the default input device.
//
// Two threads touch a Capture: the control goroutine calling these
// methods, and the hardware callback thread appending samples. They
// synchronize through the session lock, which is only ever held for a
// state check, an append, a clear or a drain. The control methods
// themselves are not safe for concurrent use with each other.
type Capture struct {
	host      Host
	device    *Device
	config    Config
	streamCfg StreamConfig
	log       zerolog.Logger

	sess      *session
	stream    Stream // live OS subscription; nil when torn down
	sessionID string
}

// New negotiates a stream configuration against the host and returns a
// Capture in the idle state. Fails with ErrNoInputDevice or
// ErrNoSupportedConfig; no partially-initialized Capture is returned.
func New(cfg Config, host Host, log zerolog.Logger) (*Capture, error) {
	def := DefaultConfig()
	if cfg.SampleRate == 0 {
		cfg.SampleRate = def.SampleRate
	}
	if cfg.Channels == 0 {
		cfg.Channels = def.Channels
	}
	if cfg.BufferSize == 0 {
		cfg.BufferSize = def.BufferSize
	}

	device, streamCfg, err := resolveStreamConfig(host, cfg, log)
	if err != nil {
		return nil, err
	}

	return &Capture{
		host:      host,
		device:    device,
		config:    cfg,
		streamCfg: streamCfg,
		log:       log,
		sess:      &session{state: StateIdle},
	}, nil
}

// Start begins a capture session. A no-op when already recording.
// Otherwise the sample buffer is cleared, a fresh stream is built and
// activated, and the state moves to recording. On failure the state and
// any prior stream are left exactly as before the call, so a retry
// after remediation is always safe.
func (c *Capture) Start() error {
	c.sess.mu.Lock()
	if c.sess.state == StateRecording {
		c.sess.mu.Unlock()
		return nil
	}
	c.sess.samples = c.sess.samples[:0]
	c.sess.mu.Unlock()

	sess := c.sess
	onData := func(samples []float32) {
		// Hardware callback thread: hold the lock just long enough to
		// gate on state and append.
		sess.mu.Lock()
		if sess.state == StateRecording {
			sess.samples = append(sess.samples, samples...)
		}
		sess.mu.Unlock()
	}
	onErr := func(err error) {
		c.log.Error().Err(err).Msg("Audio stream error")
	}

	stream, err := c.host.BuildInputStream(c.device, c.streamCfg, c.config.BufferSize, onData, onErr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStreamConstruction, err)
	}

	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return fmt.Errorf("%w: %v", ErrStreamStart, err)
	}

	// Starting over from paused replaces the previous subscription.
	if c.stream != nil {
		_ = c.stream.Close()
	}
	c.stream = stream
	c.sessionID = uuid.NewString()

	c.setState(StateRecording)
	c.log.Info().Str("session", c.sessionID).Msg("Audio capture started")
	return nil
}

// Pause keeps the stream running but discards incoming samples until
// Resume. Samples delivered while paused are not replayed.
func (c *Capture) Pause() {
	c.setState(StatePaused)
	c.log.Debug().Str("session", c.sessionID).Msg("Audio capture paused")
}

// Resume re-enables sample queueing after Pause.
func (c *Capture) Resume() {
	c.setState(StateRecording)
	c.log.Debug().Str("session", c.sessionID).Msg("Audio capture resumed")
}

// Stop ends the session: tears down the stream, drains the buffer and
// returns the captured audio as PCM16LE. Always succeeds; an empty
// buffer yields zero-length AudioData.
func (c *Capture) Stop() AudioData {
	c.setState(StateIdle)
	c.releaseStream()

	data := EncodePCM16LE(c.takeSamples())
	c.log.Info().Str("session", c.sessionID).Int("bytes", len(data)).Msg("Audio capture stopped")
	return data
}

// StopStream tears down the stream like Stop but leaves the buffer
// untouched, for when the audio will be retrieved later with
// TakeBufferedAudio.
func (c *Capture) StopStream() {
	c.setState(StateIdle)
	c.releaseStream()
	c.log.Info().Str("session", c.sessionID).Msg("Audio capture stopped (buffer retained)")
}

// TakeBufferedAudio drains and encodes the buffer without touching the
// stream or the capture state. Usable while recording, paused, or after
// StopStream.
func (c *Capture) TakeBufferedAudio() AudioData {
	return EncodePCM16LE(c.takeSamples())
}

// State returns a snapshot of the capture state. The value may change
// immediately after return.
func (c *Capture) State() State {
	c.sess.mu.Lock()
	defer c.sess.mu.Unlock()
	return c.sess.state
}

// BufferDuration reports how much audio is currently queued, with
// millisecond precision.
func (c *Capture) BufferDuration() time.Duration {
	c.sess.mu.Lock()
	queued := len(c.sess.samples)
	c.sess.mu.Unlock()

	ms := int64(queued) * 1000 / int64(c.config.SampleRate*c.config.Channels)
	return time.Duration(ms) * time.Millisecond
}

// StreamConfig returns the negotiated stream configuration.
func (c *Capture) StreamConfig() StreamConfig {
	return c.streamCfg
}

// Close forces the capture idle and releases any live stream. It is the
// teardown safety net: safe to call in any state, and required before
// discarding a Capture so the OS subscription can never leak.
func (c *Capture) Close() error {
	c.setState(StateIdle)
	c.releaseStream()
	return nil
}

func (c *Capture) setState(s State) {
	c.sess.mu.Lock()
	c.sess.state = s
	c.sess.mu.Unlock()
}

func (c *Capture) takeSamples() []float32 {
	c.sess.mu.Lock()
	samples := c.sess.samples
	c.sess.samples = nil
	c.sess.mu.Unlock()
	return samples
}

func (c *Capture) releaseStream() {
	if c.stream != nil {
		if err := c.stream.Close(); err != nil {
			c.log.Warn().Err(err).Msg("Failed to close audio stream")
		}
		c.stream = nil
	}
}

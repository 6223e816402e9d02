// Package transcription wraps a hosted speech-to-text HTTP API behind
// the Provider interface the dictation pipeline consumes.
package transcription

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/JasonLovesDoggo/flowwhispr/internal/audio"
	"github.com/rs/zerolog"
)

// Provider converts captured audio into text.
type Provider interface {
	Transcribe(ctx context.Context, data audio.AudioData, opts Options) (string, error)
}

// Options describe one transcription request.
type Options struct {
	// SampleRate and Channels describe the PCM data
	SampleRate int
	Channels   int
	// Language hint, e.g. "en"; empty lets the service detect
	Language string
	// Prompt biases the model toward expected vocabulary
	Prompt string
}

// Config holds transcription service settings.
type Config struct {
	Endpoint   string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

// Client is a thin HTTP client for an OpenAI-compatible
// audio/transcriptions endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient validates the config and returns a Client.
func NewClient(cfg Config, log zerolog.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("transcription endpoint is required")
	}
	if cfg.Model == "" {
		cfg.Model = "whisper-1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}, nil
}

// Transcribe uploads the audio as a WAV file and returns the
// transcript. Server errors and network failures are retried with
// exponential backoff; client errors are not.
func (c *Client) Transcribe(ctx context.Context, data audio.AudioData, opts Options) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			if backoff > 30*time.Second {
				backoff = 30 * time.Second
			}
			c.log.Debug().Int("attempt", attempt).Dur("backoff", backoff).Msg("Retrying transcription")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		text, err := c.doRequest(ctx, data, opts)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable(err) {
			break
		}
	}
	return "", fmt.Errorf("transcription failed: %w", lastErr)
}

func (c *Client) doRequest(ctx context.Context, data audio.AudioData, opts Options) (string, error) {
	body, contentType, err := c.buildMultipart(data, opts)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &statusError{code: resp.StatusCode, body: string(respBody)}
	}

	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse transcription response: %w", err)
	}
	return parsed.Text, nil
}

func (c *Client) buildMultipart(data audio.AudioData, opts Options) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fw, err := w.CreateFormFile("file", "audio.wav")
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := fw.Write(wavBytes(data, opts.SampleRate, opts.Channels)); err != nil {
		return nil, "", fmt.Errorf("failed to write audio payload: %w", err)
	}

	fields := map[string]string{
		"model":           c.cfg.Model,
		"response_format": "json",
	}
	if opts.Language != "" {
		fields["language"] = opts.Language
	}
	if opts.Prompt != "" {
		fields["prompt"] = opts.Prompt
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// wavBytes prefixes PCM16LE data with a 44-byte WAV header. The length
// is known upfront, so no seeking is needed.
func wavBytes(data audio.AudioData, sampleRate, channels int) []byte {
	const (
		bitsPerSample = 16
		headerSize    = 44
	)
	dataSize := uint32(len(data))
	blockAlign := uint16(channels * bitsPerSample / 8)

	buf := bytes.NewBuffer(make([]byte, 0, headerSize+len(data)))
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(buf, binary.LittleEndian, uint16(channels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate)*uint32(blockAlign))
	binary.Write(buf, binary.LittleEndian, blockAlign)
	binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))
	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, dataSize)
	buf.Write(data)
	return buf.Bytes()
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("transcription API returned %d: %s", e.code, e.body)
}

func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500
	}
	// Network-level failures are worth retrying.
	return true
}

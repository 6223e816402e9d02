package transcription

import (
	"bytes"
	"context"
	"encoding/binary"
	"net/http"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/rs/zerolog"
)

const testEndpoint = "https://api.example.com/v1/audio/transcriptions"

func newTestClient(t *testing.T, maxRetries int) *Client {
	t.Helper()
	c, err := NewClient(Config{
		Endpoint:   testEndpoint,
		APIKey:     "test-key",
		Model:      "whisper-1",
		MaxRetries: maxRetries,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	httpmock.ActivateNonDefault(c.httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)
	return c
}

func TestNewClientRequiresEndpoint(t *testing.T) {
	if _, err := NewClient(Config{}, zerolog.Nop()); err == nil {
		t.Fatal("expected error for empty endpoint")
	}
}

func TestTranscribeSuccess(t *testing.T) {
	c := newTestClient(t, 0)

	httpmock.RegisterResponder(http.MethodPost, testEndpoint,
		func(req *http.Request) (*http.Response, error) {
			if got := req.Header.Get("Authorization"); got != "Bearer test-key" {
				t.Errorf("expected bearer auth header, got %q", got)
			}
			if err := req.ParseMultipartForm(1 << 20); err != nil {
				t.Fatalf("parse multipart: %v", err)
			}
			if got := req.FormValue("model"); got != "whisper-1" {
				t.Errorf("expected model whisper-1, got %q", got)
			}
			if got := req.FormValue("language"); got != "en" {
				t.Errorf("expected language en, got %q", got)
			}

			file, _, err := req.FormFile("file")
			if err != nil {
				t.Fatalf("missing audio file part: %v", err)
			}
			defer file.Close()
			header := make([]byte, 4)
			if _, err := file.Read(header); err != nil || string(header) != "RIFF" {
				t.Errorf("expected RIFF wav payload, got %q (%v)", header, err)
			}

			return httpmock.NewJsonResponse(200, map[string]string{"text": "hello world"})
		})

	text, err := c.Transcribe(context.Background(), []byte{0x00, 0x00}, Options{
		SampleRate: 16000,
		Channels:   1,
		Language:   "en",
	})
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if text != "hello world" {
		t.Errorf("expected %q, got %q", "hello world", text)
	}
}

func TestTranscribeRetriesServerError(t *testing.T) {
	c := newTestClient(t, 1)

	calls := 0
	httpmock.RegisterResponder(http.MethodPost, testEndpoint,
		func(req *http.Request) (*http.Response, error) {
			calls++
			if calls == 1 {
				return httpmock.NewStringResponse(500, "internal error"), nil
			}
			return httpmock.NewJsonResponse(200, map[string]string{"text": "ok"})
		})

	text, err := c.Transcribe(context.Background(), []byte{0x00, 0x00}, Options{SampleRate: 16000, Channels: 1})
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if text != "ok" {
		t.Errorf("expected %q, got %q", "ok", text)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestTranscribeDoesNotRetryClientError(t *testing.T) {
	c := newTestClient(t, 3)

	httpmock.RegisterResponder(http.MethodPost, testEndpoint,
		httpmock.NewStringResponder(401, "invalid api key"))

	_, err := c.Transcribe(context.Background(), []byte{0x00, 0x00}, Options{SampleRate: 16000, Channels: 1})
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("expected status in error, got %v", err)
	}
	if got := httpmock.GetTotalCallCount(); got != 1 {
		t.Errorf("expected exactly 1 call for a client error, got %d", got)
	}
}

func TestWavBytesHeader(t *testing.T) {
	pcm := []byte{0x01, 0x02, 0x03, 0x04}
	wav := wavBytes(pcm, 16000, 1)

	if len(wav) != 44+len(pcm) {
		t.Fatalf("expected %d bytes, got %d", 44+len(pcm), len(wav))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Error("expected RIFF/WAVE markers")
	}
	if rate := binary.LittleEndian.Uint32(wav[24:28]); rate != 16000 {
		t.Errorf("expected rate 16000 in header, got %d", rate)
	}
	if size := binary.LittleEndian.Uint32(wav[40:44]); size != uint32(len(pcm)) {
		t.Errorf("expected data size %d, got %d", len(pcm), size)
	}
	if !bytes.Equal(wav[44:], pcm) {
		t.Error("expected PCM payload after header")
	}
}

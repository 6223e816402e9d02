package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/JasonLovesDoggo/flowwhispr/internal/audio"
	"github.com/JasonLovesDoggo/flowwhispr/internal/completion"
	"github.com/JasonLovesDoggo/flowwhispr/internal/config"
	"github.com/JasonLovesDoggo/flowwhispr/internal/contacts"
	"github.com/JasonLovesDoggo/flowwhispr/internal/transcription"
	"github.com/rs/zerolog"
)

// Config wires the pipeline's collaborators
type Config struct {
	Capture     *audio.Capture
	Transcriber transcription.Provider
	Completer   completion.Provider // optional - only used when adapt_tone is on
	Config      *config.Config
	Logger      zerolog.Logger
}

// Result is one finished dictation
type Result struct {
	// Transcript is the final text, tone-adapted when enabled
	Transcript string
	// Raw is the provider transcript before any adaptation
	Raw string
	// AudioLen is the captured audio duration
	AudioLen time.Duration
	// Category of the active contact, when one was set
	Category contacts.Category
	// Adapted reports whether the completion rewrite was applied
	Adapted bool
}

// App drives one dictation at a time: capture, transcribe, and
// optionally rewrite for the active conversation partner.
type App struct {
	capture    *audio.Capture
	stt        transcription.Provider
	llm        completion.Provider
	classifier *contacts.Classifier
	cfg        *config.Config
	log        zerolog.Logger

	mu        sync.Mutex
	dictating bool
	contact   *contacts.Contact
}

func New(cfg Config) *App {
	return &App{
		capture:    cfg.Capture,
		stt:        cfg.Transcriber,
		llm:        cfg.Completer,
		classifier: contacts.NewClassifier(),
		cfg:        cfg.Config,
		log:        cfg.Logger,
	}
}

// SetActiveContact records who the dictated text is for. Pass nil when
// no conversation is active.
func (a *App) SetActiveContact(c *contacts.Contact) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.contact = c
}

// StartDictation begins recording. Safe to call while already dictating.
func (a *App) StartDictation() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.capture.Start(); err != nil {
		return fmt.Errorf("start capture: %w", err)
	}
	if !a.dictating {
		a.log.Info().Msg("Starting dictation")
		a.dictating = true
	}
	return nil
}

// PauseDictation keeps the stream alive but discards samples until resume.
func (a *App) PauseDictation() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.capture.Pause()
}

// ResumeDictation re-enables capture after a pause.
func (a *App) ResumeDictation() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.capture.Resume()
}

// StopDictation ends the recording and runs the provider pipeline.
func (a *App) StopDictation(ctx context.Context) (Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.dictating {
		return Result{}, nil
	}
	a.log.Info().Msg("Stopping dictation")
	a.dictating = false

	sc := a.capture.StreamConfig()
	data := a.capture.Stop()

	result := Result{
		AudioLen: pcmDuration(len(data), sc),
	}
	if len(data) == 0 {
		a.log.Info().Msg("No audio captured")
		return result, nil
	}

	lang := a.cfg.Dictation.Language
	if lang == "auto" {
		lang = ""
	}
	text, err := a.stt.Transcribe(ctx, data, transcription.Options{
		SampleRate: sc.SampleRate,
		Channels:   sc.Channels,
		Language:   lang,
	})
	if err != nil {
		return result, fmt.Errorf("transcribe: %w", err)
	}
	text = strings.TrimSpace(text)
	result.Raw = text
	result.Transcript = text
	if text == "" {
		return result, nil
	}

	if a.cfg.Dictation.AdaptTone && a.contact != nil && a.llm != nil {
		result.Category = a.classifier.Classify(*a.contact)
		adapted, err := a.adaptTone(ctx, text, result.Category)
		if err != nil {
			// Adaptation is best-effort; the raw transcript still stands.
			a.log.Warn().Err(err).Msg("Tone adaptation failed")
		} else {
			result.Transcript = adapted
			result.Adapted = true
		}
	}

	a.log.Info().
		Str("transcript", result.Transcript).
		Dur("audio", result.AudioLen).
		Bool("adapted", result.Adapted).
		Msg("Dictation finished")
	return result, nil
}

func (a *App) adaptTone(ctx context.Context, text string, category contacts.Category) (string, error) {
	resp, err := a.llm.Complete(ctx, completion.Request{
		System: fmt.Sprintf(
			"Rewrite the user's dictated message in a %s tone. Preserve the meaning. Reply with the rewritten message only.",
			category.WritingMode()),
		User:        text,
		Temperature: 0.3,
	})
	if err != nil {
		return "", err
	}
	adapted := strings.TrimSpace(resp.Text)
	if adapted == "" {
		return "", fmt.Errorf("empty completion for tone adaptation")
	}
	return adapted, nil
}

// IsDictating reports whether a dictation is in progress.
func (a *App) IsDictating() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dictating
}

// BufferDuration reports how much audio the current dictation has queued.
func (a *App) BufferDuration() time.Duration {
	return a.capture.BufferDuration()
}

// Shutdown discards any in-flight dictation and releases the capture.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.dictating = false
	return a.capture.Close()
}

func pcmDuration(byteLen int, sc audio.StreamConfig) time.Duration {
	samples := byteLen / 2
	ms := int64(samples) * 1000 / int64(sc.SampleRate*sc.Channels)
	return time.Duration(ms) * time.Millisecond
}

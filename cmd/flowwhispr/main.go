package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JasonLovesDoggo/flowwhispr/internal/app"
	"github.com/JasonLovesDoggo/flowwhispr/internal/audio"
	"github.com/JasonLovesDoggo/flowwhispr/internal/completion"
	"github.com/JasonLovesDoggo/flowwhispr/internal/config"
	"github.com/JasonLovesDoggo/flowwhispr/internal/contacts"
	"github.com/JasonLovesDoggo/flowwhispr/internal/logging"
	"github.com/JasonLovesDoggo/flowwhispr/internal/transcription"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Version is set via ldflags at build time
	Version = "dev"
	// Commit is set via ldflags at build time
	Commit = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "flowwhispr",
		Short:         "Capture microphone audio and dictate through hosted transcription",
		Version:       fmt.Sprintf("%s (%s)", Version, Commit),
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newDevicesCmd(), newRecordCmd(), newTranscribeCmd())
	return root
}

func setup() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	return cfg, logging.NewWithLevel(cfg.LogLevel), nil
}

func newHost(cfg *config.Config, log zerolog.Logger) (audio.Host, error) {
	if cfg.Audio.Backend == "miniaudio" {
		return audio.NewMalgoHost(log)
	}
	return audio.NewPortAudioHost(log)
}

func captureConfig(cfg *config.Config) audio.Config {
	return audio.Config{
		SampleRate: cfg.Audio.SampleRate,
		Channels:   cfg.Audio.Channels,
		BufferSize: cfg.Audio.BufferSize,
	}
}

func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List audio input devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			host, err := newHost(cfg, log)
			if err != nil {
				return err
			}
			defer host.Close()

			devices, err := host.InputDevices()
			if err != nil {
				return err
			}
			for _, d := range devices {
				marker := " "
				if d.Default {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, d.Name)
			}
			return nil
		},
	}
}

func newRecordCmd() *cobra.Command {
	var (
		out      string
		duration time.Duration
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record from the default input device and write a WAV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			host, err := newHost(cfg, log)
			if err != nil {
				return err
			}
			defer host.Close()

			capture, err := audio.New(captureConfig(cfg), host, log)
			if err != nil {
				return err
			}
			defer capture.Close()

			if err := capture.Start(); err != nil {
				return err
			}
			waitForStop(duration)

			data := capture.Stop()
			sc := capture.StreamConfig()

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := audio.WriteWAV(f, data, sc.SampleRate, sc.Channels); err != nil {
				return err
			}

			log.Info().Str("path", out).Int("bytes", len(data)).Msg("Recording written")
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "capture.wav", "output WAV path")
	cmd.Flags().DurationVarP(&duration, "duration", "d", 0, "recording length (0 = until Ctrl-C)")
	return cmd
}

func newTranscribeCmd() *cobra.Command {
	var (
		duration    time.Duration
		contactName string
		contactOrg  string
	)

	cmd := &cobra.Command{
		Use:   "transcribe",
		Short: "Record a dictation and print the transcript",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			host, err := newHost(cfg, log)
			if err != nil {
				return err
			}
			defer host.Close()

			capture, err := audio.New(captureConfig(cfg), host, log)
			if err != nil {
				return err
			}

			stt, err := transcription.NewClient(transcription.Config{
				Endpoint:   cfg.Transcription.Endpoint,
				APIKey:     cfg.Transcription.APIKey,
				Model:      cfg.Transcription.Model,
				Timeout:    time.Duration(cfg.Transcription.TimeoutSeconds) * time.Second,
				MaxRetries: cfg.Transcription.MaxRetries,
			}, log)
			if err != nil {
				return err
			}

			var llm completion.Provider
			if cfg.Dictation.AdaptTone {
				client, err := completion.NewClient(completion.Config{
					Endpoint:   cfg.Completion.Endpoint,
					APIKey:     cfg.Completion.APIKey,
					Model:      cfg.Completion.Model,
					Timeout:    time.Duration(cfg.Completion.TimeoutSeconds) * time.Second,
					MaxRetries: cfg.Completion.MaxRetries,
				}, log)
				if err != nil {
					return err
				}
				llm = client
			}

			application := app.New(app.Config{
				Capture:     capture,
				Transcriber: stt,
				Completer:   llm,
				Config:      cfg,
				Logger:      log,
			})
			defer application.Shutdown(context.Background())

			if contactName != "" {
				application.SetActiveContact(&contacts.Contact{
					Name:         contactName,
					Organization: contactOrg,
				})
			}

			if err := application.StartDictation(); err != nil {
				return err
			}
			waitForStop(duration)

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			result, err := application.StopDictation(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.Transcript)
			return nil
		},
	}

	cmd.Flags().DurationVarP(&duration, "duration", "d", 0, "recording length (0 = until Ctrl-C)")
	cmd.Flags().StringVar(&contactName, "contact", "", "active contact name for tone adaptation")
	cmd.Flags().StringVar(&contactOrg, "org", "", "active contact organization")
	return cmd
}

// waitForStop blocks for the given duration, or until SIGINT/SIGTERM
// when duration is zero.
func waitForStop(duration time.Duration) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if duration > 0 {
		select {
		case <-time.After(duration):
		case <-sigChan:
		}
		return
	}
	<-sigChan
}

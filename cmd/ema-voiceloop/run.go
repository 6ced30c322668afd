package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	orchestration "github.com/koscakluka/ema-voiceloop/core"
	"github.com/koscakluka/ema-voiceloop/core/audio"
	"github.com/koscakluka/ema-voiceloop/core/audio/miniaudio"
	"github.com/koscakluka/ema-voiceloop/core/audio/portaudio"
	"github.com/koscakluka/ema-voiceloop/core/events"
	deepgramstt "github.com/koscakluka/ema-voiceloop/core/speechtotext/deepgram"
	deepgramtts "github.com/koscakluka/ema-voiceloop/core/texttospeech/deepgram"
	"github.com/koscakluka/ema-voiceloop/internal/config"
	"github.com/koscakluka/ema-voiceloop/internal/logging"
	"github.com/koscakluka/ema-voiceloop/internal/tui"
	"golang.org/x/sync/errgroup"
)

func loadConfig(flags rootFlags) (config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return config.Config{}, err
	}

	if flags.language != "" {
		cfg.Language = flags.language
	}
	if flags.voice != "" {
		cfg.Voice = flags.voice
	}
	if flags.capture != "" {
		cfg.Capture = flags.capture
	}
	if err := cfg.Normalize(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func run(ctx context.Context, flags rootFlags) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	log, logCloser, err := logging.Open(flags.logFile, flags.logLevel)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	interval, err := cfg.SampleInterval()
	if err != nil {
		return err
	}

	output, err := miniaudio.NewClient()
	if err != nil {
		return fmt.Errorf("failed to open audio devices: %w", err)
	}
	defer output.Close()

	capture, closeCapture, err := openCapture(cfg, output)
	if err != nil {
		return err
	}
	defer closeCapture()

	opts := []orchestration.OrchestratorOption{
		orchestration.WithLanguage(cfg.Language),
		orchestration.WithVoice(cfg.Voice),
		orchestration.WithGreeting(cfg.Greeting),
		orchestration.WithLevelSampleInterval(interval),
	}
	if capture != nil {
		opts = append(opts, orchestration.WithAudioCapture(capture))
	}

	if cfg.APIKey() == "" {
		log.Warn().Str("env", config.APIKeyEnv).Msg("No API key set, speech recognition and synthesis are disabled")
	} else {
		if capture != nil {
			recognizerOpts := []deepgramstt.RecognizerOption{
				deepgramstt.WithAPIKey(cfg.APIKey()),
				deepgramstt.WithModel(cfg.Deepgram.Model),
			}
			if cfg.Deepgram.ListenURL != "" {
				recognizerOpts = append(recognizerOpts, deepgramstt.WithEndpoint(cfg.Deepgram.ListenURL))
			}
			opts = append(opts, orchestration.WithSpeechRecognizer(deepgramstt.NewRecognizer(capture, recognizerOpts...)))
		}

		ttsOpts := []deepgramtts.TextToSpeechOption{deepgramtts.WithAPIKey(cfg.APIKey())}
		if cfg.Deepgram.SpeakURL != "" {
			ttsOpts = append(ttsOpts, deepgramtts.WithEndpoint(cfg.Deepgram.SpeakURL))
		}
		synthesizer, err := deepgramtts.NewTextToSpeechClient(output, ttsOpts...)
		if err != nil {
			return fmt.Errorf("failed to create speech synthesizer: %w", err)
		}
		opts = append(opts, orchestration.WithSpeechSynthesizer(synthesizer))
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	orchestrator := orchestration.NewOrchestrator(opts...)

	updates := make(chan struct{}, 1)
	orchestrator.Orchestrate(ctx,
		orchestration.WithEventCallback(func(event events.Event) {
			if event.Kind() != events.KindCaptureLevelUpdated {
				log.Debug().Str("event", string(event.Kind())).Msg("Orchestrator event")
			}
			select {
			case updates <- struct{}{}:
			default:
			}
		}),
		orchestration.WithTurnFailedCallback(func(reason string) {
			log.Warn().Str("reason", reason).Msg("Listening turn failed")
		}),
	)

	program := tea.NewProgram(
		tui.New(orchestrator, updates, cfg.Languages),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	eg, groupCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		defer cancel()
		if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("terminal UI failed: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		<-groupCtx.Done()
		orchestrator.Close()
		log.Info().Msg("Orchestrator closed")
		return nil
	})

	return eg.Wait()
}

// openCapture returns the configured microphone, or nil when capture is
// disabled. The miniaudio client doubles as the capture device.
func openCapture(cfg config.Config, output *miniaudio.Client) (audio.Capture, func(), error) {
	switch cfg.Capture {
	case config.CaptureNone:
		return nil, func() {}, nil
	case config.CapturePortaudio:
		client, err := portaudio.NewClient(cfg.CaptureBufferSize)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open portaudio capture: %w", err)
		}
		return client, client.Close, nil
	default:
		return output, func() {}, nil
	}
}

// Package config loads the settings of the ema-voiceloop command.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/invopop/jsonschema"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

const (
	CaptureMiniaudio = "miniaudio"
	CapturePortaudio = "portaudio"
	CaptureNone      = "none"

	APIKeyEnv = "DEEPGRAM_API_KEY"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Language  string   `yaml:"language" json:"language" jsonschema:"description=BCP 47 tag used for recognition and voice selection,default=en-US"`
	Languages []string `yaml:"languages" json:"languages" jsonschema:"description=Languages cycled through from the terminal UI"`
	Voice     string   `yaml:"voice,omitempty" json:"voice,omitempty" jsonschema:"description=Voice name; empty picks the first voice of the language"`
	Greeting  string   `yaml:"greeting" json:"greeting" jsonschema:"description=First assistant message; empty starts with an empty conversation"`

	Capture             string `yaml:"capture" json:"capture" jsonschema:"enum=miniaudio,enum=portaudio,enum=none,default=miniaudio"`
	CaptureBufferSize   int    `yaml:"capture_buffer_size" json:"capture_buffer_size" jsonschema:"description=PortAudio frames per buffer,minimum=64,default=1024"`
	LevelSampleInterval string `yaml:"level_sample_interval" json:"level_sample_interval" jsonschema:"description=Microphone level sampling period,default=16ms"`

	Deepgram Deepgram `yaml:"deepgram" json:"deepgram"`

	// apiKey is only ever read from the environment.
	apiKey string
}

type Deepgram struct {
	Model     string `yaml:"model" json:"model" jsonschema:"description=Listen model,default=nova-3"`
	ListenURL string `yaml:"listen_url,omitempty" json:"listen_url,omitempty" jsonschema:"description=Override of the streaming listen endpoint"`
	SpeakURL  string `yaml:"speak_url,omitempty" json:"speak_url,omitempty" jsonschema:"description=Override of the speak endpoint"`
}

func Default() Config {
	return Config{
		Language:            "en-US",
		Languages:           []string{"en-US", "en-GB", "de-DE", "fr-FR", "es-ES"},
		Greeting:            "Hi! I'm your voice assistant. Start listening and speak to get started.",
		Capture:             CaptureMiniaudio,
		CaptureBufferSize:   1024,
		LevelSampleInterval: "16ms",
		Deepgram:            Deepgram{Model: "nova-3"},
	}
}

// Load reads path over the defaults. An empty path loads the defaults only.
// Keys missing from the file keep their default value.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.apiKey = os.Getenv(APIKeyEnv)
	if err := cfg.Normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Normalize validates the config and canonicalizes its language tags. The
// selected language is always part of Languages.
func (c *Config) Normalize() error {
	tag, err := canonicalLanguage(c.Language)
	if err != nil {
		return err
	}
	c.Language = tag

	languages := make([]string, 0, len(c.Languages)+1)
	for _, l := range c.Languages {
		tag, err := canonicalLanguage(l)
		if err != nil {
			return err
		}
		if !slices.Contains(languages, tag) {
			languages = append(languages, tag)
		}
	}
	if !slices.Contains(languages, c.Language) {
		languages = append([]string{c.Language}, languages...)
	}
	c.Languages = languages

	switch c.Capture {
	case CaptureMiniaudio, CapturePortaudio, CaptureNone:
	case "":
		c.Capture = CaptureMiniaudio
	default:
		return fmt.Errorf("%w: unknown capture backend %q", ErrInvalidConfig, c.Capture)
	}

	if c.CaptureBufferSize < 64 {
		return fmt.Errorf("%w: capture_buffer_size must be at least 64, got %d", ErrInvalidConfig, c.CaptureBufferSize)
	}

	if _, err := c.SampleInterval(); err != nil {
		return err
	}
	return nil
}

// SampleInterval parses LevelSampleInterval.
func (c Config) SampleInterval() (time.Duration, error) {
	interval, err := time.ParseDuration(c.LevelSampleInterval)
	if err != nil {
		return 0, fmt.Errorf("%w: level_sample_interval: %w", ErrInvalidConfig, err)
	}
	if interval <= 0 {
		return 0, fmt.Errorf("%w: level_sample_interval must be positive, got %s", ErrInvalidConfig, interval)
	}
	return interval, nil
}

func (c Config) APIKey() string { return c.apiKey }

func (c Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Schema returns the JSON Schema of the config file.
func Schema() ([]byte, error) {
	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect(&Config{})
	schema.Title = "ema-voiceloop config"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config schema: %w", err)
	}
	return data, nil
}

func canonicalLanguage(tag string) (string, error) {
	parsed, err := language.Parse(tag)
	if err != nil {
		return "", fmt.Errorf("%w: language %q: %w", ErrInvalidConfig, tag, err)
	}
	return parsed.String(), nil
}

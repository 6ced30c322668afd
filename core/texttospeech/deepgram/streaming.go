package deepgram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/koscakluka/ema-voiceloop/core/audio"
	"github.com/koscakluka/ema-voiceloop/core/texttospeech"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const readChunkSize = 4096

// Speak cancels the utterance in flight and starts synthesizing text in the
// background. Callbacks report the utterance's progress; exactly one of the
// end and error callbacks is called.
func (c *TextToSpeechClient) Speak(ctx context.Context, text string, opts ...texttospeech.UtteranceOption) error {
	options := texttospeech.NewUtteranceOptions(opts...)
	if options.Rate != 1 || options.Pitch != 1 {
		logger.Debug("deepgram ignores rate and pitch", "rate", options.Rate, "pitch", options.Pitch)
	}

	_ = c.Cancel()

	utteranceCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.mu.Lock()
	c.cancelCurrent = cancel
	c.mu.Unlock()

	go func() {
		defer cancel()
		if err := c.speak(utteranceCtx, text, c.resolveVoice(options), options); err != nil {
			if ctxErr := utteranceCtx.Err(); ctxErr != nil {
				err = ctxErr
			}
			options.ErrorCallback(err)
			return
		}
		options.EndCallback()
	}()

	return nil
}

func (c *TextToSpeechClient) speak(ctx context.Context, text, voice string, options texttospeech.UtteranceOptions) (err error) {
	ctx, span := tracer.Start(ctx, "synthesize speech")
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()
	span.SetAttributes(
		attribute.String("request.model", voice),
		attribute.Int("request.text_length", len(text)),
	)

	encoding := c.output.EncodingInfo()
	requestURL, err := buildSpeakURL(c.endpoint, voice, encoding)
	if err != nil {
		return err
	}

	body, err := json.Marshal(struct {
		Text string `json:"text"`
	}{Text: text})
	if err != nil {
		return fmt.Errorf("error marshalling JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("error creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		message, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("deepgram speak returned %s: %s", resp.Status, bytes.TrimSpace(message))
	}

	if err := c.play(ctx, resp.Body, encoding, options.StartCallback); err != nil {
		return err
	}

	if err := c.output.AwaitMark(ctx); err != nil {
		return fmt.Errorf("failed waiting for playback: %w", err)
	}
	// A cancelled utterance has its buffer cleared, which also releases the
	// mark.
	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}

// play streams the response body to the output, keeping frames aligned to
// whole samples. onStart fires with the first frame.
func (c *TextToSpeechClient) play(ctx context.Context, body io.Reader, encoding audio.EncodingInfo, onStart func()) error {
	sampleSize := max(encoding.Format.ByteSize(), 1)
	buf := make([]byte, readChunkSize)
	var carry []byte
	started := false

	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			if err := ctx.Err(); err != nil {
				return err
			}

			frame := append(carry, buf[:n]...)
			aligned := len(frame) - len(frame)%sampleSize
			carry = append([]byte(nil), frame[aligned:]...)
			frame = frame[:aligned]

			if len(frame) > 0 {
				if !started {
					started = true
					onStart()
				}
				if err := c.output.SendAudio(frame); err != nil {
					return fmt.Errorf("failed to send audio to output: %w", err)
				}
			}
		}

		if errors.Is(readErr, io.EOF) {
			return nil
		} else if readErr != nil {
			return fmt.Errorf("failed to read speech audio: %w", readErr)
		}
	}
}

func buildSpeakURL(endpoint, voice string, encoding audio.EncodingInfo) (string, error) {
	speakURL, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("failed to parse speak endpoint: %w", err)
	}

	queryParams := speakURL.Query()
	queryParams.Set("model", voice)
	queryParams.Set("encoding", encoding.Format.Name())
	queryParams.Set("sample_rate", strconv.Itoa(encoding.SampleRate))
	queryParams.Set("container", "none")

	speakURL.RawQuery = queryParams.Encode()
	return speakURL.String(), nil
}

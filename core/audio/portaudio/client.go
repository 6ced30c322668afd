package portaudio

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/koscakluka/ema-voiceloop/core/audio"
)

// Client captures microphone audio through the default PortAudio input
// device and shares it between any number of streams.
type Client struct {
	bufferSize int
	stream     *portaudio.Stream
	in         []int16

	fanout *audio.Fanout

	mu      sync.Mutex
	stopped chan struct{}
	done    chan struct{}
}

func NewClient(bufferSize int) (*Client, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}

	in := make([]int16, bufferSize)
	stream, err := portaudio.OpenDefaultStream(audio.DefaultChannels, 0, audio.DefaultSampleRate, bufferSize, in)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("failed to open PortAudio stream: %w: %w", audio.ErrNoDevice, err)
	}

	client := &Client{
		bufferSize: bufferSize,
		stream:     stream,
		in:         in,
	}
	client.fanout = audio.NewFanout(client.EncodingInfo(), client.startCapture, client.stopCapture)
	return client, nil
}

// RequestStream opens a new stream on the shared input device.
func (c *Client) RequestStream(ctx context.Context) (*audio.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return c.fanout.Open()
}

func (c *Client) startCapture() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done != nil {
		return nil
	}

	if err := c.stream.Start(); err != nil {
		return fmt.Errorf("failed to start PortAudio stream: %w", err)
	}

	c.stopped = make(chan struct{})
	c.done = make(chan struct{})
	go c.captureLoop(c.stopped, c.done)
	return nil
}

func (c *Client) captureLoop(stopped <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case <-stopped:
			return
		default:
		}

		if err := c.stream.Read(); err != nil {
			logger.Warn("failed to read from PortAudio stream", "error", err)
			continue
		}

		frame := make([]byte, 0, len(c.in)*2)
		for _, sample := range c.in {
			frame = binary.LittleEndian.AppendUint16(frame, uint16(sample))
		}
		c.fanout.Push(frame)
	}
}

func (c *Client) stopCapture() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done == nil {
		return nil
	}

	close(c.stopped)
	<-c.done
	c.stopped, c.done = nil, nil

	if err := c.stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop PortAudio stream: %w", err)
	}
	return nil
}

func (c *Client) Close() {
	_ = c.fanout.Close()
	_ = c.stream.Close()
	_ = portaudio.Terminate()
}

func (c *Client) EncodingInfo() audio.EncodingInfo {
	return audio.EncodingInfo{
		SampleRate: audio.DefaultSampleRate,
		Format:     audio.EncodingLinear16,
	}
}

package audio

import (
	"encoding/binary"
	"math"
	"sync"
)

// DefaultFFTSize is the analysis window used by the level meter.
const DefaultFFTSize = 512

// Analyser keeps the most recent window of a stream's waveform as unsigned
// bytes centred on 128, the representation browsers expose through
// AnalyserNode.getByteTimeDomainData.
type Analyser struct {
	fftSize int

	mu     sync.Mutex
	window []byte
	next   int

	unlisten func()
}

// NewAnalyser attaches to stream and starts collecting samples. Only
// linear16 streams produce samples; other encodings leave the window silent.
func NewAnalyser(stream *Stream, fftSize int) *Analyser {
	if fftSize <= 0 {
		fftSize = DefaultFFTSize
	}

	a := &Analyser{fftSize: fftSize, window: make([]byte, fftSize)}
	for i := range a.window {
		a.window[i] = 128
	}

	if stream != nil && stream.EncodingInfo().Format == EncodingLinear16 {
		a.unlisten = stream.Listen(a.write)
	} else {
		a.unlisten = func() {}
	}
	return a
}

func (a *Analyser) FFTSize() int { return a.fftSize }

// FrequencyBinCount is half the FFT size, as in the Web Audio API.
func (a *Analyser) FrequencyBinCount() int { return a.fftSize / 2 }

// ByteTimeDomainData copies the most recent len(dst) samples into dst,
// oldest first. At most FFTSize samples are copied.
func (a *Analyser) ByteTimeDomainData(dst []byte) {
	n := min(len(dst), a.fftSize)

	a.mu.Lock()
	defer a.mu.Unlock()

	start := a.next - n
	for i := range n {
		dst[i] = a.window[(start+i+a.fftSize)%a.fftSize]
	}
}

// Close detaches the analyser from its stream.
func (a *Analyser) Close() {
	a.unlisten()
}

func (a *Analyser) write(frame []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := 0; i+1 < len(frame); i += 2 {
		sample := int16(binary.LittleEndian.Uint16(frame[i:]))
		a.window[a.next] = sampleToByte(sample)
		a.next = (a.next + 1) % a.fftSize
	}
}

func sampleToByte(sample int16) byte {
	scaled := math.Floor(128 * (1 + float64(sample)/32768))
	return byte(max(0, min(255, scaled)))
}

// RMS returns the root-mean-square amplitude of byte time-domain samples,
// normalized so a full-scale waveform approaches 1.
func RMS(samples []byte) float64 {
	if len(samples) == 0 {
		return 0
	}

	sum := 0.0
	for _, sample := range samples {
		v := (float64(sample) - 128) / 128
		sum += v * v
	}

	return max(0, min(1, math.Sqrt(sum/float64(len(samples)))))
}

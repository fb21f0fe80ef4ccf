// Package audio turns request audio into the chunked, resampled waveforms
// fed to ASR backends, and renders synthesized waveforms for TTS responses.
package audio

import "time"

// Buffer is decoded PCM audio. Samples are interleaved float32 in [-1, 1].
type Buffer struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// Frames returns the number of sample frames.
func (b *Buffer) Frames() int {
	if b.Channels <= 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// Duration returns the play length of the buffer.
func (b *Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(b.Frames()) / float64(b.SampleRate) * float64(time.Second))
}

// Chunk is a contiguous, speech-bearing span of a mono buffer. Start and
// End are offsets in seconds from the beginning of the source.
type Chunk struct {
	Samples []float32
	Start   float64
	End     float64
}

// Duration returns the chunk length in seconds.
func (c Chunk) Duration() float64 {
	return c.End - c.Start
}

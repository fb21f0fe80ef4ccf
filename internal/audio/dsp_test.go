package audio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(freq float64, rate int, seconds float64, amp float32) []float32 {
	n := int(seconds * float64(rate))
	out := make([]float32, n)
	for i := range out {
		out[i] = amp * float32(math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return out
}

func TestResample_SameRateIsIdentity(t *testing.T) {
	in := sine(440, 16000, 0.5, 0.8)

	out := Resample(in, 16000, 16000)

	assert.Equal(t, in, out)
	out[0] = 42
	assert.NotEqual(t, in[0], out[0], "resample must not alias its input")
}

func TestResample_Length(t *testing.T) {
	in := sine(440, 48000, 1, 0.5)

	assert.Len(t, Resample(in, 48000, 16000), 16000)
	assert.Len(t, Resample(in, 48000, 22050), 22050)
	assert.Empty(t, Resample(nil, 48000, 16000))
}

func TestResample_PreservesDC(t *testing.T) {
	in := make([]float32, 4800)
	for i := range in {
		in[i] = 0.25
	}

	out := Resample(in, 48000, 16000)

	for _, s := range out[100 : len(out)-100] {
		assert.InDelta(t, 0.25, s, 1e-3)
	}
}

func TestResample_PreservesLowTone(t *testing.T) {
	const freq = 200.0
	in := sine(freq, 22050, 1, 0.5)
	want := sine(freq, 16000, 1, 0.5)

	out := Resample(in, 22050, 16000)
	require.Len(t, out, len(want))

	for i := 200; i < len(out)-200; i += 97 {
		assert.InDelta(t, want[i], out[i], 0.02, "sample %d", i)
	}
}

func TestMono(t *testing.T) {
	stereo := &Buffer{Samples: []float32{1, 0, 0.5, 0.5, -1, 1}, SampleRate: 8000, Channels: 2}

	m := Mono(stereo)

	assert.Equal(t, 1, m.Channels)
	assert.Equal(t, 8000, m.SampleRate)
	assert.Equal(t, []float32{0.5, 0.5, 0}, m.Samples)

	mono := &Buffer{Samples: []float32{0.1}, SampleRate: 8000, Channels: 1}
	assert.Same(t, mono, Mono(mono))
}

func TestEqualize(t *testing.T) {
	s := []float32{0.1, -0.5, 0.25}
	Equalize(s, 1)
	assert.InDeltaSlice(t, []float32{0.2, -1, 0.5}, s, 1e-6)

	silent := []float32{0, 0}
	Equalize(silent, 0.95)
	assert.Equal(t, []float32{0, 0}, silent)
}

func TestDequantize(t *testing.T) {
	s := []float32{1.5, -2, 0.3, float32(math.NaN())}
	Dequantize(s)
	assert.Equal(t, []float32{1, -1, 0.3, 0}, s)
}

func TestBuffer_Duration(t *testing.T) {
	b := &Buffer{Samples: make([]float32, 32000), SampleRate: 16000, Channels: 2}
	assert.Equal(t, 16000, b.Frames())
	assert.InDelta(t, 1.0, b.Duration().Seconds(), 1e-9)
}

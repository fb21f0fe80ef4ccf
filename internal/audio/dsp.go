package audio

import "math"

// Mono averages the channels of b into a single channel. A mono buffer is
// returned as is.
func Mono(b *Buffer) *Buffer {
	if b.Channels <= 1 {
		return b
	}

	frames := b.Frames()
	out := make([]float32, frames)
	for i := range frames {
		var sum float32
		for ch := range b.Channels {
			sum += b.Samples[i*b.Channels+ch]
		}
		out[i] = sum / float32(b.Channels)
	}

	return &Buffer{Samples: out, SampleRate: b.SampleRate, Channels: 1}
}

// sincHalfWidth is the number of zero crossings on each side of the
// interpolation kernel.
const sincHalfWidth = 16

// Resample converts mono samples from one rate to another with a
// Hann-windowed sinc interpolator. When downsampling the kernel cutoff is
// lowered to the target Nyquist frequency. Equal rates return a copy.
func Resample(samples []float32, from, to int) []float32 {
	if from == to || len(samples) == 0 {
		return append([]float32(nil), samples...)
	}

	ratio := float64(to) / float64(from)
	cutoff := math.Min(1, ratio)
	width := float64(sincHalfWidth) / cutoff

	n := int(math.Round(float64(len(samples)) * ratio))
	out := make([]float32, n)

	for i := range out {
		center := float64(i) / ratio
		lo := max(int(math.Ceil(center-width)), 0)
		hi := min(int(math.Floor(center+width)), len(samples)-1)

		var acc, norm float64
		for j := lo; j <= hi; j++ {
			x := float64(j) - center
			w := cutoff * sinc(cutoff*x) * hann(x/width)
			acc += w * float64(samples[j])
			norm += w
		}

		if norm != 0 {
			out[i] = float32(acc / norm)
		}
	}

	return out
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

// hann is the Hann window over [-1, 1].
func hann(x float64) float64 {
	if x <= -1 || x >= 1 {
		return 0
	}
	return 0.5 * (1 + math.Cos(math.Pi*x))
}

// Equalize scales samples in place so the absolute peak equals target.
// Silent input is left untouched.
func Equalize(samples []float32, target float64) {
	var peak float32
	for _, s := range samples {
		if a := float32(math.Abs(float64(s))); a > peak {
			peak = a
		}
	}

	if peak == 0 {
		return
	}

	gain := float32(target) / peak
	for i := range samples {
		samples[i] *= gain
	}
}

// Dequantize clamps samples in place to [-1, 1] and replaces NaN with silence.
func Dequantize(samples []float32) {
	for i, s := range samples {
		switch {
		case math.IsNaN(float64(s)):
			samples[i] = 0
		case s > 1:
			samples[i] = 1
		case s < -1:
			samples[i] = -1
		}
	}
}

package audio

import (
	"fmt"
	"strings"
)

// Segment is a piece of transcribed text with its position in the source audio.
type Segment struct {
	Text  string
	Start float64
	End   float64
}

// SRT renders segments as SubRip subtitles.
func SRT(segments []Segment) string {
	var b strings.Builder
	for i, s := range segments {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", i+1, timestamp(s.Start, ','), timestamp(s.End, ','), strings.TrimSpace(s.Text))
	}
	return b.String()
}

// WebVTT renders segments as WebVTT subtitles.
func WebVTT(segments []Segment) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for _, s := range segments {
		fmt.Fprintf(&b, "%s --> %s\n%s\n\n", timestamp(s.Start, '.'), timestamp(s.End, '.'), strings.TrimSpace(s.Text))
	}
	return b.String()
}

// Transcript joins segment texts with single spaces.
func Transcript(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		parts = append(parts, strings.TrimSpace(s.Text))
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// timestamp formats seconds as HH:MM:SS followed by sep and milliseconds.
func timestamp(seconds float64, sep byte) string {
	ms := int64(seconds*1000 + 0.5)
	if ms < 0 {
		ms = 0
	}

	h := ms / 3_600_000
	m := ms / 60_000 % 60
	s := ms / 1000 % 60
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", h, m, s, sep, ms%1000)
}

package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var testSegments = []Segment{
	{Text: " hello world ", Start: 0.9, End: 7.25},
	{Text: "second line", Start: 3661.5, End: 3668},
}

func TestSRT(t *testing.T) {
	want := "1\n00:00:00,900 --> 00:00:07,250\nhello world\n\n" +
		"2\n01:01:01,500 --> 01:01:08,000\nsecond line\n\n"

	assert.Equal(t, want, SRT(testSegments))
}

func TestWebVTT(t *testing.T) {
	want := "WEBVTT\n\n" +
		"00:00:00.900 --> 00:00:07.250\nhello world\n\n" +
		"01:01:01.500 --> 01:01:08.000\nsecond line\n\n"

	assert.Equal(t, want, WebVTT(testSegments))
}

func TestTranscript(t *testing.T) {
	assert.Equal(t, "hello world second line", Transcript(testSegments))
	assert.Equal(t, "", Transcript(nil))
}

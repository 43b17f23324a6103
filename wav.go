package waveio

import (
	"math"
	"time"
)

// FramesFromDuration returns the number of whole frames that fit in dur at
// the given sample rate.
func FramesFromDuration(dur time.Duration, sampleRate int) int {
	if sampleRate == 0 {
		return 0
	}

	return int(math.Floor(dur.Seconds() * math.Abs(float64(sampleRate))))
}

// FramesDuration returns the playing time of n frames.
func FramesDuration(n, sampleRate int) time.Duration {
	if sampleRate == 0 {
		return 0
	}

	return time.Duration(float64(n) / math.Abs(float64(sampleRate)) * float64(time.Second))
}

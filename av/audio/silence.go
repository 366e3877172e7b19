package audio

import (
	"github.com/sirupsen/logrus"
)

// windowFrames is the number of 20ms frames in one detection window
// (150 * 20ms = 3 seconds).
const windowFrames = 150

// speakPower is the running-sum threshold that separates speech from
// silence across one detection window. Only samples greater than 1000
// contribute to the sum (see SilenceDetector.Send) — this is a documented
// quirk of the reference detector, not a bug to be fixed: negative-
// amplitude speech contributes zero.
const speakPower = 1950000

// SpeechCallback is invoked on a Speak/Silent mode transition.
type SpeechCallback func(speaking bool)

// SilenceDetector measures speech energy over fixed, non-overlapping 3-second windows of
// 20ms PCM frames and reports Speak/Silent transitions.
//
// The detector is deliberately stateless across windows: counters reset at
// the end of every window regardless of the outcome, so a loud frame late
// in one window has no influence on the next.
type SilenceDetector struct {
	onChange SpeechCallback

	framesSeen int
	sum        int64
	speaking   bool
}

// NewSilenceDetector constructs a detector that invokes onChange whenever
// the accumulated energy crosses the threshold and changes the current
// speak/silent mode. onChange may be nil.
func NewSilenceDetector(onChange SpeechCallback) *SilenceDetector {
	return &SilenceDetector{onChange: onChange}
}

// Send feeds one 20ms frame of signed 16-bit PCM samples into the
// detector's current window. Only samples with value greater than 1000
// contribute to the running sum.
func (d *SilenceDetector) Send(samples []int16) {
	for _, s := range samples {
		if s > 1000 {
			d.sum += int64(s)
		}
	}
	d.framesSeen++

	if d.framesSeen < windowFrames {
		return
	}

	speaking := d.sum >= speakPower
	if speaking != d.speaking {
		d.speaking = speaking
		logrus.WithFields(logrus.Fields{
			"function": "SilenceDetector.Send",
			"speaking": speaking,
			"sum":      d.sum,
		}).Debug("speech mode changed")
		if d.onChange != nil {
			d.onChange(speaking)
		}
	}

	d.framesSeen = 0
	d.sum = 0
}

// Speaking reports the detector's current mode.
func (d *SilenceDetector) Speaking() bool {
	return d.speaking
}

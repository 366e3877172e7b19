package audio

import "testing"

func frameOf(value int16) []int16 {
	frame := make([]int16, 320) // 20ms at 16kHz
	for i := range frame {
		frame[i] = value
	}
	return frame
}

func TestSilenceDetectorStaysSilentOnZeroFrames(t *testing.T) {
	var transitions int
	d := NewSilenceDetector(func(speaking bool) { transitions++ })

	for i := 0; i < windowFrames; i++ {
		d.Send(frameOf(0))
	}

	if transitions != 0 {
		t.Fatalf("expected no transitions for silence, got %d", transitions)
	}
	if d.Speaking() {
		t.Fatal("expected detector to remain in silent mode")
	}
}

func TestSilenceDetectorEmitsOneSpeakTransition(t *testing.T) {
	var calls []bool
	d := NewSilenceDetector(func(speaking bool) { calls = append(calls, speaking) })

	for i := 0; i < windowFrames; i++ {
		d.Send(frameOf(0))
	}
	for i := 0; i < windowFrames; i++ {
		d.Send(frameOf(2000))
	}

	if len(calls) != 1 || !calls[0] {
		t.Fatalf("expected exactly one Speak transition, got %v", calls)
	}
	if !d.Speaking() {
		t.Fatal("expected detector to be in speaking mode")
	}
}

func TestSilenceDetectorIgnoresNegativeAmplitude(t *testing.T) {
	var transitions int
	d := NewSilenceDetector(func(speaking bool) { transitions++ })

	for i := 0; i < windowFrames; i++ {
		d.Send(frameOf(-20000))
	}

	if transitions != 0 {
		t.Fatalf("negative-amplitude samples must not contribute to the sum, got %d transitions", transitions)
	}
}

func TestSilenceDetectorResetsWindowRegardlessOfOutcome(t *testing.T) {
	d := NewSilenceDetector(nil)

	for i := 0; i < windowFrames; i++ {
		d.Send(frameOf(2000))
	}
	if !d.Speaking() {
		t.Fatal("expected speaking after loud window")
	}

	// A single silent frame must not carry over partial energy from the
	// previous window.
	d.Send(frameOf(0))
	if d.sum != 0 {
		t.Fatalf("expected window sum reset, got %d", d.sum)
	}
}

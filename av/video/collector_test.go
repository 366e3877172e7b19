package video

import (
	"testing"

	"github.com/opd-ai/toxcore/av/rtp"
	"github.com/opd-ai/toxcore/transport"
)

func fragmentBytes(t *testing.T, seq uint16, ts, ssrc uint32, marker bool, flag byte, payload []byte) []byte {
	t.Helper()
	tagged := append([]byte{flag}, payload...)
	pkt := &rtp.Packet{SequenceNumber: seq, Timestamp: ts, SSRC: ssrc, Marker: marker, PayloadType: rtp.VideoPayloadType, Payload: tagged}
	data, err := pkt.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	return data
}

func TestCollectorReassemblesMultiChunkFrame(t *testing.T) {
	var got []byte
	var gotTS uint32
	c := NewCollector(func(frame []byte, ts uint32) {
		got = frame
		gotTS = ts
	}, nil)

	c.Send(&transport.Packet{Data: fragmentBytes(t, 1, 9000, 42, false, flagStart, []byte{1, 2})}, nil)
	c.Send(&transport.Packet{Data: fragmentBytes(t, 2, 9000, 42, false, flagMiddle, []byte{3, 4})}, nil)
	c.Send(&transport.Packet{Data: fragmentBytes(t, 3, 9000, 42, true, flagEnd, []byte{5, 6})}, nil)

	want := []byte{1, 2, 3, 4, 5, 6}
	if string(got) != string(want) {
		t.Fatalf("reassembled frame = %v, want %v", got, want)
	}
	if gotTS != 9000 {
		t.Fatalf("timestamp = %d, want 9000", gotTS)
	}
}

func TestCollectorSingleChunkFrame(t *testing.T) {
	var got []byte
	c := NewCollector(func(frame []byte, ts uint32) { got = frame }, nil)

	c.Send(&transport.Packet{Data: fragmentBytes(t, 1, 1000, 1, true, flagSingle, []byte{9, 9})}, nil)

	if string(got) != string([]byte{9, 9}) {
		t.Fatalf("got %v, want [9 9]", got)
	}
}

func TestCollectorDiscardsOnSequenceDiscontinuity(t *testing.T) {
	var delivered int
	var lostAt uint16
	c := NewCollector(
		func(frame []byte, ts uint32) { delivered++ },
		func(lastSeq uint16) { lostAt = lastSeq },
	)

	c.Send(&transport.Packet{Data: fragmentBytes(t, 1, 1000, 1, false, flagStart, []byte{1})}, nil)
	// Skip seq 2: a discontinuity before the end tag.
	c.Send(&transport.Packet{Data: fragmentBytes(t, 3, 1000, 1, true, flagEnd, []byte{2})}, nil)

	if delivered != 0 {
		t.Fatalf("expected no frame delivered after a mid-frame gap, got %d", delivered)
	}
	if lostAt != 1 {
		t.Fatalf("expected packet loss callback reporting last good seq 1, got %d", lostAt)
	}
}

func TestCollectorSuppressesDuplicateFrame(t *testing.T) {
	var delivered int
	c := NewCollector(func(frame []byte, ts uint32) { delivered++ }, nil)

	send := func(seq uint16) {
		c.Send(&transport.Packet{Data: fragmentBytes(t, seq, 1000, 1, true, flagSingle, []byte{7, 7, 7})}, nil)
	}
	send(1)
	send(2)

	if delivered != 1 {
		t.Fatalf("expected duplicate back-to-back frame suppressed, delivered count = %d", delivered)
	}
}

func TestCollectorResetsOnSSRCChange(t *testing.T) {
	var frames [][]byte
	c := NewCollector(func(frame []byte, ts uint32) { frames = append(frames, frame) }, nil)

	c.Send(&transport.Packet{Data: fragmentBytes(t, 1, 1000, 1, false, flagStart, []byte{1})}, nil)
	// A different SSRC mid-frame must reset collector state rather than merge buffers.
	c.Send(&transport.Packet{Data: fragmentBytes(t, 1, 2000, 2, true, flagSingle, []byte{9})}, nil)

	if len(frames) != 1 || string(frames[0]) != string([]byte{9}) {
		t.Fatalf("expected only the new-SSRC frame delivered, got %v", frames)
	}
}

package jitter

import (
	"testing"
	"time"

	"github.com/opd-ai/toxcore/av/rtp"
	"github.com/opd-ai/toxcore/transport"
)

func packetBytes(t *testing.T, seq uint16, ts uint32, payload []byte) []byte {
	t.Helper()
	pkt := &rtp.Packet{SequenceNumber: seq, Timestamp: ts, SSRC: 1, PayloadType: rtp.AudioPayloadType, Payload: payload}
	data, err := pkt.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	return data
}

func TestBufferDormantSendIsNoOp(t *testing.T) {
	b := NewBuffer(ModeAudio, 20*time.Millisecond)
	if err := b.Send(&transport.Packet{Data: packetBytes(t, 1, 960, []byte{1})}, nil); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if b.Len() != 0 {
		t.Fatalf("expected Dormant buffer to drop packets, got len %d", b.Len())
	}
}

func TestBufferOrdersOutOfOrderPackets(t *testing.T) {
	b := NewBuffer(ModeAudio, 20*time.Millisecond)
	b.Start()
	defer b.Stop()

	// Force reserveCount down to 1 so GetFrame can drain immediately.
	b.reserveCount = 1

	seqs := []uint16{3, 1, 2}
	for _, s := range seqs {
		if err := b.Send(&transport.Packet{Data: packetBytes(t, s, uint32(s)*960, []byte{byte(s)})}, nil); err != nil {
			t.Fatalf("Send(%d) error = %v", s, err)
		}
	}

	var got []uint16
	for {
		pkt, ok := b.GetFrame()
		if !ok {
			break
		}
		got = append(got, pkt.SequenceNumber)
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 frames delivered, got %d: %v", len(got), got)
	}
	for i := 1; i < len(got); i++ {
		if got[i] <= got[i-1] {
			t.Fatalf("frames not delivered in increasing sequence order: %v", got)
		}
	}
}

func TestBufferDropsLatePacket(t *testing.T) {
	b := NewBuffer(ModeAudio, 20*time.Millisecond)
	b.Start()
	defer b.Stop()
	b.reserveCount = 1

	b.Send(&transport.Packet{Data: packetBytes(t, 5, 4800, nil)}, nil)
	b.GetFrame() // advances prevSeq to 5

	if err := b.Send(&transport.Packet{Data: packetBytes(t, 3, 2880, nil)}, nil); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if b.Len() != 0 {
		t.Fatalf("expected late packet (seq 3 after seq 5) to be dropped, buffer has %d entries", b.Len())
	}
}

func TestBufferSynthesizesFillerOnSingleGapForAudio(t *testing.T) {
	b := NewBuffer(ModeAudio, 20*time.Millisecond)
	b.Start()
	defer b.Stop()
	b.reserveCount = 1

	b.Send(&transport.Packet{Data: packetBytes(t, 10, 9600, []byte{1})}, nil)
	b.GetFrame()

	if err := b.Send(&transport.Packet{Data: packetBytes(t, 12, 11520, []byte{2})}, nil); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	first, ok := b.GetFrame()
	if !ok {
		t.Fatal("expected a synthesized filler frame")
	}
	if first.SequenceNumber != 11 {
		t.Fatalf("expected synthesized sequence 11, got %d", first.SequenceNumber)
	}
	if first.Payload != nil {
		t.Fatalf("expected synthesized filler to carry no payload, got %v", first.Payload)
	}

	second, ok := b.GetFrame()
	if !ok || second.SequenceNumber != 12 {
		t.Fatalf("expected real frame 12 after filler, got %+v ok=%v", second, ok)
	}
}

// TestBufferSynthesizesFillerAcrossBatchedSends feeds every packet before
// draining at all, the way the network thread and the pump goroutine
// actually run: Send is never interleaved with GetFrame. The gap at
// sequence 13 must still be recognized when draining happens.
func TestBufferSynthesizesFillerAcrossBatchedSends(t *testing.T) {
	b := NewBuffer(ModeAudio, 20*time.Millisecond)
	b.Start()
	defer b.Stop()
	b.reserveCount = 1

	for _, s := range []uint16{10, 12, 11, 14} {
		if err := b.Send(&transport.Packet{Data: packetBytes(t, s, uint32(s)*960, []byte{byte(s)})}, nil); err != nil {
			t.Fatalf("Send(%d) error = %v", s, err)
		}
	}

	var gotSeq []uint16
	var gotPayload [][]byte
	for {
		pkt, ok := b.GetFrame()
		if !ok {
			break
		}
		gotSeq = append(gotSeq, pkt.SequenceNumber)
		gotPayload = append(gotPayload, pkt.Payload)
	}

	wantSeq := []uint16{10, 11, 12, 13, 14}
	if len(gotSeq) != len(wantSeq) {
		t.Fatalf("expected delivery %v, got %v", wantSeq, gotSeq)
	}
	for i, s := range wantSeq {
		if gotSeq[i] != s {
			t.Fatalf("expected delivery %v, got %v", wantSeq, gotSeq)
		}
	}
	if gotPayload[3] != nil {
		t.Fatalf("expected synthesized filler at index 3 (seq 13) to carry no payload, got %v", gotPayload[3])
	}
}

func TestBufferReserveCountClampedForVideo(t *testing.T) {
	b := NewBuffer(ModeVideo, 33*time.Millisecond)
	if rc := b.ReserveCount(); rc < 1 || rc > 12 {
		t.Fatalf("video reserveCount %d out of [1,12] range", rc)
	}
}

func TestBufferReserveCountClampedForAudio(t *testing.T) {
	b := NewBuffer(ModeAudio, 20*time.Millisecond)
	if rc := b.ReserveCount(); rc < 2 || rc > 25 {
		t.Fatalf("audio reserveCount %d out of [2,25] range", rc)
	}
}

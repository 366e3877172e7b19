package video

import (
	"testing"

	"github.com/opd-ai/toxcore/av/rtp"
	"github.com/opd-ai/toxcore/transport"
)

type recordingSink struct {
	packets []*transport.Packet
}

func (r *recordingSink) Send(packet *transport.Packet, _ *transport.Address) error {
	r.packets = append(r.packets, packet)
	return nil
}

func newTestSequencer(t *testing.T) *rtp.Sequencer {
	t.Helper()
	seq, err := rtp.NewSequencer(rtp.DefaultSSRCProvider{})
	if err != nil {
		t.Fatalf("NewSequencer() error = %v", err)
	}
	return seq
}

func TestSplitterSingleChunkFrame(t *testing.T) {
	sink := &recordingSink{}
	s := NewSplitter(newTestSequencer(t))
	s.SetDownstream(sink)

	frame := []byte{1, 2, 3, 4}
	if err := s.Send(&transport.Packet{Data: frame}, nil); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if len(sink.packets) != 1 {
		t.Fatalf("expected 1 fragment for a small frame, got %d", len(sink.packets))
	}

	pkt := &rtp.Packet{}
	if err := pkt.Unmarshal(sink.packets[0].Data); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if pkt.Payload[0] != flagSingle {
		t.Fatalf("expected single-chunk flag 0x%02x, got 0x%02x", flagSingle, pkt.Payload[0])
	}
	if !pkt.Marker {
		t.Fatal("expected marker bit set on single-chunk frame")
	}
}

func TestSplitterMultiChunkFrame(t *testing.T) {
	sink := &recordingSink{}
	s := NewSplitter(newTestSequencer(t))
	s.SetDownstream(sink)

	frame := make([]byte, MaxChunkSize*2+10)
	for i := range frame {
		frame[i] = byte(i)
	}

	if err := s.Send(&transport.Packet{Data: frame}, nil); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if len(sink.packets) != 3 {
		t.Fatalf("expected 3 fragments, got %d", len(sink.packets))
	}

	var flags []byte
	var markers []bool
	var timestamp uint32
	var seqs []uint16
	for i, p := range sink.packets {
		pkt := &rtp.Packet{}
		if err := pkt.Unmarshal(p.Data); err != nil {
			t.Fatalf("Unmarshal(%d) error = %v", i, err)
		}
		flags = append(flags, pkt.Payload[0])
		markers = append(markers, pkt.Marker)
		seqs = append(seqs, pkt.SequenceNumber)
		if i == 0 {
			timestamp = pkt.Timestamp
		} else if pkt.Timestamp != timestamp {
			t.Fatalf("timestamp changed across fragments: %d != %d", pkt.Timestamp, timestamp)
		}
	}

	if flags[0] != flagStart || flags[1] != flagMiddle || flags[2] != flagEnd {
		t.Fatalf("unexpected flag sequence: %v", flags)
	}
	if markers[0] || markers[1] || !markers[2] {
		t.Fatalf("unexpected marker sequence: %v", markers)
	}
	for i := 1; i < len(seqs); i++ {
		if seqs[i] != seqs[i-1]+1 {
			t.Fatalf("sequence numbers not contiguous: %v", seqs)
		}
	}
}

// TestSplitterDoesNotBurnSequenceNumbersBetweenFrames guards against the
// timestamp peek consuming a sequence number no fragment ever carries: the
// collector treats any gap in SequenceNumber as a mid-frame loss, so the
// first fragment of frame N+1 must follow the last fragment of frame N by
// exactly one.
func TestSplitterDoesNotBurnSequenceNumbersBetweenFrames(t *testing.T) {
	sink := &recordingSink{}
	s := NewSplitter(newTestSequencer(t))
	s.SetDownstream(sink)

	if err := s.Send(&transport.Packet{Data: []byte{1, 2, 3}}, nil); err != nil {
		t.Fatalf("Send(1) error = %v", err)
	}
	if err := s.Send(&transport.Packet{Data: []byte{4, 5, 6}}, nil); err != nil {
		t.Fatalf("Send(2) error = %v", err)
	}

	if len(sink.packets) != 2 {
		t.Fatalf("expected 2 fragments total, got %d", len(sink.packets))
	}

	var first, second rtp.Packet
	if err := first.Unmarshal(sink.packets[0].Data); err != nil {
		t.Fatalf("Unmarshal(first) error = %v", err)
	}
	if err := second.Unmarshal(sink.packets[1].Data); err != nil {
		t.Fatalf("Unmarshal(second) error = %v", err)
	}

	if second.SequenceNumber != first.SequenceNumber+1 {
		t.Fatalf("expected second frame's fragment to follow the first by exactly one sequence number, got %d then %d", first.SequenceNumber, second.SequenceNumber)
	}
}

func TestSplitterRejectsEmptyFrame(t *testing.T) {
	sink := &recordingSink{}
	s := NewSplitter(newTestSequencer(t))
	s.SetDownstream(sink)

	if err := s.Send(&transport.Packet{Data: nil}, nil); err == nil {
		t.Fatal("expected error splitting an empty frame")
	}
}

package rtp

import "testing"

func TestPacketMarshalUnmarshalRoundTrip(t *testing.T) {
	original := &Packet{
		SequenceNumber: 42,
		Timestamp:      960,
		SSRC:           0xdeadbeef,
		Marker:         true,
		PayloadType:    AudioPayloadType,
		Payload:        []byte{1, 2, 3, 4, 5},
	}

	data, err := original.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	parsed := &Packet{}
	if err := parsed.Unmarshal(data); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if parsed.SequenceNumber != original.SequenceNumber ||
		parsed.Timestamp != original.Timestamp ||
		parsed.SSRC != original.SSRC ||
		parsed.Marker != original.Marker ||
		parsed.PayloadType != original.PayloadType {
		t.Fatalf("round trip mismatch: got %+v, want %+v", parsed, original)
	}
	if string(parsed.Payload) != string(original.Payload) {
		t.Fatalf("payload mismatch: got %v, want %v", parsed.Payload, original.Payload)
	}
}

func TestSequencerAdvances(t *testing.T) {
	seq, err := NewSequencer(DefaultSSRCProvider{})
	if err != nil {
		t.Fatalf("NewSequencer() error = %v", err)
	}

	firstSeq, firstTS := seq.Next(960)
	secondSeq, secondTS := seq.Next(960)

	if secondSeq != firstSeq+1 {
		t.Fatalf("sequence number did not advance by 1: %d -> %d", firstSeq, secondSeq)
	}
	if secondTS != firstTS+960 {
		t.Fatalf("timestamp did not advance by sample count: %d -> %d", firstTS, secondTS)
	}
}

func TestDefaultSSRCProviderGeneratesNonZero(t *testing.T) {
	var provider DefaultSSRCProvider
	seen := make(map[uint32]bool)
	for i := 0; i < 8; i++ {
		ssrc, err := provider.GenerateSSRC()
		if err != nil {
			t.Fatalf("GenerateSSRC() error = %v", err)
		}
		seen[ssrc] = true
	}
	if len(seen) < 2 {
		t.Fatalf("expected distinct SSRCs across calls, got %v", seen)
	}
}

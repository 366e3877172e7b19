package transport

import (
	"bytes"
	"testing"
)

func TestPacketSerializeRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		packet  *Packet
		wantErr bool
	}{
		{name: "valid packet", packet: &Packet{Data: []byte{1, 2, 3, 4}}, wantErr: false},
		{name: "empty data", packet: &Packet{Data: []byte{}}, wantErr: false},
		{name: "nil data", packet: &Packet{Data: nil}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.packet.Serialize()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Serialize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			parsed, err := ParsePacket(data)
			if len(tt.packet.Data) == 0 {
				// Zero-length datagrams are rejected by ParsePacket.
				if err == nil {
					t.Fatalf("ParsePacket() on empty datagram: expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePacket() error = %v", err)
			}
			if !bytes.Equal(parsed.Data, tt.packet.Data) {
				t.Fatalf("round trip mismatch: got %v, want %v", parsed.Data, tt.packet.Data)
			}
		})
	}
}

func TestParsePacketRejectsEmpty(t *testing.T) {
	if _, err := ParsePacket(nil); err == nil {
		t.Fatal("expected error parsing empty datagram")
	}
}

// This file defines the wire packet envelope and the single-method pipeline
// sink interface that every stage of the media pipeline (socket, crypto,
// jitter buffer, codec) implements to pass data to its downstream neighbour.
package transport

import "errors"

// Packet is the envelope carried between pipeline nodes. Data holds an
// already-framed RTP datagram (or, for the signalling transport, a raw
// WebSocket text frame); the envelope itself never reinterprets it, so
// encryption and jitter buffering can operate on it without knowing the
// media type it ultimately decodes to.
type Packet struct {
	Data []byte
}

// Serialize returns the wire bytes for this packet. The envelope carries
// no framing of its own: RTP packets are already self-describing via their
// header, so serialization is a straight copy.
func (p *Packet) Serialize() ([]byte, error) {
	if p.Data == nil {
		return nil, errors.New("transport: packet data is nil")
	}
	out := make([]byte, len(p.Data))
	copy(out, p.Data)
	return out, nil
}

// ParsePacket wraps raw datagram bytes received off the wire into a Packet.
func ParsePacket(data []byte) (*Packet, error) {
	if len(data) == 0 {
		return nil, errors.New("transport: empty datagram")
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return &Packet{Data: buf}, nil
}

// Sink is the single-method interface every pipeline stage implements:
// socket, encryptor/decryptor, jitter buffer, splitter/collector, and codec
// all look identical from their upstream neighbour's point of view. addr is
// nil for stages that don't need (or don't yet know) a destination, such as
// an RTP depacketizer handing a frame to a jitter buffer.
//
// This collapses what the reference implementation expresses as an
// inheritance hierarchy into one interface with no class hierarchy behind
// it: each concrete stage is free to ignore addr entirely.
type Sink interface {
	Send(packet *Packet, addr *Address) error
}

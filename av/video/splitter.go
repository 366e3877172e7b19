// This file implements the VP8 frame splitter: it divides one encoded VP8
// frame into MTU-sized RTP packets using a single in-payload flag byte per
// chunk rather than the standard VP8 RTP payload descriptor (RFC 7741).
// This matches the wire format this pipeline actually speaks, not the IETF
// one: a reader porting this from another VP8 implementation should not
// "fix" the flag scheme below.
package video

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/toxcore/av/rtp"
	"github.com/opd-ai/toxcore/transport"
)

// MaxChunkSize is the largest payload carried in a single fragment,
// chosen so the wire datagram (including RTP and lower-layer overhead)
// stays under a typical 576-byte path MTU.
const MaxChunkSize = 509

const (
	flagStart  byte = 0x10
	flagMiddle byte = 0x00
	flagEnd    byte = 0x20
	flagSingle byte = 0x30
)

// Splitter fragments one encoded VP8 frame across one or more RTP packets
// and forwards each fragment to its downstream sink.
type Splitter struct {
	downstream transport.Sink
	sequencer  *rtp.Sequencer
}

// NewSplitter constructs a Splitter writing packets under the given
// sequence/SSRC stream.
func NewSplitter(sequencer *rtp.Sequencer) *Splitter {
	return &Splitter{sequencer: sequencer}
}

// SetDownstream sets the sink that receives fragment packets.
func (s *Splitter) SetDownstream(sink transport.Sink) {
	s.downstream = sink
}

// Reset clears no internal state today (the splitter is stateless between
// frames beyond its sequence counter) but exists to mirror the
// reset-on-SSRC-change contract the collector honours on the receive side.
func (s *Splitter) Reset() {}

// Send fragments one encoded VP8 frame (packet.Data) into chunks of at
// most MaxChunkSize bytes and emits one RTP packet per chunk to the
// downstream sink, tagging each with the appropriate flag byte and RTP
// marker bit. timestamp is shared by every fragment of the frame.
func (s *Splitter) Send(packet *transport.Packet, addr *transport.Address) error {
	if s.downstream == nil {
		return nil
	}
	frame := packet.Data
	if len(frame) == 0 {
		return fmt.Errorf("video: cannot split empty frame")
	}

	ssrc := s.sequencer.SSRC

	chunks := chunk(frame, MaxChunkSize)
	var timestamp uint32
	for i, payload := range chunks {
		seq, ts := s.sequencer.Next(0)
		if i == 0 {
			timestamp = ts
		}
		var flag byte
		marker := false
		switch {
		case len(chunks) == 1:
			flag, marker = flagSingle, true
		case i == 0:
			flag, marker = flagStart, false
		case i == len(chunks)-1:
			flag, marker = flagEnd, true
		default:
			flag, marker = flagMiddle, false
		}

		tagged := make([]byte, 1+len(payload))
		tagged[0] = flag
		copy(tagged[1:], payload)

		rtpPkt := &rtp.Packet{
			SequenceNumber: seq,
			Timestamp:      timestamp,
			SSRC:           ssrc,
			Marker:         marker,
			PayloadType:    rtp.VideoPayloadType,
			Payload:        tagged,
		}
		data, err := rtpPkt.Marshal()
		if err != nil {
			return fmt.Errorf("video: marshal fragment: %w", err)
		}

		logrus.WithFields(logrus.Fields{
			"function": "Splitter.Send",
			"seq":      seq,
			"flag":     fmt.Sprintf("0x%02x", flag),
			"marker":   marker,
			"bytes":    len(payload),
		}).Trace("emitted VP8 fragment")

		if err := s.downstream.Send(&transport.Packet{Data: data}, addr); err != nil {
			return err
		}
	}
	return nil
}

func chunk(data []byte, size int) [][]byte {
	var chunks [][]byte
	for len(data) > 0 {
		n := size
		if n > len(data) {
			n = len(data)
		}
		chunks = append(chunks, data[:n])
		data = data[n:]
	}
	if len(chunks) == 0 {
		chunks = append(chunks, nil)
	}
	return chunks
}

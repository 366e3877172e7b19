package video

import (
	"hash/crc32"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/toxcore/av/rtp"
	"github.com/opd-ai/toxcore/transport"
)

// FrameCallback receives a fully reassembled VP8 frame.
type FrameCallback func(frame []byte, timestamp uint32)

// PacketLossCallback is invoked when the collector detects it cannot
// reassemble the current frame (any sequence discontinuity) so the
// caller can request a key frame from the remote encoder.
type PacketLossCallback func(lastReceivedSeq uint16)

// Collector reassembles VP8 fragments produced by a Splitter back into
// whole frames. It implements transport.Sink so it can sit directly
// downstream of a jitter buffer or decryptor.
//
// Grounded on the reference collector's field layout: a growing buffer, the
// RTP timestamp of the current frame, the sequence number of the last
// fragment accepted, and the CRC32 of the last
// delivered frame for duplicate suppression.
type Collector struct {
	onFrame      FrameCallback
	onPacketLoss PacketLossCallback

	buffer []byte

	hasLastSeq bool
	lastSeq    uint16

	inFrame        bool
	currentFrameTS uint32

	hasLastCRC32 bool
	lastCRC32    uint32

	hasSSRC bool
	ssrc    uint32
}

// NewCollector constructs a Collector that invokes onFrame with each
// distinct reassembled frame. onPacketLoss may be nil.
func NewCollector(onFrame FrameCallback, onPacketLoss PacketLossCallback) *Collector {
	return &Collector{onFrame: onFrame, onPacketLoss: onPacketLoss}
}

// Reset discards any partially reassembled frame and forgets sequence and
// CRC32 state. Send calls it itself when the incoming SSRC changes.
func (c *Collector) Reset() {
	c.buffer = nil
	c.hasLastSeq = false
	c.inFrame = false
	c.hasLastCRC32 = false
	c.hasSSRC = false
}

// SetDownstream exists so Collector satisfies transport.Socket-adjacent
// wiring patterns used elsewhere in the pipeline; Collector's real output is
// onFrame, not a further transport.Sink, so this is a no-op.
func (c *Collector) SetDownstream(transport.Sink) {}

// Send accepts one RTP fragment and folds it into the frame under
// reassembly, invoking onFrame once a complete, non-duplicate frame has
// been received.
func (c *Collector) Send(packet *transport.Packet, _ *transport.Address) error {
	pkt := &rtp.Packet{}
	if err := pkt.Unmarshal(packet.Data); err != nil {
		logrus.WithFields(logrus.Fields{"function": "Collector.Send", "error": err}).Trace("dropping unparseable fragment")
		return nil
	}
	if len(pkt.Payload) == 0 {
		return nil
	}

	if c.hasSSRC && pkt.SSRC != c.ssrc {
		c.Reset()
	}
	c.hasSSRC = true
	c.ssrc = pkt.SSRC

	flag := pkt.Payload[0] & 0x30
	payload := pkt.Payload[1:]

	if c.hasLastSeq && pkt.SequenceNumber != c.lastSeq+1 {
		// Sequence discontinuity: the in-progress frame cannot be completed.
		// Only a start (or single-chunk) tag may begin a new frame here;
		// anything else is dropped until the stream resynchronizes.
		c.inFrame = false
		c.buffer = nil
		if c.onPacketLoss != nil {
			c.onPacketLoss(c.lastSeq)
		}
	}
	c.hasLastSeq = true
	c.lastSeq = pkt.SequenceNumber

	switch flag {
	case flagStart:
		c.buffer = append([]byte(nil), payload...)
		c.inFrame = true
		c.currentFrameTS = pkt.Timestamp
		return nil
	case flagSingle:
		c.buffer = append([]byte(nil), payload...)
		c.inFrame = true
		c.currentFrameTS = pkt.Timestamp
		c.deliver()
		return nil
	case flagMiddle:
		if !c.inFrame {
			return nil
		}
		c.buffer = append(c.buffer, payload...)
		return nil
	case flagEnd:
		if !c.inFrame {
			return nil
		}
		c.buffer = append(c.buffer, payload...)
		c.deliver()
		return nil
	}
	return nil
}

// deliver finalizes the buffered frame, suppresses an exact duplicate of
// the previously delivered frame via CRC32 comparison, and invokes onFrame.
func (c *Collector) deliver() {
	defer func() {
		c.inFrame = false
		c.buffer = nil
	}()

	sum := crc32.ChecksumIEEE(c.buffer)
	if c.hasLastCRC32 && sum == c.lastCRC32 {
		logrus.WithFields(logrus.Fields{"function": "Collector.deliver", "crc32": sum}).Trace("dropping duplicate frame")
		return
	}
	c.hasLastCRC32 = true
	c.lastCRC32 = sum

	if c.onFrame != nil {
		frame := make([]byte, len(c.buffer))
		copy(frame, c.buffer)
		c.onFrame(frame, c.currentFrameTS)
	}
}

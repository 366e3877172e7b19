package session

import (
	"github.com/opd-ai/toxcore/av/rtp"
)

// keyFrameRequestPayloadType marks an out-of-band, zero-payload RTP packet
// asking the remote video encoder to force its next frame to a key frame.
// It rides the same socket and crypto path as ordinary video RTP so it is
// encrypted like any other packet, but it is diverted before the jitter
// buffer and collector rather than being folded into a reassembled frame.
//
// This implements the "pair of one-way edges" loss-recovery contract
// (av/video.Processor's SetKeyFrameCallback / ForceKeyFrame): the local
// collector's onPacketLoss callback builds one of these and sends it to the
// peer; the peer's receive pipeline recognizes it and calls its own
// encoder's ForceKeyFrame directly, without going through the signalling
// channel.
const keyFrameRequestPayloadType uint8 = 126

// buildKeyFrameRequest encodes a key-frame-request packet, advancing seq's
// sequence counter like any other outgoing packet on the stream.
func buildKeyFrameRequest(seq *rtp.Sequencer) ([]byte, error) {
	s, ts := seq.Next(0)
	pkt := &rtp.Packet{
		SequenceNumber: s,
		Timestamp:      ts,
		SSRC:           seq.SSRC,
		PayloadType:    keyFrameRequestPayloadType,
	}
	return pkt.Marshal()
}

// isKeyFrameRequest reports whether data is a key-frame-request packet
// rather than an ordinary video fragment.
func isKeyFrameRequest(data []byte) bool {
	pkt := &rtp.Packet{}
	if err := pkt.Unmarshal(data); err != nil {
		return false
	}
	return pkt.PayloadType == keyFrameRequestPayloadType
}

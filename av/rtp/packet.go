// Package rtp implements the bit-exact RTP packet model shared by the audio
// and video chains: marshal/parse via github.com/pion/rtp, and the
// deterministic-testing seams (TimeProvider, SSRCProvider) used throughout
// the pipeline.
package rtp

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/pion/rtp"
	"github.com/sirupsen/logrus"
)

// AudioPayloadType and VideoPayloadType are the fixed RTP payload type
// numbers used on the wire; this pipeline does not negotiate codecs.
const (
	AudioPayloadType uint8 = 111
	VideoPayloadType uint8 = 96
)

// TimeProvider abstracts time operations for deterministic testing.
type TimeProvider interface {
	Now() time.Time
}

// DefaultTimeProvider uses the standard time package.
type DefaultTimeProvider struct{}

// Now returns the current time.
func (DefaultTimeProvider) Now() time.Time { return time.Now() }

// SSRCProvider abstracts SSRC generation for deterministic testing.
type SSRCProvider interface {
	GenerateSSRC() (uint32, error)
}

// DefaultSSRCProvider uses crypto/rand for secure SSRC generation.
type DefaultSSRCProvider struct{}

// GenerateSSRC generates a cryptographically random SSRC.
func (DefaultSSRCProvider) GenerateSSRC() (uint32, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return 0, fmt.Errorf("rtp: generate SSRC: %w", err)
	}
	return binary.BigEndian.Uint32(b), nil
}

// Packet wraps pion/rtp's Header and Payload to present exactly the fields
// the pipeline needs (sequence, timestamp, SSRC, marker, payload) without
// forcing every node to import pion/rtp directly.
type Packet struct {
	SequenceNumber uint16
	Timestamp      uint32
	SSRC           uint32
	Marker         bool
	PayloadType    uint8
	Payload        []byte
}

// Marshal serializes the packet into wire-format RTP bytes.
func (p *Packet) Marshal() ([]byte, error) {
	pkt := &rtp.Packet{
		Header: rtp.Header{
			Version:        2,
			Marker:         p.Marker,
			PayloadType:    p.PayloadType,
			SequenceNumber: p.SequenceNumber,
			Timestamp:      p.Timestamp,
			SSRC:           p.SSRC,
		},
		Payload: p.Payload,
	}
	return pkt.Marshal()
}

// Unmarshal parses wire-format RTP bytes into the packet.
func (p *Packet) Unmarshal(data []byte) error {
	pkt := &rtp.Packet{}
	if err := pkt.Unmarshal(data); err != nil {
		return fmt.Errorf("rtp: unmarshal: %w", err)
	}
	p.SequenceNumber = pkt.SequenceNumber
	p.Timestamp = pkt.Timestamp
	p.SSRC = pkt.SSRC
	p.Marker = pkt.Marker
	p.PayloadType = pkt.PayloadType
	p.Payload = pkt.Payload
	return nil
}

// Sequencer tracks the monotonically increasing sequence number and
// timestamp for one outgoing SSRC stream; encoders hold one each.
type Sequencer struct {
	SSRC           uint32
	sequenceNumber uint16
	timestamp      uint32
}

// NewSequencer creates a Sequencer with a freshly generated SSRC.
func NewSequencer(ssrcProvider SSRCProvider) (*Sequencer, error) {
	if ssrcProvider == nil {
		ssrcProvider = DefaultSSRCProvider{}
	}
	ssrc, err := ssrcProvider.GenerateSSRC()
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"function": "NewSequencer", "ssrc": ssrc}).Debug("allocated SSRC for outgoing stream")
	return &Sequencer{SSRC: ssrc}, nil
}

// Next returns the sequence number and timestamp for the next packet and
// advances both; timestamp advances by sampleCount (audio samples, or the
// capture clock rate divided by fps for video).
func (s *Sequencer) Next(sampleCount uint32) (seq uint16, ts uint32) {
	seq, ts = s.sequenceNumber, s.timestamp
	s.sequenceNumber++
	s.timestamp += sampleCount
	return seq, ts
}

// Package audio provides audio codec integration for ToxAV.
//
// This file implements codec-specific functionality: an Opus encoder and
// decoder wrapping gopkg.in/hraban/opus.v2's CGo binding, hidden behind
// the Encoder interface so the rest of the processing pipeline depends on
// this module's own type, not directly on the Opus binding.
package audio

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/hraban/opus.v2"
)

// OpusEncoder wraps an opus.v2 encoder behind the Encoder interface,
// supporting live bitrate and packet-loss-percentage reconfiguration.
type OpusEncoder struct {
	enc        *opus.Encoder
	sampleRate uint32
	channels   int
}

// NewOpusEncoder constructs an encoder for the given sample rate and
// channel count, targeting VoIP-tuned rate control.
func NewOpusEncoder(sampleRate uint32, channels int, bitRate uint32) (*OpusEncoder, error) {
	enc, err := opus.NewEncoder(int(sampleRate), channels, opus.AppVoIP)
	if err != nil {
		return nil, fmt.Errorf("create opus encoder: %w", err)
	}
	if err := enc.SetBitrate(int(bitRate)); err != nil {
		return nil, fmt.Errorf("set initial opus bitrate: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"function":    "NewOpusEncoder",
		"sample_rate": sampleRate,
		"channels":    channels,
		"bit_rate":    bitRate,
	}).Info("created opus encoder")
	return &OpusEncoder{enc: enc, sampleRate: sampleRate, channels: channels}, nil
}

// Encode converts a 20ms PCM frame to an Opus packet. sampleRate is
// informational only; the encoder was fixed at construction.
func (e *OpusEncoder) Encode(pcm []int16, sampleRate uint32) ([]byte, error) {
	out := make([]byte, 4000)
	n, err := e.enc.Encode(pcm, out)
	if err != nil {
		return nil, fmt.Errorf("opus encode: %w", err)
	}
	return out[:n], nil
}

// SetBitRate updates the target encoding bit rate live.
func (e *OpusEncoder) SetBitRate(bitRate uint32) error {
	if err := e.enc.SetBitrate(int(bitRate)); err != nil {
		return fmt.Errorf("opus set bitrate: %w", err)
	}
	return nil
}

// SetPacketLossPercent reconfigures Opus forward-error correction for the
// expected network loss rate.
func (e *OpusEncoder) SetPacketLossPercent(percent int) error {
	if err := e.enc.SetPacketLossPerc(percent); err != nil {
		return fmt.Errorf("opus set packet loss percent: %w", err)
	}
	return nil
}

// Close releases no CGo-owned resources beyond what the garbage collector
// reclaims; present to satisfy the Encoder interface.
func (e *OpusEncoder) Close() error { return nil }

// OpusDecoder wraps an opus.v2 decoder, adding the gap-of-1 PLC behaviour
// spec.md §4.2 requires: a missing frame between two received sequence
// numbers is concealed via Opus's own packet-loss concealment rather than
// silence.
type OpusDecoder struct {
	dec        *opus.Decoder
	sampleRate uint32
	channels   int
}

// NewOpusDecoder constructs a decoder for the given sample rate and
// channel count.
func NewOpusDecoder(sampleRate uint32, channels int) (*OpusDecoder, error) {
	dec, err := opus.NewDecoder(int(sampleRate), channels)
	if err != nil {
		return nil, fmt.Errorf("create opus decoder: %w", err)
	}
	return &OpusDecoder{dec: dec, sampleRate: sampleRate, channels: channels}, nil
}

// Decode decodes one Opus packet into PCM. A nil/empty data slice invokes
// PLC, producing concealment PCM for a lost frame.
func (d *OpusDecoder) Decode(data []byte) ([]int16, error) {
	pcm := make([]int16, 5760*d.channels) // 120ms at 48kHz, the largest Opus frame
	var n int
	var err error
	if len(data) == 0 {
		n, err = d.dec.Decode(nil, pcm)
	} else {
		n, err = d.dec.Decode(data, pcm)
	}
	if err != nil {
		return nil, fmt.Errorf("opus decode: %w", err)
	}
	return pcm[:n*d.channels], nil
}

// SampleRate reports the decoder's fixed output sample rate.
func (d *OpusDecoder) SampleRate() uint32 { return d.sampleRate }

// OpusCodec provides Opus-specific audio processing functionality.
//
// Wraps the generic audio processor with Opus-specific behavior including
// packet formatting and integration with the full encode/decode Opus
// binding.
type OpusCodec struct {
	processor *Processor
}

// NewOpusCodec creates a new Opus codec instance.
//
// Initializes the codec with a standard audio processor configured
// for Opus-compatible settings (48kHz sample rate, appropriate bit rates).
func NewOpusCodec() *OpusCodec {
	logrus.WithFields(logrus.Fields{
		"function": "NewOpusCodec",
	}).Info("Creating new Opus codec instance")

	processor := NewProcessor()
	codec := &OpusCodec{
		processor: processor,
	}

	logrus.WithFields(logrus.Fields{
		"function": "NewOpusCodec",
	}).Info("Opus codec created successfully")

	return codec
}

// EncodeFrame encodes a PCM audio frame using Opus.
func (c *OpusCodec) EncodeFrame(pcm []int16, sampleRate uint32) ([]byte, error) {
	logrus.WithFields(logrus.Fields{
		"function":     "OpusCodec.EncodeFrame",
		"sample_count": len(pcm),
		"sample_rate":  sampleRate,
	}).Debug("Encoding PCM audio frame with Opus codec")

	if c.processor == nil {
		return nil, fmt.Errorf("codec processor not initialized")
	}

	result, err := c.processor.ProcessOutgoing(pcm, sampleRate)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "OpusCodec.EncodeFrame",
			"error":    err.Error(),
		}).Error("Audio frame encoding failed")
		return nil, err
	}

	return result, nil
}

// DecodeFrame decodes an Opus audio frame to PCM format. An empty data
// slice is rejected with an error; PLC concealment for a missing frame is
// produced by Processor.ProcessConcealment.
func (c *OpusCodec) DecodeFrame(data []byte) ([]int16, uint32, error) {
	logrus.WithFields(logrus.Fields{
		"function":  "OpusCodec.DecodeFrame",
		"data_size": len(data),
	}).Debug("Decoding Opus audio frame to PCM")

	if c.processor == nil {
		return nil, 0, fmt.Errorf("codec processor not initialized")
	}

	pcm, sampleRate, err := c.processor.ProcessIncoming(data)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "OpusCodec.DecodeFrame",
			"error":    err.Error(),
		}).Error("Audio frame decoding failed")
		return nil, 0, err
	}

	return pcm, sampleRate, nil
}

// SetBitRate updates the codec bit rate.
func (c *OpusCodec) SetBitRate(bitRate uint32) error {
	if c.processor == nil {
		return fmt.Errorf("codec processor not initialized")
	}
	return c.processor.SetBitRate(bitRate)
}

// SetPacketLossPercent reconfigures the encoder's forward-error correction
// for the given expected network loss rate.
func (c *OpusCodec) SetPacketLossPercent(percent int) error {
	if c.processor == nil {
		return fmt.Errorf("codec processor not initialized")
	}
	return c.processor.SetPacketLossPercent(percent)
}

// GetSupportedSampleRates returns the sample rates supported by this codec.
func (c *OpusCodec) GetSupportedSampleRates() []uint32 {
	return []uint32{8000, 12000, 16000, 24000, 48000}
}

// GetSupportedBitRates returns the bit rates supported by this codec.
func (c *OpusCodec) GetSupportedBitRates() []uint32 {
	return []uint32{8000, 16000, 32000, 64000, 96000, 128000, 256000, 512000}
}

// ValidateFrameSize checks if the frame size is valid for Opus encoding.
//
// Opus requires specific frame durations: 2.5, 5, 10, 20, 40, or 60 ms.
func (c *OpusCodec) ValidateFrameSize(frameSize int, sampleRate uint32, channels int) error {
	frameDurationMs := float32(frameSize) / float32(channels) * 1000.0 / float32(sampleRate)

	validDurations := []float32{2.5, 5.0, 10.0, 20.0, 40.0, 60.0}
	for _, duration := range validDurations {
		if frameDurationMs == duration {
			return nil
		}
	}

	return fmt.Errorf("invalid Opus frame size: %d samples (%.2f ms) - must be 2.5, 5, 10, 20, 40, or 60 ms",
		frameSize, frameDurationMs)
}

// Close releases codec resources.
func (c *OpusCodec) Close() error {
	if c.processor != nil {
		return c.processor.Close()
	}
	return nil
}

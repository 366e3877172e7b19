// Package video provides video processing capabilities for ToxAV.
//
// This package handles video encoding, decoding, scaling, and effects
// processing for audio/video calls. It integrates with pure Go video
// libraries to provide VP8 codec support and video processing.
//
// The video processing pipeline:
//
//	YUV420 Input  → Scaling → Effects → VP8 Encoding
//	YUV420 Output ← VP8 Decoding
//
// RTP framing of the encoded frame (fragmentation into chunks, sequencing,
// and reassembly) is handled by the separate Splitter and Collector pipeline
// nodes, not by Processor — Processor's job ends at a complete encoded frame
// buffer in either direction.
//
// This package follows the same patterns as the audio package for consistency.
package video

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// keyFrameRequestInterval is the minimum spacing between successive
// force-key-frame requests raised by a single decoder or collector.
const keyFrameRequestInterval = 500 * time.Millisecond

// Encoder provides a simplified video encoder interface.
type Encoder interface {
	// Encode converts YUV420 frame to encoded video data
	Encode(frame *VideoFrame) ([]byte, error)
	// SetBitRate updates the target encoding bit rate
	SetBitRate(bitRate uint32) error
	// Close releases encoder resources
	Close() error
}

// SimpleVP8Encoder is a raw YUV420 passthrough encoder. It exists as a
// fallback when the real VP8 encoder cannot be constructed, and is useful
// for tests that want to exercise the pipeline without a VP8 bitstream.
type SimpleVP8Encoder struct {
	bitRate uint32
	width   uint16
	height  uint16
}

// NewSimpleVP8Encoder creates a new YUV420 passthrough encoder.
func NewSimpleVP8Encoder(width, height uint16, bitRate uint32) *SimpleVP8Encoder {
	logrus.WithFields(logrus.Fields{
		"function": "NewSimpleVP8Encoder",
		"width":    width,
		"height":   height,
		"bit_rate": bitRate,
	}).Info("Creating new passthrough video encoder")

	return &SimpleVP8Encoder{
		bitRate: bitRate,
		width:   width,
		height:  height,
	}
}

// Encode passes through YUV420 data, packed as [width:2][height:2][y][u][v].
func (e *SimpleVP8Encoder) Encode(frame *VideoFrame) ([]byte, error) {
	if frame.Width != e.width || frame.Height != e.height {
		return nil, fmt.Errorf("frame size mismatch: expected %dx%d, got %dx%d",
			e.width, e.height, frame.Width, frame.Height)
	}

	ySize := len(frame.Y)
	uSize := len(frame.U)
	vSize := len(frame.V)

	data := make([]byte, 4+ySize+uSize+vSize)
	data[0] = byte(frame.Width)
	data[1] = byte(frame.Width >> 8)
	data[2] = byte(frame.Height)
	data[3] = byte(frame.Height >> 8)

	offset := 4
	copy(data[offset:], frame.Y)
	offset += ySize
	copy(data[offset:], frame.U)
	offset += uSize
	copy(data[offset:], frame.V)

	return data, nil
}

// SetBitRate updates the target bit rate.
func (e *SimpleVP8Encoder) SetBitRate(bitRate uint32) error {
	e.bitRate = bitRate
	return nil
}

// Close releases encoder resources.
func (e *SimpleVP8Encoder) Close() error { return nil }

// decodeSimpleFrame reverses SimpleVP8Encoder's packing. Kept for the
// fallback decode path when the real VP8 decoder cannot parse a buffer
// produced by the passthrough encoder.
func decodeSimpleFrame(data []byte) (*VideoFrame, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("data too short: %d bytes", len(data))
	}

	width := uint16(data[0]) | uint16(data[1])<<8
	height := uint16(data[2]) | uint16(data[3])<<8

	ySize := int(width) * int(height)
	uvSize := ySize / 4

	expectedSize := 4 + ySize + uvSize + uvSize
	if len(data) != expectedSize {
		return nil, fmt.Errorf("invalid data size: expected %d, got %d", expectedSize, len(data))
	}

	frame := &VideoFrame{
		Width:   width,
		Height:  height,
		YStride: int(width),
		UStride: int(width) / 2,
		VStride: int(width) / 2,
		Y:       make([]byte, ySize),
		U:       make([]byte, uvSize),
		V:       make([]byte, uvSize),
	}

	offset := 4
	copy(frame.Y, data[offset:offset+ySize])
	offset += ySize
	copy(frame.U, data[offset:offset+uvSize])
	offset += uvSize
	copy(frame.V, data[offset:offset+uvSize])

	return frame, nil
}

// VideoFrame represents a video frame in YUV420 format.
type VideoFrame struct {
	Width   uint16
	Height  uint16
	Y       []byte // Luminance plane
	U       []byte // Chrominance U plane
	V       []byte // Chrominance V plane
	YStride int    // Stride for Y plane
	UStride int    // Stride for U plane
	VStride int    // Stride for V plane
}

// Processor manages the encode/decode half of the video pipeline: scaling,
// effects, and VP8 encoding/decoding. RTP framing lives in Splitter and
// Collector, which sit downstream and upstream of Processor respectively.
type Processor struct {
	mu      sync.Mutex
	encoder Encoder
	decoder *vp8Decoder
	scaler  *Scaler
	effects *EffectChain
	bitRate uint32
	width   uint16
	height  uint16

	sawKeyFrame      bool
	keyFrameLimiter  *rate.Limiter
	onKeyFrameNeeded PacketLossCallback
}

// NewProcessor creates a new video processor instance with standard
// settings suitable for video calling: 640x480 (VGA) at 512 kbps.
func NewProcessor() *Processor {
	return NewProcessorWithSettings(640, 480, 512000)
}

// NewProcessorWithSettings creates a processor with specific dimensions
// and bit rate. It attempts to construct a real VP8 encoder/decoder pair
// and falls back to the raw passthrough encoder if that fails.
func NewProcessorWithSettings(width, height uint16, bitRate uint32) *Processor {
	logrus.WithFields(logrus.Fields{
		"function": "NewProcessorWithSettings",
		"width":    width,
		"height":   height,
		"bit_rate": bitRate,
	}).Info("Creating new video processor")

	var enc Encoder
	vp8enc, err := newVP8Encoder(width, height, bitRate)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "NewProcessorWithSettings",
			"error":    err.Error(),
		}).Error("Failed to create vp8 encoder, falling back to raw passthrough")
		enc = NewSimpleVP8Encoder(width, height, bitRate)
	} else {
		enc = vp8enc
	}

	processor := &Processor{
		encoder:         enc,
		decoder:         newVP8Decoder(),
		scaler:          NewScaler(),
		effects:         NewEffectChain(),
		bitRate:         bitRate,
		width:           width,
		height:          height,
		keyFrameLimiter: rate.NewLimiter(rate.Every(keyFrameRequestInterval), 1),
	}

	logrus.WithFields(logrus.Fields{
		"function": "NewProcessorWithSettings",
		"width":    width,
		"height":   height,
		"bit_rate": bitRate,
	}).Info("Video processor created successfully")

	return processor
}

// SetKeyFrameCallback wires the edge that fires when the decode path
// determines a key frame is needed: a parse failure, or a non-key first
// frame after construction or a sequence-discontinuity Reset. Requests are
// rate-limited to once per keyFrameRequestInterval.
func (p *Processor) SetKeyFrameCallback(cb PacketLossCallback) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onKeyFrameNeeded = cb
}

// SetScreenContentMode toggles the encoder's screen-content rate-control
// tuning, used for slide/text-heavy sharing rather than camera video. A
// no-op on the passthrough fallback encoder.
func (p *Processor) SetScreenContentMode(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if enc, ok := p.encoder.(*vp8Encoder); ok {
		enc.SetScreenContentMode(enabled)
	}
}

// ForceKeyFrame marks the next encoded frame as a mandatory key frame,
// per the loss-recovery contract: set now, cleared after one frame is
// emitted. A no-op on the passthrough fallback encoder.
func (p *Processor) ForceKeyFrame() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if enc, ok := p.encoder.(*vp8Encoder); ok {
		enc.RequestKeyFrame()
	}
}

// ProcessOutgoing runs a raw frame through scaling, effects, and VP8
// encoding, returning the encoded frame buffer. RTP fragmentation of this
// buffer is the caller's responsibility (see Splitter).
func (p *Processor) ProcessOutgoing(frame *VideoFrame) ([]byte, error) {
	if err := p.validateFrame(frame); err != nil {
		return nil, err
	}

	processedFrame, err := p.applyScaling(frame)
	if err != nil {
		return nil, err
	}

	processedFrame, err = p.applyEffects(processedFrame)
	if err != nil {
		return nil, err
	}

	data, err := p.encoder.Encode(processedFrame)
	if err != nil {
		return nil, fmt.Errorf("encoding failed: %v", err)
	}

	return data, nil
}

// ProcessOutgoingLegacy is an alias for ProcessOutgoing kept for callers
// written against the pre-VP8-backend API.
func (p *Processor) ProcessOutgoingLegacy(frame *VideoFrame) ([]byte, error) {
	return p.ProcessOutgoing(frame)
}

// validateFrame validates that the video frame is properly formatted and
// contains valid data, per YUV420 format requirements.
func (p *Processor) validateFrame(frame *VideoFrame) error {
	if frame == nil {
		return fmt.Errorf("video frame cannot be nil")
	}

	if frame.Width == 0 || frame.Height == 0 {
		return fmt.Errorf("invalid frame dimensions: %dx%d", frame.Width, frame.Height)
	}

	expectedYSize := int(frame.Width) * int(frame.Height)
	expectedUVSize := int(frame.Width/2) * int(frame.Height/2)

	if len(frame.Y) < expectedYSize {
		return fmt.Errorf("Y plane too small: got %d, expected %d", len(frame.Y), expectedYSize)
	}
	if len(frame.U) < expectedUVSize {
		return fmt.Errorf("U plane too small: got %d, expected %d", len(frame.U), expectedUVSize)
	}
	if len(frame.V) < expectedUVSize {
		return fmt.Errorf("V plane too small: got %d, expected %d", len(frame.V), expectedUVSize)
	}

	return nil
}

// applyScaling scales the frame to the target resolution if required.
func (p *Processor) applyScaling(frame *VideoFrame) (*VideoFrame, error) {
	if !p.scaler.IsScalingRequired(frame.Width, frame.Height, p.width, p.height) {
		return frame, nil
	}

	scaledFrame, err := p.scaler.Scale(frame, p.width, p.height)
	if err != nil {
		return nil, fmt.Errorf("scaling failed: %v", err)
	}

	return scaledFrame, nil
}

// applyEffects applies the configured effects chain to the video frame.
func (p *Processor) applyEffects(frame *VideoFrame) (*VideoFrame, error) {
	if p.effects.GetEffectCount() == 0 {
		return frame, nil
	}

	effectFrame, err := p.effects.Apply(frame)
	if err != nil {
		return nil, fmt.Errorf("effects processing failed: %v", err)
	}

	return effectFrame, nil
}

// ProcessIncoming decodes a reassembled VP8 frame buffer back to a raw
// frame. lastReceivedSeq is threaded through from the collector purely so
// it can be forwarded to the key-frame-needed callback; Processor does not
// otherwise use it.
//
// Per the loss-recovery contract: a parse failure, or any frame before the
// first key frame has been seen, triggers the key-frame-needed callback
// (rate-limited) instead of returning a usable frame.
func (p *Processor) ProcessIncoming(data []byte, lastReceivedSeq uint16) (*VideoFrame, error) {
	frame, isKeyFrame, err := p.decodeFrameData(data)
	if err != nil {
		p.notifyKeyFrameNeeded(lastReceivedSeq)
		return nil, fmt.Errorf("frame decoding failed: %v", err)
	}

	p.mu.Lock()
	sawKeyFrame := p.sawKeyFrame
	if isKeyFrame {
		p.sawKeyFrame = true
	}
	p.mu.Unlock()

	if !sawKeyFrame && !isKeyFrame {
		p.notifyKeyFrameNeeded(lastReceivedSeq)
		return nil, fmt.Errorf("first frame after reset is not a key frame")
	}

	return frame, nil
}

// ProcessIncomingLegacy decodes a frame without the key-frame bookkeeping,
// kept for callers (and tests) written against the pre-VP8-backend API.
func (p *Processor) ProcessIncomingLegacy(data []byte) (*VideoFrame, error) {
	frame, _, err := p.decodeFrameData(data)
	return frame, err
}

// notifyKeyFrameNeeded forwards a key-frame request upstream, rate-limited
// to once per keyFrameRequestInterval.
func (p *Processor) notifyKeyFrameNeeded(lastReceivedSeq uint16) {
	p.mu.Lock()
	cb := p.onKeyFrameNeeded
	p.mu.Unlock()

	if cb == nil {
		return
	}
	if !p.keyFrameLimiter.Allow() {
		return
	}
	cb(lastReceivedSeq)
}

// Reset clears the first-key-frame bookkeeping, used when the collector
// detects a sequence discontinuity and discards its buffered frame.
func (p *Processor) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sawKeyFrame = false
}

// decodeFrameData decodes an encoded frame buffer, reporting whether it
// was a key frame. Falls back to the raw passthrough format if the VP8
// decoder cannot parse the buffer and the buffer is the right size for it
// — this lets tests exercise the pipeline without a VP8 bitstream.
func (p *Processor) decodeFrameData(data []byte) (*VideoFrame, bool, error) {
	if len(data) == 0 {
		return nil, false, fmt.Errorf("empty frame data")
	}

	if p.decoder != nil {
		frame, isKeyFrame, err := p.decoder.Decode(data)
		if err == nil {
			return frame, isKeyFrame, nil
		}
		if simpleFrame, simpleErr := decodeSimpleFrame(data); simpleErr == nil {
			return simpleFrame, true, nil
		}
		return nil, false, err
	}

	frame, err := decodeSimpleFrame(data)
	return frame, true, err
}

// SetBitRate updates the target bit rate for encoding.
func (p *Processor) SetBitRate(bitRate uint32) error {
	if bitRate == 0 {
		return fmt.Errorf("bitrate cannot be zero")
	}
	p.mu.Lock()
	p.bitRate = bitRate
	p.mu.Unlock()
	return p.encoder.SetBitRate(bitRate)
}

// Close releases all processor resources.
func (p *Processor) Close() error {
	return p.encoder.Close()
}

// GetBitRate returns the current bit rate setting.
func (p *Processor) GetBitRate() uint32 {
	return p.bitRate
}

// GetFrameSize returns the current frame dimensions.
func (p *Processor) GetFrameSize() (width, height uint16) {
	return p.width, p.height
}

// SetFrameSize updates the target frame dimensions, rebuilding the encoder.
func (p *Processor) SetFrameSize(width, height uint16) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("invalid dimensions: %dx%d", width, height)
	}

	p.mu.Lock()
	p.width = width
	p.height = height
	p.mu.Unlock()

	enc, err := newVP8Encoder(width, height, p.bitRate)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Processor.SetFrameSize",
			"error":    err.Error(),
		}).Error("Failed to rebuild vp8 encoder, falling back to raw passthrough")
		p.encoder = NewSimpleVP8Encoder(width, height, p.bitRate)
		return nil
	}
	p.encoder = enc

	return nil
}

// GetEffectChain returns the effect chain for modification.
func (p *Processor) GetEffectChain() *EffectChain {
	return p.effects
}

// GetScaler returns the scaler for configuration.
func (p *Processor) GetScaler() *Scaler {
	return p.scaler
}

// Package video provides video codec integration for ToxAV.
//
// This file wraps github.com/opd-ai/vp8's encoder/decoder behind the
// Encoder interface, translating the planar I420 VideoFrame representation
// this package uses into the image.YCbCr the codec operates on.
package video

import (
	"fmt"
	"image"

	"github.com/opd-ai/vp8"
)

// vp8Encoder is the default Encoder implementation, backed by a real VP8
// bitstream encoder rather than SimpleVP8Encoder's raw passthrough.
type vp8Encoder struct {
	enc           *vp8.Encoder
	width         uint16
	height        uint16
	bitRate       uint32
	screenContent bool
	forceKeyFrame bool
}

// newVP8Encoder constructs a VP8 encoder for the given dimensions and
// target bit rate.
func newVP8Encoder(width, height uint16, bitRate uint32) (*vp8Encoder, error) {
	enc, err := vp8.NewEncoder(int(width), int(height))
	if err != nil {
		return nil, fmt.Errorf("create vp8 encoder: %w", err)
	}
	if err := enc.SetBitrate(int(bitRate)); err != nil {
		return nil, fmt.Errorf("set vp8 bitrate: %w", err)
	}
	return &vp8Encoder{enc: enc, width: width, height: height, bitRate: bitRate}, nil
}

// Encode produces one VP8 frame payload from a planar I420 frame. A
// previously requested forced key frame is honored and then cleared.
func (e *vp8Encoder) Encode(frame *VideoFrame) ([]byte, error) {
	if frame.Width != e.width || frame.Height != e.height {
		return nil, fmt.Errorf("frame size mismatch: expected %dx%d, got %dx%d",
			e.width, e.height, frame.Width, frame.Height)
	}

	img := frameToYCbCr(frame)
	data, err := e.enc.EncodeFrame(img, vp8.FrameOptions{
		ForceKeyFrame: e.forceKeyFrame,
		ScreenContent: e.screenContent,
	})
	if err != nil {
		return nil, fmt.Errorf("vp8 encode: %w", err)
	}
	e.forceKeyFrame = false
	return data, nil
}

// SetBitRate updates the target encoding bit rate live.
func (e *vp8Encoder) SetBitRate(bitRate uint32) error {
	if err := e.enc.SetBitrate(int(bitRate)); err != nil {
		return fmt.Errorf("vp8 set bitrate: %w", err)
	}
	e.bitRate = bitRate
	return nil
}

// SetScreenContentMode selects the rate-control tuning used for slide/text
// heavy content versus natural camera video.
func (e *vp8Encoder) SetScreenContentMode(enabled bool) {
	e.screenContent = enabled
}

// RequestKeyFrame marks the next Encode call as a forced key frame.
func (e *vp8Encoder) RequestKeyFrame() {
	e.forceKeyFrame = true
}

// Close releases encoder resources.
func (e *vp8Encoder) Close() error {
	return e.enc.Close()
}

// vp8Decoder wraps a VP8 bitstream decoder, reporting whether each decoded
// frame was a key frame so the caller can enforce the key-frame-first rule.
type vp8Decoder struct {
	dec *vp8.Decoder
}

func newVP8Decoder() *vp8Decoder {
	return &vp8Decoder{dec: vp8.NewDecoder()}
}

// Decode parses one reassembled VP8 frame buffer into a planar I420 frame.
func (d *vp8Decoder) Decode(data []byte) (*VideoFrame, bool, error) {
	img, isKeyFrame, err := d.dec.Decode(data)
	if err != nil {
		return nil, false, fmt.Errorf("vp8 decode: %w", err)
	}
	return ycbcrToFrame(img), isKeyFrame, nil
}

func frameToYCbCr(frame *VideoFrame) *image.YCbCr {
	return &image.YCbCr{
		Y:              frame.Y,
		Cb:             frame.U,
		Cr:             frame.V,
		YStride:        frame.YStride,
		CStride:        frame.UStride,
		SubsampleRatio: image.YCbCrSubsampleRatio420,
		Rect:           image.Rect(0, 0, int(frame.Width), int(frame.Height)),
	}
}

func ycbcrToFrame(img *image.YCbCr) *VideoFrame {
	width := uint16(img.Rect.Dx())
	height := uint16(img.Rect.Dy())
	return &VideoFrame{
		Width:   width,
		Height:  height,
		Y:       img.Y,
		U:       img.Cb,
		V:       img.Cr,
		YStride: img.YStride,
		UStride: img.CStride,
		VStride: img.CStride,
	}
}

// Package video provides video processing capabilities for ToxAV.
//
// This package implements the complete video processing pipeline for
// audio/video calls, including VP8 codec support, frame scaling, visual
// effects processing, and the non-standard RTP fragmentation scheme used
// on the wire.
//
// # Architecture Overview
//
// The video processing pipeline handles both encoding and decoding:
//
//	Encoding: YUV420 Input  → Scaling → Effects → VP8 Encoding → Splitter  → RTP
//	Decoding: YUV420 Output ← VP8 Decoding ← Collector ← RTP
//
// Processor owns the encode/decode half of the pipeline (scaling, effects,
// VP8). Splitter and Collector own RTP framing: fragmenting one encoded
// frame into sequenced chunks on the way out, and reassembling chunks back
// into one frame buffer (with loss detection and duplicate suppression) on
// the way in. The two halves are independent pipeline nodes connected by
// plain byte buffers, not by a shared packet type.
//
// # Video Frames
//
// Video data is represented using the YUV420 format, which is efficient
// for video compression and widely supported by codecs:
//
//	frame := &video.VideoFrame{
//	    Width:  640,
//	    Height: 480,
//	    Y:      yPlane,  // Luminance plane (full resolution)
//	    U:      uPlane,  // Chrominance U (half resolution)
//	    V:      vPlane,  // Chrominance V (half resolution)
//	}
//
// # VP8 Codec
//
// VP8Codec provides video encoding and decoding using the VP8 format,
// which is optimized for real-time video streaming:
//
//	codec := video.NewVP8Codec()
//	defer codec.Close()
//
//	// Encode a frame
//	encoded, err := codec.EncodeFrame(frame)
//	if err != nil {
//	    return fmt.Errorf("encoding failed: %w", err)
//	}
//
//	// Decode a frame
//	decoded, err := codec.DecodeFrame(encoded)
//	if err != nil {
//	    return fmt.Errorf("decoding failed: %w", err)
//	}
//
// # RTP Fragmentation
//
// Splitter fragments an encoded frame into chunks no larger than
// MaxChunkSize, tagging each with a single flag byte (start/middle/end/
// single) instead of the RFC 7741 payload descriptor:
//
//	splitter := video.NewSplitter(sequencer)
//	splitter.SetDownstream(udpSink)
//	err := splitter.Send(&transport.Packet{Data: encodedFrame}, remoteAddr)
//
// Collector reassembles chunks back into a frame buffer, discarding the
// buffer on any sequence discontinuity and suppressing back-to-back
// duplicate frames via CRC32 comparison:
//
//	collector := video.NewCollector(onFrame, onPacketLoss)
//	err := collector.Send(incomingPacket, nil)
//
// # Video Scaling
//
// The Scaler resizes video frames using bilinear interpolation:
//
//	scaler := video.NewScaler()
//
//	// Scale to target resolution
//	scaled, err := scaler.Scale(frame, 1280, 720)
//	if err != nil {
//	    return fmt.Errorf("scaling failed: %w", err)
//	}
//
// # Visual Effects
//
// Effects can be applied to video frames individually or in chains:
//
//	// Apply individual effects
//	brightness := video.NewBrightnessEffect(20)
//	frame, err := brightness.Apply(frame)
//
//	// Use effect chain for multiple effects
//	chain := video.NewEffectChain()
//	chain.AddEffect(video.NewBrightnessEffect(10))
//	chain.AddEffect(video.NewContrastEffect(1.2))
//	chain.AddEffect(video.NewGrayscaleEffect())
//
//	processed, err := chain.Apply(frame)
//
// Available effects include:
//   - BrightnessEffect: Adjust image brightness
//   - ContrastEffect: Modify image contrast
//   - GrayscaleEffect: Convert to grayscale
//   - BlurEffect: Apply box blur
//   - SharpenEffect: Sharpen image details
//   - ColorTemperatureEffect: Adjust warm/cool tones
//
// # Video Processor
//
// Processor combines scaling, effects, and VP8 encoding/decoding into a
// complete pipeline stage:
//
//	processor := video.NewProcessor()
//
//	// Process and encode frame
//	encoded, err := processor.ProcessOutgoing(frame)
//
//	// Decode and track the key-frame-first invariant
//	decoded, err := processor.ProcessIncoming(data, lastReceivedSeq)
//
// # Key Frame Recovery
//
// Loss recovery is a pair of one-way edges. On the decode side, a parse
// failure or a non-key first frame triggers processor.SetKeyFrameCallback's
// callback, rate-limited to once per 500ms. On the encode side, the
// session's video demux calls processor.ForceKeyFrame() when a key-frame
// request packet arrives on the video stream, which marks the next
// ProcessOutgoing call's output as a key frame.
//
// # Thread Safety
//
// Processor's mutex guards its key-frame state, callback, screen-content
// mode, bit rate and frame size fields; the encoder itself is used and
// replaced (by SetFrameSize) without that lock, and GetBitRate and
// GetFrameSize read without it. Splitter and Collector hold no locks and
// are not safe for concurrent use from multiple goroutines
// feeding the same instance; the recommended pattern is one goroutine per
// direction per stream.
//
// # ToxAV Integration
//
// This package is used by the session package for ToxAV calls:
// video frames flow through Processor for encode/decode and through
// Splitter/Collector for RTP framing, with transport.Sink connecting the
// two halves to the network.
package video

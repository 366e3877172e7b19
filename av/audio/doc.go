// Package audio provides comprehensive audio processing capabilities for ToxAV.
//
// This package implements the complete audio pipeline for Tox audio/video calls,
// including Opus codec integration, audio effects processing, sample rate conversion,
// and real-time audio manipulation.
//
// # Architecture Overview
//
// The audio processing pipeline follows this flow:
//
//	Capture:  PCM Input → Resampling → Effects → Opus Encoding → RTP Packetization
//	Playback: PCM Output ← Opus Decoding ← RTP Depacketization
//
// # Core Components
//
// The package provides these main components:
//
// ## OpusCodec
//
// The primary codec wrapper providing Opus-specific audio processing:
//
//	codec := audio.NewOpusCodec()
//	encoded, err := codec.EncodeFrame(pcmSamples, 48000)
//	decoded, sampleRate, err := codec.DecodeFrame(opusData)
//
// ## Processor
//
// The main audio processing pipeline combining encoding, decoding, resampling,
// and effects processing:
//
//	processor := audio.NewProcessor()
//	defer processor.Close()
//	
//	// Configure effects
//	gain, err := audio.NewGainEffect(1.5)
//	processor.AddEffect(gain)
//	
//	// Process audio
//	encoded, err := processor.ProcessOutgoing(input, 48000)
//
// ## Resampler
//
// Sample rate conversion with linear interpolation:
//
//	config := audio.ResamplerConfig{
//	    InputRate:  44100,
//	    OutputRate: 48000,
//	    Channels:   1,
//	    Quality:    4,
//	}
//	resampler, err := audio.NewResampler(config)
//	resampled, err := resampler.Resample(samples)
//
// ## Effects
//
// The package provides a flexible effects framework with built-in effects:
//
//   - GainEffect: Volume adjustment with clipping protection
//   - AutoGainEffect: Automatic gain control (AGC) for consistent volume
//   - EffectChain: Sequential effect processing pipeline
//
// The package has no noise-suppression effect.
//
// Example of building an effects chain:
//
//	chain := audio.NewEffectChain()
//	chain.AddEffect(audio.NewAutoGainEffect())
//	gain, err := audio.NewGainEffect(1.2)
//	chain.AddEffect(gain)
//	
//	processed, err := chain.Process(samples)
//
// # Thread Safety
//
// The components in this package hold no internal locks:
//
//   - Processor instances are not safe for concurrent use
//   - Effect chains and effects are not safe to share across goroutines
//   - Resampler maintains internal state and should be used per-stream
//
// # Dependencies
//
// The package uses minimal external dependencies:
//
//   - gopkg.in/hraban/opus.v2: full Opus encode/decode (CGo binding to libopus)
//   - github.com/sirupsen/logrus: Structured logging
//
// # Performance Considerations
//
//   - Linear interpolation resampling: O(n) complexity, suitable for real-time
//   - Encoding, decoding and resampling allocate a new output buffer per call
//   - Same-rate resampling optimization bypasses processing
//
// # Integration
//
// The audio package integrates with the ToxAV ecosystem:
//
//   - Used by session/audio.go for call audio processing
//   - Supports the ToxAV callback system for audio frame handling
//   - Compatible with RTP packetization for network transmission
package audio

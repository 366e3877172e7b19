// Package session brings up and tears down the per-call media pipeline
// graph described by the rest of this module: one audio stream and one
// video stream per call leg, each wiring a UDP socket through the crypto,
// jitter buffer, and codec stages into a single transport.Sink chain.
//
// # Architecture
//
// Manager owns one process-wide PortAllocator (the 30000-40000 range) and
// a registry of in-progress Calls keyed by uuid. NewCall/Manager.StartCall
// allocates two ports and two RTP sequencers (one SSRC each), then wires:
//
//	outgoing audio: Processor → Sequencer → Encryptor → UDPSocket
//	incoming audio: UDPSocket → Decryptor → jitter.Buffer → Processor
//
//	outgoing video: Processor → Splitter → Encryptor → UDPSocket
//	incoming video: UDPSocket → Decryptor → demux → jitter.Buffer → Collector → Processor
//
// The video demux exists because loss recovery crosses the call boundary:
// av/video.Processor and Collector both raise a local "need a key frame"
// callback, which this package turns into a small out-of-band RTP packet
// (keyFrameRequestPayloadType) sent over the same encrypted video stream.
// The peer's demux recognizes that payload type, diverts it before the
// jitter buffer, and calls its own Processor.ForceKeyFrame directly — a
// pair of one-way edges rather than a request/response exchange.
//
// # Identifiers
//
// The signalling layer's wire commands carry plain int64 member/conference
// ids and string tags. This package additionally assigns each call a
// github.com/google/uuid value, since a symmetric conference may have
// several simultaneous calls between the same pair of members across
// reconnects, and the wire ids alone don't disambiguate which pipeline
// instance a given command or key exchange belongs to.
package session

// Package crypto implements the transparent symmetric crypto layer that
// sits between a socket and the jitter buffer/codec in the media pipeline,
// plus the supporting primitives it needs: secure memory wiping and an
// injectable time source for deterministic tests.
//
// # Encryptor / Decryptor
//
// Encryptor and Decryptor are a matched pair of pipeline nodes. Both start
// Dormant (a transparent pass-through) and become Active once given a
// 32-byte shared key via Start; Stop clears the key and returns to
// pass-through. Only the RTP payload is transformed — the header stays in
// clear, leaving the IV to be derived deterministically from the RTP
// sequence number and SSRC rather than transmitted out of band:
//
//	enc := crypto.NewEncryptor()
//	enc.SetDownstream(udpSocket)
//	enc.Start(sessionKey)
//	enc.Send(packet, peerAddr)
//
// A Decryptor mirrors this on the receive side. Decryption failures never
// propagate as errors: they increment a counter, log at trace level, and
// drop the packet, since a reordered or late packet after a key rotation
// is an expected condition, not a protocol violation.
//
// # Secure memory
//
// SecureWipe and ZeroBytes erase key material using crypto/subtle so the
// compiler cannot optimize the write away.
//
// # Deterministic testing
//
// TimeProvider lets callers substitute a fixed clock in tests that exercise
// time-sensitive behaviour elsewhere in the pipeline.
package crypto

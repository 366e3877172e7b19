// Package rtp provides the bit-exact RTP packet model (RFC 3550 header,
// payload) shared by the audio and video chains, plus the injectable
// TimeProvider/SSRCProvider seams used for deterministic tests elsewhere in
// the media pipeline.
package rtp

// Package transport implements the socket layer of the media pipeline: UDP
// (the default RTP path), a length-prefixed TCP fallback for when UDP is
// unreachable, and the addressing types shared by both.
//
// # Architecture
//
// Every socket implements Socket, which embeds the one-method Sink
// interface (Send(packet, addr)) shared by every pipeline node — crypto,
// jitter buffer, splitter/collector, and codec all look the same from their
// upstream neighbour. A socket owns exactly one dedicated receive goroutine
// rather than a polling loop; Stop() unblocks it (for UDP, via a
// self-addressed zero-byte datagram) and joins before returning.
//
//	udpSock := transport.NewUDPSocket()
//	udpSock.SetDownstream(decryptor)
//	if err := udpSock.Start(":0"); err != nil {
//	    // handle bind failure
//	}
//	defer udpSock.Stop()
//
// # Addressing
//
// Address is a tagged union over {IPv4, IPv6, Auto}; equality compares both
// the tag and the bytes, so an IPv4 host is never equal to its IPv6-mapped
// form.
//
// # TCP fallback
//
// TCPSocket dials a single remote endpoint and frames each RTP packet with
// a 2-byte little-endian length prefix, used only when the UDP reachability
// probe fails.
package transport

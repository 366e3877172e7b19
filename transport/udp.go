// This file implements the UDP socket node: the primary transport for RTP
// media. Each instance owns exactly one dedicated receive goroutine rather
// than a polling loop, matching the one-thread-per-socket model of the
// pipeline; Stop unblocks that goroutine by writing a zero-byte datagram to
// its own listening address instead of relying on read-deadline polling.
package transport

import (
	"net"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// UDPSocket is a Socket backed by a single UDP PacketConn.
type UDPSocket struct {
	mu         sync.RWMutex
	conn       net.PacketConn
	listenAddr net.Addr
	downstream Sink
	running    atomic.Bool
	done       chan struct{}
}

// NewUDPSocket constructs a Dormant UDP socket. Call Start to bind it.
func NewUDPSocket() *UDPSocket {
	return &UDPSocket{}
}

// Start binds the UDP socket and spawns its receive goroutine.
func (s *UDPSocket) Start(listenAddr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return nil
	}

	conn, err := net.ListenPacket("udp", listenAddr)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "UDPSocket.Start",
			"addr":     listenAddr,
			"error":    err,
		}).Error("failed to bind UDP socket")
		return err
	}

	s.conn = conn
	s.listenAddr = conn.LocalAddr()
	s.done = make(chan struct{})
	s.running.Store(true)

	go s.receiveLoop()

	logrus.WithFields(logrus.Fields{
		"function": "UDPSocket.Start",
		"addr":     s.listenAddr.String(),
	}).Debug("UDP socket active")
	return nil
}

// SetDownstream sets the sink that receives packets read off the wire.
func (s *UDPSocket) SetDownstream(sink Sink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.downstream = sink
}

// Send transmits a packet to addr. Send on a Dormant socket is a no-op.
func (s *UDPSocket) Send(packet *Packet, addr *Address) error {
	s.mu.RLock()
	conn := s.conn
	s.mu.RUnlock()

	if conn == nil || !s.running.Load() {
		return nil
	}
	if addr == nil {
		return nil
	}
	data, err := packet.Serialize()
	if err != nil {
		return err
	}
	_, err = conn.WriteTo(data, addr.ToNetAddr())
	return err
}

// Stop unblocks the receive goroutine and joins it. Idempotent.
func (s *UDPSocket) Stop() error {
	s.mu.Lock()
	if !s.running.CompareAndSwap(true, false) {
		s.mu.Unlock()
		return nil
	}
	conn := s.conn
	local := s.listenAddr
	s.mu.Unlock()

	if conn != nil && local != nil {
		// A zero-byte datagram to our own listening address unblocks the
		// blocking ReadFrom call in receiveLoop without a poll timeout.
		_, _ = conn.WriteTo(nil, local)
	}

	<-s.done

	if conn != nil {
		return conn.Close()
	}
	return nil
}

// LocalAddr returns the bound local address, or nil if Dormant.
func (s *UDPSocket) LocalAddr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listenAddr
}

// State reports whether the socket is Dormant or Active.
func (s *UDPSocket) State() State {
	if s.running.Load() {
		return Active
	}
	return Dormant
}

func (s *UDPSocket) receiveLoop() {
	defer close(s.done)

	buf := make([]byte, 2048)
	for {
		n, addr, err := s.conn.ReadFrom(buf)
		if err != nil {
			if !s.running.Load() {
				return
			}
			logrus.WithFields(logrus.Fields{
				"function": "UDPSocket.receiveLoop",
				"error":    err,
			}).Trace("transient read error")
			continue
		}
		if !s.running.Load() {
			return
		}
		if n == 0 {
			// Our own cancellation datagram, or a stray empty probe.
			continue
		}

		s.mu.RLock()
		downstream := s.downstream
		s.mu.RUnlock()
		if downstream == nil {
			continue
		}

		pkt, err := ParsePacket(buf[:n])
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "UDPSocket.receiveLoop",
				"error":    err,
			}).Trace("dropping malformed datagram")
			continue
		}
		from, err := FromNetAddr(addr)
		if err != nil {
			continue
		}
		if err := downstream.Send(pkt, &from); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "UDPSocket.receiveLoop",
				"error":    err,
			}).Trace("downstream rejected packet")
		}
	}
}

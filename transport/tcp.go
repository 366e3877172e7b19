// This file implements the TCP fallback socket used to tunnel RTP when a
// direct UDP path fails its reachability probe. Framing is a 2-byte
// little-endian length prefix followed by the RTP packet bytes.
package transport

import (
	"encoding/binary"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// TCPSocket is a Socket backed by one framed TCP connection, dialled to the
// remote media endpoint when UDP is unreachable.
type TCPSocket struct {
	mu         sync.RWMutex
	conn       net.Conn
	remoteAddr Address
	downstream Sink
	running    atomic.Bool
	done       chan struct{}
}

// NewTCPSocket constructs a Dormant TCP fallback socket.
func NewTCPSocket(remote Address) *TCPSocket {
	return &TCPSocket{remoteAddr: remote}
}

// Start dials the remote media endpoint and spawns the read loop.
// listenAddr is unused for the dialling side but kept to satisfy Socket.
func (s *TCPSocket) Start(_ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return nil
	}

	conn, err := net.Dial("tcp", s.remoteAddr.String())
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "TCPSocket.Start",
			"remote":   s.remoteAddr.String(),
			"error":    err,
		}).Error("failed to dial TCP fallback")
		return err
	}

	s.conn = conn
	s.done = make(chan struct{})
	s.running.Store(true)

	go s.readLoop()
	return nil
}

// SetDownstream sets the sink that receives packets read off the wire.
func (s *TCPSocket) SetDownstream(sink Sink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.downstream = sink
}

// Send writes one length-prefixed RTP packet to the connection. addr is
// ignored: a TCP fallback socket has exactly one peer.
func (s *TCPSocket) Send(packet *Packet, _ *Address) error {
	s.mu.RLock()
	conn := s.conn
	s.mu.RUnlock()

	if conn == nil || !s.running.Load() {
		return nil
	}

	data, err := packet.Serialize()
	if err != nil {
		return err
	}
	if len(data) > 0xFFFF {
		return io.ErrShortBuffer
	}

	prefix := make([]byte, 2)
	binary.LittleEndian.PutUint16(prefix, uint16(len(data)))

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := conn.Write(prefix); err != nil {
		return err
	}
	_, err = conn.Write(data)
	return err
}

// Stop closes the connection and joins the read loop. Idempotent.
func (s *TCPSocket) Stop() error {
	s.mu.Lock()
	if !s.running.CompareAndSwap(true, false) {
		s.mu.Unlock()
		return nil
	}
	conn := s.conn
	s.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	<-s.done
	return nil
}

// LocalAddr returns the local end of the TCP connection, or nil if Dormant.
func (s *TCPSocket) LocalAddr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

// State reports whether the socket is Dormant or Active.
func (s *TCPSocket) State() State {
	if s.running.Load() {
		return Active
	}
	return Dormant
}

func (s *TCPSocket) readLoop() {
	defer close(s.done)

	prefix := make([]byte, 2)
	for {
		if _, err := io.ReadFull(s.conn, prefix); err != nil {
			return
		}
		length := binary.LittleEndian.Uint16(prefix)
		data := make([]byte, length)
		if _, err := io.ReadFull(s.conn, data); err != nil {
			return
		}

		pkt, err := ParsePacket(data)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "TCPSocket.readLoop",
				"error":    err,
			}).Trace("dropping malformed framed packet")
			continue
		}

		s.mu.RLock()
		downstream := s.downstream
		remote := s.remoteAddr
		s.mu.RUnlock()
		if downstream == nil {
			continue
		}
		if err := downstream.Send(pkt, &remote); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "TCPSocket.readLoop",
				"error":    err,
			}).Trace("downstream rejected packet")
		}
	}
}

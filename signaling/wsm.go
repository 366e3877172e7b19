// This file implements the WSM (WebSocket Media) fallback tunnel: when
// neither a UDP nor a TCP path reaches the negotiated media addresses, RTP
// packets are instead wrapped in Media commands and carried over the same
// WebSocket connection as the control channel, demultiplexed on arrival by
// destination port.
package signaling

import (
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/toxcore/transport"
)

// WSMTunnel owns one WebSocket connection shared by every media leg tunneled
// over it. Each leg registers under the local port it would otherwise have
// bound a UDP socket to; incoming Media commands are routed to the leg whose
// port matches the command's destination port.
type WSMTunnel struct {
	conn *websocket.Conn

	writeMu sync.Mutex

	routesMu sync.RWMutex
	routes   map[uint16]transport.Sink

	stopOnce sync.Once
	stopped  chan struct{}
}

// NewWSMTunnel wraps an already-established WebSocket connection (the same
// one carrying control commands) as a shared RTP tunnel.
func NewWSMTunnel(conn *websocket.Conn) *WSMTunnel {
	return &WSMTunnel{
		conn:    conn,
		routes:  make(map[uint16]transport.Sink),
		stopped: make(chan struct{}),
	}
}

// Route registers sink as the destination for Media commands whose dst_port
// matches localPort. A second call for the same port replaces the sink.
func (t *WSMTunnel) Route(localPort uint16, sink transport.Sink) {
	t.routesMu.Lock()
	defer t.routesMu.Unlock()
	t.routes[localPort] = sink
}

// Unroute removes localPort's registration, if any.
func (t *WSMTunnel) Unroute(localPort uint16) {
	t.routesMu.Lock()
	defer t.routesMu.Unlock()
	delete(t.routes, localPort)
}

// Leg returns a transport.Sink that tunnels outgoing packets as Media
// commands from srcPort to dstPort over this tunnel's connection.
func (t *WSMTunnel) Leg(srcPort, dstPort uint16) transport.Sink {
	return &wsmLeg{tunnel: t, srcPort: srcPort, dstPort: dstPort}
}

// Serve reads Media commands off the WebSocket until the connection closes
// or Stop is called, dispatching each to the leg registered for its
// destination port. Unroutable ports and non-Media commands are logged and
// dropped; Serve only returns on a connection-level error or Stop.
func (t *WSMTunnel) Serve() error {
	for {
		select {
		case <-t.stopped:
			return nil
		default:
		}

		_, raw, err := t.conn.ReadMessage()
		if err != nil {
			select {
			case <-t.stopped:
				return nil
			default:
			}
			return fmt.Errorf("signaling: wsm read: %w", err)
		}

		if GetCommandType(raw) != CmdMedia {
			logrus.WithFields(logrus.Fields{
				"function": "WSMTunnel.Serve",
			}).Debug("ignoring non-media command on wsm tunnel")
			continue
		}

		cmd, err := Parse(raw)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "WSMTunnel.Serve",
				"error":    err.Error(),
			}).Error("failed to parse media command")
			continue
		}
		media := cmd.(*Media)

		payload, err := base64.StdEncoding.DecodeString(media.RTP)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "WSMTunnel.Serve",
				"error":    err.Error(),
			}).Error("failed to decode media payload")
			continue
		}

		t.routesMu.RLock()
		sink, ok := t.routes[media.DstPort]
		t.routesMu.RUnlock()
		if !ok {
			logrus.WithFields(logrus.Fields{
				"function": "WSMTunnel.Serve",
				"dst_port": media.DstPort,
			}).Debug("no route for media destination port")
			continue
		}

		if err := sink.Send(&transport.Packet{Data: payload}, nil); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "WSMTunnel.Serve",
				"dst_port": media.DstPort,
				"error":    err.Error(),
			}).Error("downstream rejected tunneled media packet")
		}
	}
}

// Stop ends a blocked Serve call and marks the tunnel closed. Idempotent.
func (t *WSMTunnel) Stop() {
	t.stopOnce.Do(func() {
		close(t.stopped)
		t.conn.Close()
	})
}

// write serializes a Media command and sends it as a single WebSocket text
// frame, guarding the shared connection against concurrent writers.
func (t *WSMTunnel) write(srcPort, dstPort uint16, data []byte) error {
	cmd := &Media{
		SrcPort: srcPort,
		DstPort: dstPort,
		RTP:     base64.StdEncoding.EncodeToString(data),
	}
	raw, err := Serialize(cmd)
	if err != nil {
		return fmt.Errorf("signaling: wsm serialize: %w", err)
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if err := t.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		return fmt.Errorf("signaling: wsm write: %w", err)
	}
	return nil
}

// wsmLeg is the transport.Sink view of one media stream's direction over a
// shared WSMTunnel: a fixed (srcPort, dstPort) pair stamped onto every
// packet handed to Send.
type wsmLeg struct {
	tunnel  *WSMTunnel
	srcPort uint16
	dstPort uint16
}

// Send implements transport.Sink, tunneling packet as a Media command.
// addr is ignored: the destination is fixed to the leg's dstPort, not
// discovered per-packet, since the WebSocket connection itself already
// pins the remote endpoint.
func (l *wsmLeg) Send(packet *transport.Packet, _ *transport.Address) error {
	if packet == nil || packet.Data == nil {
		return fmt.Errorf("signaling: wsm leg send: nil packet")
	}
	return l.tunnel.write(l.srcPort, l.dstPort, packet.Data)
}

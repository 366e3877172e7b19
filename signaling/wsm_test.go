package signaling

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/toxcore/transport"
)

// recordingSink captures every packet handed to it, for tests that only
// need to observe what reached the downstream pipeline stage.
type recordingSink struct {
	packets [][]byte
}

func (s *recordingSink) Send(packet *transport.Packet, _ *transport.Address) error {
	s.packets = append(s.packets, packet.Data)
	return nil
}

func dialWSMPair(t *testing.T) (client, server *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		server = conn
	}))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	require.Eventually(t, func() bool { return server != nil }, time.Second, time.Millisecond)
	t.Cleanup(func() { server.Close() })

	return client, server
}

func TestWSMLegSendWrapsAsMediaCommand(t *testing.T) {
	client, server := dialWSMPair(t)

	tunnel := NewWSMTunnel(client)
	leg := tunnel.Leg(30010, 30011)

	payload := []byte{0x80, 0x60, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 1, 2, 3}
	require.NoError(t, leg.Send(&transport.Packet{Data: payload}, nil))

	_, raw, err := server.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, CmdMedia, GetCommandType(raw))

	cmd, err := Parse(raw)
	require.NoError(t, err)
	media := cmd.(*Media)
	require.Equal(t, uint16(30010), media.SrcPort)
	require.Equal(t, uint16(30011), media.DstPort)

	decoded, err := base64.StdEncoding.DecodeString(media.RTP)
	require.NoError(t, err)
	require.Equal(t, payload, decoded)
}

func TestWSMTunnelServeRoutesByDestinationPort(t *testing.T) {
	client, server := dialWSMPair(t)

	tunnel := NewWSMTunnel(client)
	sink := &recordingSink{}
	tunnel.Route(30011, sink)

	go tunnel.Serve()
	t.Cleanup(tunnel.Stop)

	payload := []byte{1, 2, 3, 4, 5}
	media := &Media{SrcPort: 30011, DstPort: 30011, RTP: base64.StdEncoding.EncodeToString(payload)}
	raw, err := Serialize(media)
	require.NoError(t, err)
	require.NoError(t, server.WriteMessage(websocket.TextMessage, raw))

	require.Eventually(t, func() bool {
		return len(sink.packets) == 1
	}, time.Second, time.Millisecond)
	require.Equal(t, payload, sink.packets[0])
}

func TestWSMTunnelServeDropsUnroutedPort(t *testing.T) {
	client, server := dialWSMPair(t)

	tunnel := NewWSMTunnel(client)
	sink := &recordingSink{}
	tunnel.Route(1, sink)

	go tunnel.Serve()
	t.Cleanup(tunnel.Stop)

	media := &Media{SrcPort: 2, DstPort: 999, RTP: base64.StdEncoding.EncodeToString([]byte{9})}
	raw, err := Serialize(media)
	require.NoError(t, err)
	require.NoError(t, server.WriteMessage(websocket.TextMessage, raw))

	// Give Serve a chance to process, then confirm nothing landed on sink.
	time.Sleep(50 * time.Millisecond)
	require.Empty(t, sink.packets)
}

func TestWSMTunnelStopIsIdempotent(t *testing.T) {
	client, _ := dialWSMPair(t)
	tunnel := NewWSMTunnel(client)

	tunnel.Stop()
	tunnel.Stop()
}

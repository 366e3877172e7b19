// Package signaling implements the JSON/WebSocket control-channel codec for
// the media pipeline: parsing and serializing the command catalogue that
// drives registration, directory lookups, device lifecycle, call setup,
// conference membership, chat delivery, and the WebSocket RTP tunnel (WSM)
// used when UDP and TCP media paths are both unreachable.
//
// # Wire Format
//
// Every command is a single-key JSON object, `{"<name>": {...fields...}}`.
// List-bearing commands carry their list in a named field of that object;
// Serialize never emits a bare `{"<name>": [...]}` array payload, and Parse
// accepts an array payload only when it is empty. The key is the
// command's wire name, fixed and never renamed across protocol revisions.
//
//	Parse:     Parse(raw) (Command, error)
//	Serialize: Serialize(cmd) ([]byte, error)
//	Peek type: GetCommandType(raw) CommandType
//
// GetCommandType reads only the first JSON key via gjson, without
// unmarshalling the payload, so a dispatcher can route a message to its
// handler before paying for a full decode.
//
//	msg := []byte(`{"ping":{}}`)
//	switch signaling.GetCommandType(msg) {
//	case signaling.CmdPing:
//	    cmd, err := signaling.Parse(msg)
//	    ...
//	}
//
// # Command groups
//
// Commands are grouped by concern across separate files: session.go
// (connect/disconnect/ping), directory.go (contact and group listings),
// device.go (capture/render device lifecycle), quality.go (bitrate and
// resolution negotiation), call.go (ringing), conference.go (conference
// membership), roster.go (per-member state changes), chat.go (message and
// blob delivery), user.go (registration), and transport.go (media address
// discovery and the WSM tunnel).
//
// # WSM tunnel
//
// wsm.go implements transport.Sink over a WebSocket connection, wrapping
// each outgoing RTP packet in a Media command and demultiplexing incoming
// Media commands by destination port.
package signaling

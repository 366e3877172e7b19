package signaling

// DeviceParams announces a local capture/render device's static properties
// to the server.
type DeviceParams struct {
	ID         uint32     `json:"id"`
	SSRC       uint32     `json:"ssrc"`
	DeviceType DeviceType `json:"device_type"`
	Ord        uint32     `json:"ord"`
	Name       string     `json:"name"`
	Metadata   string     `json:"metadata,omitempty"`
	Resolution uint32     `json:"resolution,omitempty"`
	ColorSpace uint32     `json:"color_space,omitempty"`
}

func (DeviceParams) CommandName() string { return "device_params" }

// DeviceConnectType distinguishes a brand-new device announcement from a
// renderer attaching to an existing one.
type DeviceConnectType uint8

const (
	DeviceConnectUndefined DeviceConnectType = iota
	DeviceConnectCreatedDevice
	DeviceConnectConnectRenderer
)

// DeviceConnect wires a capture device (or a renderer for one) into a
// conference's media graph: SSRCs, transport address, and the negotiated
// resolution/color space.
type DeviceConnect struct {
	ConnectType  DeviceConnectType `json:"connect_type"`
	DeviceType   DeviceType        `json:"device_type"`
	DeviceID     uint32            `json:"device_id"`
	ClientID     int64             `json:"client_id"`
	Metadata     string            `json:"metadata,omitempty"`
	ReceiverSSRC uint32            `json:"receiver_ssrc"`
	AuthorSSRC   uint32            `json:"author_ssrc"`
	Address      string            `json:"address,omitempty"`
	Port         uint16            `json:"port"`
	Name         string            `json:"name,omitempty"`
	Resolution   uint32            `json:"resolution,omitempty"`
	ColorSpace   uint32            `json:"color_space,omitempty"`
	Mine         bool              `json:"my,omitempty"`
	SecureKey    string            `json:"secure_key,omitempty"`
}

func (DeviceConnect) CommandName() string { return "device_connect" }

// DeviceDisconnect tears down a device's media graph wiring.
type DeviceDisconnect struct {
	DeviceType DeviceType `json:"device_type"`
	DeviceID   uint32     `json:"device_id"`
	ClientID   int64      `json:"client_id"`
}

func (DeviceDisconnect) CommandName() string { return "device_disconnect" }

// RendererConnect attaches a local renderer to a remote device's SSRC.
type RendererConnect struct {
	DeviceID uint32 `json:"device_id"`
	SSRC     uint32 `json:"ssrc"`
}

func (RendererConnect) CommandName() string { return "renderer_connect" }

// RendererDisconnect detaches a local renderer.
type RendererDisconnect struct {
	DeviceID uint32 `json:"device_id"`
	SSRC     uint32 `json:"ssrc"`
}

func (RendererDisconnect) CommandName() string { return "renderer_disconnect" }

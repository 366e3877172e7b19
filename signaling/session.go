package signaling

// ConnectResult enumerates the outcome of a connect attempt.
type ConnectResult uint8

const (
	ConnectResultUndefined ConnectResult = iota
	ConnectResultOK
	ConnectResultInvalidCredentials
	ConnectResultUpdateRequired
	ConnectResultRedirect
	ConnectResultServerFull
	ConnectResultInternalServerError
)

// ConnectRequest opens a control session: client version, platform tag, and
// credentials.
type ConnectRequest struct {
	ClientVersion uint32 `json:"client_version"`
	System        string `json:"system"`
	Login         string `json:"login"`
	Password      string `json:"password"`
}

func (ConnectRequest) CommandName() string { return "connect_request" }

// ConnectResponse answers a ConnectRequest. On ConnectResultOK, AccessToken
// gates every subsequent command on the connection.
type ConnectResponse struct {
	Result            ConnectResult `json:"result"`
	ServerVersion     uint32        `json:"server_version"`
	ID                int64         `json:"id"`
	ConnectionID      int64         `json:"connection_id"`
	AccessToken       string        `json:"access_token,omitempty"`
	RedirectURL       string        `json:"redirect_url,omitempty"`
	Name              string        `json:"name,omitempty"`
	SecureKey         string        `json:"secure_key,omitempty"`
	ServerName        string        `json:"server_name,omitempty"`
	Options           uint32        `json:"options,omitempty"`
	Grants            uint32        `json:"grants,omitempty"`
	MaxOutputBitrate  uint32        `json:"max_output_bitrate,omitempty"`
}

func (ConnectResponse) CommandName() string { return "connect_response" }

// Disconnect carries no fields; it tells the peer the control session is
// ending.
type Disconnect struct{}

func (Disconnect) CommandName() string { return "disconnect" }

// ChangeServer redirects the client to a different server URL, typically
// following a ConnectResultRedirect response.
type ChangeServer struct {
	URL string `json:"url"`
}

func (ChangeServer) CommandName() string { return "change_server" }

// Ping carries no fields; it is sent every 5s on an idle control connection
// to detect a dead peer.
type Ping struct{}

func (Ping) CommandName() string { return "ping" }

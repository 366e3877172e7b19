package signaling

// CallRequestType distinguishes an initial ring from a cancellation of one
// already sent.
type CallRequestType uint8

const (
	CallRequestUndefined CallRequestType = iota
	CallRequestInvocation
	CallRequestCancel
)

// CallRequest rings a contact, optionally bounding how long the ring stays
// live before the caller gives up.
type CallRequest struct {
	Name         string          `json:"name"`
	ID           int64           `json:"id"`
	ConnectionID uint32          `json:"connection_id"`
	Type         CallRequestType `json:"type"`
	TimeLimit    uint64          `json:"time_limit,omitempty"`
}

func (CallRequest) CommandName() string { return "call_request" }

// CallResponseType enumerates how a ring was resolved.
type CallResponseType uint8

const (
	CallResponseUndefined CallResponseType = iota
	CallResponseAutoCall
	CallResponseNotConnected
	CallResponseAccept
	CallResponseRefuse
	CallResponseBusy
	CallResponseTimeout
)

// CallResponse answers a CallRequest.
type CallResponse struct {
	ID           int64            `json:"id"`
	ConnectionID uint32           `json:"connection_id"`
	Name         string           `json:"name"`
	Type         CallResponseType `json:"type"`
	TimeLimit    uint64           `json:"time_limit,omitempty"`
}

func (CallResponse) CommandName() string { return "call_response" }

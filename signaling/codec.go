package signaling

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Command is implemented by every signalling value. CommandName returns the
// command's fixed wire key, used both to pick a decode target and to wrap
// the payload on serialize. Named to avoid colliding with the several
// commands that carry their own "name" field (a contact's, device's, or
// conference's display name).
type Command interface {
	CommandName() string
}

// CommandType enumerates the command catalogue for fast dispatch without a
// full decode.
type CommandType int

const (
	CmdUndefined CommandType = iota

	CmdConnectRequest
	CmdConnectResponse
	CmdDisconnect
	CmdChangeServer
	CmdPing

	CmdContactList
	CmdSearchContact
	CmdContactsUpdate
	CmdGroupList
	CmdConferencesList

	CmdDeviceParams
	CmdDeviceConnect
	CmdDeviceDisconnect
	CmdRendererConnect
	CmdRendererDisconnect

	CmdResolutionChange
	CmdSetMaxBitrate
	CmdUpdateGrants
	CmdMicrophoneActive

	CmdCallRequest
	CmdCallResponse

	CmdConferenceUpdateRequest
	CmdConferenceUpdateResponse
	CmdCreateTempConference
	CmdSendConnectToConference
	CmdConnectToConferenceRequest
	CmdConnectToConferenceResponse
	CmdDisconnectFromConference

	CmdChangeContactState
	CmdTurnSpeaker
	CmdChangeMemberState
	CmdMemberAction
	CmdWantSpeak
	CmdScheduleConnect

	CmdDeliveryMessages
	CmdLoadMessages
	CmdDeliveryBlobs
	CmdLoadBlobs

	CmdRequestMediaAddresses
	CmdMediaAddressesList
	CmdMedia

	CmdUserUpdateRequest
	CmdUserUpdateResponse
	CmdCredentialsRequest
	CmdCredentialsResponse
)

// String renders the command type's wire name, or "undefined" for
// CmdUndefined and any value outside the catalogue.
func (t CommandType) String() string {
	if name, ok := typeToName[t]; ok {
		return name
	}
	return "undefined"
}

var nameToType = map[string]CommandType{
	"connect_request":  CmdConnectRequest,
	"connect_response": CmdConnectResponse,
	"disconnect":       CmdDisconnect,
	"change_server":    CmdChangeServer,
	"ping":             CmdPing,

	"contact_list":     CmdContactList,
	"search_contact":   CmdSearchContact,
	"contacts_update":  CmdContactsUpdate,
	"group_list":       CmdGroupList,
	"conferences_list": CmdConferencesList,

	"device_params":       CmdDeviceParams,
	"device_connect":      CmdDeviceConnect,
	"device_disconnect":   CmdDeviceDisconnect,
	"renderer_connect":    CmdRendererConnect,
	"renderer_disconnect": CmdRendererDisconnect,

	"resolution_change":  CmdResolutionChange,
	"set_max_bitrate":    CmdSetMaxBitrate,
	"update_grants":      CmdUpdateGrants,
	"microphone_active":  CmdMicrophoneActive,

	"call_request":  CmdCallRequest,
	"call_response": CmdCallResponse,

	"conference_update_request":      CmdConferenceUpdateRequest,
	"conference_update_response":     CmdConferenceUpdateResponse,
	"create_temp_conference":         CmdCreateTempConference,
	"send_connect_to_conference":     CmdSendConnectToConference,
	"connect_to_conference_request":  CmdConnectToConferenceRequest,
	"connect_to_conference_response": CmdConnectToConferenceResponse,
	"disconnect_from_conference":     CmdDisconnectFromConference,

	"change_contact_state": CmdChangeContactState,
	"turn_speaker":         CmdTurnSpeaker,
	"change_member_state":  CmdChangeMemberState,
	"member_action":        CmdMemberAction,
	"want_speak":           CmdWantSpeak,
	"schedule_connect":     CmdScheduleConnect,

	"delivery_messages": CmdDeliveryMessages,
	"load_messages":     CmdLoadMessages,
	"delivery_blobs":    CmdDeliveryBlobs,
	"load_blobs":        CmdLoadBlobs,

	"request_media_addresses": CmdRequestMediaAddresses,
	"media_addresses_list":    CmdMediaAddressesList,
	"media":                   CmdMedia,

	"user_update_request":  CmdUserUpdateRequest,
	"user_update_response": CmdUserUpdateResponse,
	"credentials_request":  CmdCredentialsRequest,
	"credentials_response": CmdCredentialsResponse,
}

var typeToName = make(map[CommandType]string, len(nameToType))

func init() {
	for name, t := range nameToType {
		typeToName[t] = name
	}
}

// factories builds a zero-value, addressable Command for each type so Parse
// can unmarshal straight into it.
var factories = map[CommandType]func() Command{
	CmdConnectRequest:  func() Command { return &ConnectRequest{} },
	CmdConnectResponse: func() Command { return &ConnectResponse{} },
	CmdDisconnect:      func() Command { return &Disconnect{} },
	CmdChangeServer:    func() Command { return &ChangeServer{} },
	CmdPing:            func() Command { return &Ping{} },

	CmdContactList:     func() Command { return &ContactList{} },
	CmdSearchContact:   func() Command { return &SearchContact{} },
	CmdContactsUpdate:  func() Command { return &ContactsUpdate{} },
	CmdGroupList:       func() Command { return &GroupList{} },
	CmdConferencesList: func() Command { return &ConferencesList{} },

	CmdDeviceParams:       func() Command { return &DeviceParams{} },
	CmdDeviceConnect:      func() Command { return &DeviceConnect{} },
	CmdDeviceDisconnect:   func() Command { return &DeviceDisconnect{} },
	CmdRendererConnect:    func() Command { return &RendererConnect{} },
	CmdRendererDisconnect: func() Command { return &RendererDisconnect{} },

	CmdResolutionChange: func() Command { return &ResolutionChange{} },
	CmdSetMaxBitrate:    func() Command { return &SetMaxBitrate{} },
	CmdUpdateGrants:     func() Command { return &UpdateGrants{} },
	CmdMicrophoneActive: func() Command { return &MicrophoneActive{} },

	CmdCallRequest:  func() Command { return &CallRequest{} },
	CmdCallResponse: func() Command { return &CallResponse{} },

	CmdConferenceUpdateRequest:     func() Command { return &ConferenceUpdateRequest{} },
	CmdConferenceUpdateResponse:    func() Command { return &ConferenceUpdateResponse{} },
	CmdCreateTempConference:        func() Command { return &CreateTempConference{} },
	CmdSendConnectToConference:     func() Command { return &SendConnectToConference{} },
	CmdConnectToConferenceRequest:  func() Command { return &ConnectToConferenceRequest{} },
	CmdConnectToConferenceResponse: func() Command { return &ConnectToConferenceResponse{} },
	CmdDisconnectFromConference:    func() Command { return &DisconnectFromConference{} },

	CmdChangeContactState: func() Command { return &ChangeContactState{} },
	CmdTurnSpeaker:        func() Command { return &TurnSpeaker{} },
	CmdChangeMemberState:  func() Command { return &ChangeMemberState{} },
	CmdMemberAction:       func() Command { return &MemberAction{} },
	CmdWantSpeak:          func() Command { return &WantSpeak{} },
	CmdScheduleConnect:    func() Command { return &ScheduleConnect{} },

	CmdDeliveryMessages: func() Command { return &DeliveryMessages{} },
	CmdLoadMessages:     func() Command { return &LoadMessages{} },
	CmdDeliveryBlobs:    func() Command { return &DeliveryBlobs{} },
	CmdLoadBlobs:        func() Command { return &LoadBlobs{} },

	CmdRequestMediaAddresses: func() Command { return &RequestMediaAddresses{} },
	CmdMediaAddressesList:    func() Command { return &MediaAddressesList{} },
	CmdMedia:                 func() Command { return &Media{} },

	CmdUserUpdateRequest:  func() Command { return &UserUpdateRequest{} },
	CmdUserUpdateResponse: func() Command { return &UserUpdateResponse{} },
	CmdCredentialsRequest: func() Command { return &CredentialsRequest{} },
	CmdCredentialsResponse: func() Command { return &CredentialsResponse{} },
}

// GetCommandType reads the first (and only meaningful) top-level key of raw
// via gjson, without unmarshalling the payload, and returns the matching
// CommandType. Returns CmdUndefined for an empty object, malformed JSON, or
// an unrecognized name.
func GetCommandType(raw []byte) CommandType {
	parsed := gjson.ParseBytes(raw)
	if !parsed.IsObject() {
		return CmdUndefined
	}

	var name string
	parsed.ForEach(func(key, _ gjson.Result) bool {
		name = key.String()
		return false
	})
	if name == "" {
		return CmdUndefined
	}
	return nameToType[name]
}

// Parse decodes a wire message into its concrete Command. Unknown or
// malformed top-level names return an error; fields missing from the inner
// payload are left at their zero value rather than rejected.
func Parse(raw []byte) (Command, error) {
	ct := GetCommandType(raw)
	if ct == CmdUndefined {
		return nil, fmt.Errorf("signaling: unrecognized or malformed command")
	}

	name := typeToName[ct]
	factory := factories[ct]
	cmd := factory()

	payload := gjson.GetBytes(raw, gjsonEscape(name))
	if !payload.Exists() {
		return nil, fmt.Errorf("signaling: command %q has no payload", name)
	}
	if payload.Raw == "" || payload.Raw == "{}" || payload.Raw == "[]" {
		return cmd, nil
	}
	if err := json.Unmarshal([]byte(payload.Raw), cmd); err != nil {
		return nil, fmt.Errorf("signaling: parse %q: %w", name, err)
	}
	return cmd, nil
}

// Serialize wraps cmd under its wire name and encodes the result as a
// canonical JSON object.
func Serialize(cmd Command) ([]byte, error) {
	out, err := json.Marshal(map[string]Command{cmd.CommandName(): cmd})
	if err != nil {
		return nil, fmt.Errorf("signaling: serialize %q: %w", cmd.CommandName(), err)
	}
	return out, nil
}

// gjsonEscape escapes path-metacharacters gjson otherwise interprets
// (".", "*", "?") in a command name used as a literal object key. None of
// the fixed command names in this catalogue contain such characters today;
// this guards against a future name that does.
func gjsonEscape(name string) string {
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '.' || c == '*' || c == '?' {
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	return string(out)
}

package signaling

// MemberState describes a contact's presence.
type MemberState uint8

const (
	MemberStateUndefined MemberState = iota
	MemberStateOffline
	MemberStateOnline
	MemberStateConferencing
)

// MemberGrants is a bitmask of per-user role flags carried in ConnectResponse
// and conference membership commands.
type MemberGrants uint32

const (
	GrantPresenter MemberGrants = 1 << iota
	GrantSpeaker
	GrantModerator
	GrantOrdinary
	GrantReadOnly
	GrantDeaf
)

// GroupGrants flags a contact group's visibility.
type GroupGrants uint32

const (
	GroupGrantLimited GroupGrants = iota
	GroupGrantPrivate
)

// ConferenceGrants is a bitmask of per-conference policy flags.
type ConferenceGrants uint32

const (
	ConferenceGrantDenyTurnSpeak ConferenceGrants = 1 << iota
	ConferenceGrantDisableMicrophoneIfNoSpeak
	ConferenceGrantDisableCameraIfNoSpeak
	ConferenceGrantDontAskTurnDevices
	ConferenceGrantAutoConnect
	ConferenceGrantDisableSpeakerChange
	ConferenceGrantRecordOnServer
	ConferenceGrantDenyTurnMicrophone
	ConferenceGrantDenyTurnCamera
	ConferenceGrantDenyRecord
	ConferenceGrantDenySelfConnectMembers
	ConferenceGrantEnableCameraOnConnect
	ConferenceGrantEnableMicrophoneOnConnect
	_ // gap: bits 13-19 unused on the wire
	_
	_
	_
	_
	_
	_
	ConferenceGrantDeactivated
)

// DeviceType discriminates the capture/render device roles a session tracks.
type DeviceType uint8

const (
	DeviceUndefined DeviceType = iota
	DeviceCamera
	DeviceDemonstration
	DeviceAvatar
	DeviceMicrophone
	DeviceVideoRenderer
	DeviceAudioRenderer
)

// ConferenceType fixes how a conference mixes and distributes media among
// its members.
type ConferenceType uint8

const (
	ConferenceTypeUndefined ConferenceType = iota
	ConferenceTypeSymmetric
	ConferenceTypeAsymmetric
	ConferenceTypeAsymmetricWithSymmetricSound
)

// Group is a named folder of contacts in the directory tree.
type Group struct {
	ID       int64  `json:"id"`
	ParentID int64  `json:"parent_id"`
	Tag      string `json:"tag"`
	Name     string `json:"name"`
	OwnerID  int64  `json:"owner_id"`
	Password string `json:"password,omitempty"`
	Grants   uint32 `json:"grants"`
	Level    int32  `json:"level"`
	Deleted  bool   `json:"deleted,omitempty"`
}

// Member is a conference participant or directory contact.
type Member struct {
	ID                int64       `json:"id"`
	State             MemberState `json:"state"`
	Login             string      `json:"login,omitempty"`
	Name              string      `json:"name"`
	Number            string      `json:"number,omitempty"`
	Icon              string      `json:"icon,omitempty"`
	Avatar            string      `json:"avatar,omitempty"`
	Groups            []Group     `json:"groups,omitempty"`
	MaxInputBitrate   uint32      `json:"max_input_bitrate,omitempty"`
	Order             uint32      `json:"order,omitempty"`
	HasCamera         bool        `json:"has_camera,omitempty"`
	HasMicrophone     bool        `json:"has_microphone,omitempty"`
	HasDemonstration  bool        `json:"has_demonstration,omitempty"`
	Grants            uint32      `json:"grants"`
	Deleted           bool        `json:"deleted,omitempty"`
}

// Conference is a named meeting room with its current roster.
type Conference struct {
	ID              int64    `json:"id"`
	Tag             string   `json:"tag"`
	Name            string   `json:"name"`
	Description     string   `json:"descr,omitempty"`
	Founder         string   `json:"founder,omitempty"`
	FounderID       int64    `json:"founder_id"`
	Type            ConferenceType `json:"type"`
	Grants          uint32   `json:"grants"`
	Duration        uint64   `json:"duration,omitempty"`
	Members         []Member `json:"members,omitempty"`
	ConnectMembers  bool     `json:"connect_members,omitempty"`
	Temporary       bool     `json:"temp,omitempty"`
	Deleted         bool     `json:"deleted,omitempty"`
}

// BlobType discriminates the payload kind a Blob carries.
type BlobType uint8

const (
	BlobTypeUndefined BlobType = iota
	BlobTypeImage
	BlobTypeDocument
	BlobTypeVoice
	BlobTypeCircleVideo
)

// BlobStatus tracks a blob's lifecycle on the server.
type BlobStatus uint8

const (
	BlobStatusUndefined BlobStatus = iota
	BlobStatusNotFound
	BlobStatusCreated
	BlobStatusReceived
	BlobStatusModified
	BlobStatusDeleted
)

// BlobAction selects the transfer path used to move a blob's bytes.
type BlobAction uint8

const (
	BlobActionUndefined BlobAction = iota
	BlobActionSpeedTest
	BlobActionStorage
	BlobActionP2P
)

// Blob is an out-of-band attachment (image, document, voice note, ...)
// referenced by guid from a Message.
type Blob struct {
	ID          int64      `json:"id"`
	OwnerID     int64      `json:"owner_id"`
	GUID        string     `json:"guid"`
	Type        BlobType   `json:"type"`
	Status      BlobStatus `json:"status"`
	Action      BlobAction `json:"action"`
	Data        string     `json:"data,omitempty"`
	Preview     string     `json:"preview,omitempty"`
	Name        string     `json:"name,omitempty"`
	Description string     `json:"description,omitempty"`
	Deleted     bool       `json:"deleted,omitempty"`
}

// MessageType discriminates chat payload kinds, including call log entries
// and typing indicators.
type MessageType uint8

const (
	MessageTypeUndefined MessageType = iota
	MessageTypeText
	MessageTypeCall
	MessageTypeJoin
	MessageTypeLeave
	MessageTypeImage
	MessageTypeDocument
	MessageTypeForwarded
	MessageTypeVideo
	MessageTypeVoiceMessage
	MessageTypeVideoMessage
	MessageTypeTyping
	MessageTypeRecordingVoice
	MessageTypeRecordingVideo
	MessageTypeService
)

// CallResult records the outcome of a Call-type message.
type CallResult uint8

const (
	CallResultUndefined CallResult = iota
	CallResultAnswered
	CallResultMissed
	CallResultRejected
	CallResultBusy
	CallResultOffline
)

// MessageStatus tracks a chat message's delivery lifecycle.
type MessageStatus uint8

const (
	MessageStatusUndefined MessageStatus = iota
	MessageStatusCreated
	MessageStatusSent
	MessageStatusDelivered
	MessageStatusRead
	MessageStatusModified
	MessageStatusDeleted
)

// Message is one chat entry: a text message, a call log line, or a system
// event (join/leave/typing), depending on Type.
type Message struct {
	GUID             string        `json:"guid"`
	Timestamp        int64         `json:"dt"`
	Type             MessageType   `json:"type"`
	AuthorID         int64         `json:"author_id"`
	AuthorName       string        `json:"author_name,omitempty"`
	SenderID         int64         `json:"sender_id"`
	SenderName       string        `json:"sender_name,omitempty"`
	SubscriberID     int64         `json:"subscriber_id"`
	SubscriberName   string        `json:"subscriber_name,omitempty"`
	ConferenceTag    string        `json:"conference_tag,omitempty"`
	ConferenceName   string        `json:"conference_name,omitempty"`
	Status           MessageStatus `json:"status"`
	Text             string        `json:"text,omitempty"`
	CallDuration     int32         `json:"call_duration,omitempty"`
	CallResult       CallResult    `json:"call_result,omitempty"`
	Preview          string        `json:"preview,omitempty"`
	Data             string        `json:"data,omitempty"`
	URL              string        `json:"url,omitempty"`
}

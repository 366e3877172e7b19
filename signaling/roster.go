package signaling

// ChangeContactState notifies the client of a directory contact's presence
// transition.
type ChangeContactState struct {
	ID    int64       `json:"id"`
	State MemberState `json:"state"`
}

func (ChangeContactState) CommandName() string { return "change_contact_state" }

// TurnSpeaker carries no fields; it asks the conference moderator to pass
// the floor to the caller.
type TurnSpeaker struct{}

func (TurnSpeaker) CommandName() string { return "turn_speaker" }

// ChangeMemberState pushes updated roster entries (presence, grants,
// device flags) for one or more conference members.
type ChangeMemberState struct {
	Members []Member `json:"members"`
}

func (ChangeMemberState) CommandName() string { return "change_member_state" }

// MemberActionKind enumerates the roster-management actions a moderator (or
// the server) can apply to a set of member ids.
type MemberActionKind uint8

const (
	MemberActionUndefined MemberActionKind = iota
	MemberActionTurnCamera
	MemberActionTurnMicrophone
	MemberActionTurnDemonstration
	MemberActionTurnSpeaker
	MemberActionMoveToTop
	MemberActionEnableRemoteControl
	MemberActionDisableRemoteControl
	MemberActionMuteMicrophone
	MemberActionDisconnectFromConference
	MemberActionChangeGrants
)

// MemberActionResult enumerates the outcome reported back for a
// MemberAction request.
type MemberActionResult uint8

const (
	MemberActionResultUndefined MemberActionResult = iota
	MemberActionResultOK
	MemberActionResultNotAllowed
	MemberActionResultAccepted
	MemberActionResultRejected
	MemberActionResultBusy
)

// MemberAction both requests a roster action (Action + IDs [+ Grants for
// MemberActionChangeGrants]) and carries its asynchronous Result, echoing
// who (ActorID/ActorName) triggered it.
type MemberAction struct {
	IDs       []int64             `json:"ids,omitempty"`
	Action    MemberActionKind    `json:"action,omitempty"`
	Result    MemberActionResult  `json:"result,omitempty"`
	ActorID   int64               `json:"actor_id,omitempty"`
	ActorName string              `json:"actor_name,omitempty"`
	Grants    uint32              `json:"grants,omitempty"`
}

func (MemberAction) CommandName() string { return "member_action" }

// WantSpeak announces (or retracts) a raised-hand request to speak.
type WantSpeak struct {
	UserID   int64  `json:"user_id"`
	UserName string `json:"user_name"`
	IsSpeak  bool   `json:"is_speak"`
}

func (WantSpeak) CommandName() string { return "want_speak" }

// ScheduleConnect requests a conference be auto-created at a scheduled time,
// bounded by TimeLimit once it starts.
type ScheduleConnect struct {
	Tag       string `json:"tag"`
	Name      string `json:"name"`
	TimeLimit uint64 `json:"time_limit"`
}

func (ScheduleConnect) CommandName() string { return "schedule_connect" }

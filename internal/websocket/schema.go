package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionMediaGranted Action = "media_granted"
	ActionMediaDenied  Action = "media_denied"
	ActionStart        Action = "start"
	ActionDraft        Action = "draft"
	ActionSubmit       Action = "submit"
	ActionEnd          Action = "end"
	ActionBack         Action = "back"
	ActionStay         Action = "stay"
	ActionLeave        Action = "leave"
	ActionBlur         Action = "blur"
	ActionHidden       Action = "hidden"
	ActionPaste        Action = "paste"
	ActionPing         Action = "ping"
)

// ClientMessage is the single request envelope; fields beyond Action are
// populated per action.
type ClientMessage struct {
	Action Action `json:"action"`
	Text   string `json:"text,omitempty"`   // draft
	Reason string `json:"reason,omitempty"` // media_denied
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventState     Event = "state"
	EventPhase     Event = "phase"
	EventQuestion  Event = "question"
	EventCountdown Event = "countdown"
	EventSaved     Event = "saved"
	EventSubmitted Event = "submitted"
	EventNotice    Event = "notice"
	EventModal     Event = "modal"
	EventGuard     Event = "guard"
	EventMedia     Event = "media"
	EventEvaluated Event = "evaluated"
	EventEnded     Event = "ended"
	EventError     Event = "error"
	EventPong      Event = "pong"
)

// QuestionPayload is the client-visible slice of a question.
type QuestionPayload struct {
	ID           string `json:"id"`
	QuestionText string `json:"question_text"`
	TimeLimitSec int    `json:"time_limit_sec"`
}

type PhaseMessage struct {
	Event Event  `json:"event"`
	Phase string `json:"phase"`
}

type QuestionMessage struct {
	Event     Event           `json:"event"`
	Index     int             `json:"index"`
	Question  QuestionPayload `json:"question"`
	Remaining int             `json:"remaining_sec"`
}

type CountdownMessage struct {
	Event     Event `json:"event"`
	Index     int   `json:"index"`
	Remaining int   `json:"remaining_sec"`
}

type SavedMessage struct {
	Event Event `json:"event"`
	Index int   `json:"index"`
}

type SubmittedMessage struct {
	Event Event  `json:"event"`
	Index int    `json:"index"`
	Cause string `json:"cause"`
}

type NoticeMessage struct {
	Event   Event  `json:"event"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Index   int    `json:"index"`
}

type ModalMessage struct {
	Event   Event  `json:"event"`
	Message string `json:"message"`
}

// GuardMessage tells the client to install or remove its exit
// interception listeners (beforeunload, history trapping).
type GuardMessage struct {
	Event    Event `json:"event"`
	Attached bool  `json:"attached"`
}

// MediaMessage carries a media lifecycle command, currently only "stop".
type MediaMessage struct {
	Event Event  `json:"event"`
	Op    string `json:"op"`
}

// EvaluationMessage carries the instant per-answer feedback sent after a
// successful manual submission.
type EvaluationMessage struct {
	Event    Event   `json:"event"`
	Index    int     `json:"index"`
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

type EndedMessage struct {
	Event     Event `json:"event"`
	Completed bool  `json:"completed"`
}

type ErrorMessage struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongMessage struct {
	Event Event `json:"event"`
}

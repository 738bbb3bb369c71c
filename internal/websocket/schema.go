package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAutosave Action = "autosave"
	ActionState    Action = "state"
	ActionPing     Action = "ping"
)

// Request is the single client message shape; unused fields stay empty.
type Request struct {
	Action Action `json:"action"`
	QID    string `json:"q_id,omitempty"`
	Answer string `json:"ans,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError   Event = "error"
	EventSuccess Event = "success"
	EventState   Event = "state"
	EventPong    Event = "pong"
)

type SavedResponse struct {
	Event  Event  `json:"event"`
	Status string `json:"status"`
}

// StateResponse carries the live attempt view: draft answers plus the
// remaining clock.
type StateResponse struct {
	Event Event       `json:"event"`
	State interface{} `json:"state"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

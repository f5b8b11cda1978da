package flow

// EventKind distinguishes free text from the selection of an offered option.
type EventKind string

const (
	EventKindText      EventKind = "text"
	EventKindSelection EventKind = "selection"
)

// Event is one inbound conversational turn. Payload carries the raw text for
// text events and the option token for selections.
type Event struct {
	SessionID string
	Kind      EventKind
	Payload   string
}

// Option is a selectable choice offered back to the operator. Token is what
// comes back in the next selection event.
type Option struct {
	Label string
	Token string
}

// Prompt is the engine's reply: what to say and, optionally, what can be
// picked next.
type Prompt struct {
	SessionID string
	Text      string
	Options   []Option
}

func prompt(sessionID, text string, options ...Option) *Prompt {
	return &Prompt{SessionID: sessionID, Text: text, Options: options}
}

package domain

// Role identifies the author of a turn. The values are sent verbatim on the
// wire, so they must match what the generation service expects.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one message in a transcript. Immutable once appended.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Attachment is a transient binary + MIME pair attached to a single outbound
// call. It is never stored in the transcript.
type Attachment struct {
	Bytes    []byte
	MIMEType string
}

// Transcript is an ordered, session-scoped message log. Append order is
// chronological order. Transcript is not safe for concurrent use; callers
// must serialize access (the session registry does).
type Transcript struct {
	turns []Turn
}

func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append adds a turn at the end of the log.
func (t *Transcript) Append(turn Turn) {
	t.turns = append(t.turns, turn)
}

// Recent returns a copy of the last n turns in original order. When fewer
// than n turns exist, all of them are returned. The transcript itself is
// not modified.
func (t *Transcript) Recent(n int) []Turn {
	if n <= 0 {
		return nil
	}
	start := len(t.turns) - n
	if start < 0 {
		start = 0
	}
	out := make([]Turn, len(t.turns)-start)
	copy(out, t.turns[start:])
	return out
}

// All returns a copy of the full transcript, for display purposes.
func (t *Transcript) All() []Turn {
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// Len reports the number of turns in the log.
func (t *Transcript) Len() int {
	return len(t.turns)
}

// Clear empties the transcript. Irreversible.
func (t *Transcript) Clear() {
	t.turns = nil
}

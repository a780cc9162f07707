package domain

import "time"

// Session is the conversational state created on successful authentication
// and destroyed on logout. It carries no ambient/global state — the session
// registry passes it explicitly through the call chain.
type Session struct {
	Identity   SessionIdentity
	Transcript *Transcript
	CreatedAt  time.Time
}

func NewSession(identity SessionIdentity) *Session {
	return &Session{
		Identity:   identity,
		Transcript: NewTranscript(),
		CreatedAt:  time.Now().UTC(),
	}
}

package proxy

import "github.com/google/uuid"

// Trace correlates the log lines of a single proxied connection, the same
// way internal/dot's Trace correlates a single DoT connection's queries.
type Trace struct {
	id uuid.UUID
}

func NewTrace() *Trace {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return &Trace{id: id}
}

func (t *Trace) ShortID() string {
	s := t.id.String()
	if len(s) < 7 {
		return s
	}
	return s[len(s)-7:]
}

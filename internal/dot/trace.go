package dot

import (
	"github.com/google/uuid"
)

// Trace correlates the log lines of a single DoT connection (spec
// section 5: a connection can carry many sequential queries, answered in
// order).
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

func (t *Trace) ID() string {
	return t.id.String()
}

// ShortID returns only the last 7 characters — unique enough for a
// single server's logs.
func (t *Trace) ShortID() string {
	s := t.ID()
	if len(s) < 7 {
		return s
	}
	return s[len(s)-7:]
}

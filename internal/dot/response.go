package dot

import (
	"time"

	"github.com/miekg/dns"
)

// Response wraps a single answer, its error (if any), and how long it
// took to produce.
type Response struct {
	Msg      *dns.Msg
	Err      error
	Duration time.Duration
}

func (r *Response) HasError() bool {
	return r.Err != nil
}

func (r *Response) IsEmpty() bool {
	return r.Msg == nil
}

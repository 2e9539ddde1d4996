package registry

import "time"

// Kind distinguishes the two flavours of provisioned identity.
type Kind string

const (
	KindClient  Kind = "client"
	KindService Kind = "service"
)

// Identity is a principal in the overlay, keyed by its certificate's
// Common Name. IssuedAt is parsed from an "issued_at" key in the
// endpoint's JSON record, if present (spec section 3's "issuance
// metadata"); everything else unrecognised lands in Metadata.
type Identity struct {
	CN       string
	Kind     Kind
	Name     string
	IssuedAt time.Time
	Metadata map[string]string
}

func (id Identity) isService() bool {
	return id.Kind == KindService
}

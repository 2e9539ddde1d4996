package registry

import "errors"

var (
	// ErrIdentityNotFound is returned by LookupIdentity for an unknown CN.
	ErrIdentityNotFound = errors.New("identity not found")

	// ErrUnauthorized is returned by ResolveName/LookupRoute when the caller
	// is not in the matched zone's allow-list.
	ErrUnauthorized = errors.New("identity not authorized for zone")

	// ErrNotInAnyZone is returned by ResolveName when no zone matches qname,
	// or the matched zone has no record for the resolved label.
	ErrNotInAnyZone = errors.New("name is not served by any zone")

	// ErrDenied is returned by LookupRoute when the caller is not in the
	// matched zone's allow-list (mirrors ErrUnauthorized for the proxy's
	// vocabulary, per spec section 4.3).
	ErrDenied = errors.New("identity denied for host")

	// ErrNoRoute is returned by LookupRoute when no route is registered for
	// the matched zone's service_cn.
	ErrNoRoute = errors.New("no route registered for host")

	// ErrConfigMalformed is returned by Load/Parse when a registry file
	// cannot be read or parsed. Invariant violations are not errors: the
	// offending entries are pruned or dropped with a warning.
	ErrConfigMalformed = errors.New("registry configuration malformed")
)

package registry

import (
	"sort"
	"strings"
)

// ZoneMatch is the result of a successful, authorized name resolution: the
// zone suffix that matched, the relative label used to find the record,
// and the record itself.
type ZoneMatch struct {
	Suffix string
	Label  string
	Record Record
}

// Snapshot is an immutable, internally-consistent view of the identity,
// zone and route tables. Readers take a Snapshot from a Registry at the
// start of a handler and keep it for that handler's lifetime (spec
// section 3/9): no reader ever observes a torn view across the three
// tables.
type Snapshot struct {
	identities map[string]Identity
	zones      []*Zone // sorted by len(Suffix) descending: longest match first
	routes     map[string]Route
}

func newSnapshot() *Snapshot {
	return &Snapshot{
		identities: make(map[string]Identity),
		routes:     make(map[string]Route),
	}
}

func normalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.TrimSuffix(name, ".")
	return name
}

func (s *Snapshot) sortZones() {
	sort.Slice(s.zones, func(i, j int) bool {
		return len(s.zones[i].Suffix) > len(s.zones[j].Suffix)
	})
}

func (s *Snapshot) findZone(name string) *Zone {
	name = normalizeName(name)
	for _, z := range s.zones {
		if z.matches(name) {
			return z
		}
	}
	return nil
}

// LookupIdentity is the constant-time identity lookup of spec section 4.1.
func (s *Snapshot) LookupIdentity(cn string) (Identity, error) {
	id, ok := s.identities[cn]
	if !ok {
		return Identity{}, ErrIdentityNotFound
	}
	return id, nil
}

// ResolveName implements spec section 4.1's resolve_name operation.
func (s *Snapshot) ResolveName(cn, qname string) (ZoneMatch, error) {
	qname = normalizeName(qname)

	z := s.findZone(qname)
	if z == nil {
		return ZoneMatch{}, ErrNotInAnyZone
	}
	if !z.allows(cn) {
		return ZoneMatch{}, ErrUnauthorized
	}

	rec, ok := z.record(qname)
	if !ok {
		return ZoneMatch{}, ErrNotInAnyZone
	}

	label := z.label(qname)
	if _, ok := z.Records[label]; !ok {
		label = "@"
	}

	return ZoneMatch{
		Suffix: z.Suffix,
		Label:  label,
		Record: rec,
	}, nil
}

// LookupRoute implements spec section 4.1's lookup_route_for_host
// operation.
func (s *Snapshot) LookupRoute(cn, host string) (Route, error) {
	host = normalizeName(host)

	z := s.findZone(host)
	if z == nil {
		return Route{}, ErrNoRoute
	}
	if !z.allows(cn) {
		return Route{}, ErrDenied
	}

	route, ok := s.routes[z.ServiceCN]
	if !ok {
		return Route{}, ErrNoRoute
	}
	return route, nil
}

// ZoneCount reports how many zones this snapshot carries, for metrics.
func (s *Snapshot) ZoneCount() int {
	return len(s.zones)
}

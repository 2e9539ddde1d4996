package dot

import (
	"net"
	"strings"

	"github.com/miekg/dns"

	"github.com/ztdns/overlay/internal/registry"
)

// Outcome records which branch of spec section 4.2's answering policy
// fired, for logging and metrics.
type Outcome string

const (
	OutcomeZoneMatch Outcome = "zone_match"
	OutcomeForward   Outcome = "forward"
)

// Decision is the result of evaluating spec section 4.2 steps 1-2 against
// a single query.
type Decision struct {
	Outcome Outcome
	Match   registry.ZoneMatch
}

// Decide implements spec section 4.2 steps 1-2: take the first question,
// lowercase/dot-strip the name, and ask the registry to resolve it. A
// ZoneMatch decides the query is answered authoritatively; Unauthorized or
// NotInAnyZone both forward to the public upstream (spec section 4.2 step
// 4 and section 7's error-kind table both collapse these two outcomes into
// the same forwarding behavior).
func Decide(snap *registry.Snapshot, cn string, query *dns.Msg) (Decision, error) {
	if len(query.Question) == 0 {
		return Decision{}, ErrEmptyQuery
	}

	name := canonicalName(query.Question[0].Name)

	match, err := snap.ResolveName(cn, name)
	if err != nil {
		// Registry lookup failures (including ErrUnauthorized and
		// ErrNotInAnyZone) are never fatal; treat as "forward" per spec
		// section 4.2's error model.
		return Decision{Outcome: OutcomeForward}, nil
	}

	return Decision{Outcome: OutcomeZoneMatch, Match: match}, nil
}

// BuildAnswer implements spec section 4.2 step 3: exactly one answer RR,
// no additional/authority sections. A records always carry the overlay's
// published proxy address, never whatever literal happens to be stored in
// the zone's record (spec section 4.2: "A private-zone answer must NEVER
// leak the real backend address... A records always return the proxy's
// public IPv4" — testable property 1 holds regardless of zone data).
func BuildAnswer(query *dns.Msg, match registry.ZoneMatch, proxyPublicIPv4 string) *dns.Msg {
	reply := new(dns.Msg)
	reply.SetReply(query)
	reply.Authoritative = true

	qname := dns.Fqdn(query.Question[0].Name)
	hdr := dns.RR_Header{
		Name:   qname,
		Class:  dns.ClassINET,
		Ttl:    DefaultAnswerTTL,
		Rrtype: dns.TypeA,
	}

	switch match.Record.Type {
	case registry.RecordA:
		hdr.Rrtype = dns.TypeA
		reply.Answer = []dns.RR{&dns.A{
			Hdr: hdr,
			A:   net.ParseIP(proxyPublicIPv4),
		}}
	case registry.RecordCNAME:
		hdr.Rrtype = dns.TypeCNAME
		target := match.Record.RData
		if !strings.HasSuffix(target, ".") {
			target += "."
		}
		reply.Answer = []dns.RR{&dns.CNAME{
			Hdr:    hdr,
			Target: target,
		}}
	}

	return reply
}

package dot

import (
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ztdns/overlay/internal/registry"
)

func buildQuery(name string, qtype uint16) *dns.Msg {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(name), qtype)
	return m
}

func TestDecide_ZoneMatch(t *testing.T) {
	snap, err := registry.Parse(
		[]byte(`{"c0001": {"type": "client", "name": "alice"}}`),
		[]byte(`{"acme.internal": {"records": {"@": "A 203.0.113.9"}, "allowed_endpoints": ["c0001"]}}`),
		[]byte(`{}`),
	)
	require.NoError(t, err)

	decision, err := Decide(snap, "c0001", buildQuery("acme.internal", dns.TypeA))
	require.NoError(t, err)
	assert.Equal(t, OutcomeZoneMatch, decision.Outcome)
	assert.Equal(t, "acme.internal", decision.Match.Suffix)
}

func TestDecide_UnauthorizedForwards(t *testing.T) {
	snap, err := registry.Parse(
		[]byte(`{"c0002": {"type": "client", "name": "mallory"}}`),
		[]byte(`{"acme.internal": {"records": {"@": "A 203.0.113.9"}, "allowed_endpoints": ["c0001"]}}`),
		[]byte(`{}`),
	)
	require.NoError(t, err)

	decision, err := Decide(snap, "c0002", buildQuery("acme.internal", dns.TypeA))
	require.NoError(t, err)
	assert.Equal(t, OutcomeForward, decision.Outcome)
}

func TestDecide_NotInAnyZoneForwards(t *testing.T) {
	snap, err := registry.Parse([]byte(`{"c0001": {"type": "client", "name": "alice"}}`), []byte(`{}`), []byte(`{}`))
	require.NoError(t, err)

	decision, err := Decide(snap, "c0001", buildQuery("example.com", dns.TypeA))
	require.NoError(t, err)
	assert.Equal(t, OutcomeForward, decision.Outcome)
}

func TestDecide_EmptyQuestionErrors(t *testing.T) {
	snap, err := registry.Parse([]byte(`{}`), []byte(`{}`), []byte(`{}`))
	require.NoError(t, err)

	_, err = Decide(snap, "c0001", new(dns.Msg))
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

// Testable property 1: an A answer always carries the configured proxy
// address, regardless of whatever rdata the zone itself stores.
func TestBuildAnswer_AAlwaysUsesProxyAddress(t *testing.T) {
	query := buildQuery("acme.internal", dns.TypeA)
	match := registry.ZoneMatch{
		Suffix: "acme.internal",
		Label:  "@",
		Record: registry.Record{Type: registry.RecordA, RData: "10.0.0.99"},
	}

	reply := BuildAnswer(query, match, "198.51.100.200")
	require.Len(t, reply.Answer, 1)
	a, ok := reply.Answer[0].(*dns.A)
	require.True(t, ok)
	assert.Equal(t, "198.51.100.200", a.A.String())
	assert.True(t, reply.Authoritative)
	assert.Equal(t, DefaultAnswerTTL, a.Hdr.Ttl)
}

func TestBuildAnswer_CNAMEUsesZoneRData(t *testing.T) {
	query := buildQuery("web.acme.internal", dns.TypeA)
	match := registry.ZoneMatch{
		Suffix: "acme.internal",
		Label:  "web",
		Record: registry.Record{Type: registry.RecordCNAME, RData: "backend.corp"},
	}

	reply := BuildAnswer(query, match, "198.51.100.200")
	require.Len(t, reply.Answer, 1)
	c, ok := reply.Answer[0].(*dns.CNAME)
	require.True(t, ok)
	assert.Equal(t, "backend.corp.", c.Target)
}

func TestBuildAnswer_SingleAnswerOnly(t *testing.T) {
	query := buildQuery("acme.internal", dns.TypeA)
	match := registry.ZoneMatch{
		Suffix: "acme.internal",
		Record: registry.Record{Type: registry.RecordA, RData: "10.0.0.1"},
	}

	reply := BuildAnswer(query, match, "198.51.100.200")
	assert.Len(t, reply.Answer, 1)
	assert.Empty(t, reply.Ns)
	assert.Empty(t, reply.Extra)
}

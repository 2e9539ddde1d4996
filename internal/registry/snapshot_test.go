package registry

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	snap, err := Parse([]byte(sampleEndpoints), []byte(sampleZones), []byte(sampleRoutes))
	require.NoError(t, err)
	return snap
}

// Scenario 1 from spec section 8: authorized apex A record.
func TestResolveName_AuthorizedApex(t *testing.T) {
	snap := buildTestSnapshot(t)

	m, err := snap.ResolveName("c0001", "acme.internal")
	require.NoError(t, err, spew.Sdump(snap))
	assert.Equal(t, "acme.internal", m.Suffix)
	assert.Equal(t, "@", m.Label)
	assert.Equal(t, RecordA, m.Record.Type)
	assert.Equal(t, "203.0.113.9", m.Record.RData)
}

// Scenario 2: subdomain falls back to the apex record.
func TestResolveName_SubdomainFallsBackToApex(t *testing.T) {
	snap := buildTestSnapshot(t)

	m, err := snap.ResolveName("c0001", "api.acme.internal")
	require.NoError(t, err)
	assert.Equal(t, "@", m.Label)
	assert.Equal(t, "203.0.113.9", m.Record.RData)
}

// Scenario 3: CNAME record, unrelated to trailing-dot rendering (that's the
// dot package's job, exercised there) but the zone lookup is tested here.
func TestResolveName_CNAME(t *testing.T) {
	snap := buildTestSnapshot(t)

	m, err := snap.ResolveName("c0001", "web.acme.internal")
	require.NoError(t, err)
	assert.Equal(t, RecordCNAME, m.Record.Type)
	assert.Equal(t, "backend.corp", m.Record.RData)
}

// Scenario 4: unauthorized identity.
func TestResolveName_Unauthorized(t *testing.T) {
	snap := buildTestSnapshot(t)

	_, err := snap.ResolveName("c0002", "acme.internal")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestResolveName_NotInAnyZone(t *testing.T) {
	snap := buildTestSnapshot(t)

	_, err := snap.ResolveName("c0001", "example.com")
	assert.ErrorIs(t, err, ErrNotInAnyZone)
}

func TestResolveName_LongestSuffixWins(t *testing.T) {
	endpoints := `{"c0001": {"type": "client", "name": "alice"}}`
	zones := `{
		"internal": {"records": {"@": "A 198.51.100.1"}, "allowed_endpoints": ["c0001"]},
		"acme.internal": {"records": {"@": "A 203.0.113.9"}, "allowed_endpoints": ["c0001"]}
	}`
	snap, err := Parse([]byte(endpoints), []byte(zones), []byte(`{}`))
	require.NoError(t, err)

	m, err := snap.ResolveName("c0001", "acme.internal")
	require.NoError(t, err)
	assert.Equal(t, "acme.internal", m.Suffix, "the longer, more specific suffix must win")
}

func TestResolveName_IsDeterministic(t *testing.T) {
	snap := buildTestSnapshot(t)

	m1, err1 := snap.ResolveName("c0001", "acme.internal")
	m2, err2 := snap.ResolveName("c0001", "acme.internal")
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, m1, m2)
}

// Scenario 5: proxy route lookup for an authorized identity. The host
// falls inside acme.internal, whose service_cn owns the route.
func TestLookupRoute_Authorized(t *testing.T) {
	snap := buildTestSnapshot(t)

	route, err := snap.LookupRoute("c0001", "api.acme.internal")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", route.Host)
	assert.Equal(t, 8080, route.Port)
}

// Scenario 6: unknown host.
func TestLookupRoute_NoRoute(t *testing.T) {
	snap := buildTestSnapshot(t)

	_, err := snap.LookupRoute("c0001", "other.example")
	assert.ErrorIs(t, err, ErrNoRoute)
}

func TestLookupRoute_Denied(t *testing.T) {
	snap := buildTestSnapshot(t)

	_, err := snap.LookupRoute("c0002", "web.acme.internal")
	assert.ErrorIs(t, err, ErrDenied)
}

func TestLookupRoute_HostPortStrippedByCaller(t *testing.T) {
	// Port-stripping is the proxy's job (dispatch.go); the registry only
	// ever sees a bare host.
	snap := buildTestSnapshot(t)
	_, err := snap.LookupRoute("c0001", "web.acme.internal:8443")
	assert.ErrorIs(t, err, ErrNoRoute, "a host with a port suffix should not match any zone")
}

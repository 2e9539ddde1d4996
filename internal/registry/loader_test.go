package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleEndpoints = `{
	"c0001": {"type": "client", "name": "alice-laptop"},
	"c0002": {"type": "client", "name": "bob-laptop"},
	"svc-web": {"type": "service", "name": "web-backend"}
}`

const sampleZones = `{
	"acme.internal": {
		"records": {"@": "A 203.0.113.9"},
		"service_cn": "svc-web",
		"allowed_endpoints": ["c0001"]
	},
	"web.acme.internal": {
		"records": {"@": "CNAME backend.corp"},
		"allowed_endpoints": ["c0001"]
	}
}`

const sampleRoutes = `{
	"svc-web": {"host": "10.0.0.5", "port": 8080, "domains": ["acme.internal"], "name": "web-backend"}
}`

func TestParse_BasicSnapshot(t *testing.T) {
	snap, err := Parse([]byte(sampleEndpoints), []byte(sampleZones), []byte(sampleRoutes))
	require.NoError(t, err)

	id, err := snap.LookupIdentity("c0001")
	require.NoError(t, err)
	assert.Equal(t, KindClient, id.Kind)

	_, err = snap.LookupIdentity("ghost")
	assert.ErrorIs(t, err, ErrIdentityNotFound)

	assert.Equal(t, 2, snap.ZoneCount())
}

func TestParse_PrunesUnknownAllowedIdentity(t *testing.T) {
	zones := `{
		"acme.internal": {
			"records": {"@": "A 203.0.113.9"},
			"allowed_endpoints": ["c0001", "ghost-cn"]
		}
	}`
	snap, err := Parse([]byte(sampleEndpoints), []byte(zones), []byte(`{}`))
	require.NoError(t, err)

	z := snap.zones[0]
	assert.True(t, z.allows("c0001"))
	assert.False(t, z.allows("ghost-cn"))
}

func TestParse_DropsZoneWithInvalidServiceCN(t *testing.T) {
	zones := `{
		"acme.internal": {
			"records": {"@": "A 203.0.113.9"},
			"service_cn": "c0001",
			"allowed_endpoints": ["c0001"]
		}
	}`
	// c0001 is a client, not a service: the zone must be dropped per spec
	// section 3's invariant that service_cn resolves to a service identity.
	snap, err := Parse([]byte(sampleEndpoints), []byte(zones), []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, 0, snap.ZoneCount())
}

func TestParse_DropsRouteForNonServiceCN(t *testing.T) {
	routes := `{"c0001": {"host": "10.0.0.1", "port": 80}}`
	snap, err := Parse([]byte(sampleEndpoints), []byte(`{}`), []byte(routes))
	require.NoError(t, err)
	_, err = snap.LookupRoute("c0001", "anything")
	assert.ErrorIs(t, err, ErrNoRoute)
	assert.NotContains(t, snap.routes, "c0001")
}

func TestParse_MalformedJSON(t *testing.T) {
	_, err := Parse([]byte(`not json`), []byte(sampleZones), []byte(sampleRoutes))
	assert.ErrorIs(t, err, ErrConfigMalformed)
}

func TestParse_IssuedAtParsedFromMetadata(t *testing.T) {
	endpoints := `{"c0001": {"type": "client", "name": "alice", "issued_at": "2026-01-15T10:00:00Z"}}`
	snap, err := Parse([]byte(endpoints), []byte(`{}`), []byte(`{}`))
	require.NoError(t, err)

	id, err := snap.LookupIdentity("c0001")
	require.NoError(t, err)
	assert.True(t, id.IssuedAt.Equal(time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)))
	assert.NotContains(t, id.Metadata, "issued_at", "issued_at is a first-class field, not free-form metadata")
}

func TestParse_MalformedIssuedAtIsIgnored(t *testing.T) {
	endpoints := `{"c0001": {"type": "client", "name": "alice", "issued_at": "not-a-timestamp"}}`
	snap, err := Parse([]byte(endpoints), []byte(`{}`), []byte(`{}`))
	require.NoError(t, err)

	id, err := snap.LookupIdentity("c0001")
	require.NoError(t, err)
	assert.True(t, id.IssuedAt.IsZero())
}

func TestParse_MalformedRecordSkipped(t *testing.T) {
	zones := `{
		"acme.internal": {
			"records": {"@": "GARBAGE"},
			"allowed_endpoints": ["c0001"]
		}
	}`
	snap, err := Parse([]byte(sampleEndpoints), []byte(zones), []byte(`{}`))
	require.NoError(t, err)
	_, err = snap.ResolveName("c0001", "acme.internal")
	assert.ErrorIs(t, err, ErrNotInAnyZone)
}

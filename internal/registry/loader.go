package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Paths names the three JSON files the registry is built from, per spec
// section 6.
type Paths struct {
	Endpoints string
	Zones     string
	Routes    string
}

type rawIdentity struct {
	Type string `json:"type"`
	Name string `json:"name"`
	// Anything beyond type/name is free-form metadata.
	Extra map[string]any `json:"-"`
}

// UnmarshalJSON captures unrecognised fields into Extra, mirroring the
// original "type, name, ...metadata" shape from spec section 6.
func (r *rawIdentity) UnmarshalJSON(data []byte) error {
	type alias rawIdentity
	var tmp alias
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}

	var whole map[string]any
	if err := json.Unmarshal(data, &whole); err != nil {
		return err
	}
	delete(whole, "type")
	delete(whole, "name")
	tmp.Extra = whole

	*r = rawIdentity(tmp)
	return nil
}

type rawZone struct {
	Records          map[string]string `json:"records"`
	ServiceCN        string            `json:"service_cn"`
	AllowedEndpoints []string          `json:"allowed_endpoints"`
}

type rawRoute struct {
	Host    string   `json:"host"`
	Port    int      `json:"port"`
	Domains []string `json:"domains"`
	Name    string   `json:"name"`
}

// Load reads the three registry files and builds a validated Snapshot.
// A malformed file is a single, non-fatal error: the caller (Registry)
// is responsible for retaining the previous snapshot, per spec section 3.
func Load(paths Paths) (*Snapshot, error) {
	endpointsRaw, err := os.ReadFile(paths.Endpoints)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrConfigMalformed, paths.Endpoints, err)
	}
	zonesRaw, err := os.ReadFile(paths.Zones)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrConfigMalformed, paths.Zones, err)
	}
	routesRaw, err := os.ReadFile(paths.Routes)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrConfigMalformed, paths.Routes, err)
	}
	return Parse(endpointsRaw, zonesRaw, routesRaw)
}

// Parse builds a validated Snapshot from the three files' raw bytes. Split
// out from Load so tests don't need a filesystem.
func Parse(endpointsJSON, zonesJSON, routesJSON []byte) (*Snapshot, error) {
	var rawEndpoints map[string]rawIdentity
	if err := json.Unmarshal(endpointsJSON, &rawEndpoints); err != nil {
		return nil, fmt.Errorf("%w: endpoints.json: %w", ErrConfigMalformed, err)
	}

	var rawZones map[string]rawZone
	if err := json.Unmarshal(zonesJSON, &rawZones); err != nil {
		return nil, fmt.Errorf("%w: zones.json: %w", ErrConfigMalformed, err)
	}

	var rawRoutes map[string]rawRoute
	if err := json.Unmarshal(routesJSON, &rawRoutes); err != nil {
		return nil, fmt.Errorf("%w: routes.json: %w", ErrConfigMalformed, err)
	}

	snap := newSnapshot()

	for cn, ri := range rawEndpoints {
		var kind Kind
		switch ri.Type {
		case string(KindClient):
			kind = KindClient
		case string(KindService):
			kind = KindService
		default:
			Warn(fmt.Sprintf("registry: endpoint %s has unknown type %q, skipping", cn, ri.Type))
			continue
		}
		var issuedAt time.Time
		meta := make(map[string]string, len(ri.Extra))
		for k, v := range ri.Extra {
			if k == "issued_at" {
				if s, ok := v.(string); ok {
					if t, err := time.Parse(time.RFC3339, s); err == nil {
						issuedAt = t
						continue
					}
					Warn(fmt.Sprintf("registry: endpoint %s has malformed issued_at %q, ignoring", cn, s))
				}
				continue
			}
			meta[k] = fmt.Sprintf("%v", v)
		}
		snap.identities[cn] = Identity{
			CN:       cn,
			Kind:     kind,
			Name:     ri.Name,
			IssuedAt: issuedAt,
			Metadata: meta,
		}
	}

	for suffix, rz := range rawZones {
		suffix = normalizeName(suffix)

		z := &Zone{
			Suffix:            suffix,
			Records:           make(map[string]Record, len(rz.Records)),
			AllowedIdentities: make(map[string]struct{}, len(rz.AllowedEndpoints)),
		}

		for label, spec := range rz.Records {
			rec, ok := parseRecord(spec)
			if !ok {
				Warn(fmt.Sprintf("registry: zone %s label %s has malformed record %q, skipping", suffix, label, spec))
				continue
			}
			z.Records[label] = rec
		}

		for _, cn := range rz.AllowedEndpoints {
			if _, ok := snap.identities[cn]; !ok {
				Warn(fmt.Sprintf("registry: zone %s allows unknown identity %s, pruning", suffix, cn))
				continue
			}
			z.AllowedIdentities[cn] = struct{}{}
		}

		if rz.ServiceCN != "" {
			owner, ok := snap.identities[rz.ServiceCN]
			if !ok || !owner.isService() {
				Warn(fmt.Sprintf("registry: zone %s service_cn %s does not resolve to a service identity, dropping zone", suffix, rz.ServiceCN))
				continue
			}
			z.ServiceCN = rz.ServiceCN
		}

		snap.zones = append(snap.zones, z)
	}
	snap.sortZones()

	for cn, rr := range rawRoutes {
		owner, ok := snap.identities[cn]
		if !ok || !owner.isService() {
			Warn(fmt.Sprintf("registry: route %s does not resolve to a service identity, dropping route", cn))
			continue
		}
		snap.routes[cn] = Route{
			ServiceCN: cn,
			Host:      rr.Host,
			Port:      rr.Port,
			Domains:   rr.Domains,
			Name:      rr.Name,
		}
	}

	return snap, nil
}

// parseRecord splits the literal "<TYPE> <rdata>" format of spec section 6.
func parseRecord(spec string) (Record, bool) {
	parts := strings.SplitN(spec, " ", 2)
	if len(parts) != 2 {
		return Record{}, false
	}
	switch RecordType(parts[0]) {
	case RecordA, RecordCNAME:
		return Record{Type: RecordType(parts[0]), RData: parts[1]}, true
	default:
		return Record{}, false
	}
}

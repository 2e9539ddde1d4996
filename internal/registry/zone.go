package registry

import "strings"

// RecordType is one of the two record types this overlay understands.
// Non-goal: any DNS record type beyond these two.
type RecordType string

const (
	RecordA     RecordType = "A"
	RecordCNAME RecordType = "CNAME"
)

// Record is a single zone record, e.g. "A 10.0.0.1" or "CNAME backend.corp".
type Record struct {
	Type  RecordType
	RData string
}

// Zone is a private DNS zone: a suffix, its records keyed by relative
// label ("@" for the apex), an allow-list of identity CNs permitted to
// resolve inside it, and the service identity that owns it for routing.
type Zone struct {
	Suffix            string
	Records           map[string]Record
	AllowedIdentities map[string]struct{}
	ServiceCN         string
}

func (z *Zone) allows(cn string) bool {
	_, ok := z.AllowedIdentities[cn]
	return ok
}

// matches reports whether qname falls inside this zone: qname equals the
// suffix, or ends with "."+suffix.
func (z *Zone) matches(qname string) bool {
	if qname == z.Suffix {
		return true
	}
	return strings.HasSuffix(qname, "."+z.Suffix)
}

// label computes the relative label for qname within this zone, per spec
// section 4.1: "@" at the apex, otherwise the prefix with the trailing
// ".suffix" removed and any residual trailing dot stripped.
func (z *Zone) label(qname string) string {
	if qname == z.Suffix {
		return "@"
	}
	rel := strings.TrimSuffix(qname, "."+z.Suffix)
	rel = strings.TrimSuffix(rel, ".")
	if rel == "" {
		return "@"
	}
	return rel
}

// record looks up the record for qname, falling back to the apex record
// if the specific label isn't defined.
func (z *Zone) record(qname string) (Record, bool) {
	label := z.label(qname)
	if r, ok := z.Records[label]; ok {
		return r, true
	}
	if label != "@" {
		if r, ok := z.Records["@"]; ok {
			return r, true
		}
	}
	return Record{}, false
}

package dot

import "github.com/miekg/dns"

// dnsRecordTypes is a generic rrtype-to-name table used only for logging
// (which query types this resolver is being asked about), not for
// deciding behavior — this resolver only ever answers A/CNAME itself.
var dnsRecordTypes = map[uint16]string{
	1:   "A",
	2:   "NS",
	5:   "CNAME",
	6:   "SOA",
	12:  "PTR",
	15:  "MX",
	16:  "TXT",
	28:  "AAAA",
	33:  "SRV",
	41:  "OPT",
	257: "CAA",
}

func TypeToString(rrtype uint16) string {
	if name, ok := dnsRecordTypes[rrtype]; ok {
		return name
	}
	return "unknown"
}

var dnsRCodes = map[int]string{
	0: "NoError",
	1: "FormErr",
	2: "ServFail",
	3: "NXDomain",
	4: "NotImp",
	5: "Refused",
}

func RcodeToString(rcode int) string {
	if name, ok := dnsRCodes[rcode]; ok {
		return name
	}
	return "unknown"
}

func canonicalName(name string) string {
	return dns.CanonicalName(name)
}

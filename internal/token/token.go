// Package token verifies the signed configuration token described in
// spec section 3/6: an RS256 JWT whose single "data" claim carries the
// JSON-encoded installer payload an endpoint agent trusts before it binds
// to the resolver and proxy. The core doesn't consume this at runtime —
// the endpoint agent does, out of scope here — but ships the same
// verification logic as an operator debug command so the token format is
// exercised by code, not just documented (see cmd/ztdnsd's "token
// verify" subcommand).
package token

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidPayload is returned when the "data" claim cannot be decoded
// into a Payload.
var ErrInvalidPayload = errors.New("token: data claim is not a valid payload")

// Payload is the JSON object described in spec section 6.
type Payload struct {
	Server     string   `json:"server"`
	Proxy      string   `json:"proxy"`
	ServerName string   `json:"server_name"`
	Type       string   `json:"type"`
	Domains    []string `json:"domains,omitempty"`
	Expires    string   `json:"expires"`
}

type claims struct {
	Data string `json:"data"`
	jwt.RegisteredClaims
}

// Verify checks raw as an RS256-signed JWT against pub and, on success,
// returns the decoded Payload. It rejects any token not signed with
// RS256, matching the envelope's fixed algorithm (spec section 3:
// "algorithm RS256 over the CA key").
func Verify(raw string, pub *rsa.PublicKey) (Payload, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("token: unexpected signing method %v", t.Header["alg"])
		}
		return pub, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	if err != nil {
		return Payload{}, fmt.Errorf("token: verification failed: %w", err)
	}

	var payload Payload
	if err := json.Unmarshal([]byte(c.Data), &payload); err != nil {
		return Payload{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return payload, nil
}

// LoadCAPublicKey reads an RSA public key out of the overlay CA's PEM
// certificate file, for use with Verify.
func LoadCAPublicKey(caCertFile string) (*rsa.PublicKey, error) {
	pemBytes, err := os.ReadFile(caCertFile)
	if err != nil {
		return nil, fmt.Errorf("token: reading CA certificate: %w", err)
	}
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("token: no PEM block found in %s", caCertFile)
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("token: parsing CA certificate: %w", err)
	}
	pub, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("token: CA certificate does not carry an RSA public key")
	}
	return pub, nil
}

// Expired reports whether the payload's expires timestamp, parsed as
// RFC 3339, is in the past. A payload whose expires value does not parse
// as RFC 3339 (including ISO 8601 forms without a UTC offset) is treated
// as expired: fail closed.
func (p Payload) Expired(now time.Time) bool {
	t, err := time.Parse(time.RFC3339, p.Expires)
	if err != nil {
		return true
	}
	return now.After(t)
}

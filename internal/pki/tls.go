// Package pki builds the mutual-TLS server configuration shared by the DoT
// resolver and the routing proxy (spec sections 4.2/4.3 require identical
// TLS configuration: a server certificate signed by the overlay CA, and a
// client certificate required and verified against that same CA), and
// extracts the verified peer identity from a completed handshake.
package pki

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
)

// ErrNoPeerCertificate is returned when a TLS connection completed its
// handshake but presented no verified client certificate, or a certificate
// with an empty Common Name. Spec section 9: "fail closed if extraction
// yields nothing — never accept an empty CN."
var ErrNoPeerCertificate = errors.New("no verified peer certificate with a non-empty common name")

// ServerConfig describes the material needed to build the shared mTLS
// listener configuration.
type ServerConfig struct {
	CertFile string
	KeyFile  string
	CAFile   string
}

// BuildServerTLSConfig loads the server certificate/key and the CA used to
// both sign client certificates and verify them, returning a *tls.Config
// ready for both the DoT resolver and the routing proxy listeners.
func BuildServerTLSConfig(cfg ServerConfig) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("pki: loading server certificate: %w", err)
	}

	caPEM, err := os.ReadFile(cfg.CAFile)
	if err != nil {
		return nil, fmt.Errorf("pki: reading CA certificate: %w", err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caPEM) {
		return nil, fmt.Errorf("pki: no certificates found in %s", cfg.CAFile)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		ClientCAs:    pool,
		ClientAuth:   tls.RequireAndVerifyClientCert,
		MinVersion:   tls.VersionTLS12,
	}, nil
}

// PeerCN extracts the Common Name from a completed TLS handshake's verified
// peer certificate chain, failing closed on anything short of exactly one
// non-empty CN.
func PeerCN(state tls.ConnectionState) (string, error) {
	if len(state.PeerCertificates) == 0 {
		return "", ErrNoPeerCertificate
	}
	cn := state.PeerCertificates[0].Subject.CommonName
	if cn == "" {
		return "", ErrNoPeerCertificate
	}
	return cn, nil
}

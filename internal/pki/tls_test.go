package pki

import (
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPeerCN_NoCertificates(t *testing.T) {
	_, err := PeerCN(tls.ConnectionState{})
	assert.ErrorIs(t, err, ErrNoPeerCertificate)
}

func TestPeerCN_EmptyCommonName(t *testing.T) {
	state := tls.ConnectionState{
		PeerCertificates: []*x509.Certificate{
			{Subject: pkix.Name{CommonName: ""}},
		},
	}
	_, err := PeerCN(state)
	assert.ErrorIs(t, err, ErrNoPeerCertificate)
}

func TestPeerCN_Valid(t *testing.T) {
	state := tls.ConnectionState{
		PeerCertificates: []*x509.Certificate{
			{Subject: pkix.Name{CommonName: "c0001"}},
		},
	}
	cn, err := PeerCN(state)
	assert.NoError(t, err)
	assert.Equal(t, "c0001", cn)
}

// Package dot implements the DNS-over-TLS resolver of spec section 4.2:
// a mutually-authenticated TLS listener that answers authoritatively from
// the shared registry, or forwards verbatim to a public DoH upstream.
package dot

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"

	"github.com/ztdns/overlay/internal/metrics"
	"github.com/ztdns/overlay/internal/pki"
	"github.com/ztdns/overlay/internal/registry"
)

// Server is the DoT resolver: it owns the TLS listener, a reference to the
// shared registry, and the DoH upstream client.
type Server struct {
	Registry        *registry.Registry
	TLSConfig       *tls.Config
	Upstream        upstreamExchanger
	ProxyPublicIPv4 string
	Metrics         *metrics.Metrics
}

// ListenAndServe accepts connections on addr until ctx is cancelled. Every
// accepted connection runs in its own goroutine with no shared mutable
// state beyond the read-only registry snapshot (spec section 5).
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := tls.Listen("tcp", addr, s.TLSConfig)
	if err != nil {
		return fmt.Errorf("dot: listening on %s: %w", addr, err)
	}

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	Info(fmt.Sprintf("dot: listening on %s", addr))

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				Warn(fmt.Sprintf("dot: accept error: %v", err))
				continue
			}
		}
		go s.handleConn(conn)
	}
}

// handleConn implements spec section 4.2's per-connection contract:
// handshake, extract CN (fail closed), then loop read-answer-write until
// the peer closes or a transport error occurs. Any error here is fatal
// only for this connection (spec section 7).
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	tlsConn, ok := conn.(*tls.Conn)
	if !ok {
		return
	}
	if err := tlsConn.HandshakeContext(context.Background()); err != nil {
		Debug(fmt.Sprintf("dot: handshake failed: %v", err))
		return
	}

	cn, err := pki.PeerCN(tlsConn.ConnectionState())
	if err != nil {
		Debug(fmt.Sprintf("%v: %v", ErrAuthFailure, err))
		return
	}

	snap := s.Registry.Current()
	if _, err := snap.LookupIdentity(cn); err != nil {
		Debug(fmt.Sprintf("%v: unknown identity %s", ErrAuthFailure, cn))
		return
	}

	if s.Metrics != nil {
		s.Metrics.DotConnections.Inc()
	}

	trace := NewTrace()
	iteration := uint32(0)

	for {
		rawQuery, err := readFramed(tlsConn)
		if err != nil {
			return
		}

		// Each handler takes its own snapshot reference, so a mid-loop
		// registry reload never produces a torn view within one query.
		snap = s.Registry.Current()

		rawReply, decision, err := s.answerOne(context.Background(), snap, cn, rawQuery)
		iteration++
		if err != nil {
			Warn(fmt.Sprintf("%s-%d: %v", trace.ShortID(), iteration, err))
			return
		}

		if s.Metrics != nil {
			s.Metrics.DotQueries.WithLabelValues(string(decision)).Inc()
		}

		if err := writeFramed(tlsConn, rawReply); err != nil {
			return
		}
	}
}

// answerOne decodes rawQuery to find the question (the forward path still
// sends the original rawQuery and returns upstream bytes verbatim, per spec
// section 4.2 step 4), evaluates the answering policy, and returns the
// framed reply's payload bytes.
func (s *Server) answerOne(ctx context.Context, snap *registry.Snapshot, cn string, rawQuery []byte) ([]byte, Outcome, error) {
	query := new(dns.Msg)
	if err := query.Unpack(rawQuery); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrMalformedQuery, err)
	}
	if len(query.Question) > 0 {
		q := query.Question[0]
		Query(fmt.Sprintf("%s %s", TypeToString(q.Qtype), canonicalName(q.Name)))
	}

	decision, err := Decide(snap, cn, query)
	if err != nil {
		return nil, "", err
	}

	switch decision.Outcome {
	case OutcomeZoneMatch:
		start := time.Now()
		resp := &Response{Msg: BuildAnswer(query, decision.Match, s.ProxyPublicIPv4)}
		resp.Duration = time.Since(start)
		if resp.IsEmpty() {
			return nil, "", fmt.Errorf("%w: built an empty reply", ErrMalformedQuery)
		}
		packed, err := resp.Msg.Pack()
		if err != nil {
			resp.Err = err
			return nil, "", fmt.Errorf("%w: packing reply: %w", ErrMalformedQuery, err)
		}
		return packed, decision.Outcome, nil
	default:
		ctx, cancel := context.WithTimeout(ctx, DefaultDoHTimeout)
		defer cancel()
		start := time.Now()
		body, err := s.Upstream.Exchange(ctx, rawQuery)
		if s.Metrics != nil {
			s.Metrics.DotUpstreamCalls.Observe(time.Since(start).Seconds())
		}
		if err != nil {
			return nil, "", err
		}
		if reply := new(dns.Msg); reply.Unpack(body) == nil {
			Debug(fmt.Sprintf("forwarded, upstream rcode=%s", RcodeToString(reply.Rcode)))
		}
		return body, decision.Outcome, nil
	}
}

// Package proxy implements the mutually-authenticated L7 routing proxy of
// spec section 4.3: terminate mTLS, peek the cleartext preamble for a
// virtual host, and splice the connection to the private backend that
// owns it.
package proxy

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/ztdns/overlay/internal/metrics"
	"github.com/ztdns/overlay/internal/pki"
	"github.com/ztdns/overlay/internal/registry"
)

// Server owns the proxy's TLS listener and a reference to the shared
// registry. It shares its TLS configuration shape with internal/dot's
// Server, factored into internal/pki.
type Server struct {
	Registry  *registry.Registry
	TLSConfig *tls.Config
	Metrics   *metrics.Metrics
}

// ListenAndServe accepts connections on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := tls.Listen("tcp", addr, s.TLSConfig)
	if err != nil {
		return fmt.Errorf("proxy: listening on %s: %w", addr, err)
	}

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	Info(fmt.Sprintf("proxy: listening on %s", addr))

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				Warn(fmt.Sprintf("proxy: accept error: %v", err))
				continue
			}
		}
		go s.handleConn(conn)
	}
}

// handleConn drives spec section 4.3's state machine: Accepted →
// Authenticated → Peeked → Dispatched → Splicing → Closed. Any error in a
// pre-splice state ends the connection with at most one 502 line; errors
// in splicing close both sides (spec section 7).
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	tlsConn, ok := conn.(*tls.Conn)
	if !ok {
		return
	}
	if err := tlsConn.HandshakeContext(context.Background()); err != nil {
		Debug(fmt.Sprintf("proxy: handshake failed: %v", err))
		return
	}

	cn, err := pki.PeerCN(tlsConn.ConnectionState())
	if err != nil {
		Debug(fmt.Sprintf("proxy: %v", err))
		return
	}

	snap := s.Registry.Current()
	if _, err := snap.LookupIdentity(cn); err != nil {
		Debug(fmt.Sprintf("proxy: unknown identity %s", cn))
		return
	}

	if s.Metrics != nil {
		s.Metrics.ProxyConnections.Inc()
	}

	s.dispatch(tlsConn, snap, cn, NewTrace())
}

// dispatch implements spec section 4.3's post-authentication state
// machine: Peeked → Dispatched → Splicing → Closed. It takes a plain
// net.Conn rather than *tls.Conn so it can be driven directly by a
// net.Pipe fake in tests, the same way internal/dot's answerOne is
// factored out of handleConn and unit-tested without a real socket.
func (s *Server) dispatch(conn net.Conn, snap *registry.Snapshot, cn string, trace *Trace) {
	buf, err := peek(conn)
	if err != nil {
		// Zero bytes read before an error or the peek deadline: close
		// silently, per spec section 7's "or nothing, if no bytes were read".
		Debug(fmt.Sprintf("%s: peek: %v", trace.ShortID(), err))
		return
	}

	host, ok := hostHeader(buf)
	if !ok {
		s.reject(conn, trace, "no-host-header", ErrNoHostHeader)
		return
	}

	route, err := snap.LookupRoute(cn, host)
	if err != nil {
		s.reject(conn, trace, "no-route", err)
		return
	}

	dialStart := time.Now()
	backend, err := net.DialTimeout("tcp", fmt.Sprintf("%s:%d", route.Host, route.Port), DialTimeout)
	if s.Metrics != nil {
		s.Metrics.ProxyBackendDial.Observe(time.Since(dialStart).Seconds())
	}
	if err != nil {
		s.reject(conn, trace, "backend-dial", fmt.Errorf("%w: %w", ErrBackendDial, err))
		return
	}

	if s.Metrics != nil {
		s.Metrics.ProxyDispatches.WithLabelValues("spliced").Inc()
		s.Metrics.ProxyBytesSent.Add(float64(len(buf)))
	}

	if err := splice(conn, backend, buf); err != nil {
		Debug(fmt.Sprintf("%s: splice ended: %v", trace.ShortID(), err))
	}
}

// reject writes the fixed 502 line and records the dispatch outcome.
func (s *Server) reject(conn net.Conn, trace *Trace, reason string, cause error) {
	Debug(fmt.Sprintf("%s: rejecting (%s): %v", trace.ShortID(), reason, cause))
	if s.Metrics != nil {
		s.Metrics.ProxyDispatches.WithLabelValues(reason).Inc()
	}
	_, _ = conn.Write([]byte(BadGatewayResponse))
}

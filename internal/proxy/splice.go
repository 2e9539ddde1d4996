package proxy

import (
	"io"
	"net"
)

// halfCloser is implemented by connections (e.g. *net.TCPConn) that can
// close their write side without tearing down the read side.
type halfCloser interface {
	CloseWrite() error
}

// splice implements spec section 4.3's splice phase: the peek bytes are
// written to the backend first, then both directions are pumped
// concurrently with independent SpliceBufferSize buffers until each
// side's source reaches EOF or errors. A half-close on one direction is
// propagated as a write-half-close on the other connection so the
// draining side can still finish; connections that cannot half-close
// (e.g. the ends of a net.Pipe) are fully closed instead — close what you
// can, leak nothing.
func splice(client, backend net.Conn, peeked []byte) error {
	if len(peeked) > 0 {
		if _, err := backend.Write(peeked); err != nil {
			return err
		}
	}

	done := make(chan error, 2)
	go func() { done <- pump(backend, client) }() // client -> backend
	go func() { done <- pump(client, backend) }() // backend -> client

	err1 := <-done
	err2 := <-done

	client.Close()
	backend.Close()

	if err1 != nil {
		return err1
	}
	return err2
}

// pump copies from src to dst until src is exhausted, then half-closes
// (or, failing that, fully closes) dst so the other direction can
// finish draining without leaking either half-open socket.
func pump(dst, src net.Conn) error {
	buf := make([]byte, SpliceBufferSize)
	_, err := io.CopyBuffer(dst, src, buf)

	if hc, ok := dst.(halfCloser); ok {
		_ = hc.CloseWrite()
	} else {
		_ = dst.Close()
	}

	return err
}

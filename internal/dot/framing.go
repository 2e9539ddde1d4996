package dot

import (
	"encoding/binary"
	"fmt"
	"io"
)

// maxMessageSize is the largest message the 2-byte length prefix can carry.
const maxMessageSize = 0xFFFF

// readFramed implements the RFC 7858 framing of spec section 4.2 and 6:
// a two-byte big-endian length prefix followed by exactly that many bytes.
func readFramed(r io.Reader) ([]byte, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint16(lenBuf[:])
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// writeFramed writes msg with its two-byte big-endian length prefix.
func writeFramed(w io.Writer, msg []byte) error {
	if len(msg) > maxMessageSize {
		return fmt.Errorf("dot: message too large to frame: %d bytes", len(msg))
	}
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(msg)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(msg)
	return err
}

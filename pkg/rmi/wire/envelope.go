// Package wire implements the on-the-wire framing and envelope encoding
// shared by every RMI skeleton and stub in this module.
//
// Framing follows the record-marking scheme used by ONC RPC: each envelope
// is preceded by a 4-byte big-endian fragment header whose high bit marks
// the last (and, here, only) fragment and whose low 31 bits carry the
// fragment's length. One call occupies one fragment; keep-alive connections
// simply send further fragments in sequence.
//
// The envelope itself is encoded with github.com/rasky/go-xdr, the same
// codec the wider protocol stack in this repository's ancestry uses for
// wire structures. Method arguments and results are opaque payloads within
// the envelope, each encoded independently by the calling package so that
// pkg/rmi never needs to know the shape of any particular interface.
package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"net"

	xdr "github.com/rasky/go-xdr/xdr2"
)

const lastFragmentBit = 0x80000000

// Request is the envelope written by a stub and read by a skeleton.
type Request struct {
	// Interface identifies the remote interface, e.g. "naming.Service".
	Interface string
	// Method identifies the method within Interface, e.g. "CreateFile".
	Method string
	// Payload is the method's argument tuple, already encoded by the caller.
	Payload []byte `xdr:"opaque"`
}

// Reply is the envelope written by a skeleton and read by a stub.
type Reply struct {
	// OK is true when the call completed normally; Payload then carries
	// the method's encoded result. When false, ErrKind/ErrMessage carry a
	// reconstructable CallError.
	OK         bool
	Payload    []byte `xdr:"opaque"`
	ErrKind    uint32
	ErrMessage string
}

// WriteRequest frames and writes req to conn.
func WriteRequest(conn net.Conn, req *Request) error {
	return writeFragment(conn, req)
}

// ReadRequest reads and decodes one request fragment from conn.
func ReadRequest(conn net.Conn) (*Request, error) {
	data, err := readFragment(conn)
	if err != nil {
		return nil, err
	}
	req := &Request{}
	if _, err := xdr.Unmarshal(bytes.NewReader(data), req); err != nil {
		return nil, fmt.Errorf("wire: decode request: %w", err)
	}
	return req, nil
}

// WriteReply frames and writes rep to conn.
func WriteReply(conn net.Conn, rep *Reply) error {
	return writeFragment(conn, rep)
}

// ReadReply reads and decodes one reply fragment from conn.
func ReadReply(conn net.Conn) (*Reply, error) {
	data, err := readFragment(conn)
	if err != nil {
		return nil, err
	}
	rep := &Reply{}
	if _, err := xdr.Unmarshal(bytes.NewReader(data), rep); err != nil {
		return nil, fmt.Errorf("wire: decode reply: %w", err)
	}
	return rep, nil
}

func writeFragment(conn net.Conn, v any) error {
	var buf bytes.Buffer
	if _, err := xdr.Marshal(&buf, v); err != nil {
		return fmt.Errorf("wire: encode: %w", err)
	}

	length := uint32(buf.Len())
	if length&lastFragmentBit != 0 {
		return fmt.Errorf("wire: payload too large: %d bytes", length)
	}

	var header [4]byte
	binary.BigEndian.PutUint32(header[:], length|lastFragmentBit)

	if _, err := conn.Write(header[:]); err != nil {
		return fmt.Errorf("wire: write fragment header: %w", err)
	}
	if _, err := conn.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("wire: write fragment body: %w", err)
	}
	return nil
}

func readFragment(conn net.Conn) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(conn, header[:]); err != nil {
		return nil, err
	}

	word := binary.BigEndian.Uint32(header[:])
	length := word &^ lastFragmentBit

	body := make([]byte, length)
	if _, err := io.ReadFull(conn, body); err != nil {
		return nil, fmt.Errorf("wire: read fragment body: %w", err)
	}
	return body, nil
}

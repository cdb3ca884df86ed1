package rmi

import (
	"bytes"

	xdr "github.com/rasky/go-xdr/xdr2"
)

// Encode marshals v (an argument tuple or result struct belonging to some
// concrete stub/skeleton pair) into an opaque payload suitable for a
// wire.Request or wire.Reply. Every method-specific struct in pkg/naming
// and pkg/storage is encoded this way.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := xdr.Marshal(&buf, v); err != nil {
		return nil, NewError(KindRemoteInvocation, "encode %T: %v", v, err)
	}
	return buf.Bytes(), nil
}

// Decode unmarshals payload into v, the inverse of Encode.
func Decode(payload []byte, v any) error {
	if _, err := xdr.Unmarshal(bytes.NewReader(payload), v); err != nil {
		return NewError(KindRemoteInvocation, "decode %T: %v", v, err)
	}
	return nil
}

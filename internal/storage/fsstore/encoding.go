package fsstore

import (
	"encoding/base32"
	"fmt"
)

type hashEncoding struct {
	enc *base32.Encoding
}

func encodingFor(name string) (hashEncoding, error) {
	switch name {
	case "base32":
		return hashEncoding{enc: base32.StdEncoding}, nil
	}
	return hashEncoding{}, fmt.Errorf("unsupported hash encoding %q", name)
}

// valid reports whether name is a well-formed encoded hash.
func (h hashEncoding) valid(name string) bool {
	if name == "" {
		return false
	}
	_, err := h.enc.DecodeString(name)
	return err == nil
}

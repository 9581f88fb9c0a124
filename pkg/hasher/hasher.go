// Package hasher computes the fixed-length digests carried inside signed
// envelopes. The scheme identifier travels with every digest so verifiers
// know which function to re-run.
package hasher

import (
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/hubkit-labs/hubmsg-go/pkg/protocol"
)

// Digest pairs a hash output with the scheme that produced it.
type Digest struct {
	Scheme protocol.HashScheme
	Sum    []byte
}

// Sum hashes the encoded bytes under the named scheme. It is a pure
// function: the same input always yields the same digest.
func Sum(scheme protocol.HashScheme, data []byte) (Digest, error) {
	switch scheme {
	case protocol.HashSchemeBlake2b256:
		sum := blake2b.Sum256(data)
		return Digest{Scheme: scheme, Sum: sum[:]}, nil
	case protocol.HashSchemeBlake2b160:
		h, err := blake2b.New(20, nil)
		if err != nil {
			return Digest{}, fmt.Errorf("failed to construct blake2b-160: %w", err)
		}
		h.Write(data)
		return Digest{Scheme: scheme, Sum: h.Sum(nil)}, nil
	default:
		return Digest{}, fmt.Errorf("unknown hash scheme: %s", scheme)
	}
}

// Package signer provides the key capabilities that sign message hashes.
// Two schemes exist: custody-level ECDSA keys over secp256k1, which
// authorize delegate signers and sign address-ownership claims, and
// delegate-level Ed25519 keys, which sign every other message kind
// on behalf of an fid.
package signer

import (
	"errors"

	"github.com/hubkit-labs/hubmsg-go/pkg/protocol"
)

// ErrSignerUnavailable is returned when the underlying key material
// cannot be accessed (revoked, remote signer gone, device disconnected).
// It is the only recoverable failure at this layer.
var ErrSignerUnavailable = errors.New("signer unavailable: key material cannot be accessed")

// Signer is a long-lived capability that signs message hashes. A caller
// constructs one once and may pass it into many concurrent builds; key
// material is read-only during signing.
type Signer interface {
	// Scheme tags the capability variant so callers can dispatch on it
	// rather than on the concrete type.
	Scheme() protocol.SignatureScheme

	// PublicIdentity returns the identity recorded in the envelope's
	// signer field: a 32-byte Ed25519 public key or a 20-byte address.
	PublicIdentity() []byte

	// SignMessageHash signs a message digest and returns the signature
	// in the scheme's wire format.
	SignMessageHash(hash []byte) ([]byte, error)
}

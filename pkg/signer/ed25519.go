package signer

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/hubkit-labs/hubmsg-go/pkg/protocol"
)

// Ed25519Signer is the delegate-key capability. It produces 64-byte
// signatures and identifies itself by its 32-byte public key.
type Ed25519Signer struct {
	priv    ed25519.PrivateKey
	pub     ed25519.PublicKey
	revoked atomic.Bool
}

var _ Signer = (*Ed25519Signer)(nil)

// NewEd25519Signer wraps an existing private key.
func NewEd25519Signer(priv ed25519.PrivateKey) (*Ed25519Signer, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, errors.Errorf("invalid ed25519 private key length: expected %d bytes, got %d",
			ed25519.PrivateKeySize, len(priv))
	}
	return &Ed25519Signer{
		priv: priv,
		pub:  priv.Public().(ed25519.PublicKey),
	}, nil
}

// NewEd25519SignerFromSeedHex wraps a hex-encoded 32-byte seed.
func NewEd25519SignerFromSeedHex(seedHex string) (*Ed25519Signer, error) {
	seed, err := hex.DecodeString(trim0x(seedHex))
	if err != nil {
		return nil, errors.Wrap(err, "invalid ed25519 seed hex")
	}
	if len(seed) != ed25519.SeedSize {
		return nil, errors.Errorf("invalid ed25519 seed length: expected %d bytes, got %d",
			ed25519.SeedSize, len(seed))
	}
	return NewEd25519Signer(ed25519.NewKeyFromSeed(seed))
}

// GenerateEd25519Signer creates a capability around a fresh random key.
func GenerateEd25519Signer() (*Ed25519Signer, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate ed25519 key")
	}
	return NewEd25519Signer(priv)
}

// Scheme returns the Ed25519 capability tag.
func (s *Ed25519Signer) Scheme() protocol.SignatureScheme {
	return protocol.SignatureSchemeEd25519
}

// PublicIdentity returns the 32-byte public key.
func (s *Ed25519Signer) PublicIdentity() []byte {
	out := make([]byte, len(s.pub))
	copy(out, s.pub)
	return out
}

// PublicKey returns the signer's public key.
func (s *Ed25519Signer) PublicKey() ed25519.PublicKey {
	return s.pub
}

// SignMessageHash signs the digest with the delegate key.
func (s *Ed25519Signer) SignMessageHash(hash []byte) ([]byte, error) {
	if s.revoked.Load() {
		return nil, ErrSignerUnavailable
	}
	return ed25519.Sign(s.priv, hash), nil
}

// Revoke marks the key material inaccessible. Subsequent signing calls
// fail with ErrSignerUnavailable.
func (s *Ed25519Signer) Revoke() {
	s.revoked.Store(true)
}

func trim0x(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

package signer

import (
	"crypto/ecdsa"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/hubkit-labs/hubmsg-go/pkg/claims"
	"github.com/hubkit-labs/hubmsg-go/pkg/protocol"
)

// EcdsaSigner is the custody-key capability over secp256k1. It produces
// 65-byte r||s||v signatures, identifies itself by its derived 20-byte
// address, and additionally signs EIP-712 verification claims.
type EcdsaSigner struct {
	priv    *ecdsa.PrivateKey
	address common.Address
	revoked atomic.Bool
}

var _ Signer = (*EcdsaSigner)(nil)

// NewEcdsaSigner wraps an existing secp256k1 private key.
func NewEcdsaSigner(priv *ecdsa.PrivateKey) (*EcdsaSigner, error) {
	if priv == nil {
		return nil, errors.New("private key is nil")
	}
	return &EcdsaSigner{
		priv:    priv,
		address: crypto.PubkeyToAddress(priv.PublicKey),
	}, nil
}

// NewEcdsaSignerFromHex wraps a hex-encoded secp256k1 private key.
func NewEcdsaSignerFromHex(privHex string) (*EcdsaSigner, error) {
	priv, err := crypto.HexToECDSA(trim0x(privHex))
	if err != nil {
		return nil, errors.Wrap(err, "invalid secp256k1 private key hex")
	}
	return NewEcdsaSigner(priv)
}

// GenerateEcdsaSigner creates a capability around a fresh random key.
func GenerateEcdsaSigner() (*EcdsaSigner, error) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate secp256k1 key")
	}
	return NewEcdsaSigner(priv)
}

// Scheme returns the ECDSA capability tag.
func (s *EcdsaSigner) Scheme() protocol.SignatureScheme {
	return protocol.SignatureSchemeEcdsa
}

// PublicIdentity returns the 20-byte derived address.
func (s *EcdsaSigner) PublicIdentity() []byte {
	return s.address.Bytes()
}

// Address returns the signer's derived Ethereum address.
func (s *EcdsaSigner) Address() common.Address {
	return s.address
}

// SignMessageHash signs a 32-byte digest with the custody key, returning
// the compact r||s||v form.
func (s *EcdsaSigner) SignMessageHash(hash []byte) ([]byte, error) {
	if s.revoked.Load() {
		return nil, ErrSignerUnavailable
	}
	if len(hash) != 32 {
		return nil, errors.Errorf("digest must be 32 bytes, got %d", len(hash))
	}
	sig, err := crypto.Sign(hash, s.priv)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign digest")
	}
	return sig, nil
}

// SignTypedClaim computes the domain-separated EIP-712 hash of the claim
// and signs it. The result is embedded into a verification body as proof
// that this address consents to association with the claim's fid.
func (s *EcdsaSigner) SignTypedClaim(claim *protocol.VerificationClaim) ([]byte, error) {
	if s.revoked.Load() {
		return nil, ErrSignerUnavailable
	}
	digest, err := claims.Digest(claim)
	if err != nil {
		return nil, err
	}
	sig, err := crypto.Sign(digest, s.priv)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign typed claim")
	}
	return sig, nil
}

// Revoke marks the key material inaccessible. Subsequent signing calls
// fail with ErrSignerUnavailable.
func (s *EcdsaSigner) Revoke() {
	s.revoked.Store(true)
}

package builder

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/hubkit-labs/hubmsg-go/pkg/codec"
	"github.com/hubkit-labs/hubmsg-go/pkg/hasher"
	"github.com/hubkit-labs/hubmsg-go/pkg/protocol"
)

// VerifyMessage checks a signed envelope: the hash is recomputed from the
// message data, never trusted, and the signature is verified against the
// signer identity under the envelope's scheme.
func VerifyMessage(m *protocol.Message) error {
	if m == nil {
		return fmt.Errorf("message is nil")
	}

	encoded, err := codec.EncodeMessageData(&m.Data)
	if err != nil {
		return fmt.Errorf("failed to re-encode message data: %w", err)
	}
	digest, err := hasher.Sum(m.HashScheme, encoded)
	if err != nil {
		return err
	}
	if !bytes.Equal(digest.Sum, m.Hash) {
		return fmt.Errorf("hash mismatch: computed %x, envelope carries %x", digest.Sum, m.Hash)
	}

	if RequiredScheme(m.Data.Type) != m.SignatureScheme {
		return fmt.Errorf("scheme mismatch: %s must be signed under %s, envelope carries %s",
			m.Data.Type, RequiredScheme(m.Data.Type), m.SignatureScheme)
	}

	switch m.SignatureScheme {
	case protocol.SignatureSchemeEd25519:
		if len(m.Signer) != protocol.Ed25519PublicKeyLength {
			return fmt.Errorf("invalid signer length: expected %d bytes, got %d",
				protocol.Ed25519PublicKeyLength, len(m.Signer))
		}
		if len(m.Signature) != protocol.Ed25519SignatureLength {
			return fmt.Errorf("invalid signature length: expected %d bytes, got %d",
				protocol.Ed25519SignatureLength, len(m.Signature))
		}
		if !ed25519.Verify(ed25519.PublicKey(m.Signer), m.Hash, m.Signature) {
			return fmt.Errorf("ed25519 signature verification failed")
		}
		return nil

	case protocol.SignatureSchemeEcdsa:
		if len(m.Signer) != protocol.EthAddressLength {
			return fmt.Errorf("invalid signer length: expected %d bytes, got %d",
				protocol.EthAddressLength, len(m.Signer))
		}
		if len(m.Signature) != protocol.EcdsaSignatureLength {
			return fmt.Errorf("invalid signature length: expected %d bytes, got %d",
				protocol.EcdsaSignatureLength, len(m.Signature))
		}
		sig := make([]byte, len(m.Signature))
		copy(sig, m.Signature)
		if sig[64] >= 27 {
			sig[64] -= 27
		}
		pub, err := crypto.SigToPub(m.Hash, sig)
		if err != nil {
			return fmt.Errorf("failed to recover public key: %w", err)
		}
		if !bytes.Equal(crypto.PubkeyToAddress(*pub).Bytes(), m.Signer) {
			return fmt.Errorf("ecdsa signature not produced by envelope signer")
		}
		return nil

	default:
		return fmt.Errorf("unknown signature scheme: %d", uint8(m.SignatureScheme))
	}
}

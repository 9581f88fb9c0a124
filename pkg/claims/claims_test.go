package claims

import (
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/hubkit-labs/hubmsg-go/pkg/protocol"
)

const testBlockHash = "0x1111111111111111111111111111111111111111111111111111111111111111"

// TestNewVerificationClaim checks parameter validation and hex length
// enforcement.
func TestNewVerificationClaim(t *testing.T) {
	addr := "0x2222222222222222222222222222222222222222"

	claim, err := NewVerificationClaim(1, addr, protocol.NetworkMainnet, testBlockHash)
	require.NoError(t, err)
	require.Equal(t, int64(1), claim.Fid)
	require.Len(t, claim.Address, protocol.EthAddressLength)
	require.Len(t, claim.BlockHash, protocol.BlockHashLength)

	// fid must be positive
	_, err = NewVerificationClaim(0, addr, protocol.NetworkMainnet, testBlockHash)
	require.Error(t, err)
	_, err = NewVerificationClaim(-3, addr, protocol.NetworkMainnet, testBlockHash)
	require.Error(t, err)

	// unknown network rejected, not defaulted
	_, err = NewVerificationClaim(1, addr, protocol.NetworkNone, testBlockHash)
	require.Error(t, err)

	// 19- and 21-byte decoded addresses rejected
	_, err = NewVerificationClaim(1, "0x22222222222222222222222222222222222222", protocol.NetworkMainnet, testBlockHash)
	require.Error(t, err)
	_, err = NewVerificationClaim(1, addr+"22", protocol.NetworkMainnet, testBlockHash)
	require.Error(t, err)
}

// TestDigestDeterministic checks that the typed-data digest is stable and
// sensitive to every claim field.
func TestDigestDeterministic(t *testing.T) {
	claim, err := NewVerificationClaim(1, "0x2222222222222222222222222222222222222222", protocol.NetworkMainnet, testBlockHash)
	require.NoError(t, err)

	first, err := Digest(claim)
	require.NoError(t, err)
	require.Len(t, first, 32)

	second, err := Digest(claim)
	require.NoError(t, err)
	require.Equal(t, first, second)

	other := *claim
	other.Fid = 2
	changed, err := Digest(&other)
	require.NoError(t, err)
	require.NotEqual(t, first, changed)

	other = *claim
	other.Network = protocol.NetworkDevnet
	changed, err = Digest(&other)
	require.NoError(t, err)
	require.NotEqual(t, first, changed)
}

// TestSignAndRecover checks the full ownership-proof ceremony: the
// address's own key signs the claim digest and is recoverable from the
// signature.
func TestSignAndRecover(t *testing.T) {
	priv, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(priv.PublicKey)

	claim, err := NewVerificationClaim(42, address.Hex(), protocol.NetworkDevnet, testBlockHash)
	require.NoError(t, err)

	digest, err := Digest(claim)
	require.NoError(t, err)
	sig, err := crypto.Sign(digest, priv)
	require.NoError(t, err)

	recovered, err := RecoverSigner(claim, sig)
	require.NoError(t, err)
	require.Equal(t, address, recovered)
	require.NoError(t, VerifyClaimSignature(claim, sig))

	// A 27/28 recovery byte is normalized, matching Ethereum tooling.
	sig27 := make([]byte, len(sig))
	copy(sig27, sig)
	sig27[64] += 27
	recovered, err = RecoverSigner(claim, sig27)
	require.NoError(t, err)
	require.Equal(t, address, recovered)
}

// TestVerifyClaimSignatureWrongKey checks that a signature from another
// key fails verification against the claimed address.
func TestVerifyClaimSignatureWrongKey(t *testing.T) {
	addressKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	otherKey, err := crypto.GenerateKey()
	require.NoError(t, err)

	claim, err := NewVerificationClaim(7,
		crypto.PubkeyToAddress(addressKey.PublicKey).Hex(), protocol.NetworkMainnet, testBlockHash)
	require.NoError(t, err)

	digest, err := Digest(claim)
	require.NoError(t, err)
	sig, err := crypto.Sign(digest, otherKey)
	require.NoError(t, err)

	require.Error(t, VerifyClaimSignature(claim, sig))
}

// TestRecoverSignerBadLength checks the signature length contract.
func TestRecoverSignerBadLength(t *testing.T) {
	claim, err := NewVerificationClaim(1, "0x2222222222222222222222222222222222222222", protocol.NetworkMainnet, testBlockHash)
	require.NoError(t, err)

	_, err = RecoverSigner(claim, make([]byte, 64))
	require.Error(t, err)
	_, err = RecoverSigner(claim, make([]byte, 66))
	require.Error(t, err)
}

// TestDomainConstants pins the domain separation inputs; changing any of
// them silently invalidates every previously issued claim.
func TestDomainConstants(t *testing.T) {
	require.Equal(t, "Farcaster Verify Ethereum Address", DomainName)
	require.Equal(t, "2.0.0", DomainVersion)
	salt, err := hexutil.Decode(DomainSalt)
	require.NoError(t, err)
	require.Len(t, salt, 32)
}

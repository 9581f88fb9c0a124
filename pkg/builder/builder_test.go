package builder

import (
	"crypto/ed25519"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hubkit-labs/hubmsg-go/pkg/claims"
	"github.com/hubkit-labs/hubmsg-go/pkg/codec"
	"github.com/hubkit-labs/hubmsg-go/pkg/hasher"
	"github.com/hubkit-labs/hubmsg-go/pkg/protocol"
	"github.com/hubkit-labs/hubmsg-go/pkg/signer"
)

const testBlockHash = "0x1111111111111111111111111111111111111111111111111111111111111111"

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	b, err := NewBuilder(nil)
	require.NoError(t, err)
	return b
}

func newDelegate(t *testing.T) *signer.Ed25519Signer {
	t.Helper()
	s, err := signer.GenerateEd25519Signer()
	require.NoError(t, err)
	return s
}

func newCustody(t *testing.T) *signer.EcdsaSigner {
	t.Helper()
	s, err := signer.GenerateEcdsaSigner()
	require.NoError(t, err)
	return s
}

func requireValidationFailed(t *testing.T, err error, field string) {
	t.Helper()
	var verr *ValidationFailedError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, field, verr.Field)
}

// TestBuildSignerAdd runs the reference scenario: zero-value delegate
// key, fid 1 on devnet, ECDSA custody signer. The envelope must carry
// the ECDSA scheme, the custody address, and a hash equal to hashing the
// canonical encoding of the assembled data.
func TestBuildSignerAdd(t *testing.T) {
	b := newTestBuilder(t)
	custody := newCustody(t)

	body := protocol.SignerBody{SignerPublicKey: make([]byte, 32)}
	opts := DataOptions{Fid: 1, Network: protocol.NetworkDevnet, Timestamp: 77}

	msg, err := b.BuildSignerAdd(body, opts, custody)
	require.NoError(t, err)

	require.Equal(t, protocol.SignatureSchemeEcdsa, msg.SignatureScheme)
	require.Equal(t, custody.Address().Bytes(), msg.Signer)
	require.Equal(t, protocol.MessageTypeSignerAdd, msg.Data.Type)

	encoded, err := codec.EncodeMessageData(&protocol.MessageData{
		Type:      protocol.MessageTypeSignerAdd,
		Fid:       1,
		Timestamp: 77,
		Network:   protocol.NetworkDevnet,
		Body:      body,
	})
	require.NoError(t, err)
	digest, err := hasher.Sum(protocol.HashSchemeBlake2b256, encoded)
	require.NoError(t, err)
	require.Equal(t, digest.Sum, msg.Hash)

	require.NoError(t, VerifyMessage(msg))
}

// TestSchemeBinding checks that the builder rejects the wrong capability
// before attempting to sign, in both directions.
func TestSchemeBinding(t *testing.T) {
	b := newTestBuilder(t)
	delegate := newDelegate(t)
	custody := newCustody(t)

	// signer authorizations require the custody (ECDSA) key
	_, err := b.BuildSignerAdd(protocol.SignerBody{SignerPublicKey: make([]byte, 32)},
		DataOptions{Fid: 1, Network: protocol.NetworkDevnet}, delegate)
	requireValidationFailed(t, err, "signer")

	// everything else requires a delegate (Ed25519) key
	_, err = b.BuildCastAdd(protocol.CastAddBody{Text: "hi"},
		DataOptions{Fid: 1, Network: protocol.NetworkMainnet}, custody)
	requireValidationFailed(t, err, "signer")

	// a revoked signer must still fail at the scheme gate, proving the
	// mismatch is caught before any signing is attempted
	revoked := newDelegate(t)
	revoked.Revoke()
	_, err = b.BuildSignerRemove(protocol.SignerBody{SignerPublicKey: make([]byte, 32)},
		DataOptions{Fid: 1, Network: protocol.NetworkDevnet}, revoked)
	requireValidationFailed(t, err, "signer")

	_, err = b.BuildCastAdd(protocol.CastAddBody{Text: "hi"},
		DataOptions{Fid: 1, Network: protocol.NetworkMainnet}, nil)
	requireValidationFailed(t, err, "signer")
}

// TestBuildCastAdd checks the delegate-signed happy path and envelope
// verification.
func TestBuildCastAdd(t *testing.T) {
	b := newTestBuilder(t)
	delegate := newDelegate(t)

	msg, err := b.BuildCastAdd(protocol.CastAddBody{
		Text:     "gm",
		Mentions: []int64{2},
	}, DataOptions{Fid: 1, Network: protocol.NetworkMainnet}, delegate)
	require.NoError(t, err)

	require.Equal(t, protocol.SignatureSchemeEd25519, msg.SignatureScheme)
	require.Equal(t, delegate.PublicIdentity(), msg.Signer)
	require.True(t, ed25519.Verify(delegate.PublicKey(), msg.Hash, msg.Signature))
	require.NoError(t, VerifyMessage(msg))

	// timestamp defaulted to now in protocol epoch seconds
	require.Greater(t, msg.Data.Timestamp, int64(0))
}

// TestBuildBoundaries covers the byte-length edges the validators must
// hold: max text exactly, one over, short target hash.
func TestBuildBoundaries(t *testing.T) {
	b := newTestBuilder(t)
	delegate := newDelegate(t)
	opts := DataOptions{Fid: 1, Network: protocol.NetworkMainnet}

	maxText := strings.Repeat("a", protocol.MaxCastTextBytes)
	_, err := b.BuildCastAdd(protocol.CastAddBody{Text: maxText}, opts, delegate)
	require.NoError(t, err)

	_, err = b.BuildCastAdd(protocol.CastAddBody{Text: maxText + "a"}, opts, delegate)
	requireValidationFailed(t, err, "text")

	_, err = b.BuildCastRemove(protocol.CastRemoveBody{TargetHash: make([]byte, 31)}, opts, delegate)
	requireValidationFailed(t, err, "targetHash")

	_, err = b.BuildVerificationRemove(protocol.VerificationRemoveBody{Address: make([]byte, 19)}, opts, delegate)
	requireValidationFailed(t, err, "address")
}

// TestBuildRejectsBadOptions checks metadata validation.
func TestBuildRejectsBadOptions(t *testing.T) {
	b := newTestBuilder(t)
	delegate := newDelegate(t)

	_, err := b.BuildCastAdd(protocol.CastAddBody{Text: "x"},
		DataOptions{Fid: 0, Network: protocol.NetworkMainnet}, delegate)
	requireValidationFailed(t, err, "fid")

	_, err = b.BuildCastAdd(protocol.CastAddBody{Text: "x"},
		DataOptions{Fid: -9, Network: protocol.NetworkMainnet}, delegate)
	requireValidationFailed(t, err, "fid")

	_, err = b.BuildCastAdd(protocol.CastAddBody{Text: "x"},
		DataOptions{Fid: 1, Network: protocol.Network(99)}, delegate)
	requireValidationFailed(t, err, "network")
}

// TestBuildSigningFailed checks that signer unavailability surfaces as a
// SigningFailedError carrying the cause.
func TestBuildSigningFailed(t *testing.T) {
	b := newTestBuilder(t)
	delegate := newDelegate(t)
	delegate.Revoke()

	_, err := b.BuildCastAdd(protocol.CastAddBody{Text: "x"},
		DataOptions{Fid: 1, Network: protocol.NetworkMainnet}, delegate)

	var serr *SigningFailedError
	require.ErrorAs(t, err, &serr)
	require.ErrorIs(t, serr.Cause, signer.ErrSignerUnavailable)
}

// TestVerificationFlow runs the two-signature ceremony end to end: the
// address key signs the EIP-712 claim, a delegate key signs the envelope,
// and both signatures verify independently.
func TestVerificationFlow(t *testing.T) {
	b := newTestBuilder(t)
	delegate := newDelegate(t)
	addressKey := newCustody(t)

	claim, err := claims.NewVerificationClaim(1, addressKey.Address().Hex(),
		protocol.NetworkMainnet, testBlockHash)
	require.NoError(t, err)

	claimSig, err := addressKey.SignTypedClaim(claim)
	require.NoError(t, err)
	require.NoError(t, claims.VerifyClaimSignature(claim, claimSig))

	msg, err := b.BuildVerificationAddEthAddress(protocol.VerificationAddEthAddressBody{
		Address:      claim.Address,
		EthSignature: claimSig,
		BlockHash:    claim.BlockHash,
	}, DataOptions{Fid: 1, Network: protocol.NetworkMainnet}, delegate)
	require.NoError(t, err)
	require.NoError(t, VerifyMessage(msg))

	// the inner claim signature and the outer envelope signature are
	// distinct proofs under distinct schemes
	require.NotEqual(t, msg.Signature, claimSig)
	embedded := msg.Data.Body.(protocol.VerificationAddEthAddressBody)
	require.NoError(t, claims.VerifyClaimSignature(claim, embedded.EthSignature))
}

// TestBuildRemainingTypes exercises the reaction and user-data entry
// points end to end.
func TestBuildRemainingTypes(t *testing.T) {
	b := newTestBuilder(t)
	delegate := newDelegate(t)
	opts := DataOptions{Fid: 3, Network: protocol.NetworkTestnet}

	target := protocol.CastID{Fid: 4, Hash: make([]byte, 32)}

	msg, err := b.BuildReactionAdd(protocol.ReactionBody{
		ReactionType: protocol.ReactionTypeLike, Target: target,
	}, opts, delegate)
	require.NoError(t, err)
	require.Equal(t, protocol.MessageTypeReactionAdd, msg.Data.Type)
	require.NoError(t, VerifyMessage(msg))

	msg, err = b.BuildReactionRemove(protocol.ReactionBody{
		ReactionType: protocol.ReactionTypeRecast, Target: target,
	}, opts, delegate)
	require.NoError(t, err)
	require.Equal(t, protocol.MessageTypeReactionRemove, msg.Data.Type)
	require.NoError(t, VerifyMessage(msg))

	msg, err = b.BuildUserDataAdd(protocol.UserDataBody{
		UserDataType: protocol.UserDataTypeDisplay, Value: "Alice",
	}, opts, delegate)
	require.NoError(t, err)
	require.Equal(t, protocol.MessageTypeUserDataAdd, msg.Data.Type)
	require.NoError(t, VerifyMessage(msg))
}

// TestVerifyMessageDetectsTampering checks that hash recomputation and
// signature verification both hold the line on a modified envelope.
func TestVerifyMessageDetectsTampering(t *testing.T) {
	b := newTestBuilder(t)
	delegate := newDelegate(t)

	msg, err := b.BuildCastAdd(protocol.CastAddBody{Text: "original"},
		DataOptions{Fid: 1, Network: protocol.NetworkMainnet}, delegate)
	require.NoError(t, err)

	// altered data no longer matches the carried hash
	tampered := *msg
	tampered.Data.Body = protocol.CastAddBody{Text: "altered"}
	require.Error(t, VerifyMessage(&tampered))

	// a recomputed hash without a matching signature still fails
	encoded, err := codec.EncodeMessageData(&tampered.Data)
	require.NoError(t, err)
	digest, err := hasher.Sum(protocol.HashSchemeBlake2b256, encoded)
	require.NoError(t, err)
	tampered.Hash = digest.Sum
	require.Error(t, VerifyMessage(&tampered))

	// a foreign signer identity fails
	other := newDelegate(t)
	tampered = *msg
	tampered.Signer = other.PublicIdentity()
	require.Error(t, VerifyMessage(&tampered))
}

// TestBuilderReentrant checks that concurrent builds with independent
// inputs do not interact.
func TestBuilderReentrant(t *testing.T) {
	b := newTestBuilder(t)
	delegate := newDelegate(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(fid int64) {
			defer wg.Done()
			msg, err := b.BuildCastAdd(protocol.CastAddBody{Text: "concurrent"},
				DataOptions{Fid: fid, Network: protocol.NetworkMainnet, Timestamp: 50}, delegate)
			require.NoError(t, err)
			require.Equal(t, fid, msg.Data.Fid)
			require.NoError(t, VerifyMessage(msg))
		}(int64(i + 1))
	}
	wg.Wait()
}

// TestRequiredScheme pins the message-type to scheme mapping.
func TestRequiredScheme(t *testing.T) {
	require.Equal(t, protocol.SignatureSchemeEcdsa, RequiredScheme(protocol.MessageTypeSignerAdd))
	require.Equal(t, protocol.SignatureSchemeEcdsa, RequiredScheme(protocol.MessageTypeSignerRemove))
	for _, mt := range []protocol.MessageType{
		protocol.MessageTypeCastAdd, protocol.MessageTypeCastRemove,
		protocol.MessageTypeReactionAdd, protocol.MessageTypeReactionRemove,
		protocol.MessageTypeUserDataAdd,
		protocol.MessageTypeVerificationAddEthAddress, protocol.MessageTypeVerificationRemove,
	} {
		require.Equal(t, protocol.SignatureSchemeEd25519, RequiredScheme(mt), mt)
	}
}

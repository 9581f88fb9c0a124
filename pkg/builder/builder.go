// Package builder orchestrates message construction: it validates a body,
// assembles message data, canonically encodes and hashes it, dispatches to
// the signature scheme the message type requires, and returns the signed
// envelope. The builder is stateless and reentrant; concurrent builds with
// independent inputs never interact.
package builder

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hubkit-labs/hubmsg-go/pkg/codec"
	"github.com/hubkit-labs/hubmsg-go/pkg/hasher"
	"github.com/hubkit-labs/hubmsg-go/pkg/protocol"
	"github.com/hubkit-labs/hubmsg-go/pkg/signer"
	"github.com/hubkit-labs/hubmsg-go/pkg/validation"
)

// DataOptions carries the metadata shared by every message. Timestamp is
// in protocol epoch seconds; zero means "now".
type DataOptions struct {
	Fid       int64
	Network   protocol.Network
	Timestamp int64
}

// Builder turns validated bodies into signed envelopes.
type Builder struct {
	hashScheme protocol.HashScheme
	validator  *validation.Validator
	logger     *zap.Logger
}

// NewBuilder constructs a builder using the default hash scheme. A nil
// logger disables build tracing.
func NewBuilder(logger *zap.Logger) (*Builder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	v, err := validation.New(protocol.HashSchemeBlake2b256)
	if err != nil {
		return nil, err
	}
	return &Builder{
		hashScheme: protocol.HashSchemeBlake2b256,
		validator:  v,
		logger:     logger,
	}, nil
}

// BuildSignerAdd authorizes a delegate key. Requires the ECDSA capability:
// signer authorizations are rooted in the account's custody key.
func (b *Builder) BuildSignerAdd(body protocol.SignerBody, opts DataOptions, s signer.Signer) (*protocol.Message, error) {
	return b.build(protocol.MessageTypeSignerAdd, body, opts, s)
}

// BuildSignerRemove revokes a delegate key. Requires the ECDSA capability.
func (b *Builder) BuildSignerRemove(body protocol.SignerBody, opts DataOptions, s signer.Signer) (*protocol.Message, error) {
	return b.build(protocol.MessageTypeSignerRemove, body, opts, s)
}

// BuildCastAdd publishes a cast on behalf of the fid.
func (b *Builder) BuildCastAdd(body protocol.CastAddBody, opts DataOptions, s signer.Signer) (*protocol.Message, error) {
	return b.build(protocol.MessageTypeCastAdd, body, opts, s)
}

// BuildCastRemove deletes a prior cast.
func (b *Builder) BuildCastRemove(body protocol.CastRemoveBody, opts DataOptions, s signer.Signer) (*protocol.Message, error) {
	return b.build(protocol.MessageTypeCastRemove, body, opts, s)
}

// BuildReactionAdd adds a reaction to a target cast.
func (b *Builder) BuildReactionAdd(body protocol.ReactionBody, opts DataOptions, s signer.Signer) (*protocol.Message, error) {
	return b.build(protocol.MessageTypeReactionAdd, body, opts, s)
}

// BuildReactionRemove removes a reaction from a target cast.
func (b *Builder) BuildReactionRemove(body protocol.ReactionBody, opts DataOptions, s signer.Signer) (*protocol.Message, error) {
	return b.build(protocol.MessageTypeReactionRemove, body, opts, s)
}

// BuildUserDataAdd updates a profile field.
func (b *Builder) BuildUserDataAdd(body protocol.UserDataBody, opts DataOptions, s signer.Signer) (*protocol.Message, error) {
	return b.build(protocol.MessageTypeUserDataAdd, body, opts, s)
}

// BuildVerificationAddEthAddress publishes an address-ownership proof.
// The body's EthSignature must already hold the claim signature produced
// by the address's own key; see the claims package.
func (b *Builder) BuildVerificationAddEthAddress(body protocol.VerificationAddEthAddressBody, opts DataOptions, s signer.Signer) (*protocol.Message, error) {
	return b.build(protocol.MessageTypeVerificationAddEthAddress, body, opts, s)
}

// BuildVerificationRemove removes a prior address verification.
func (b *Builder) BuildVerificationRemove(body protocol.VerificationRemoveBody, opts DataOptions, s signer.Signer) (*protocol.Message, error) {
	return b.build(protocol.MessageTypeVerificationRemove, body, opts, s)
}

func (b *Builder) build(t protocol.MessageType, body protocol.Body, opts DataOptions, s signer.Signer) (*protocol.Message, error) {
	if verr := b.validator.ValidateBody(t, body); verr != nil {
		return nil, &ValidationFailedError{Field: verr.Field(), Reason: verr.Reason()}
	}

	timestamp := opts.Timestamp
	if timestamp == 0 {
		timestamp = time.Now().Unix() - protocol.FarcasterEpoch
	}
	if verr := b.validator.ValidateCommon(opts.Fid, opts.Network, timestamp); verr != nil {
		return nil, &ValidationFailedError{Field: verr.Field(), Reason: verr.Reason()}
	}

	data := protocol.MessageData{
		Type:      t,
		Fid:       opts.Fid,
		Timestamp: timestamp,
		Network:   opts.Network,
		Body:      body,
	}

	encoded, err := codec.EncodeMessageData(&data)
	if err != nil {
		// Encoding preconditions are body constraints; surface them as
		// validation failures rather than a separate crash path.
		return nil, &ValidationFailedError{Field: "body", Reason: err.Error()}
	}

	digest, err := hasher.Sum(b.hashScheme, encoded)
	if err != nil {
		return nil, &ValidationFailedError{Field: "body", Reason: err.Error()}
	}

	if s == nil {
		return nil, &ValidationFailedError{Field: "signer", Reason: "signer capability is required"}
	}
	required := RequiredScheme(t)
	if s.Scheme() != required {
		return nil, &ValidationFailedError{
			Field:  "signer",
			Reason: fmt.Sprintf("scheme mismatch: %s requires %s, got %s", t, required, s.Scheme()),
		}
	}

	sig, err := s.SignMessageHash(digest.Sum)
	if err != nil {
		return nil, &SigningFailedError{Cause: err}
	}

	msg := &protocol.Message{
		Data:            data,
		Hash:            digest.Sum,
		HashScheme:      digest.Scheme,
		Signature:       sig,
		SignatureScheme: s.Scheme(),
		Signer:          s.PublicIdentity(),
	}

	b.logger.Debug("built message",
		zap.String("type", t.String()),
		zap.Int64("fid", opts.Fid),
		zap.String("network", opts.Network.String()),
		zap.String("hash", msg.HashHex()),
	)
	return msg, nil
}

// RequiredScheme returns the signature scheme a message type must be
// signed under: ECDSA for signer authorizations, Ed25519 for everything
// an authorized delegate key publishes.
func RequiredScheme(t protocol.MessageType) protocol.SignatureScheme {
	switch t {
	case protocol.MessageTypeSignerAdd, protocol.MessageTypeSignerRemove:
		return protocol.SignatureSchemeEcdsa
	default:
		return protocol.SignatureSchemeEd25519
	}
}

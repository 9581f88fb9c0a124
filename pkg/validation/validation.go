// Package validation enforces the value shapes the builder accepts:
// required fields, exact decoded byte lengths, enum membership, and
// cross-field consistency. Validators return the first violation found.
package validation

import (
	"fmt"
	"math"
	"unicode/utf8"

	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/hubkit-labs/hubmsg-go/pkg/protocol"
)

// Error describes a single constraint violation, carrying the offending
// field path and the reason it was rejected.
type Error struct {
	fieldErr *field.Error
}

func newError(fe *field.Error) *Error {
	return &Error{fieldErr: fe}
}

func (e *Error) Error() string {
	return e.fieldErr.Error()
}

// Field returns the path of the violating field.
func (e *Error) Field() string {
	return e.fieldErr.Field
}

// Reason returns why the field was rejected.
func (e *Error) Reason() string {
	return e.fieldErr.Detail
}

// Validator checks message bodies and metadata against the protocol's
// constraints. Reference-hash fields are checked against the digest
// length of the configured hash scheme.
type Validator struct {
	digestLen int
}

// New constructs a validator for the given hash scheme.
func New(scheme protocol.HashScheme) (*Validator, error) {
	digestLen := scheme.DigestLength()
	if digestLen == 0 {
		return nil, fmt.Errorf("unknown hash scheme: %d", uint8(scheme))
	}
	return &Validator{digestLen: digestLen}, nil
}

// ValidateCommon checks the metadata shared by every message.
func (v *Validator) ValidateCommon(fid int64, network protocol.Network, timestamp int64) *Error {
	if fid < 1 {
		return newError(field.Invalid(field.NewPath("fid"), fid, "fid must be a positive integer"))
	}
	if !network.Valid() {
		return newError(field.NotSupported(field.NewPath("network"), network,
			[]string{protocol.NetworkMainnet.String(), protocol.NetworkTestnet.String(), protocol.NetworkDevnet.String()}))
	}
	if timestamp < 0 || timestamp > math.MaxUint32 {
		return newError(field.Invalid(field.NewPath("timestamp"), timestamp,
			"timestamp must fit in 32 unsigned bits"))
	}
	return nil
}

// ValidateBody dispatches to the validator matching the message type and
// rejects bodies attached to the wrong type.
func (v *Validator) ValidateBody(t protocol.MessageType, body protocol.Body) *Error {
	body = protocol.DerefBody(body)
	if body == nil {
		return newError(field.Required(field.NewPath("body"), "body is required"))
	}
	if !protocol.BodyMatchesType(t, body) {
		return newError(field.Invalid(field.NewPath("body"), fmt.Sprintf("%T", body),
			fmt.Sprintf("body variant does not match message type %s", t)))
	}

	switch b := body.(type) {
	case protocol.SignerBody:
		return v.ValidateSignerBody(b)
	case protocol.CastAddBody:
		return v.ValidateCastAddBody(b)
	case protocol.CastRemoveBody:
		return v.ValidateCastRemoveBody(b)
	case protocol.ReactionBody:
		return v.ValidateReactionBody(b)
	case protocol.UserDataBody:
		return v.ValidateUserDataBody(b)
	case protocol.VerificationAddEthAddressBody:
		return v.ValidateVerificationAddEthAddressBody(b)
	case protocol.VerificationRemoveBody:
		return v.ValidateVerificationRemoveBody(b)
	default:
		return newError(field.Invalid(field.NewPath("body"), fmt.Sprintf("%T", body),
			"unsupported body variant"))
	}
}

// ValidateSignerBody checks a signer add/remove payload.
func (v *Validator) ValidateSignerBody(b protocol.SignerBody) *Error {
	if len(b.SignerPublicKey) == 0 {
		return newError(field.Required(field.NewPath("signerPublicKey"), "signer public key is required"))
	}
	if len(b.SignerPublicKey) != protocol.Ed25519PublicKeyLength {
		return newError(field.Invalid(field.NewPath("signerPublicKey"), len(b.SignerPublicKey),
			fmt.Sprintf("signer public key must be %d bytes", protocol.Ed25519PublicKeyLength)))
	}
	return nil
}

// ValidateCastAddBody checks a new cast payload.
func (v *Validator) ValidateCastAddBody(b protocol.CastAddBody) *Error {
	if !utf8.ValidString(b.Text) {
		return newError(field.Invalid(field.NewPath("text"), b.Text, "text must be valid UTF-8"))
	}
	if len(b.Text) > protocol.MaxCastTextBytes {
		return newError(field.Invalid(field.NewPath("text"), len(b.Text),
			fmt.Sprintf("text exceeds %d bytes", protocol.MaxCastTextBytes)))
	}
	if len(b.Mentions) > protocol.MaxMentions {
		return newError(field.Invalid(field.NewPath("mentions"), len(b.Mentions),
			fmt.Sprintf("at most %d mentions allowed", protocol.MaxMentions)))
	}
	for i, fid := range b.Mentions {
		if fid < 1 {
			return newError(field.Invalid(field.NewPath("mentions").Index(i), fid,
				"mentioned fid must be a positive integer"))
		}
	}
	if b.ParentCastID != nil {
		if err := v.validateCastID(field.NewPath("parentCastId"), *b.ParentCastID); err != nil {
			return err
		}
	}
	return nil
}

// ValidateCastRemoveBody checks a cast removal payload.
func (v *Validator) ValidateCastRemoveBody(b protocol.CastRemoveBody) *Error {
	if len(b.TargetHash) == 0 {
		return newError(field.Required(field.NewPath("targetHash"), "target hash is required"))
	}
	if len(b.TargetHash) != v.digestLen {
		return newError(field.Invalid(field.NewPath("targetHash"), len(b.TargetHash),
			fmt.Sprintf("target hash must be %d bytes", v.digestLen)))
	}
	return nil
}

// ValidateReactionBody checks a reaction payload.
func (v *Validator) ValidateReactionBody(b protocol.ReactionBody) *Error {
	if !b.ReactionType.Valid() {
		return newError(field.NotSupported(field.NewPath("type"), b.ReactionType,
			[]string{protocol.ReactionTypeLike.String(), protocol.ReactionTypeRecast.String()}))
	}
	return v.validateCastID(field.NewPath("target"), b.Target)
}

// ValidateUserDataBody checks a profile-update payload.
func (v *Validator) ValidateUserDataBody(b protocol.UserDataBody) *Error {
	if !b.UserDataType.Valid() {
		return newError(field.NotSupported(field.NewPath("type"), b.UserDataType, []string{
			protocol.UserDataTypePfp.String(), protocol.UserDataTypeDisplay.String(),
			protocol.UserDataTypeBio.String(), protocol.UserDataTypeUrl.String(),
			protocol.UserDataTypeUsername.String(),
		}))
	}
	if !utf8.ValidString(b.Value) {
		return newError(field.Invalid(field.NewPath("value"), b.Value, "value must be valid UTF-8"))
	}
	if len(b.Value) > protocol.MaxUserDataValueBytes {
		return newError(field.Invalid(field.NewPath("value"), len(b.Value),
			fmt.Sprintf("value exceeds %d bytes", protocol.MaxUserDataValueBytes)))
	}
	return nil
}

// ValidateVerificationAddEthAddressBody checks an address verification
// payload, including the embedded claim signature's length. Claim
// signature validity against chain state is out of scope here.
func (v *Validator) ValidateVerificationAddEthAddressBody(b protocol.VerificationAddEthAddressBody) *Error {
	if err := v.validateAddress(b.Address); err != nil {
		return err
	}
	if len(b.EthSignature) != protocol.EcdsaSignatureLength {
		return newError(field.Invalid(field.NewPath("ethSignature"), len(b.EthSignature),
			fmt.Sprintf("claim signature must be %d bytes", protocol.EcdsaSignatureLength)))
	}
	if len(b.BlockHash) != protocol.BlockHashLength {
		return newError(field.Invalid(field.NewPath("blockHash"), len(b.BlockHash),
			fmt.Sprintf("block hash must be %d bytes", protocol.BlockHashLength)))
	}
	return nil
}

// ValidateVerificationRemoveBody checks a verification removal payload.
func (v *Validator) ValidateVerificationRemoveBody(b protocol.VerificationRemoveBody) *Error {
	return v.validateAddress(b.Address)
}

func (v *Validator) validateAddress(address []byte) *Error {
	if len(address) == 0 {
		return newError(field.Required(field.NewPath("address"), "address is required"))
	}
	if len(address) != protocol.EthAddressLength {
		return newError(field.Invalid(field.NewPath("address"), len(address),
			fmt.Sprintf("address must be %d bytes", protocol.EthAddressLength)))
	}
	return nil
}

func (v *Validator) validateCastID(path *field.Path, id protocol.CastID) *Error {
	if id.Fid < 1 {
		return newError(field.Invalid(path.Child("fid"), id.Fid,
			"target fid must be a positive integer"))
	}
	if len(id.Hash) != v.digestLen {
		return newError(field.Invalid(path.Child("hash"), len(id.Hash),
			fmt.Sprintf("target hash must be %d bytes", v.digestLen)))
	}
	return nil
}

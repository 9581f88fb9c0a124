package protocol

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Body is the closed set of payload variants a MessageData may carry.
// Exactly one variant is active per message, tagged by MessageType.
type Body interface {
	// Type returns the message type this body variant belongs to. For
	// bodies shared between add/remove pairs (signers, reactions) the
	// add type is returned; the builder sets the concrete type.
	Type() MessageType

	isBody()
}

// CastID references a prior cast by author fid and message hash.
type CastID struct {
	Fid  int64
	Hash []byte
}

// Equal reports whether two cast references are identical.
func (c *CastID) Equal(other *CastID) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.Fid == other.Fid && bytes.Equal(c.Hash, other.Hash)
}

// SignerBody authorizes or revokes a delegate Ed25519 key.
type SignerBody struct {
	// SignerPublicKey is the 32-byte Ed25519 public key being added or removed
	SignerPublicKey []byte
}

func (SignerBody) Type() MessageType { return MessageTypeSignerAdd }
func (SignerBody) isBody()           {}

// CastAddBody publishes a new cast.
type CastAddBody struct {
	Text     string
	Mentions []int64
	// ParentCastID is set when the cast replies to another cast.
	// Nil means a top-level cast; absent and empty are distinct states.
	ParentCastID *CastID
}

func (CastAddBody) Type() MessageType { return MessageTypeCastAdd }
func (CastAddBody) isBody()           {}

// CastRemoveBody deletes a prior cast by its message hash.
type CastRemoveBody struct {
	TargetHash []byte
}

func (CastRemoveBody) Type() MessageType { return MessageTypeCastRemove }
func (CastRemoveBody) isBody()           {}

// ReactionBody adds or removes a reaction on a target cast.
type ReactionBody struct {
	ReactionType ReactionType
	Target       CastID
}

func (ReactionBody) Type() MessageType { return MessageTypeReactionAdd }
func (ReactionBody) isBody()           {}

// UserDataBody updates a single profile field.
type UserDataBody struct {
	UserDataType UserDataType
	Value        string
}

func (UserDataBody) Type() MessageType { return MessageTypeUserDataAdd }
func (UserDataBody) isBody()           {}

// VerificationAddEthAddressBody associates an Ethereum address with the
// authoring fid. EthSignature is the address's own EIP-712 claim signature,
// produced before and independently of the envelope signature.
type VerificationAddEthAddressBody struct {
	Address      []byte
	EthSignature []byte
	BlockHash    []byte
}

func (VerificationAddEthAddressBody) Type() MessageType {
	return MessageTypeVerificationAddEthAddress
}
func (VerificationAddEthAddressBody) isBody() {}

// VerificationRemoveBody removes a prior address verification.
type VerificationRemoveBody struct {
	Address []byte
}

func (VerificationRemoveBody) Type() MessageType { return MessageTypeVerificationRemove }
func (VerificationRemoveBody) isBody()           {}

// DerefBody unwraps pointer body variants to their value form so that
// dispatch sites only deal with the seven concrete shapes.
func DerefBody(b Body) Body {
	switch v := b.(type) {
	case *SignerBody:
		if v == nil {
			return nil
		}
		return *v
	case *CastAddBody:
		if v == nil {
			return nil
		}
		return *v
	case *CastRemoveBody:
		if v == nil {
			return nil
		}
		return *v
	case *ReactionBody:
		if v == nil {
			return nil
		}
		return *v
	case *UserDataBody:
		if v == nil {
			return nil
		}
		return *v
	case *VerificationAddEthAddressBody:
		if v == nil {
			return nil
		}
		return *v
	case *VerificationRemoveBody:
		if v == nil {
			return nil
		}
		return *v
	default:
		return b
	}
}

// BodyMatchesType reports whether the body variant is the one the given
// message type requires.
func BodyMatchesType(t MessageType, body Body) bool {
	switch body.(type) {
	case SignerBody, *SignerBody:
		return t == MessageTypeSignerAdd || t == MessageTypeSignerRemove
	case CastAddBody, *CastAddBody:
		return t == MessageTypeCastAdd
	case CastRemoveBody, *CastRemoveBody:
		return t == MessageTypeCastRemove
	case ReactionBody, *ReactionBody:
		return t == MessageTypeReactionAdd || t == MessageTypeReactionRemove
	case UserDataBody, *UserDataBody:
		return t == MessageTypeUserDataAdd
	case VerificationAddEthAddressBody, *VerificationAddEthAddressBody:
		return t == MessageTypeVerificationAddEthAddress
	case VerificationRemoveBody, *VerificationRemoveBody:
		return t == MessageTypeVerificationRemove
	default:
		return false
	}
}

// MessageData is the unsigned payload of a message.
type MessageData struct {
	Type      MessageType
	Fid       int64
	Timestamp int64
	Network   Network
	Body      Body
}

// Message is the signed envelope returned by the builder. It is an
// immutable value object; Hash is always recomputed from Data, never
// trusted from caller input.
type Message struct {
	Data            MessageData
	Hash            []byte
	HashScheme      HashScheme
	Signature       []byte
	SignatureScheme SignatureScheme
	// Signer is the public identity that produced Signature: a 32-byte
	// Ed25519 public key or a 20-byte secp256k1-derived address.
	Signer []byte
}

// HashHex returns the envelope hash as a 0x-prefixed hex string.
func (m *Message) HashHex() string { return hexutil.Encode(m.Hash) }

// SignerHex returns the signer identity as a 0x-prefixed hex string.
func (m *Message) SignerHex() string { return hexutil.Encode(m.Signer) }

// VerificationClaim is the domain-separated statement signed by an
// Ethereum address to prove it consents to association with an fid.
type VerificationClaim struct {
	Fid       int64
	Address   []byte
	Network   Network
	BlockHash []byte
}

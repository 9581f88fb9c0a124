package protocol

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Byte-length contracts at the wire boundary.
const (
	// Ed25519PublicKeyLength is the length of a delegate signer public key
	Ed25519PublicKeyLength = 32
	// Ed25519SignatureLength is the length of an Ed25519 signature
	Ed25519SignatureLength = 64
	// EthAddressLength is the length of a secp256k1-derived address
	EthAddressLength = 20
	// EcdsaSignatureLength is the length of a compact r||s||v signature
	EcdsaSignatureLength = 65
	// BlockHashLength is the length of an Ethereum block hash
	BlockHashLength = 32

	// MaxCastTextBytes is the maximum byte length of a cast's text
	MaxCastTextBytes = 320
	// MaxUserDataValueBytes is the maximum byte length of a user-data value
	MaxUserDataValueBytes = 256
	// MaxMentions is the maximum number of fids a cast may mention
	MaxMentions = 10
)

// FarcasterEpoch is the protocol epoch (2021-01-01T00:00:00Z) subtracted
// from Unix seconds to form message timestamps.
const FarcasterEpoch int64 = 1609459200

// MessageType identifies which body variant a MessageData carries.
type MessageType uint8

const (
	MessageTypeNone                      MessageType = 0
	MessageTypeCastAdd                   MessageType = 1
	MessageTypeCastRemove                MessageType = 2
	MessageTypeReactionAdd               MessageType = 3
	MessageTypeReactionRemove            MessageType = 4
	MessageTypeVerificationAddEthAddress MessageType = 7
	MessageTypeVerificationRemove        MessageType = 8
	MessageTypeSignerAdd                 MessageType = 9
	MessageTypeSignerRemove              MessageType = 10
	MessageTypeUserDataAdd               MessageType = 11
)

func (t MessageType) String() string {
	switch t {
	case MessageTypeCastAdd:
		return "CAST_ADD"
	case MessageTypeCastRemove:
		return "CAST_REMOVE"
	case MessageTypeReactionAdd:
		return "REACTION_ADD"
	case MessageTypeReactionRemove:
		return "REACTION_REMOVE"
	case MessageTypeVerificationAddEthAddress:
		return "VERIFICATION_ADD_ETH_ADDRESS"
	case MessageTypeVerificationRemove:
		return "VERIFICATION_REMOVE"
	case MessageTypeSignerAdd:
		return "SIGNER_ADD"
	case MessageTypeSignerRemove:
		return "SIGNER_REMOVE"
	case MessageTypeUserDataAdd:
		return "USER_DATA_ADD"
	default:
		return fmt.Sprintf("MESSAGE_TYPE_%d", uint8(t))
	}
}

// Valid reports whether t is a known message type.
func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeCastAdd, MessageTypeCastRemove,
		MessageTypeReactionAdd, MessageTypeReactionRemove,
		MessageTypeVerificationAddEthAddress, MessageTypeVerificationRemove,
		MessageTypeSignerAdd, MessageTypeSignerRemove,
		MessageTypeUserDataAdd:
		return true
	}
	return false
}

// Network identifies the target network a message is intended for.
type Network uint8

const (
	NetworkNone    Network = 0
	NetworkMainnet Network = 1
	NetworkTestnet Network = 2
	NetworkDevnet  Network = 3
)

func (n Network) String() string {
	switch n {
	case NetworkMainnet:
		return "mainnet"
	case NetworkTestnet:
		return "testnet"
	case NetworkDevnet:
		return "devnet"
	default:
		return fmt.Sprintf("network_%d", uint8(n))
	}
}

// Valid reports whether n is a broadcastable network identifier.
func (n Network) Valid() bool {
	switch n {
	case NetworkMainnet, NetworkTestnet, NetworkDevnet:
		return true
	}
	return false
}

// ParseNetwork converts a network name to its identifier.
func ParseNetwork(name string) (Network, error) {
	switch name {
	case "mainnet":
		return NetworkMainnet, nil
	case "testnet":
		return NetworkTestnet, nil
	case "devnet":
		return NetworkDevnet, nil
	default:
		return NetworkNone, fmt.Errorf("unknown network: %s", name)
	}
}

// HashScheme names the digest algorithm applied to encoded message data.
type HashScheme uint8

const (
	HashSchemeNone HashScheme = 0
	// HashSchemeBlake2b256 is the default scheme, 32-byte digests
	HashSchemeBlake2b256 HashScheme = 1
	// HashSchemeBlake2b160 is a truncated 20-byte variant kept for
	// compatibility reads; the builder never produces it
	HashSchemeBlake2b160 HashScheme = 2
)

func (h HashScheme) String() string {
	switch h {
	case HashSchemeBlake2b256:
		return "blake2b-256"
	case HashSchemeBlake2b160:
		return "blake2b-160"
	default:
		return fmt.Sprintf("hash_scheme_%d", uint8(h))
	}
}

// DigestLength returns the digest size in bytes, or 0 for an unknown scheme.
func (h HashScheme) DigestLength() int {
	switch h {
	case HashSchemeBlake2b256:
		return 32
	case HashSchemeBlake2b160:
		return 20
	default:
		return 0
	}
}

// SignatureScheme names the algorithm that produced an envelope signature.
type SignatureScheme uint8

const (
	SignatureSchemeNone SignatureScheme = 0
	// SignatureSchemeEd25519 is used by authorized delegate keys
	SignatureSchemeEd25519 SignatureScheme = 1
	// SignatureSchemeEcdsa is used by the account's custody key
	SignatureSchemeEcdsa SignatureScheme = 2
)

func (s SignatureScheme) String() string {
	switch s {
	case SignatureSchemeEd25519:
		return "ed25519"
	case SignatureSchemeEcdsa:
		return "ecdsa"
	default:
		return fmt.Sprintf("signature_scheme_%d", uint8(s))
	}
}

// ReactionType identifies the kind of reaction a ReactionBody expresses.
type ReactionType uint8

const (
	ReactionTypeNone   ReactionType = 0
	ReactionTypeLike   ReactionType = 1
	ReactionTypeRecast ReactionType = 2
)

func (r ReactionType) Valid() bool {
	return r == ReactionTypeLike || r == ReactionTypeRecast
}

func (r ReactionType) String() string {
	switch r {
	case ReactionTypeLike:
		return "like"
	case ReactionTypeRecast:
		return "recast"
	default:
		return fmt.Sprintf("reaction_type_%d", uint8(r))
	}
}

// UserDataType identifies which profile field a UserDataBody updates.
type UserDataType uint8

const (
	UserDataTypeNone     UserDataType = 0
	UserDataTypePfp      UserDataType = 1
	UserDataTypeDisplay  UserDataType = 2
	UserDataTypeBio      UserDataType = 3
	UserDataTypeUrl      UserDataType = 5
	UserDataTypeUsername UserDataType = 6
)

func (u UserDataType) Valid() bool {
	switch u {
	case UserDataTypePfp, UserDataTypeDisplay, UserDataTypeBio,
		UserDataTypeUrl, UserDataTypeUsername:
		return true
	}
	return false
}

func (u UserDataType) String() string {
	switch u {
	case UserDataTypePfp:
		return "pfp"
	case UserDataTypeDisplay:
		return "display"
	case UserDataTypeBio:
		return "bio"
	case UserDataTypeUrl:
		return "url"
	case UserDataTypeUsername:
		return "username"
	default:
		return fmt.Sprintf("user_data_type_%d", uint8(u))
	}
}

// DecodeHex decodes a 0x-prefixed hex string and checks the decoded byte
// length. Strings of the wrong decoded length are rejected, not padded.
func DecodeHex(s string, wantLen int) ([]byte, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex string: %w", err)
	}
	if len(b) != wantLen {
		return nil, fmt.Errorf("decoded length %d, expected %d", len(b), wantLen)
	}
	return b, nil
}

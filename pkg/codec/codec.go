// Package codec implements the canonical byte serialization of message
// data. Encoding is deterministic: structurally equal values always
// produce identical bytes, so digests computed over the output are
// stable across processes and machines.
package codec

import (
	"fmt"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/hubkit-labs/hubmsg-go/pkg/protocol"
)

var (
	ErrNegativeFid      = fmt.Errorf("fid must be non-negative")
	ErrInvalidUTF8      = fmt.Errorf("text is not valid UTF-8")
	ErrBodyTypeMismatch = fmt.Errorf("body variant does not match message type")
)

// wireMessageData is the canonical wire shape. The body payload is kept
// as a raw RLP item whose variant is tagged by Type; the tag always
// precedes the payload in the encoded stream.
type wireMessageData struct {
	Type      uint8
	Fid       uint64
	Timestamp uint64
	Network   uint8
	Body      rlp.RawValue
}

type wireCastID struct {
	Fid  uint64
	Hash []byte
}

type wireSignerBody struct {
	SignerPublicKey []byte
}

type wireCastAddBody struct {
	Text     string
	Mentions []uint64
	// Parent is nil for top-level casts. The nil tag keeps "absent"
	// distinct from a present-but-zero reference on the wire.
	Parent *wireCastID `rlp:"nil"`
}

type wireCastRemoveBody struct {
	TargetHash []byte
}

type wireReactionBody struct {
	ReactionType uint8
	Target       wireCastID
}

type wireUserDataBody struct {
	UserDataType uint8
	Value        string
}

type wireVerificationAddBody struct {
	Address      []byte
	EthSignature []byte
	BlockHash    []byte
}

type wireVerificationRemoveBody struct {
	Address []byte
}

type wireMessage struct {
	Data            rlp.RawValue
	Hash            []byte
	HashScheme      uint8
	Signature       []byte
	SignatureScheme uint8
	Signer          []byte
}

// EncodeMessageData serializes message data into its canonical byte form.
// It fails only when a field violates its own type constraints: negative
// numeric identifiers, invalid UTF-8 in text fields, or a body variant
// that does not belong to the tagged message type.
func EncodeMessageData(d *protocol.MessageData) ([]byte, error) {
	if d.Fid < 0 || d.Timestamp < 0 {
		return nil, ErrNegativeFid
	}
	bodyValue := protocol.DerefBody(d.Body)
	if bodyValue == nil {
		return nil, fmt.Errorf("%w: nil body", ErrBodyTypeMismatch)
	}
	if !protocol.BodyMatchesType(d.Type, bodyValue) {
		return nil, fmt.Errorf("%w: %T attached to %s", ErrBodyTypeMismatch, d.Body, d.Type)
	}

	body, err := encodeBody(bodyValue)
	if err != nil {
		return nil, err
	}

	return rlp.EncodeToBytes(&wireMessageData{
		Type:      uint8(d.Type),
		Fid:       uint64(d.Fid),
		Timestamp: uint64(d.Timestamp),
		Network:   uint8(d.Network),
		Body:      body,
	})
}

// DecodeMessageData parses canonical bytes back into message data.
// decode(encode(d)) yields a value structurally equal to d for every
// valid d.
func DecodeMessageData(b []byte) (*protocol.MessageData, error) {
	var w wireMessageData
	if err := rlp.DecodeBytes(b, &w); err != nil {
		return nil, fmt.Errorf("failed to decode message data: %w", err)
	}

	body, err := decodeBody(protocol.MessageType(w.Type), w.Body)
	if err != nil {
		return nil, err
	}

	return &protocol.MessageData{
		Type:      protocol.MessageType(w.Type),
		Fid:       int64(w.Fid),
		Timestamp: int64(w.Timestamp),
		Network:   protocol.Network(w.Network),
		Body:      body,
	}, nil
}

// EncodeMessage serializes a signed envelope. The message data is nested
// in its canonical form so the envelope hash can be re-derived from the
// decoded result.
func EncodeMessage(m *protocol.Message) ([]byte, error) {
	data, err := EncodeMessageData(&m.Data)
	if err != nil {
		return nil, err
	}
	return rlp.EncodeToBytes(&wireMessage{
		Data:            data,
		Hash:            m.Hash,
		HashScheme:      uint8(m.HashScheme),
		Signature:       m.Signature,
		SignatureScheme: uint8(m.SignatureScheme),
		Signer:          m.Signer,
	})
}

// DecodeMessage parses a signed envelope from bytes.
func DecodeMessage(b []byte) (*protocol.Message, error) {
	var w wireMessage
	if err := rlp.DecodeBytes(b, &w); err != nil {
		return nil, fmt.Errorf("failed to decode message: %w", err)
	}
	data, err := DecodeMessageData(w.Data)
	if err != nil {
		return nil, err
	}
	return &protocol.Message{
		Data:            *data,
		Hash:            w.Hash,
		HashScheme:      protocol.HashScheme(w.HashScheme),
		Signature:       w.Signature,
		SignatureScheme: protocol.SignatureScheme(w.SignatureScheme),
		Signer:          w.Signer,
	}, nil
}

func encodeBody(body protocol.Body) (rlp.RawValue, error) {
	switch b := body.(type) {
	case protocol.SignerBody:
		return rlp.EncodeToBytes(&wireSignerBody{SignerPublicKey: b.SignerPublicKey})
	case protocol.CastAddBody:
		if !utf8.ValidString(b.Text) {
			return nil, ErrInvalidUTF8
		}
		mentions, err := encodeMentions(b.Mentions)
		if err != nil {
			return nil, err
		}
		var parent *wireCastID
		if b.ParentCastID != nil {
			if b.ParentCastID.Fid < 0 {
				return nil, ErrNegativeFid
			}
			parent = &wireCastID{Fid: uint64(b.ParentCastID.Fid), Hash: b.ParentCastID.Hash}
		}
		return rlp.EncodeToBytes(&wireCastAddBody{
			Text:     b.Text,
			Mentions: mentions,
			Parent:   parent,
		})
	case protocol.CastRemoveBody:
		return rlp.EncodeToBytes(&wireCastRemoveBody{TargetHash: b.TargetHash})
	case protocol.ReactionBody:
		if b.Target.Fid < 0 {
			return nil, ErrNegativeFid
		}
		return rlp.EncodeToBytes(&wireReactionBody{
			ReactionType: uint8(b.ReactionType),
			Target:       wireCastID{Fid: uint64(b.Target.Fid), Hash: b.Target.Hash},
		})
	case protocol.UserDataBody:
		if !utf8.ValidString(b.Value) {
			return nil, ErrInvalidUTF8
		}
		return rlp.EncodeToBytes(&wireUserDataBody{
			UserDataType: uint8(b.UserDataType),
			Value:        b.Value,
		})
	case protocol.VerificationAddEthAddressBody:
		return rlp.EncodeToBytes(&wireVerificationAddBody{
			Address:      b.Address,
			EthSignature: b.EthSignature,
			BlockHash:    b.BlockHash,
		})
	case protocol.VerificationRemoveBody:
		return rlp.EncodeToBytes(&wireVerificationRemoveBody{Address: b.Address})
	default:
		return nil, fmt.Errorf("%w: unsupported body variant %T", ErrBodyTypeMismatch, body)
	}
}

func decodeBody(t protocol.MessageType, raw rlp.RawValue) (protocol.Body, error) {
	switch t {
	case protocol.MessageTypeSignerAdd, protocol.MessageTypeSignerRemove:
		var w wireSignerBody
		if err := rlp.DecodeBytes(raw, &w); err != nil {
			return nil, fmt.Errorf("failed to decode signer body: %w", err)
		}
		return protocol.SignerBody{SignerPublicKey: w.SignerPublicKey}, nil
	case protocol.MessageTypeCastAdd:
		var w wireCastAddBody
		if err := rlp.DecodeBytes(raw, &w); err != nil {
			return nil, fmt.Errorf("failed to decode cast add body: %w", err)
		}
		var parent *protocol.CastID
		if w.Parent != nil {
			parent = &protocol.CastID{Fid: int64(w.Parent.Fid), Hash: w.Parent.Hash}
		}
		return protocol.CastAddBody{
			Text:     w.Text,
			Mentions: decodeMentions(w.Mentions),
			ParentCastID: parent,
		}, nil
	case protocol.MessageTypeCastRemove:
		var w wireCastRemoveBody
		if err := rlp.DecodeBytes(raw, &w); err != nil {
			return nil, fmt.Errorf("failed to decode cast remove body: %w", err)
		}
		return protocol.CastRemoveBody{TargetHash: w.TargetHash}, nil
	case protocol.MessageTypeReactionAdd, protocol.MessageTypeReactionRemove:
		var w wireReactionBody
		if err := rlp.DecodeBytes(raw, &w); err != nil {
			return nil, fmt.Errorf("failed to decode reaction body: %w", err)
		}
		return protocol.ReactionBody{
			ReactionType: protocol.ReactionType(w.ReactionType),
			Target:       protocol.CastID{Fid: int64(w.Target.Fid), Hash: w.Target.Hash},
		}, nil
	case protocol.MessageTypeUserDataAdd:
		var w wireUserDataBody
		if err := rlp.DecodeBytes(raw, &w); err != nil {
			return nil, fmt.Errorf("failed to decode user data body: %w", err)
		}
		return protocol.UserDataBody{
			UserDataType: protocol.UserDataType(w.UserDataType),
			Value:        w.Value,
		}, nil
	case protocol.MessageTypeVerificationAddEthAddress:
		var w wireVerificationAddBody
		if err := rlp.DecodeBytes(raw, &w); err != nil {
			return nil, fmt.Errorf("failed to decode verification add body: %w", err)
		}
		return protocol.VerificationAddEthAddressBody{
			Address:      w.Address,
			EthSignature: w.EthSignature,
			BlockHash:    w.BlockHash,
		}, nil
	case protocol.MessageTypeVerificationRemove:
		var w wireVerificationRemoveBody
		if err := rlp.DecodeBytes(raw, &w); err != nil {
			return nil, fmt.Errorf("failed to decode verification remove body: %w", err)
		}
		return protocol.VerificationRemoveBody{Address: w.Address}, nil
	default:
		return nil, fmt.Errorf("unknown message type: %d", uint8(t))
	}
}

func encodeMentions(mentions []int64) ([]uint64, error) {
	if len(mentions) == 0 {
		return nil, nil
	}
	out := make([]uint64, len(mentions))
	for i, fid := range mentions {
		if fid < 0 {
			return nil, ErrNegativeFid
		}
		out[i] = uint64(fid)
	}
	return out, nil
}

func decodeMentions(mentions []uint64) []int64 {
	if len(mentions) == 0 {
		return nil
	}
	out := make([]int64, len(mentions))
	for i, fid := range mentions {
		out[i] = int64(fid)
	}
	return out
}

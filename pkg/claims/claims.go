// Package claims implements the typed-data ("claim") signing sub-protocol
// used for Ethereum address ownership proofs. A claim is a domain-separated
// statement {fid, address, network, blockHash}; the address's own key signs
// its EIP-712 digest, independently of and prior to the envelope signature.
package claims

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/hubkit-labs/hubmsg-go/pkg/protocol"
)

// EIP-712 domain for address verification claims.
const (
	DomainName    = "Farcaster Verify Ethereum Address"
	DomainVersion = "2.0.0"
	// DomainSalt disambiguates this ceremony from any other typed-data
	// use of the same name/version pair.
	DomainSalt = "0xf2d857f4a3edcb9b78b4d503bfe733db1e3f6cdc2b7971ee739626c97e86a558"
)

// NewVerificationClaim assembles a claim from caller-supplied verification
// parameters, length-checking the decoded byte fields.
func NewVerificationClaim(fid int64, addressHex string, network protocol.Network, blockHashHex string) (*protocol.VerificationClaim, error) {
	if fid <= 0 {
		return nil, fmt.Errorf("fid must be positive, got %d", fid)
	}
	if !network.Valid() {
		return nil, fmt.Errorf("unknown network: %d", uint8(network))
	}
	address, err := protocol.DecodeHex(addressHex, protocol.EthAddressLength)
	if err != nil {
		return nil, fmt.Errorf("invalid address: %w", err)
	}
	blockHash, err := protocol.DecodeHex(blockHashHex, protocol.BlockHashLength)
	if err != nil {
		return nil, fmt.Errorf("invalid block hash: %w", err)
	}
	return &protocol.VerificationClaim{
		Fid:       fid,
		Address:   address,
		Network:   network,
		BlockHash: blockHash,
	}, nil
}

// TypedData returns the claim as EIP-712 structured data.
func TypedData(claim *protocol.VerificationClaim) apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": []apitypes.Type{
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "salt", Type: "bytes32"},
			},
			"VerificationClaim": []apitypes.Type{
				{Name: "fid", Type: "uint256"},
				{Name: "address", Type: "address"},
				{Name: "blockHash", Type: "bytes32"},
				{Name: "network", Type: "uint8"},
			},
		},
		PrimaryType: "VerificationClaim",
		Domain: apitypes.TypedDataDomain{
			Name:    DomainName,
			Version: DomainVersion,
			Salt:    DomainSalt,
		},
		Message: apitypes.TypedDataMessage{
			"fid":       math.NewHexOrDecimal256(claim.Fid),
			"address":   common.BytesToAddress(claim.Address).Hex(),
			"blockHash": hexutil.Encode(claim.BlockHash),
			"network":   math.NewHexOrDecimal256(int64(claim.Network)),
		},
	}
}

// Digest computes the domain-separated EIP-712 hash of the claim.
func Digest(claim *protocol.VerificationClaim) ([]byte, error) {
	if claim == nil {
		return nil, fmt.Errorf("claim is nil")
	}
	typedData := TypedData(claim)
	digest, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return nil, fmt.Errorf("failed to hash typed claim: %w", err)
	}
	return digest, nil
}

// RecoverSigner recovers the Ethereum address that signed the claim.
// Verification of an embedded claim signature reduces to comparing the
// recovered address against claim.Address.
func RecoverSigner(claim *protocol.VerificationClaim, signature []byte) (common.Address, error) {
	if len(signature) != protocol.EcdsaSignatureLength {
		return common.Address{}, fmt.Errorf("invalid signature length: expected %d bytes, got %d",
			protocol.EcdsaSignatureLength, len(signature))
	}
	digest, err := Digest(claim)
	if err != nil {
		return common.Address{}, err
	}

	// Ethereum tooling sets the recovery byte to 27/28; SigToPub wants 0/1.
	sig := make([]byte, len(signature))
	copy(sig, signature)
	if sig[64] >= 27 {
		sig[64] -= 27
	}

	pub, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover public key: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// VerifyClaimSignature checks that the signature over the claim was
// produced by the key behind claim.Address.
func VerifyClaimSignature(claim *protocol.VerificationClaim, signature []byte) error {
	recovered, err := RecoverSigner(claim, signature)
	if err != nil {
		return err
	}
	if !bytes.Equal(recovered.Bytes(), claim.Address) {
		return fmt.Errorf("claim signed by %s, expected %s",
			recovered.Hex(), common.BytesToAddress(claim.Address).Hex())
	}
	return nil
}

package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/urfave/cli/v2"

	"github.com/hubkit-labs/hubmsg-go/pkg/builder"
	"github.com/hubkit-labs/hubmsg-go/pkg/claims"
	"github.com/hubkit-labs/hubmsg-go/pkg/codec"
	"github.com/hubkit-labs/hubmsg-go/pkg/logger"
	"github.com/hubkit-labs/hubmsg-go/pkg/protocol"
	"github.com/hubkit-labs/hubmsg-go/pkg/signer"
)

var (
	fidFlag = &cli.Int64Flag{
		Name:     "fid",
		Usage:    "fid of the authoring account",
		EnvVars:  []string{"HUBMSG_FID"},
		Required: true,
	}
	networkFlag = &cli.StringFlag{
		Name:    "network",
		Usage:   "target network: mainnet, testnet, devnet",
		EnvVars: []string{"HUBMSG_NETWORK"},
		Value:   "mainnet",
	}
	seedFlag = &cli.StringFlag{
		Name:    "signer-seed",
		Usage:   "hex-encoded 32-byte ed25519 seed of the delegate signer",
		EnvVars: []string{"HUBMSG_SIGNER_SEED"},
	}
	custodyKeyFlag = &cli.StringFlag{
		Name:    "custody-key",
		Usage:   "hex-encoded secp256k1 private key of the custody account",
		EnvVars: []string{"HUBMSG_CUSTODY_KEY"},
	}
	verboseFlag = &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "enable debug logging",
		EnvVars: []string{"HUBMSG_VERBOSE"},
	}
)

func main() {
	app := &cli.App{
		Name:  "hubmsg",
		Usage: "Build and sign social protocol messages",
		Description: `Constructs canonical protocol messages (casts, reactions, signer
authorizations, profile updates, address verifications), signs them with
the appropriate key scheme, and prints the signed envelope. Broadcasting
the envelope to a hub is left to other tooling.`,
		Commands: []*cli.Command{
			castCommand(),
			userDataCommand(),
			signerAddCommand(),
			verifyAddressCommand(),
			genKeyCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func castCommand() *cli.Command {
	return &cli.Command{
		Name:  "cast",
		Usage: "Build and sign a cast",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "text",
				Usage:    "cast text",
				Required: true,
			},
			&cli.Int64SliceFlag{
				Name:  "mention",
				Usage: "fid to mention (repeatable)",
			},
			fidFlag, networkFlag, seedFlag, verboseFlag,
		},
		Action: func(c *cli.Context) error {
			b, network, err := setup(c)
			if err != nil {
				return err
			}
			s, err := signer.NewEd25519SignerFromSeedHex(c.String("signer-seed"))
			if err != nil {
				return err
			}
			msg, err := b.BuildCastAdd(protocol.CastAddBody{
				Text:     c.String("text"),
				Mentions: c.Int64Slice("mention"),
			}, buildOpts(c, network), s)
			if err != nil {
				return err
			}
			return printEnvelope(msg)
		},
	}
}

func userDataCommand() *cli.Command {
	return &cli.Command{
		Name:  "user-data",
		Usage: "Build and sign a profile field update",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "type",
				Usage:    "field to update: pfp, display, bio, url, username",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "value",
				Usage:    "new field value",
				Required: true,
			},
			fidFlag, networkFlag, seedFlag, verboseFlag,
		},
		Action: func(c *cli.Context) error {
			b, network, err := setup(c)
			if err != nil {
				return err
			}
			udt, err := parseUserDataType(c.String("type"))
			if err != nil {
				return err
			}
			s, err := signer.NewEd25519SignerFromSeedHex(c.String("signer-seed"))
			if err != nil {
				return err
			}
			msg, err := b.BuildUserDataAdd(protocol.UserDataBody{
				UserDataType: udt,
				Value:        c.String("value"),
			}, buildOpts(c, network), s)
			if err != nil {
				return err
			}
			return printEnvelope(msg)
		},
	}
}

func signerAddCommand() *cli.Command {
	return &cli.Command{
		Name:  "signer-add",
		Usage: "Authorize a delegate signer key with the custody key",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "signer-pubkey",
				Usage:    "hex-encoded 32-byte ed25519 public key to authorize",
				Required: true,
			},
			fidFlag, networkFlag, custodyKeyFlag, verboseFlag,
		},
		Action: func(c *cli.Context) error {
			b, network, err := setup(c)
			if err != nil {
				return err
			}
			pubkey, err := protocol.DecodeHex(with0x(c.String("signer-pubkey")), protocol.Ed25519PublicKeyLength)
			if err != nil {
				return fmt.Errorf("invalid signer public key: %w", err)
			}
			s, err := signer.NewEcdsaSignerFromHex(c.String("custody-key"))
			if err != nil {
				return err
			}
			msg, err := b.BuildSignerAdd(protocol.SignerBody{SignerPublicKey: pubkey},
				buildOpts(c, network), s)
			if err != nil {
				return err
			}
			return printEnvelope(msg)
		},
	}
}

func verifyAddressCommand() *cli.Command {
	return &cli.Command{
		Name:  "verify-address",
		Usage: "Build and sign an Ethereum address verification",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "eth-key",
				Usage:    "hex-encoded secp256k1 private key of the address being verified",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "block-hash",
				Usage:    "0x-prefixed recent block hash bound into the claim",
				Required: true,
			},
			fidFlag, networkFlag, seedFlag, verboseFlag,
		},
		Action: func(c *cli.Context) error {
			b, network, err := setup(c)
			if err != nil {
				return err
			}
			ethSigner, err := signer.NewEcdsaSignerFromHex(c.String("eth-key"))
			if err != nil {
				return err
			}
			claim, err := claims.NewVerificationClaim(
				c.Int64("fid"), ethSigner.Address().Hex(), network, c.String("block-hash"))
			if err != nil {
				return err
			}
			claimSig, err := ethSigner.SignTypedClaim(claim)
			if err != nil {
				return err
			}
			delegate, err := signer.NewEd25519SignerFromSeedHex(c.String("signer-seed"))
			if err != nil {
				return err
			}
			msg, err := b.BuildVerificationAddEthAddress(protocol.VerificationAddEthAddressBody{
				Address:      claim.Address,
				EthSignature: claimSig,
				BlockHash:    claim.BlockHash,
			}, buildOpts(c, network), delegate)
			if err != nil {
				return err
			}
			return printEnvelope(msg)
		},
	}
}

func genKeyCommand() *cli.Command {
	return &cli.Command{
		Name:  "gen-key",
		Usage: "Generate fresh key material",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "scheme",
				Usage: "key scheme: ed25519 or ecdsa",
				Value: "ed25519",
			},
		},
		Action: func(c *cli.Context) error {
			switch c.String("scheme") {
			case "ed25519":
				s, err := signer.GenerateEd25519Signer()
				if err != nil {
					return err
				}
				fmt.Printf("public key: %s\n", hexutil.Encode(s.PublicIdentity()))
				return nil
			case "ecdsa":
				priv, err := crypto.GenerateKey()
				if err != nil {
					return err
				}
				fmt.Printf("private key: %s\n", hex.EncodeToString(crypto.FromECDSA(priv)))
				fmt.Printf("address: %s\n", crypto.PubkeyToAddress(priv.PublicKey).Hex())
				return nil
			default:
				return fmt.Errorf("unknown scheme: %s", c.String("scheme"))
			}
		},
	}
}

func setup(c *cli.Context) (*builder.Builder, protocol.Network, error) {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: c.Bool("verbose")})
	if err != nil {
		return nil, protocol.NetworkNone, err
	}
	network, err := protocol.ParseNetwork(c.String("network"))
	if err != nil {
		return nil, protocol.NetworkNone, err
	}
	b, err := builder.NewBuilder(l)
	if err != nil {
		return nil, protocol.NetworkNone, err
	}
	return b, network, nil
}

func buildOpts(c *cli.Context, network protocol.Network) builder.DataOptions {
	return builder.DataOptions{
		Fid:     c.Int64("fid"),
		Network: network,
	}
}

type envelopeOutput struct {
	Type            string `json:"type"`
	Fid             int64  `json:"fid"`
	Timestamp       int64  `json:"timestamp"`
	Network         string `json:"network"`
	Hash            string `json:"hash"`
	HashScheme      string `json:"hashScheme"`
	Signature       string `json:"signature"`
	SignatureScheme string `json:"signatureScheme"`
	Signer          string `json:"signer"`
	Encoded         string `json:"encoded"`
}

func printEnvelope(msg *protocol.Message) error {
	encoded, err := codec.EncodeMessage(msg)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(&envelopeOutput{
		Type:            msg.Data.Type.String(),
		Fid:             msg.Data.Fid,
		Timestamp:       msg.Data.Timestamp,
		Network:         msg.Data.Network.String(),
		Hash:            msg.HashHex(),
		HashScheme:      msg.HashScheme.String(),
		Signature:       hexutil.Encode(msg.Signature),
		SignatureScheme: msg.SignatureScheme.String(),
		Signer:          msg.SignerHex(),
		Encoded:         hexutil.Encode(encoded),
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func parseUserDataType(s string) (protocol.UserDataType, error) {
	switch s {
	case "pfp":
		return protocol.UserDataTypePfp, nil
	case "display":
		return protocol.UserDataTypeDisplay, nil
	case "bio":
		return protocol.UserDataTypeBio, nil
	case "url":
		return protocol.UserDataTypeUrl, nil
	case "username":
		return protocol.UserDataTypeUsername, nil
	default:
		return protocol.UserDataTypeNone, fmt.Errorf("unknown user data type: %s", s)
	}
}

func with0x(s string) string {
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		return s
	}
	return "0x" + s
}

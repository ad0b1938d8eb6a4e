package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	weave "github.com/iov-one/weave-timedwallet"
	"github.com/iov-one/weave-timedwallet/crypto"
	"github.com/iov-one/weave-timedwallet/errors"
	"github.com/iov-one/weave-timedwallet/x/timedwallet"
	"github.com/spf13/cobra"
)

const (
	flagKey     = "key"
	flagMessage = "message"
	flagAdaptor = "adaptor"
)

type keyInfo struct {
	Address    weave.Address `json:"address"`
	Bech32     string        `json:"bech32"`
	PublicKey  crypto.Point  `json:"public_key"`
	PrivateKey string        `json:"private_key"`
}

func newKeyInfo(key *crypto.PrivateKey) (keyInfo, error) {
	b32, err := key.Address().Bech32()
	if err != nil {
		return keyInfo{}, err
	}
	return keyInfo{
		Address:    key.Address(),
		Bech32:     b32,
		PublicKey:  key.PublicPoint(),
		PrivateKey: key.Hex(),
	}, nil
}

func newKeygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a new secp256k1 private key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := crypto.GenPrivateKey()
			if err != nil {
				return err
			}
			info, err := newKeyInfo(key)
			if err != nil {
				return err
			}
			return printJSON(cmd, info)
		},
	}
}

func newAddressCmd() *cobra.Command {
	var keyHex string
	cmd := &cobra.Command{
		Use:   "address",
		Short: "Print the address of a private key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := crypto.PrivateKeyFromHex(keyHex)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key.Address())
			return nil
		},
	}
	cmd.Flags().StringVar(&keyHex, flagKey, "", "hex encoded private key")
	return cmd
}

func newSignCmd() *cobra.Command {
	var keyHex, msgHex, statementHex string
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a withdraw agreement with a private key",
		Long: `Print the hex encoded personal signature of the withdraw message.
Both participants must sign the same message for a joint withdrawal.

With --adaptor the signature is bound to the statement of another key and a
JSON pre-signature is printed instead. Only the holder of that key can adapt
it into a usable signature, and publishing the adapted signature reveals the
key to the signer.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := crypto.PrivateKeyFromHex(keyHex)
			if err != nil {
				return err
			}
			message, err := withdrawMessage(msgHex)
			if err != nil {
				return err
			}
			if statementHex != "" {
				statement, err := parsePoint(flagAdaptor, statementHex)
				if err != nil {
					return err
				}
				pre, err := crypto.ECDSAAdaptor{}.PreSign(key, message, statement)
				if err != nil {
					return err
				}
				return printJSON(cmd, pre)
			}
			sig, err := key.SignPersonal(message)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(sig))
			return nil
		},
	}
	cmd.Flags().StringVar(&keyHex, flagKey, "", "hex encoded private key")
	cmd.Flags().StringVar(&msgHex, flagMessage, "", "hex encoded message (default is the standard withdraw message)")
	cmd.Flags().StringVar(&statementHex, flagAdaptor, "", "hex encoded public key the signature is bound to")
	return cmd
}

func withdrawMessage(msgHex string) ([]byte, error) {
	if msgHex == "" {
		return timedwallet.DefaultWithdrawMessage, nil
	}
	message, err := hex.DecodeString(msgHex)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "message: %s", err)
	}
	return message, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the app version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), weave.Version())
		},
	}
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(raw))
	return nil
}

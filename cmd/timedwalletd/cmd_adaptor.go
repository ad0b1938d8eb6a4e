package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/iov-one/weave-timedwallet/crypto"
	"github.com/iov-one/weave-timedwallet/errors"
	"github.com/spf13/cobra"
)

const (
	flagPresig    = "presig"
	flagPubkey    = "pubkey"
	flagStatement = "statement"
	flagSignature = "signature"
)

func newAdaptorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "adaptor",
		Short: "Work with pre-signatures created by sign --adaptor",
	}
	cmd.AddCommand(
		newAdaptorVerifyCmd(),
		newAdaptorAdaptCmd(),
		newAdaptorExtractCmd(),
	)
	return cmd
}

func newAdaptorVerifyCmd() *cobra.Command {
	var presig, pubkey, statement, msgHex string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that a pre-signature adapts into a signature of the public key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pre, err := parsePreSignature(presig)
			if err != nil {
				return err
			}
			pub, err := parsePoint(flagPubkey, pubkey)
			if err != nil {
				return err
			}
			st, err := parsePoint(flagStatement, statement)
			if err != nil {
				return err
			}
			message, err := withdrawMessage(msgHex)
			if err != nil {
				return err
			}
			if !(crypto.ECDSAAdaptor{}).PreVerify(pub, message, st, pre) {
				return errors.Wrap(errors.ErrInput, "invalid pre-signature")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return nil
		},
	}
	cmd.Flags().StringVar(&presig, flagPresig, "", "JSON pre-signature")
	cmd.Flags().StringVar(&pubkey, flagPubkey, "", "hex encoded public key of the signer")
	cmd.Flags().StringVar(&statement, flagStatement, "", "hex encoded public key the pre-signature is bound to")
	cmd.Flags().StringVar(&msgHex, flagMessage, "", "hex encoded message (default is the standard withdraw message)")
	return cmd
}

func newAdaptorAdaptCmd() *cobra.Command {
	var presig, keyHex string
	cmd := &cobra.Command{
		Use:   "adapt",
		Short: "Complete a pre-signature with the statement private key",
		Long: `Print the hex encoded personal signature obtained from the pre-signature.
It is accepted wherever the signer's own signature is.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pre, err := parsePreSignature(presig)
			if err != nil {
				return err
			}
			witness, err := crypto.PrivateKeyFromHex(keyHex)
			if err != nil {
				return err
			}
			scheme := crypto.ECDSAAdaptor{}
			sig, err := scheme.Adapt(pre, witness)
			if err != nil {
				return err
			}
			raw, err := scheme.Encode(sig)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(raw))
			return nil
		},
	}
	cmd.Flags().StringVar(&presig, flagPresig, "", "JSON pre-signature")
	cmd.Flags().StringVar(&keyHex, flagKey, "", "hex encoded private key of the statement")
	return cmd
}

func newAdaptorExtractCmd() *cobra.Command {
	var presig, sigHex, statement string
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Recover the statement private key from an adapted signature",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pre, err := parsePreSignature(presig)
			if err != nil {
				return err
			}
			st, err := parsePoint(flagStatement, statement)
			if err != nil {
				return err
			}
			raw, err := hex.DecodeString(sigHex)
			if err != nil {
				return errors.Wrapf(errors.ErrInput, "signature: %s", err)
			}
			scheme := crypto.ECDSAAdaptor{}
			sig, err := scheme.Decode(raw)
			if err != nil {
				return err
			}
			witness, err := scheme.Extract(sig, pre, st)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), witness.Hex())
			return nil
		},
	}
	cmd.Flags().StringVar(&presig, flagPresig, "", "JSON pre-signature")
	cmd.Flags().StringVar(&sigHex, flagSignature, "", "hex encoded adapted signature")
	cmd.Flags().StringVar(&statement, flagStatement, "", "hex encoded public key the pre-signature is bound to")
	return cmd
}

func parsePreSignature(raw string) (*crypto.PreSignature, error) {
	var pre crypto.PreSignature
	if err := json.Unmarshal([]byte(raw), &pre); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "pre-signature: %s", err)
	}
	return &pre, nil
}

func parsePoint(name, enc string) (crypto.Point, error) {
	var p crypto.Point
	if err := p.UnmarshalText([]byte(enc)); err != nil {
		return p, errors.Wrap(err, name)
	}
	return p, nil
}

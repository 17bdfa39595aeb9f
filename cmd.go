package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gregLibert/ledger-ssh/pkg/apdu"
	"github.com/gregLibert/ledger-ssh/pkg/sshpgp"
	"github.com/gregLibert/ledger-ssh/pkg/transport/hid"
	"github.com/gregLibert/ledger-ssh/pkg/transport/pcsc"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh"
)

const defaultPath = "m/44'/535'/0'/0/0"

// openFunc returns the transport selected by the flags and a handle releasing it.
type openFunc func(opts deviceOptions) (apdu.Exchanger, io.Closer, error)

type deviceOptions struct {
	reader string
	hidraw string
}

type app struct {
	logger zerolog.Logger
	open   openFunc

	device deviceOptions
	path   string
	curve  string
	debug  bool
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "ledger-ssh",
		Short:         "Query SSH keys and signatures from a Ledger-style SSH/PGP applet",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := zerolog.InfoLevel
			if a.debug {
				level = zerolog.DebugLevel
			}
			a.logger = a.logger.Level(level)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.path, "path", defaultPath, "BIP32 key path")
	flags.StringVar(&a.curve, "curve", "nistp256", "key curve (nistp256 or ed25519)")
	flags.StringVar(&a.device.reader, "reader", "", "PC/SC reader name (first reader when empty)")
	flags.StringVar(&a.device.hidraw, "hidraw", "", "hidraw device node, e.g. /dev/hidraw0 (overrides --reader)")
	flags.BoolVar(&a.debug, "debug", false, "log every exchanged frame")

	root.AddCommand(a.pubkeyCmd(), a.signCmd(), a.signHashCmd())
	return root
}

func (a *app) pubkeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pubkey",
		Short: "Print the public key in authorized_keys format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withClient(func(client *sshpgp.Client, curve sshpgp.Curve) error {
				key, err := client.GetPublicKey(cmd.Context(), a.path, curve)
				if err != nil {
					return err
				}
				pub, err := key.SSHPublicKey()
				if err != nil {
					return err
				}

				line := strings.TrimSuffix(string(ssh.MarshalAuthorizedKey(pub)), "\n")
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", line, a.path)
				return nil
			})
		},
	}
}

func (a *app) signCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sign <hex-data>",
		Short: "Sign data with the key at --path and print the signature blob",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := hex.DecodeString(args[0])
			if err != nil {
				return fmt.Errorf("decoding data: %w", err)
			}

			return a.withClient(func(client *sshpgp.Client, curve sshpgp.Curve) error {
				sig, err := client.SignData(cmd.Context(), a.path, curve, data)
				if err != nil {
					return err
				}
				return printSignature(cmd.OutOrStdout(), sig)
			})
		},
	}
}

func (a *app) signHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sign-hash <hex-sha256>",
		Short: "Sign a precomputed 32-byte hash and print the signature blob",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := hex.DecodeString(args[0])
			if err != nil {
				return fmt.Errorf("decoding hash: %w", err)
			}

			return a.withClient(func(client *sshpgp.Client, curve sshpgp.Curve) error {
				sig, err := client.SignDirectHash(cmd.Context(), a.path, curve, hash)
				if err != nil {
					return err
				}
				return printSignature(cmd.OutOrStdout(), sig)
			})
		},
	}
}

// withClient opens the device, runs fn and releases the device.
func (a *app) withClient(fn func(*sshpgp.Client, sshpgp.Curve) error) error {
	curve, err := sshpgp.ParseCurve(a.curve)
	if err != nil {
		return err
	}

	transport, closer, err := a.open(a.device)
	if err != nil {
		return err
	}
	defer func() {
		if err := closer.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("failed to release device")
		}
	}()

	opts := []sshpgp.Option{sshpgp.WithLogger(a.logger)}
	if a.debug {
		opts = append(opts, sshpgp.WithTraceHook(func(op string, trace apdu.Trace) {
			a.logger.Debug().
				Str("op", op).
				Bool("ok", trace.IsSuccess()).
				Msg("\n" + trace.Describe())
		}))
	}

	return fn(sshpgp.NewClient(transport, opts...), curve)
}

func printSignature(w io.Writer, sig sshpgp.Signature) error {
	var blob []byte
	switch s := sig.(type) {
	case sshpgp.EcSignature:
		blob = s.Blob
	case sshpgp.EdSignature:
		blob = s.Blob
	}

	sshSig, err := sig.SSHSignature()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s %s\n", sshSig.Format, strings.ToUpper(hex.EncodeToString(blob)))
	return nil
}

// openDevice connects to the hidraw node when one is given, otherwise to a
// PC/SC reader.
func openDevice(opts deviceOptions) (apdu.Exchanger, io.Closer, error) {
	if opts.hidraw != "" {
		f, err := os.OpenFile(opts.hidraw, os.O_RDWR, 0)
		if err != nil {
			return nil, nil, fmt.Errorf("opening %s: %w", opts.hidraw, err)
		}
		return hid.New(f), f, nil
	}

	conn, err := pcsc.Connect(opts.reader)
	if err != nil {
		return nil, nil, err
	}
	return conn, conn, nil
}

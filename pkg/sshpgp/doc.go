/*
Package sshpgp is the client of the SSH/PGP applet of a hardware signing
device. It encodes commands and decodes replies for three operations:

  - GetPublicKey: one frame, returns the key at a BIP32 path.
  - SignData: the key path followed by an arbitrary challenge, chunked into
    as many frames as the per-frame data limit requires.
  - SignDirectHash: the key path followed by a 32-byte digest, one frame.

Two curves are supported, NIST P-256 and Ed25519. Replies are decoded into
the closed unions Signature (EcSignature | EdSignature) and PublicKey
(EcKey | EdKey), which convert to golang.org/x/crypto/ssh types.

# Errors

Failures are reported with sentinel errors matched through errors.Is:

  - ErrFormat, ErrUnsupportedCurve: detected locally, before any exchange
    when the input alone shows the problem.
  - ErrCancelled, ErrAppNotRunning, ErrDeviceLocked, and *DeviceError for any
    other status word: raised right after a reply is classified.

Errors of the transport (and of the context) are returned untouched.

# Usage Example

	client := sshpgp.NewClient(transport, sshpgp.WithLogger(logger))

	key, err := client.GetPublicKey(ctx, "m/44'/535'/0'/0/0", sshpgp.CurveEd25519)
	if err != nil {
	    return err
	}
	pub, err := key.SSHPublicKey()
	if err != nil {
	    return err
	}
	fmt.Print(string(ssh.MarshalAuthorizedKey(pub)))

	sig, err := client.SignData(ctx, "m/44'/535'/0'/0/0", sshpgp.CurveEd25519, challenge)
	if errors.Is(err, sshpgp.ErrCancelled) {
	    fmt.Println("rejected on device")
	}
*/
package sshpgp

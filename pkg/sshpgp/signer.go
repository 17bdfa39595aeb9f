package sshpgp

import (
	"context"
	"io"

	"golang.org/x/crypto/ssh"
)

// Signer exposes one device key as an ssh.Signer. The device hashes the
// challenge itself, so every Sign call goes through SignData and asks the
// user for confirmation.
type Signer struct {
	ctx    context.Context
	client *Client
	path   string
	curve  Curve
	pub    ssh.PublicKey
}

var _ ssh.Signer = (*Signer)(nil)

// NewSigner fetches the public key at path and binds it to the client.
// ctx bounds every later Sign call, since ssh.Signer carries no context.
func NewSigner(ctx context.Context, client *Client, path string, curve Curve) (*Signer, error) {
	key, err := client.GetPublicKey(ctx, path, curve)
	if err != nil {
		return nil, err
	}

	pub, err := key.SSHPublicKey()
	if err != nil {
		return nil, err
	}

	return &Signer{
		ctx:    ctx,
		client: client,
		path:   path,
		curve:  curve,
		pub:    pub,
	}, nil
}

// PublicKey returns the SSH form of the device key.
func (s *Signer) PublicKey() ssh.PublicKey {
	return s.pub
}

// Sign has the device sign data. rand is unused.
func (s *Signer) Sign(_ io.Reader, data []byte) (*ssh.Signature, error) {
	sig, err := s.client.SignData(s.ctx, s.path, s.curve, data)
	if err != nil {
		return nil, err
	}
	return sig.SSHSignature()
}

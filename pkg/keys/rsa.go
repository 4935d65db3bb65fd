// Package keys generates RSA key pairs for SSH access to remote hosts.
package keys

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/ssh"
)

// DefaultBits is used when NewRSAKey is called with bits == 0.
const DefaultBits = 4092

// ErrInvalidPEM is returned when a private key block cannot be decoded.
var ErrInvalidPEM = errors.New("keys: invalid PEM private key")

// KeyPair holds an RSA key in the encodings needed to provision hosts.
type KeyPair struct {
	ID string

	// PrivateKeyPEM is the PKCS#1 "RSA PRIVATE KEY" block.
	PrivateKeyPEM string

	// PublicKeyBase64 is the base64 DER (PKIX) public key.
	// It is not prefixed with "ssh-rsa ", otherwise EC2 key pair import
	// rejects it as not being in OpenSSH format.
	PublicKeyBase64 string

	key *rsa.PrivateKey
}

// NewRSAKey generates a new key pair. bits == 0 selects DefaultBits.
func NewRSAKey(bits int) (*KeyPair, error) {
	if bits == 0 {
		bits = DefaultBits
	}
	if bits < 0 {
		return nil, fmt.Errorf("invalid rsa key size %d", bits)
	}

	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("failed to rsa generate: %w", err)
	}

	pk := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to derive rsa public key to der: %w", err)
	}

	return &KeyPair{
		ID:              uuid.New().String(),
		PrivateKeyPEM:   string(pk),
		PublicKeyBase64: base64.StdEncoding.EncodeToString(der),
		key:             key,
	}, nil
}

// FromPrivateKeyPEM rebuilds a KeyPair from a stored private key.
func FromPrivateKeyPEM(id, data string) (*KeyPair, error) {
	key, err := ParsePrivateKeyPEM(data)
	if err != nil {
		return nil, err
	}
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to derive rsa public key to der: %w", err)
	}
	return &KeyPair{
		ID:              id,
		PrivateKeyPEM:   data,
		PublicKeyBase64: base64.StdEncoding.EncodeToString(der),
		key:             key,
	}, nil
}

// ParsePrivateKeyPEM decodes a PKCS#1 or PKCS#8 RSA private key.
func ParsePrivateKeyPEM(data string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(data))
	if block == nil {
		return nil, ErrInvalidPEM
	}

	switch block.Type {
	case "RSA PRIVATE KEY":
		key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPEM, err)
		}
		return key, nil
	case "PRIVATE KEY":
		parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPEM, err)
		}
		key, ok := parsed.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("%w: not an rsa key", ErrInvalidPEM)
		}
		return key, nil
	default:
		return nil, fmt.Errorf("%w: unexpected block type %q", ErrInvalidPEM, block.Type)
	}
}

// AuthorizedKey returns the public key as an OpenSSH authorized_keys line.
func (k *KeyPair) AuthorizedKey() (string, error) {
	pub, err := ssh.NewPublicKey(&k.key.PublicKey)
	if err != nil {
		return "", fmt.Errorf("failed to convert public key: %w", err)
	}
	return strings.TrimSpace(string(ssh.MarshalAuthorizedKey(pub))), nil
}

// Fingerprint returns the SHA256 fingerprint as printed by ssh-keygen -l.
func (k *KeyPair) Fingerprint() (string, error) {
	pub, err := ssh.NewPublicKey(&k.key.PublicKey)
	if err != nil {
		return "", fmt.Errorf("failed to convert public key: %w", err)
	}
	return ssh.FingerprintSHA256(pub), nil
}

// Bits returns the modulus size.
func (k *KeyPair) Bits() int {
	return k.key.N.BitLen()
}

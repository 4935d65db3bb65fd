package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/felixgeelhaar/sshscp/pkg/keys"
)

const privateKeySuffix = ".pem"
const publicKeySuffix = ".pub.b64"

// SaveKeyPair writes the private and public key files and returns the
// private key path, ready to be used as a host's ssh_key_path.
func (r *FilesystemRepository) SaveKeyPair(kp *keys.KeyPair) (string, error) {
	if err := r.requireInitialized(); err != nil {
		return "", err
	}
	privPath, err := r.ResolvePath(kp.ID + privateKeySuffix)
	if err != nil {
		return "", err
	}
	pubPath, err := r.ResolvePath(kp.ID + publicKeySuffix)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(privPath, []byte(kp.PrivateKeyPEM), 0600); err != nil {
		return "", fmt.Errorf("failed to write private key: %w", err)
	}
	if err := os.WriteFile(pubPath, []byte(kp.PublicKeyBase64+"\n"), 0600); err != nil {
		return "", fmt.Errorf("failed to write public key: %w", err)
	}
	return privPath, nil
}

func (r *FilesystemRepository) LoadKeyPair(id string) (*keys.KeyPair, error) {
	path, err := r.ResolvePath(id + privateKeySuffix)
	if err != nil {
		return nil, err
	}
	// #nosec G304 -- Path is resolved and validated via ResolvePath
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key %s: %w", id, err)
	}
	return keys.FromPrivateKeyPEM(id, string(data))
}

// ListKeys returns the IDs of stored key pairs, sorted.
func (r *FilesystemRepository) ListKeys() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(r.Dir(), "*"+privateKeySuffix))
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, strings.TrimSuffix(filepath.Base(m), privateKeySuffix))
	}
	sort.Strings(ids)
	return ids, nil
}

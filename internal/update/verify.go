package update

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedisct1/go-minisign"

	apperrors "segunda/internal/errors"
)

const sha256HexLen = sha256.Size * 2

// ExtractChecksum finds the sha256 digest for assetName in a checksum
// manifest. A manifest holding a single bare digest matches any asset.
func ExtractChecksum(data []byte, assetName string) (string, error) {
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("checksum file is empty")
	}
	if isHexDigest(text) {
		return strings.ToLower(text), nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || !isHexDigest(fields[0]) {
			continue
		}
		// sha256sum marks binary mode with a leading '*'.
		candidate := filepath.Base(strings.TrimPrefix(fields[len(fields)-1], "*"))
		if candidate == assetName {
			return strings.ToLower(fields[0]), nil
		}
	}
	return "", fmt.Errorf("checksum for %s not found", assetName)
}

// VerifyChecksum compares the sha256 of the file at path with expected.
func VerifyChecksum(path, expected string) error {
	//nolint:gosec // G304: path is a download this process created
	f, err := os.Open(path)
	if err != nil {
		return apperrors.New(apperrors.CodeVerificationFailed, "", fmt.Errorf("open download: %w", err))
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return apperrors.New(apperrors.CodeVerificationFailed, "", fmt.Errorf("hash download: %w", err))
	}
	actual := hex.EncodeToString(h.Sum(nil))
	if !strings.EqualFold(actual, strings.TrimSpace(expected)) {
		return apperrors.New(apperrors.CodeVerificationFailed,
			fmt.Sprintf("checksum mismatch: expected %s, got %s", strings.ToLower(strings.TrimSpace(expected)), actual), nil)
	}
	return nil
}

// VerifySignature checks a minisign signature over content. publicKey is
// either the base64 key, the contents of a minisign .pub file, or a path
// to one.
func VerifySignature(content []byte, signature, publicKey string) error {
	pubKey, err := loadPublicKey(publicKey)
	if err != nil {
		return apperrors.New(apperrors.CodeVerificationFailed, "", fmt.Errorf("read minisign pubkey: %w", err))
	}
	sig, err := minisign.DecodeSignature(strings.TrimSpace(signature))
	if err != nil {
		return apperrors.New(apperrors.CodeVerificationFailed, "", fmt.Errorf("read minisign signature: %w", err))
	}

	valid, err := pubKey.Verify(content, sig)
	if err != nil {
		return apperrors.New(apperrors.CodeVerificationFailed, "", fmt.Errorf("minisign: verification error: %w", err))
	}
	if !valid {
		return apperrors.New(apperrors.CodeVerificationFailed, "minisign: signature verification failed", nil)
	}
	return nil
}

func loadPublicKey(value string) (minisign.PublicKey, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return minisign.PublicKey{}, fmt.Errorf("public key is empty")
	}
	if info, err := os.Stat(value); err == nil && !info.IsDir() {
		return minisign.NewPublicKeyFromFile(value)
	}
	// Accept a pasted .pub file: comment line followed by the key.
	lines := strings.Split(value, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line != "" && !strings.HasPrefix(line, "untrusted comment:") {
			return minisign.NewPublicKey(line)
		}
	}
	return minisign.PublicKey{}, fmt.Errorf("public key is empty")
}

func isHexDigest(value string) bool {
	if len(value) != sha256HexLen {
		return false
	}
	for _, ch := range value {
		if (ch < '0' || ch > '9') && (ch < 'a' || ch > 'f') && (ch < 'A' || ch > 'F') {
			return false
		}
	}
	return true
}

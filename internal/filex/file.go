// Package filex contains small filesystem helpers used by the client when
// saving downloaded plaintext.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/securechain/securechain/internal/common"
)

// EnsureSubDir creates (if needed) and returns a subdirectory of the current
// working directory.
func EnsureSubDir(dirName string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// DisplayName strips the encryption suffix from a stored file name so the
// recipient saves "report.pdf" instead of "report.pdf.enc".
func DisplayName(storedName string) string {
	return strings.TrimSuffix(storedName, common.EncryptedFileSuffix)
}

// SavePlaintext writes decrypted bytes into dir under the display name derived
// from storedName and returns the full path. The stored name comes from a
// server response header, so only its base name is used; path separators or
// ".." in it must not escape dir.
func SavePlaintext(dir, storedName string, plaintext []byte) (string, error) {
	name := filepath.Base(DisplayName(storedName))
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return "", fmt.Errorf("unusable stored file name %q", storedName)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, plaintext, 0o660); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

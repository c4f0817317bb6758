package pipeline

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// verifySHA1 checks a fetched file against the registry's sha1. An empty
// want skips the check.
func verifySHA1(filePath, want string) error {
	if want == "" {
		return nil
	}
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	hash := sha1.New()
	if _, err := io.Copy(hash, file); err != nil {
		return err
	}
	if got := hex.EncodeToString(hash.Sum(nil)); !strings.EqualFold(got, want) {
		return fmt.Errorf("%w: got sha1 %s, want %s", ErrChecksumMismatch, got, want)
	}
	return nil
}

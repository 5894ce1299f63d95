package hashutil

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Prefix marks the algorithm used for every digest produced here.
const Prefix = "sha256:"

// Digest returns the content address of data as "sha256:<hex>".
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s%x", Prefix, sum[:])
}

// Valid reports whether s looks like a digest produced by this package.
func Valid(s string) bool {
	if !strings.HasPrefix(s, Prefix) {
		return false
	}
	hex := s[len(Prefix):]
	if len(hex) != sha256.Size*2 {
		return false
	}
	for _, c := range hex {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

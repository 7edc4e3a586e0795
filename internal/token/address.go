package token

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// ZeroAddress is the canonical zero address. Transfer logs with this sender
// are mints.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// IsHexAddress reports whether s is a 0x-prefixed 20-byte hex address.
func IsHexAddress(s string) bool {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return false
	}
	clean := s[2:]
	if len(clean) != 40 {
		return false
	}
	_, err := hex.DecodeString(clean)
	return err == nil
}

// ValidateAddress checks address format and, when the input is mixed-case,
// its EIP-55 checksum. All-lower and all-upper inputs carry no checksum and
// pass on format alone.
func ValidateAddress(s string) error {
	if !IsHexAddress(s) {
		return fmt.Errorf("invalid address %q", s)
	}
	clean := s[2:]
	if clean == strings.ToLower(clean) || clean == strings.ToUpper(clean) {
		return nil
	}
	if s != ChecksumAddress(s) {
		return fmt.Errorf("address %q fails EIP-55 checksum", s)
	}
	return nil
}

// ChecksumAddress returns the EIP-55 mixed-case form of an address.
func ChecksumAddress(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X"))

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	hash := hex.EncodeToString(h.Sum(nil))

	var out strings.Builder
	out.WriteString("0x")
	for i, c := range lower {
		if c >= 'a' && c <= 'f' && hash[i] >= '8' {
			out.WriteByte(byte(c - 32))
		} else {
			out.WriteByte(byte(c))
		}
	}
	return out.String()
}

// SameAddress compares two addresses case-insensitively.
func SameAddress(a, b string) bool {
	return strings.EqualFold(a, b)
}

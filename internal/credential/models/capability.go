package models

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

// InterfaceID computes an ERC-165 style interface identifier: the XOR of the
// first four bytes of the Keccak-256 hash of each function signature.
func InterfaceID(signatures ...string) [4]byte {
	var id [4]byte
	for _, sig := range signatures {
		h := sha3.NewLegacyKeccak256()
		h.Write([]byte(sig))
		sum := h.Sum(nil)
		for i := range id {
			id[i] ^= sum[i]
		}
	}
	return id
}

// LockedInterfaceID identifies the minimal soulbound capability (a locked(uint256) query).
var LockedInterfaceID = InterfaceID("locked(uint256)")

// FormatInterfaceTag renders an interface id as 0x-prefixed lowercase hex.
func FormatInterfaceTag(id [4]byte) string {
	return "0x" + hex.EncodeToString(id[:])
}

// ParseInterfaceTag parses a 0x-prefixed 8 digit hex tag, case-insensitively.
func ParseInterfaceTag(tag string) ([4]byte, bool) {
	var id [4]byte
	digits, ok := strings.CutPrefix(strings.ToLower(strings.TrimSpace(tag)), "0x")
	if !ok || len(digits) != 8 {
		return id, false
	}
	if _, err := hex.Decode(id[:], []byte(digits)); err != nil {
		return id, false
	}
	return id, true
}

// SupportsInterface reports whether tag names the soulbound capability.
// Malformed tags are simply unsupported.
func SupportsInterface(tag string) bool {
	id, ok := ParseInterfaceTag(tag)
	return ok && id == LockedInterfaceID
}

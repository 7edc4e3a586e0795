package token

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Event topic hashes for the two log filters the history view consumes.
var (
	TopicTransfer = EventTopic("Transfer(address,address,uint256)")
	TopicApproval = EventTopic("Approval(address,address,uint256)")
)

// EventTopic computes the keccak-256 topic hash for an event signature.
func EventTopic(sig string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(sig))
	return "0x" + hex.EncodeToString(h.Sum(nil))
}

// TopicAddress extracts the 20-byte address packed into a 32-byte log topic.
// Returns "" when the topic is not a left-padded address word.
func TopicAddress(topic string) string {
	clean := topic
	if len(clean) >= 2 && clean[:2] == "0x" {
		clean = clean[2:]
	}
	if len(clean) != 64 {
		return ""
	}
	return "0x" + clean[24:]
}

package phonepe

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

const (
	// PayPath is the endpoint payment creation payloads are signed against.
	PayPath = "/pg/v1/pay"
	// StatusPathPrefix is the endpoint prefix callbacks and status checks
	// are signed against.
	StatusPathPrefix = "/pg/v1/status/"

	checksumSeparator = "###"
)

// Checksum signs an outgoing payload: hex SHA256 of the base64 payload,
// the endpoint path, and the salt key, suffixed with the salt index.
func Checksum(base64Payload, path, saltKey, saltIndex string) string {
	sum := sha256.Sum256([]byte(base64Payload + path + saltKey))
	return hex.EncodeToString(sum[:]) + checksumSeparator + saltIndex
}

// StatusChecksum signs a status-check request, which hashes the full
// status path instead of a payload.
func StatusChecksum(merchantID, merchantTxnID, saltKey, saltIndex string) string {
	sum := sha256.Sum256([]byte(StatusPathPrefix + merchantID + "/" + merchantTxnID + saltKey))
	return hex.EncodeToString(sum[:]) + checksumSeparator + saltIndex
}

// VerifyCallback checks an incoming X-VERIFY header against the callback
// payload. The header carries "<hex sha256>###<salt index>"; both halves
// must match what we derive from our own salt.
func VerifyCallback(base64Payload, xVerify, saltKey, saltIndex string) bool {
	if base64Payload == "" || xVerify == "" {
		return false
	}
	parts := strings.SplitN(xVerify, checksumSeparator, 2)
	if len(parts) != 2 {
		return false
	}
	if parts[1] != saltIndex {
		return false
	}
	sum := sha256.Sum256([]byte(base64Payload + StatusPathPrefix + saltKey))
	expected := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(expected), []byte(parts[0])) == 1
}

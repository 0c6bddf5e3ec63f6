// internal/gateway/korapay/signature.go
package korapay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifySignature reports whether signature is the hex-encoded HMAC-SHA256 of
// signedPayload keyed by secret. The signed payload is the raw data sub-object
// of the webhook body, per the gateway's convention. Hex comparison is
// case-insensitive and constant-time. It returns false on any malformed
// input, including an empty secret; callers must reject, never proceed
// optimistically.
func VerifySignature(secret string, signedPayload []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}

	received, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(signedPayload)

	return hmac.Equal(mac.Sum(nil), received)
}

// internal/gateway/korapay/signature_test.go
package korapay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	secret := "sk_test_4f9d8c2a"
	payload := []byte(`{"reference":"KPY-REF-001","amount":15000000,"currency":"NGN"}`)

	t.Run("ValidSignature", func(t *testing.T) {
		assert.True(t, VerifySignature(secret, payload, sign(secret, payload)))
	})

	t.Run("UppercaseHexAccepted", func(t *testing.T) {
		assert.True(t, VerifySignature(secret, payload, strings.ToUpper(sign(secret, payload))))
	})

	t.Run("TamperedPayloadRejected", func(t *testing.T) {
		signature := sign(secret, payload)
		tampered := []byte(strings.Replace(string(payload), "15000000", "15000001", 1))
		assert.False(t, VerifySignature(secret, tampered, signature))
	})

	t.Run("SingleByteFlipRejected", func(t *testing.T) {
		signature := sign(secret, payload)
		tampered := make([]byte, len(payload))
		copy(tampered, payload)
		tampered[10] ^= 0x01
		assert.False(t, VerifySignature(secret, tampered, signature))
	})

	t.Run("WrongSecretRejected", func(t *testing.T) {
		assert.False(t, VerifySignature(secret, payload, sign("sk_test_other", payload)))
	})

	t.Run("EmptySecretRejected", func(t *testing.T) {
		assert.False(t, VerifySignature("", payload, sign(secret, payload)))
	})

	t.Run("MissingSignatureRejected", func(t *testing.T) {
		assert.False(t, VerifySignature(secret, payload, ""))
	})

	t.Run("NonHexSignatureRejected", func(t *testing.T) {
		assert.False(t, VerifySignature(secret, payload, "not-hex-at-all"))
	})
}

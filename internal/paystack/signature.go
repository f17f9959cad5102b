package paystack

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
)

// SignatureHeader is the header Paystack signs webhook deliveries with.
const SignatureHeader = "X-Paystack-Signature"

// VerifySignature checks the HMAC-SHA512 hex digest of the raw body against
// the delivered signature, in constant time.
func VerifySignature(secret string, body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

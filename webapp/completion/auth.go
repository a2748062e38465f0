package completion

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

/**
validate an X-Hub-Signature style header ("sha1=<hex hmac>") against the HMAC
of the raw request body. Comparison is constant-time; nothing from the body
is interpreted before this check passes.
*/
func ValidateSignature(headerValue string, body []byte, secret string) bool {
	if !strings.HasPrefix(headerValue, "sha1=") {
		return false
	}

	provided, decodeErr := hex.DecodeString(strings.TrimPrefix(headerValue, "sha1="))
	if decodeErr != nil {
		return false
	}

	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(provided, mac.Sum(nil))
}

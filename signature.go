package subscriber

import (
	"crypto/hmac"
	"crypto/subtle"
	"encoding/base64"
	"strings"
)

// ContentHash computes the base64-encoded HMAC of body using the named digest
// (sha1, sha256, sha384 or sha512). An unsupported or empty method yields an
// empty hash, which never matches a real signature.
func ContentHash(method, secret string, body []byte) string {
	newHasher := newHash(method)

	if newHasher == nil {
		return ""
	}

	mac := hmac.New(newHasher, []byte(secret))
	mac.Write(body)

	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// ValidateSignature checks an X-Hub-Signature header value, formatted as
// "method=signature", against the raw request body.
//
// A blank secret disables verification and accepts everything, signed or not.
// That trade-off lets subscribers opt out of authenticated delivery; callers
// wanting authenticity must configure a secret. With a secret configured, a
// missing or empty signature header is rejected.
//
// The comparison is ASCII-case-insensitive and constant time.
func ValidateSignature(body []byte, secret, signature string) bool {
	if strings.TrimSpace(secret) == "" {
		return true
	}

	if signature == "" {
		return false
	}

	method := ""
	provided := signature

	if idx := strings.Index(signature, "="); idx != -1 {
		method = signature[0:idx]
		provided = signature[idx+1:]
	}

	expected := ContentHash(method, secret, body)

	if expected == "" {
		return false
	}

	return equalFold(expected, provided)
}

// equalFold compares two strings in constant time after ASCII lowercasing.
func equalFold(a, b string) bool {
	la := strings.ToLower(a)
	lb := strings.ToLower(b)

	return subtle.ConstantTimeCompare([]byte(la), []byte(lb)) == 1
}

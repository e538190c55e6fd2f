package subscriber

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hmacBase64(t *testing.T, method, secret string, body []byte) string {
	t.Helper()

	newHasher := newHash(method)
	require.NotNil(t, newHasher, "unknown method %s", method)

	mac := hmac.New(newHasher, []byte(secret))
	mac.Write(body)

	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestContentHash(t *testing.T) {
	body := []byte("hello")

	t.Run("sha256", func(t *testing.T) {
		mac := hmac.New(sha256.New, []byte("s3cret"))
		mac.Write(body)
		expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

		assert.Equal(t, expected, ContentHash("sha256", "s3cret", body))
	})

	t.Run("sha1", func(t *testing.T) {
		mac := hmac.New(sha1.New, []byte("s3cret"))
		mac.Write(body)
		expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

		assert.Equal(t, expected, ContentHash("sha1", "s3cret", body))
	})

	t.Run("unsupported method yields empty hash", func(t *testing.T) {
		assert.Empty(t, ContentHash("md5", "s3cret", body))
		assert.Empty(t, ContentHash("", "s3cret", body))
	})
}

func TestValidateSignature(t *testing.T) {
	body := []byte("hello")

	t.Run("blank secret accepts anything", func(t *testing.T) {
		assert.True(t, ValidateSignature(body, "", "sha256=bogus"))
		assert.True(t, ValidateSignature(body, "   ", ""))
	})

	t.Run("missing signature with secret rejects", func(t *testing.T) {
		assert.False(t, ValidateSignature(body, "s3cret", ""))
	})

	t.Run("valid signature", func(t *testing.T) {
		sig := "sha256=" + hmacBase64(t, "sha256", "s3cret", body)

		assert.True(t, ValidateSignature(body, "s3cret", sig))
	})

	t.Run("comparison is case insensitive", func(t *testing.T) {
		sig := "sha1=" + strings.ToUpper(hmacBase64(t, "sha1", "s3cret", body))

		assert.True(t, ValidateSignature(body, "s3cret", sig))
	})

	t.Run("tampered signature rejects", func(t *testing.T) {
		sig := hmacBase64(t, "sha1", "s3cret", body)

		flipped := []byte(sig)
		if flipped[0] == 'A' {
			flipped[0] = 'B'
		} else {
			flipped[0] = 'A'
		}

		assert.False(t, ValidateSignature(body, "s3cret", "sha1="+string(flipped)))
	})

	t.Run("wrong secret rejects", func(t *testing.T) {
		sig := "sha256=" + hmacBase64(t, "sha256", "s3cret", body)

		assert.False(t, ValidateSignature(body, "other", sig))
	})

	t.Run("unsupported method rejects", func(t *testing.T) {
		assert.False(t, ValidateSignature(body, "s3cret", "md5=d1bc8d3ba4afc7e109612cb73acbdddac052c93025aa1f82942edabb7deb82a1"))
	})

	t.Run("round trip", func(t *testing.T) {
		payload := []byte("round trip payload")
		sig := "sha256=" + ContentHash("sha256", "s3cret", payload)

		assert.True(t, ValidateSignature(payload, "s3cret", sig))
	})
}

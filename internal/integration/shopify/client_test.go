package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/url"
	"testing"

	ierr "github.com/loopreach/loopreach/internal/errors"
	"github.com/loopreach/loopreach/internal/logger"
	"github.com/stretchr/testify/assert"
)

const testSecret = "shpss_test_secret"

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	client := NewClient(testSecret, logger.L)
	body := []byte(`{"id":1001,"total_price":"42.00"}`)

	t.Run("accepts valid signature", func(t *testing.T) {
		err := client.VerifyWebhookSignature(body, signBody(testSecret, body))
		assert.NoError(t, err)
	})

	t.Run("rejects signature from wrong secret", func(t *testing.T) {
		err := client.VerifyWebhookSignature(body, signBody("other_secret", body))
		assert.True(t, ierr.IsSignatureInvalid(err))
	})

	t.Run("rejects missing signature", func(t *testing.T) {
		err := client.VerifyWebhookSignature(body, "")
		assert.True(t, ierr.IsSignatureInvalid(err))
	})

	t.Run("rejects signature over different bytes", func(t *testing.T) {
		// Same JSON, different whitespace: the digest covers raw bytes
		other := []byte(`{"id": 1001, "total_price": "42.00"}`)
		err := client.VerifyWebhookSignature(body, signBody(testSecret, other))
		assert.True(t, ierr.IsSignatureInvalid(err))
	})

	t.Run("rejects garbage signature", func(t *testing.T) {
		err := client.VerifyWebhookSignature(body, "not-a-signature")
		assert.True(t, ierr.IsSignatureInvalid(err))
	})
}

func TestVerifyOAuthCallback(t *testing.T) {
	client := NewClient(testSecret, logger.L)

	signQuery := func(secret string, query url.Values) string {
		// Mirror of the provider's scheme: sorted params, hmac and
		// signature excluded, joined with ampersands, hex digest
		msg := "code=" + query.Get("code") +
			"&shop=" + query.Get("shop") +
			"&timestamp=" + query.Get("timestamp")
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write([]byte(msg))
		return hex.EncodeToString(mac.Sum(nil))
	}

	query := url.Values{}
	query.Set("shop", "test.example.com")
	query.Set("code", "authcode123")
	query.Set("timestamp", "1700000000")

	t.Run("accepts valid callback", func(t *testing.T) {
		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}
		q.Set("hmac", signQuery(testSecret, q))
		assert.NoError(t, client.VerifyOAuthCallback(q))
	})

	t.Run("rejects tampered parameter", func(t *testing.T) {
		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}
		q.Set("hmac", signQuery(testSecret, q))
		q.Set("shop", "evil.example.com")
		err := client.VerifyOAuthCallback(q)
		assert.True(t, ierr.IsSignatureInvalid(err))
	})

	t.Run("rejects missing hmac", func(t *testing.T) {
		err := client.VerifyOAuthCallback(query)
		assert.True(t, ierr.IsSignatureInvalid(err))
	})
}

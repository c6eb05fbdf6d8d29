package twilio

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"testing"

	ierr "github.com/loopreach/loopreach/internal/errors"
	"github.com/loopreach/loopreach/internal/logger"
	"github.com/stretchr/testify/assert"
)

const testAuthToken = "twilio_test_token"

func signCallback(token, callbackURL string, form url.Values) string {
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msg := callbackURL
	for _, k := range keys {
		msg += k + form.Get(k)
	}

	mac := hmac.New(sha256.New, []byte(token))
	mac.Write([]byte(msg))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	client := NewClient(testAuthToken, logger.L)
	callbackURL := "https://app.example.com/v1/webhooks/twilio"

	form := url.Values{}
	form.Set("MessageSid", "SM123")
	form.Set("MessageStatus", "delivered")
	form.Set("AccountSid", "AC456")

	t.Run("accepts valid signature", func(t *testing.T) {
		sig := signCallback(testAuthToken, callbackURL, form)
		assert.NoError(t, client.VerifySignature(callbackURL, form, sig))
	})

	t.Run("rejects signature from wrong token", func(t *testing.T) {
		sig := signCallback("wrong_token", callbackURL, form)
		err := client.VerifySignature(callbackURL, form, sig)
		assert.True(t, ierr.IsSignatureInvalid(err))
	})

	t.Run("rejects tampered parameter", func(t *testing.T) {
		sig := signCallback(testAuthToken, callbackURL, form)
		tampered := url.Values{}
		for k, v := range form {
			tampered[k] = v
		}
		tampered.Set("MessageStatus", "failed")
		err := client.VerifySignature(callbackURL, tampered, sig)
		assert.True(t, ierr.IsSignatureInvalid(err))
	})

	t.Run("rejects different callback URL", func(t *testing.T) {
		sig := signCallback(testAuthToken, callbackURL, form)
		err := client.VerifySignature("https://other.example.com/v1/webhooks/twilio", form, sig)
		assert.True(t, ierr.IsSignatureInvalid(err))
	})

	t.Run("rejects missing signature", func(t *testing.T) {
		err := client.VerifySignature(callbackURL, form, "")
		assert.True(t, ierr.IsSignatureInvalid(err))
	})
}

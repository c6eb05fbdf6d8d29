package twilio

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"

	ierr "github.com/loopreach/loopreach/internal/errors"
	"github.com/loopreach/loopreach/internal/logger"
)

// SignatureHeader carries the callback digest on every request
const SignatureHeader = "X-Twilio-Signature"

// Client verifies telephony callbacks signed with the account's auth token.
type Client struct {
	authToken string
	logger    *logger.Logger
}

func NewClient(authToken string, logger *logger.Logger) *Client {
	return &Client{
		authToken: authToken,
		logger:    logger,
	}
}

// VerifySignature checks the hex HMAC-SHA256 digest of the full callback URL
// concatenated with the sorted form parameters. The URL must be the exact
// public URL the provider was configured with, including scheme and query
// string.
func (c *Client) VerifySignature(callbackURL string, form url.Values, signature string) error {
	if signature == "" {
		return ierr.NewError("missing callback signature").
			WithHint("Callbacks must carry a signature header").
			Mark(ierr.ErrSignatureInvalid)
	}

	keys := make([]string, 0, len(form))
	for key := range form {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(callbackURL)
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(form.Get(key))
	}

	mac := hmac.New(sha256.New, []byte(c.authToken))
	mac.Write([]byte(b.String()))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ierr.NewError("callback signature mismatch").
			WithHint("The callback failed signature verification").
			Mark(ierr.ErrSignatureInvalid)
	}
	return nil
}

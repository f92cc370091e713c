package binance

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// signer produces the HMAC-SHA256 request signature Binance requires on
// account and order endpoints.
type signer struct {
	apiKey string
	secret []byte
}

func newSigner(apiKey, secret string) *signer {
	return &signer{apiKey: apiKey, secret: []byte(secret)}
}

func (s *signer) sign(query string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(query))
	return hex.EncodeToString(mac.Sum(nil))
}

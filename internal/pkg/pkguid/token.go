package pkguid

import (
	"crypto/rand"
	"encoding/hex"
)

// TokenBytes is the entropy of an API token; the hex form is twice as long.
const TokenBytes = 20

// Token generates random hex API keys.
type Token struct{}

// NewToken returns a Token generator.
func NewToken() *Token {
	return &Token{}
}

// Generate returns a 40 character hex key. It panics if the system random
// source fails, matching uuid.Must in the UUID generator.
func (t *Token) Generate() string {
	buf := make([]byte, TokenBytes)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}

package service

import (
	"crypto/rand"
	"math/big"

	"github.com/scanlink/scanlink-server-go/internal/config"
)

// codeAlphabet is URL-safe and case-sensitive: 62 symbols over 6 positions
// gives ~57 bits of id space. Uniqueness is probabilistic; the database insert
// is the real gate.
const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// GenerateCode returns a fresh fixed-length short code. It never fails and
// never coordinates with the store: callers must treat a unique violation on
// insert as the signal to call it again.
func GenerateCode() string {
	chars := []byte(codeAlphabet)
	max := big.NewInt(int64(len(chars)))

	code := make([]byte, config.CodeLength)
	for i := range code {
		n, _ := rand.Int(rand.Reader, max)
		code[i] = chars[n.Int64()]
	}
	return string(code)
}

package service

import (
	"crypto/rand"
	"encoding/hex"
)

const confirmationCodeBytes = 6

// GenerateConfirmationCode returns a 12-character lowercase hex code drawn
// from crypto/rand. The code must be unguessable within its one-hour
// validity window; 48 bits of entropy is ample for that.
func GenerateConfirmationCode() string {
	buf := make([]byte, confirmationCodeBytes)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process has no usable entropy
		// source; nothing sensible can be done at this layer.
		panic(err)
	}
	return hex.EncodeToString(buf)
}

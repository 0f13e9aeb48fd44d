package helpers

import (
	"crypto/rand"
	"math/big"
)

const passwordAlphabet = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789!@#$%^&*"

// GenSecurePassword returns a random password of length n drawn from an
// alphabet without look-alike characters.
func GenSecurePassword(n int) (string, error) {
	if n < 12 {
		n = 12
	}
	max := big.NewInt(int64(len(passwordAlphabet)))
	out := make([]byte, n)
	for i := range out {
		k, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = passwordAlphabet[k.Int64()]
	}
	return string(out), nil
}

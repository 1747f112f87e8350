package challenge

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const codeSpan = 900000

// GenerateCode returns a uniformly random 6-digit verification code
// drawn from crypto/rand. The leading digit is never zero, so the code
// survives any numeric round-trip intact.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

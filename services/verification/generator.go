package verification

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const codeRange = 900000

// GenerateCode returns a 6-digit numeric code drawn uniformly from
// [100000, 999999]. The lower bound keeps every code exactly six
// digits so no leading-zero ambiguity can reach the email body.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeRange))
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}

package wallet

import (
	"regexp"
	"strings"
)

// Transaction hash: exactly 64 hex characters.
var txHashRegex = regexp.MustCompile(`^[0-9a-f]{64}$`)

// ValidateTxHash validates a transaction hash and returns it in canonical
// lowercase form. Returns an error if the hash is malformed.
func ValidateTxHash(txHash string) (string, error) {
	if txHash == "" {
		return "", ErrInvalidTxHash
	}

	canonical := strings.ToLower(txHash)
	if !txHashRegex.MatchString(canonical) {
		return "", ErrInvalidTxHash
	}

	return canonical, nil
}

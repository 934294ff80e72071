package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// JoinCodeLength is the number of characters in a generated event join code.
const JoinCodeLength = 6

const joinCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewJoinCode returns a random uppercase base36 join code.
func NewJoinCode() (string, error) {
	var sb strings.Builder
	max := big.NewInt(int64(len(joinCodeAlphabet)))
	for i := 0; i < JoinCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(joinCodeAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

// NormalizeJoinCode trims and uppercases a user-entered code, so "ab12cd" joins AB12CD.
func NormalizeJoinCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

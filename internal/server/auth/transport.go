package auth

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/Velislav710/TeenBudget-sub001/internal/common"
)

var (
	toStdAlphabet = strings.NewReplacer("-", "+", "_", "/")
	toURLAlphabet = strings.NewReplacer("+", "-", "/", "_")
)

// EncodeTransport wraps a signed JWT in the wire form handed to clients:
// the base64url segments are rewritten to the standard alphabet, the whole
// string is padded with '=' to a multiple of four, and the result is base64
// encoded once more. This layer is a compatibility shim for tokens already
// in circulation. It carries no cryptographic weight.
func EncodeTransport(signed string) string {
	s := toStdAlphabet.Replace(signed)
	if rem := len(s) % 4; rem != 0 {
		s += strings.Repeat("=", 4-rem)
	}
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// DecodeTransport reverses EncodeTransport. Only the canonical encoding of a
// JWT is accepted; anything else yields common.ErrInvalidToken.
func DecodeTransport(transport string) (string, error) {
	raw, err := base64.StdEncoding.Strict().DecodeString(transport)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	signed := toURLAlphabet.Replace(strings.TrimRight(string(raw), "="))
	if signed == "" || EncodeTransport(signed) != transport {
		return "", fmt.Errorf("%w: non-canonical transport encoding", common.ErrInvalidToken)
	}
	return signed, nil
}

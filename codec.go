package session

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// TokenDecoder extracts claims from a raw token without tying callers to a
// specific parsing implementation.
type TokenDecoder interface {
	Decode(token string) (*Claims, error)
}

// TokenDecoderFunc adapts a function into a TokenDecoder.
type TokenDecoderFunc func(token string) (*Claims, error)

// Decode satisfies the TokenDecoder interface.
func (f TokenDecoderFunc) Decode(token string) (*Claims, error) {
	if f == nil {
		return nil, ErrTokenMalformed
	}
	return f(token)
}

// DecodeToken decodes a bearer token's payload without verifying its
// signature. Malformed input yields ErrTokenMalformed; it never panics and
// never partially fills claims.
func DecodeToken(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrTokenMalformed
	}

	claims := &Claims{}
	parser := jwt.NewParser()

	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	return claims, nil
}

var _ TokenDecoder = TokenDecoderFunc(DecodeToken)

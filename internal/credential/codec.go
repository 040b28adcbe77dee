package credential

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Codec encodes a Credential into an HS256-signed blob so that a stored value
// cannot be altered without the encode key.
type Codec struct {
	key []byte
	now func() time.Time
}

// NewCodec returns a codec for key. An empty key is rejected.
func NewCodec(key string) (*Codec, error) {
	if key == "" {
		return nil, errors.New("credential: encode key is required")
	}
	return &Codec{key: []byte(key), now: time.Now}, nil
}

type claims struct {
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType"`
	Expiry    time.Time `json:"expiry,omitempty"`
	jwt.RegisteredClaims
}

// Encode signs c.
func (k *Codec) Encode(c Credential) (string, error) {
	cl := claims{
		Token:     c.Token,
		TokenType: c.TokenType,
		Expiry:    c.Expiry,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(k.now()),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(k.key)
	if err != nil {
		return "", fmt.Errorf("credential: encode: %w", err)
	}
	return s, nil
}

// Decode verifies and unpacks blob. Credential expiry is not enforced here;
// callers decide via Credential.Valid.
func (k *Codec) Decode(blob string) (Credential, error) {
	var cl claims
	_, err := jwt.ParseWithClaims(blob, &cl, func(t *jwt.Token) (interface{}, error) {
		return k.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(k.now))
	if err != nil {
		return Credential{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return Credential{Token: cl.Token, TokenType: cl.TokenType, Expiry: cl.Expiry}, nil
}

// Package credential persists the session's auth credential in an encoded form
// and exposes it to the request layer.
package credential

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

var (
	// ErrNotFound is returned by Storage when the key holds nothing.
	ErrNotFound = errors.New("credential: not found")
	// ErrInvalid is returned by the codec for tampered or malformed blobs.
	ErrInvalid = errors.New("credential: invalid encoding")
)

// Credential is the session token issued by the login endpoint.
type Credential struct {
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType"`
	Expiry    time.Time `json:"expiry"`
}

// FromOAuth2 converts an oauth2 token.
func FromOAuth2(tok *oauth2.Token) Credential {
	if tok == nil {
		return Credential{}
	}
	return Credential{Token: tok.AccessToken, TokenType: tok.TokenType, Expiry: tok.Expiry}
}

// OAuth2 converts to an oauth2 token.
func (c Credential) OAuth2() *oauth2.Token {
	return &oauth2.Token{AccessToken: c.Token, TokenType: c.TokenType, Expiry: c.Expiry}
}

// Type returns the normalised token type, defaulting to Bearer.
func (c Credential) Type() string {
	return c.OAuth2().Type()
}

// Authorization renders the header value "<type> <token>".
func (c Credential) Authorization() string {
	return c.Type() + " " + c.Token
}

// Valid reports whether a token is present and not expired. A zero expiry
// never expires.
func (c Credential) Valid() bool {
	return strings.TrimSpace(c.Token) != "" && c.OAuth2().Valid()
}

// IsZero reports whether no token is held.
func (c Credential) IsZero() bool {
	return strings.TrimSpace(c.Token) == ""
}

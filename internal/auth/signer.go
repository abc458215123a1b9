package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

// assertionTTL is fixed by the token endpoint contract: assertions are valid
// for exactly one hour from issuance.
const assertionTTL = time.Hour

// CredentialError means the service-account key material could not be parsed.
// This is a permanent misconfiguration, never a transient fault.
type CredentialError struct {
	Err error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("service account credential: %v", e.Err)
}

func (e *CredentialError) Unwrap() error { return e.Err }

// Signer builds the signed JWT-bearer assertion presented to the token
// endpoint. The key is parsed once at construction; signing itself cannot
// fail on bad key material afterwards.
type Signer struct {
	key      jwk.Key
	email    string
	scope    string
	audience string
}

// NewSigner parses the service-account private key and prepares a signer for
// the given scope. Keys delivered through environment variables often carry
// literal `\n` sequences instead of newlines; these are normalized before
// parsing.
func NewSigner(email, privateKeyPEM, scope, audience string) (*Signer, error) {
	pemData := strings.ReplaceAll(privateKeyPEM, `\n`, "\n")

	key, err := jwk.ParseKey([]byte(pemData), jwk.WithPEM(true))
	if err != nil {
		return nil, &CredentialError{Err: fmt.Errorf("parse private key: %w", err)}
	}

	return &Signer{
		key:      key,
		email:    email,
		scope:    scope,
		audience: audience,
	}, nil
}

// Assertion returns a compact RS256-signed JWT claiming the service-account
// identity, valid from now for exactly one hour.
func (s *Signer) Assertion(now time.Time) (string, error) {
	now = now.UTC()

	tok, err := jwt.NewBuilder().
		Issuer(s.email).
		Subject(s.email).
		Audience([]string{s.audience}).
		IssuedAt(now).
		Expiration(now.Add(assertionTTL)).
		Claim("scope", s.scope).
		Build()
	if err != nil {
		return "", fmt.Errorf("build assertion claims: %w", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.RS256(), s.key))
	if err != nil {
		return "", fmt.Errorf("sign assertion: %w", err)
	}
	return string(signed), nil
}

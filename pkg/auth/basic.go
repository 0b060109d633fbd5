// Package auth implements the HTTP Basic access gate.
//
// Credentials are checked against configuration: user "lposa" is allowed
// when the config key AUTH_USER_LPOSA holds the password sent. No other
// config key is ever treated as a credential.
package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/shopfront/config"
)

var (
	// ErrMissingCredentials means no Authorization header was sent (HTTP 401).
	ErrMissingCredentials = errors.New("auth: authorization header is missing")

	// ErrForbidden means the header was malformed or the credentials did
	// not match (HTTP 403).
	ErrForbidden = errors.New("auth: invalid credentials")
)

// Reply maps a Check error to the HTTP status and client message.
func Reply(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusOK, "Access granted!"
	case errors.Is(err, ErrMissingCredentials):
		return http.StatusUnauthorized, "Authorization header is missing"
	default:
		return http.StatusForbidden, "Access denied: Invalid credentials"
	}
}

// Lookup returns the expected password for an upper-cased user name, or ""
// when the user is unknown.
type Lookup func(user string) string

// Gate validates Basic credentials.
type Gate struct {
	lookup Lookup
}

// CredentialPrefix namespaces credential keys in the application config.
const CredentialPrefix = "AUTH_USER_"

// NewGate returns a gate backed by the AUTH_USER_* config keys.
func NewGate() *Gate {
	return NewGateWithLookup(func(user string) string {
		return config.Get(CredentialPrefix+user, "")
	})
}

func NewGateWithLookup(l Lookup) *Gate {
	return &Gate{lookup: l}
}

// Check validates an Authorization header value of the form
// "Basic base64(user:password)". It returns the user name on success.
func (g *Gate) Check(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrMissingCredentials
	}

	user, password, ok := decode(header)
	if !ok || user == "" {
		return "", ErrForbidden
	}

	expected := g.lookup(strings.ToUpper(user))
	if expected == "" {
		return "", ErrForbidden
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(password)) != 1 {
		return "", ErrForbidden
	}
	return user, nil
}

// decode splits "<scheme> <token>" and decodes the token. The scheme itself
// is not checked; only the token after the first space matters.
func decode(header string) (user, password string, ok bool) {
	_, token, found := strings.Cut(header, " ")
	if !found {
		return "", "", false
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(token))
	if err != nil {
		return "", "", false
	}

	user, password, found = strings.Cut(string(raw), ":")
	if !found {
		return "", "", false
	}
	return user, password, true
}

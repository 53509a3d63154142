package kalshi

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Request headers expected by the venue on every call.
const (
	HeaderAccessKey       = "KALSHI-ACCESS-KEY"
	HeaderAccessTimestamp = "KALSHI-ACCESS-TIMESTAMP"
	HeaderAccessSignature = "KALSHI-ACCESS-SIGNATURE"
)

// Credentials holds the API key id and the RSA private key used to sign
// requests. The fields are unexported so the value cannot leak through
// encoding/json or similar serializers, and the Stringer form is redacted
// so it cannot leak through logging either.
type Credentials struct {
	apiKeyID string
	key      *rsa.PrivateKey
}

// NewCredentials wraps an already-parsed private key.
func NewCredentials(apiKeyID string, key *rsa.PrivateKey) Credentials {
	return Credentials{apiKeyID: apiKeyID, key: key}
}

// LoadCredentials reads the private key from an unencrypted PEM file.
// Failures are reported as *KeyLoadError so callers can fail fast at
// construction time, before any request is made.
func LoadCredentials(apiKeyID, keyPath string) (Credentials, error) {
	raw, err := os.ReadFile(keyPath)
	if err != nil {
		return Credentials{}, &KeyLoadError{Path: keyPath, Err: err}
	}
	key, err := parsePrivateKeyPEM(raw)
	if err != nil {
		return Credentials{}, &KeyLoadError{Path: keyPath, Err: err}
	}
	return Credentials{apiKeyID: apiKeyID, key: key}, nil
}

// parsePrivateKeyPEM accepts PKCS#1 ("RSA PRIVATE KEY") and PKCS#8
// ("PRIVATE KEY") blocks. Encrypted keys are not supported.
func parsePrivateKeyPEM(raw []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}
	switch block.Type {
	case "RSA PRIVATE KEY":
		return x509.ParsePKCS1PrivateKey(block.Bytes)
	case "PRIVATE KEY":
		parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		key, ok := parsed.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("not an RSA private key: %T", parsed)
		}
		return key, nil
	default:
		return nil, fmt.Errorf("unsupported PEM block type %q", block.Type)
	}
}

// APIKeyID returns the public key identifier. The private key has no
// accessor.
func (c Credentials) APIKeyID() string {
	return c.apiKeyID
}

// String redacts everything but the fact that credentials are present.
func (c Credentials) String() string {
	return "kalshi.Credentials{REDACTED}"
}

// GoString redacts %#v formatting the same way.
func (c Credentials) GoString() string {
	return c.String()
}

// Sign produces the base64 RSA-PSS signature over
// timestampMS + METHOD + path. The salt length equals the SHA-256 digest
// length, matching the venue's verifier. PSS is randomized, so two
// signatures over the same message differ; correctness is checked by
// verification, never by byte comparison.
func (c Credentials) Sign(timestampMS, method, path string) (string, error) {
	if c.key == nil {
		return "", fmt.Errorf("no private key loaded")
	}
	msg := timestampMS + strings.ToUpper(method) + path
	digest := sha256.Sum256([]byte(msg))
	sig, err := rsa.SignPSS(rand.Reader, c.key, crypto.SHA256, digest[:], &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthEqualsHash,
		Hash:       crypto.SHA256,
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign request: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// SignRequest creates the authentication headers for one attempt. The
// timestamp is taken from now, so a retried request gets a fresh
// timestamp and a fresh signature. The signed path is the query-stripped,
// prefix-qualified form of path.
func (c Credentials) SignRequest(now time.Time, method, path string) (map[string]string, error) {
	ts := strconv.FormatInt(now.UnixMilli(), 10)
	sig, err := c.Sign(ts, method, signedPath(path))
	if err != nil {
		return nil, err
	}
	return map[string]string{
		HeaderAccessKey:       c.apiKeyID,
		HeaderAccessTimestamp: ts,
		HeaderAccessSignature: sig,
		"Content-Type":        "application/json",
	}, nil
}

package jwt

import (
	"crypto/ed25519"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// VerifyMethod selects how the codec treats the token signature.
type VerifyMethod string

const (
	// MethodNone decodes claims without signature verification. This is the
	// browser-equivalent mode: the client holds no key material, and the
	// claims are still the authoritative permission source because only the
	// backend can mint a token the backend will accept.
	MethodNone VerifyMethod = "none"
	// MethodHS256 verifies the signature with a shared HMAC secret.
	MethodHS256 VerifyMethod = "hs256"
	// MethodEd25519 verifies the signature with an Ed25519 public key.
	MethodEd25519 VerifyMethod = "ed25519"
)

// Claims is the decoded claim set of a backend-issued bearer token. The
// permission list uses slash-delimited path prefixes; a nil list means the
// token predates the permissions claim.
type Claims struct {
	Role        string   `json:"role,omitempty"`
	Kind        string   `json:"kind,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// Expired reports whether the claims carry an expiry in the past relative to
// now. Claims without an exp claim never report expired.
func (c *Claims) Expired(now time.Time) bool {
	if c == nil || c.ExpiresAt == nil {
		return false
	}
	return c.ExpiresAt.Time.Before(now)
}

// Config configures a [Codec].
type Config struct {
	VerifyMethod VerifyMethod
	// Key is the HMAC secret for hs256 or the Ed25519 public key (raw or
	// PEM) for ed25519. Unused for [MethodNone].
	Key []byte
}

// Codec decodes bearer-token claims, optionally verifying the signature.
//
// Decode deliberately skips claim-time validation: expiry handling belongs to
// the session store, which must distinguish "expired" from "undecodable".
type Codec struct {
	config Config
}

// NewCodec validates cfg and returns a ready Codec.
func NewCodec(cfg Config) (*Codec, error) {
	switch cfg.VerifyMethod {
	case "", MethodNone:
		cfg.VerifyMethod = MethodNone
	case MethodHS256:
		if len(cfg.Key) == 0 {
			return nil, errors.New("hs256 requires a key")
		}
	case MethodEd25519:
		if _, err := parseEdPublicKey(cfg.Key); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("unsupported verify method")
	}
	return &Codec{config: cfg}, nil
}

// Decode parses the token and returns its claims. With a verify key
// configured, a bad signature is a decode error. Time-based claims are not
// validated here; use [Claims.Expired].
func (c *Codec) Decode(token string) (*Claims, error) {
	if token == "" {
		return nil, errors.New("empty token")
	}

	if c.config.VerifyMethod == MethodNone {
		parser := jwt.NewParser()
		claims := &Claims{}
		if _, _, err := parser.ParseUnverified(token, claims); err != nil {
			return nil, err
		}
		return claims, nil
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{c.method().Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	parsed, err := parser.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return c.verifyKey()
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// Verified reports whether Decode checks token signatures.
func (c *Codec) Verified() bool {
	return c.config.VerifyMethod != MethodNone
}

func (c *Codec) method() jwt.SigningMethod {
	switch c.config.VerifyMethod {
	case MethodHS256:
		return jwt.SigningMethodHS256
	default:
		return jwt.SigningMethodEdDSA
	}
}

func (c *Codec) verifyKey() (interface{}, error) {
	switch c.config.VerifyMethod {
	case MethodHS256:
		return c.config.Key, nil
	default:
		return parseEdPublicKey(c.config.Key)
	}
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}

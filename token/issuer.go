package token

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const minSecretLength = 32

// ErrInvalid is returned by Parse for any token that fails signature,
// lifetime, issuer, or role validation. Callers get a single opaque
// rejection; the reason is not surfaced to clients.
var ErrInvalid = errors.New("token: invalid token")

// RoleKey is one role's signing material and session lifetime.
type RoleKey struct {
	Secret []byte
	TTL    time.Duration
}

// Config defines the issuer identity and the per-role key set.
//
// Config instances are intended to be configured during initialization
// and then treated as immutable.
type Config struct {
	Issuer string
	Leeway time.Duration
	Keys   map[string]RoleKey
}

// Claims is the payload carried by every session token.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Issuer mints and verifies role-scoped HS256 tokens.
//
// Issuer instances are intended to be configured during initialization
// and then treated as immutable.
type Issuer struct {
	config Config
}

// New validates cfg and returns a ready Issuer. Every role needs a
// secret of at least 32 bytes and a positive TTL, and no two roles may
// share a secret.
func New(cfg Config) (*Issuer, error) {
	if cfg.Issuer == "" {
		return nil, errors.New("token: issuer is required")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("token: invalid leeway configuration")
	}
	if len(cfg.Keys) == 0 {
		return nil, errors.New("token: at least one role key is required")
	}

	seen := make([][]byte, 0, len(cfg.Keys))
	for role, key := range cfg.Keys {
		if role == "" {
			return nil, errors.New("token: key map contains empty role")
		}
		if len(key.Secret) < minSecretLength {
			return nil, fmt.Errorf("token: secret for role %q must be at least %d bytes", role, minSecretLength)
		}
		if key.TTL <= 0 {
			return nil, fmt.Errorf("token: TTL for role %q must be positive", role)
		}
		for _, prior := range seen {
			if bytes.Equal(prior, key.Secret) {
				return nil, errors.New("token: role secrets must be pairwise distinct")
			}
		}
		seen = append(seen, key.Secret)
	}

	return &Issuer{config: cfg}, nil
}

// Issue mints a signed token for subjectID in the given role, using the
// role's own secret and TTL.
func (i *Issuer) Issue(subjectID, email, role string) (string, error) {
	key, ok := i.config.Keys[role]
	if !ok {
		return "", fmt.Errorf("token: no key configured for role %q", role)
	}

	now := time.Now()
	claims := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			Issuer:    i.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(key.TTL)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key.Secret)
}

// Parse verifies tokenStr against the key configured for role and
// returns its claims. Any failure, including a token minted for a
// different role, yields ErrInvalid.
func (i *Issuer) Parse(tokenStr, role string) (*Claims, error) {
	key, ok := i.config.Keys[role]
	if !ok {
		return nil, fmt.Errorf("token: no key configured for role %q", role)
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.config.Issuer),
		jwt.WithExpirationRequired(),
	}
	if i.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(i.config.Leeway))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return key.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalid
	}
	// The signature already binds the token to this role's secret; the
	// embedded role claim must agree with it as well.
	if claims.Role != role {
		return nil, ErrInvalid
	}

	return claims, nil
}

// TTL returns the configured session lifetime for role, or zero when
// the role has no key.
func (i *Issuer) TTL(role string) time.Duration {
	return i.config.Keys[role].TTL
}

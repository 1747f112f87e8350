package identity

import (
	"bytes"
	"errors"
	"time"
)

// Config defines the engine's tunables. Instances are configured during
// initialization and then treated as immutable.
type Config struct {
	// Pepper is the deployment-wide secret mixed into every code and
	// password hash. Minimum 16 bytes. Distinct from per-hash salts.
	Pepper []byte

	Token          TokenConfig
	Password       HashConfig
	Code           HashConfig
	PasswordPolicy PasswordPolicyConfig
	Challenge      ChallengeConfig
	Cache          CacheConfig
	Notify         NotifyConfig
	Audit          AuditConfig
	Metrics        MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// RoleTokenConfig is one role's signing secret and session lifetime.
type RoleTokenConfig struct {
	Secret []byte
	TTL    time.Duration
}

// TokenConfig configures role-scoped session token issuance. User and
// Admin secrets must be distinct so a leaked standard-account key can
// never forge administrator tokens.
type TokenConfig struct {
	Issuer string
	Leeway time.Duration
	User   RoleTokenConfig
	Admin  RoleTokenConfig
}

/*
====================================
HASH CONFIG
====================================
*/

// HashConfig holds Argon2id cost parameters. Codes and passwords carry
// independent profiles: codes are short-lived and verified under
// interactive latency budgets, passwords are long-lived credentials.
type HashConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// PasswordPolicyConfig constrains chosen passwords. Verification codes
// are exempt; the policy applies to sign-up and password-change input.
type PasswordPolicyConfig struct {
	MinLength int
}

/*
====================================
CHALLENGE CONFIG
====================================
*/

// ChallengeConfig controls pending verification challenges.
type ChallengeConfig struct {
	TTL       time.Duration
	KeyPrefix string
}

/*
====================================
CACHE CONFIG
====================================
*/

// CacheConfig controls the identity cache. Entry lifetime is
// BaseTTL + random(0, Jitter), which spreads expirations so a sign-in
// burst does not expire as one synchronized reload storm.
type CacheConfig struct {
	BaseTTL   time.Duration
	Jitter    time.Duration
	KeyPrefix string
}

/*
====================================
NOTIFY / AUDIT / METRICS CONFIG
====================================
*/

// NotifyConfig controls the async code-delivery dispatcher.
type NotifyConfig struct {
	BufferSize int
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process metrics counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			Issuer: "identity",
			User:   RoleTokenConfig{TTL: 24 * time.Hour},
			Admin:  RoleTokenConfig{TTL: time.Hour},
		},
		Password: HashConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Code: HashConfig{
			Memory:      16 * 1024,
			Time:        2,
			Parallelism: 1,
			SaltLength:  16,
			KeyLength:   32,
		},
		PasswordPolicy: PasswordPolicyConfig{
			MinLength: 10,
		},
		Challenge: ChallengeConfig{
			TTL:       5 * time.Minute,
			KeyPrefix: "apc",
		},
		Cache: CacheConfig{
			BaseTTL:   10 * time.Minute,
			Jitter:    2 * time.Minute,
			KeyPrefix: "apid",
		},
		Notify: NotifyConfig{
			BufferSize: 256,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate checks the configuration for internal consistency. Hash cost
// floors are enforced again by the hasher constructors.
func (c *Config) Validate() error {
	if len(c.Pepper) < 16 {
		return errors.New("Pepper must be at least 16 bytes")
	}

	if c.Token.Issuer == "" {
		return errors.New("Token.Issuer is required")
	}
	if len(c.Token.User.Secret) < 32 {
		return errors.New("Token.User.Secret must be at least 32 bytes")
	}
	if len(c.Token.Admin.Secret) < 32 {
		return errors.New("Token.Admin.Secret must be at least 32 bytes")
	}
	if bytes.Equal(c.Token.User.Secret, c.Token.Admin.Secret) {
		return errors.New("Token secrets must be disjoint per role")
	}
	if c.Token.User.TTL <= 0 || c.Token.Admin.TTL <= 0 {
		return errors.New("Token TTLs must be positive")
	}

	if c.PasswordPolicy.MinLength < 8 {
		return errors.New("PasswordPolicy.MinLength must be at least 8")
	}

	if c.Challenge.TTL <= 0 {
		return errors.New("Challenge.TTL must be positive")
	}
	if c.Challenge.KeyPrefix == "" {
		return errors.New("Challenge.KeyPrefix is required")
	}

	if c.Cache.BaseTTL <= 0 {
		return errors.New("Cache.BaseTTL must be positive")
	}
	if c.Cache.Jitter < 0 {
		return errors.New("Cache.Jitter must be non-negative")
	}
	if c.Cache.KeyPrefix == "" {
		return errors.New("Cache.KeyPrefix is required")
	}
	if c.Cache.KeyPrefix == c.Challenge.KeyPrefix {
		return errors.New("Cache.KeyPrefix must differ from Challenge.KeyPrefix")
	}

	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Pepper = cloneBytes(cfg.Pepper)
	out.Token.User.Secret = cloneBytes(cfg.Token.User.Secret)
	out.Token.Admin.Secret = cloneBytes(cfg.Token.Admin.Secret)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

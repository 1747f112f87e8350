package identity

import (
	"bytes"
	"time"
)

// SecurityReport summarizes the security-relevant configuration of a
// built engine. Intended for startup logs and operational review; it
// never exposes secret material.
type SecurityReport struct {
	SigningAlgorithm    string
	UserTokenTTL        time.Duration
	AdminTokenTTL       time.Duration
	DisjointRoleSecrets bool
	ChallengeTTL        time.Duration
	PasswordMinLength   int
	Password            HashConfigReport
	Code                HashConfigReport
	CacheBaseTTL        time.Duration
	CacheJitter         time.Duration
	AuditActive         bool
	MetricsActive       bool
}

// HashConfigReport mirrors one Argon2id cost profile.
type HashConfigReport struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// SecurityReport builds the report from the engine's configuration.
func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}

	return SecurityReport{
		SigningAlgorithm:    "HS256",
		UserTokenTTL:        e.config.Token.User.TTL,
		AdminTokenTTL:       e.config.Token.Admin.TTL,
		DisjointRoleSecrets: !bytes.Equal(e.config.Token.User.Secret, e.config.Token.Admin.Secret),
		ChallengeTTL:        e.config.Challenge.TTL,
		PasswordMinLength:   e.config.PasswordPolicy.MinLength,
		Password: HashConfigReport{
			Memory:      e.config.Password.Memory,
			Time:        e.config.Password.Time,
			Parallelism: e.config.Password.Parallelism,
			SaltLength:  e.config.Password.SaltLength,
			KeyLength:   e.config.Password.KeyLength,
		},
		Code: HashConfigReport{
			Memory:      e.config.Code.Memory,
			Time:        e.config.Code.Time,
			Parallelism: e.config.Code.Parallelism,
			SaltLength:  e.config.Code.SaltLength,
			KeyLength:   e.config.Code.KeyLength,
		},
		CacheBaseTTL:  e.config.Cache.BaseTTL,
		CacheJitter:   e.config.Cache.Jitter,
		AuditActive:   e.config.Audit.Enabled,
		MetricsActive: e.config.Metrics.Enabled,
	}
}

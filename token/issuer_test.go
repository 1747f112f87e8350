package token

import (
	"errors"
	"testing"
	"time"
)

var (
	testUserSecret  = []byte("user-secret-0123456789abcdef0123")
	testAdminSecret = []byte("admin-secret-0123456789abcdef012")
)

func newTestIssuer(t *testing.T) *Issuer {
	t.Helper()

	iss, err := New(Config{
		Issuer: "identity-test",
		Keys: map[string]RoleKey{
			"user":  {Secret: testUserSecret, TTL: 24 * time.Hour},
			"admin": {Secret: testAdminSecret, TTL: time.Hour},
		},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return iss
}

func TestIssueParseRoundTrip(t *testing.T) {
	iss := newTestIssuer(t)

	raw, err := iss.Issue("acc-1", "alice@example.com", "user")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := iss.Parse(raw, "user")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if claims.Subject != "acc-1" {
		t.Fatalf("expected subject acc-1, got %q", claims.Subject)
	}
	if claims.Email != "alice@example.com" {
		t.Fatalf("unexpected email claim %q", claims.Email)
	}
	if claims.Role != "user" {
		t.Fatalf("unexpected role claim %q", claims.Role)
	}
	if claims.Issuer != "identity-test" {
		t.Fatalf("unexpected issuer %q", claims.Issuer)
	}
}

func TestParseRejectsCrossRoleToken(t *testing.T) {
	iss := newTestIssuer(t)

	userToken, err := iss.Issue("acc-1", "alice@example.com", "user")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := iss.Parse(userToken, "admin"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for user token on admin role, got %v", err)
	}

	adminToken, err := iss.Issue("acc-2", "root@example.com", "admin")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := iss.Parse(adminToken, "user"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for admin token on user role, got %v", err)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	iss, err := New(Config{
		Issuer: "identity-test",
		Keys: map[string]RoleKey{
			"user": {Secret: testUserSecret, TTL: time.Nanosecond},
		},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	raw, err := iss.Issue("acc-1", "alice@example.com", "user")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	if _, err := iss.Parse(raw, "user"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for expired token, got %v", err)
	}
}

func TestParseRejectsTamperedToken(t *testing.T) {
	iss := newTestIssuer(t)

	raw, err := iss.Issue("acc-1", "alice@example.com", "user")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	tampered := raw[:len(raw)-2] + "xx"
	if _, err := iss.Parse(tampered, "user"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for tampered token, got %v", err)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	iss := newTestIssuer(t)

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := iss.Parse(raw, "user"); !errors.Is(err, ErrInvalid) {
			t.Fatalf("expected ErrInvalid for %q, got %v", raw, err)
		}
	}
}

func TestIssueUnknownRole(t *testing.T) {
	iss := newTestIssuer(t)

	if _, err := iss.Issue("acc-1", "alice@example.com", "moderator"); err == nil {
		t.Fatal("expected error for unconfigured role")
	}
	if _, err := iss.Parse("whatever", "moderator"); err == nil {
		t.Fatal("expected error for unconfigured role")
	}
}

func TestNewValidatesConfig(t *testing.T) {
	base := func() Config {
		return Config{
			Issuer: "identity-test",
			Keys: map[string]RoleKey{
				"user":  {Secret: testUserSecret, TTL: time.Hour},
				"admin": {Secret: testAdminSecret, TTL: time.Hour},
			},
		}
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty issuer", func(c *Config) { c.Issuer = "" }},
		{"no keys", func(c *Config) { c.Keys = nil }},
		{"empty role", func(c *Config) { c.Keys[""] = RoleKey{Secret: []byte("x-secret-0123456789abcdef0123456"), TTL: time.Hour} }},
		{"short secret", func(c *Config) { c.Keys["user"] = RoleKey{Secret: []byte("short"), TTL: time.Hour} }},
		{"zero TTL", func(c *Config) { c.Keys["user"] = RoleKey{Secret: testUserSecret, TTL: 0} }},
		{"shared secret", func(c *Config) { c.Keys["admin"] = RoleKey{Secret: testUserSecret, TTL: time.Hour} }},
		{"excessive leeway", func(c *Config) { c.Leeway = time.Hour }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)
			if _, err := New(cfg); err == nil {
				t.Fatal("expected config validation error")
			}
		})
	}
}

func TestTTLPerRole(t *testing.T) {
	iss := newTestIssuer(t)

	if got := iss.TTL("user"); got != 24*time.Hour {
		t.Fatalf("expected 24h user TTL, got %v", got)
	}
	if got := iss.TTL("admin"); got != time.Hour {
		t.Fatalf("expected 1h admin TTL, got %v", got)
	}
	if got := iss.TTL("moderator"); got != 0 {
		t.Fatalf("expected zero TTL for unknown role, got %v", got)
	}
}

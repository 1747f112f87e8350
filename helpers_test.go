package identity

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

// memoryAccountStore is a map-backed AccountStore for engine tests.
type memoryAccountStore struct {
	mu       sync.Mutex
	records  map[string]*AccountRecord
	failFind bool
}

func newMemoryAccountStore() *memoryAccountStore {
	return &memoryAccountStore{records: make(map[string]*AccountRecord)}
}

func accountKey(email, role string) string {
	return strings.ToLower(email) + "|" + role
}

func (s *memoryAccountStore) FindByEmailAndRole(ctx context.Context, email, role string) (*AccountRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failFind {
		return nil, errors.New("store down")
	}

	record, ok := s.records[accountKey(email, role)]
	if !ok {
		return nil, ErrAccountNotFound
	}
	clone := *record
	return &clone, nil
}

func (s *memoryAccountStore) Create(ctx context.Context, record *AccountRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := accountKey(record.Email, record.Role)
	if _, exists := s.records[key]; exists {
		return ErrAccountDuplicate
	}
	if record.ID == "" {
		record.ID = "acc-" + record.Email
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	clone := *record
	s.records[key] = &clone
	return nil
}

func (s *memoryAccountStore) UpdatePasswordHash(ctx context.Context, email, role, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[accountKey(email, role)]
	if !ok {
		return ErrAccountNotFound
	}
	record.PasswordHash = passwordHash
	return nil
}

func (s *memoryAccountStore) delete(email, role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, accountKey(email, role))
}

type capturedDelivery struct {
	destination string
	code        string
	kind        NotifyKind
}

// captureNotifier records deliveries and exposes them on a channel so
// tests can wait for the async dispatcher.
type captureNotifier struct {
	deliveries chan capturedDelivery
}

func newCaptureNotifier() *captureNotifier {
	return &captureNotifier{deliveries: make(chan capturedDelivery, 32)}
}

func (n *captureNotifier) Deliver(ctx context.Context, destination, code string, kind NotifyKind) error {
	n.deliveries <- capturedDelivery{destination: destination, code: code, kind: kind}
	return nil
}

func (n *captureNotifier) wait(t *testing.T) capturedDelivery {
	t.Helper()

	select {
	case d := <-n.deliveries:
		return d
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for code delivery")
		return capturedDelivery{}
	}
}

func (n *captureNotifier) expectNone(t *testing.T) {
	t.Helper()

	select {
	case d := <-n.deliveries:
		t.Fatalf("unexpected delivery to %q", d.destination)
	case <-time.After(50 * time.Millisecond):
	}
}

type stubAssets struct {
	mu      sync.Mutex
	uploads []string
}

func (a *stubAssets) DefaultAvatarURL(email string) string {
	return "https://assets.test/avatars/" + strings.ToLower(email) + ".png"
}

func (a *stubAssets) PutDefaultAvatar(ctx context.Context, email string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.uploads = append(a.uploads, strings.ToLower(email))
	return nil
}

func testConfig() Config {
	cfg := defaultConfig()
	cfg.Pepper = []byte("unit-test-pepper-0123456789abcdef")
	cfg.Token.User.Secret = []byte("user-secret-0123456789abcdef0123")
	cfg.Token.Admin.Secret = []byte("admin-secret-0123456789abcdef012")

	// Cheapest parameters the hashers accept, to keep tests fast.
	cheap := HashConfig{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 16}
	cfg.Password = cheap
	cfg.Code = cheap

	return cfg
}

type testEngine struct {
	engine   *Engine
	mr       *miniredis.Miniredis
	accounts *memoryAccountStore
	notifier *captureNotifier
	assets   *stubAssets
}

func newTestEngine(t *testing.T, mutate func(*Config)) *testEngine {
	t.Helper()

	mr, client := newTestRedis(t)
	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	accounts := newMemoryAccountStore()
	notifier := newCaptureNotifier()
	assets := &stubAssets{}

	engine, err := New().
		WithConfig(cfg).
		WithRedis(client).
		WithAccounts(accounts).
		WithNotifier(notifier).
		WithAssets(assets).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return &testEngine{
		engine:   engine,
		mr:       mr,
		accounts: accounts,
		notifier: notifier,
		assets:   assets,
	}
}

// seedAccount registers an account directly in the store, bypassing the
// sign-up flow.
func (te *testEngine) seedAccount(t *testing.T, email string, role Role, password string) *AccountRecord {
	t.Helper()

	hash, err := te.engine.passwords.Hash(password)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	record := &AccountRecord{
		Email:        strings.ToLower(email),
		Role:         string(role),
		PasswordHash: hash,
		FullName:     "Seeded Account",
	}
	if err := te.accounts.Create(context.Background(), record); err != nil {
		t.Fatalf("seed Create failed: %v", err)
	}
	return record
}

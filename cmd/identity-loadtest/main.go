// Command identity-loadtest measures engine throughput against a live
// or embedded Redis.
//
// It seeds standard accounts, then runs two phases: a sign-in phase
// (password verification plus token issuance) and a sign-up phase
// (full challenge round trip: issue, deliver, complete). Results are
// printed as ops/sec with latency percentiles per phase.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	identity "github.com/ghuysu/social-media-sub000"
	"github.com/ghuysu/social-media-sub000/password"
)

func main() {
	var (
		accounts    = flag.Int("accounts", 10000, "number of accounts to seed")
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 20000, "operations per phase")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
	)
	flag.Parse()

	if *accounts <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "accounts, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  *redis.Client
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		client = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", mr.Addr())
	} else {
		client = redis.NewClient(&redis.Options{Addr: addr})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	cfg := loadtestConfig()
	store := newMemoryAccounts()
	notifier := newCodeMailbox()

	engine, err := identity.New().
		WithConfig(cfg).
		WithRedis(client).
		WithAccounts(store).
		WithNotifier(notifier).
		WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine build failed: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	fmt.Printf("seeding %d accounts...\n", *accounts)
	startSeed := time.Now()
	if err := store.seed(cfg, *accounts); err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	signInStats := runSignInPhase(ctx, engine, *accounts, *ops, *concurrency)
	signUpStats := runSignUpPhase(ctx, engine, notifier, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("signin", signInStats)
	printStats("signup", signUpStats)
	fmt.Printf("dropped deliveries: %d\n", engine.NotifyDropped())
}

// seedPassword is shared by every seeded account; the load profile is
// about hashing cost, not password variety.
const seedPassword = "load-test-password-1"

func loadtestConfig() identity.Config {
	cfg := identity.Config{}
	cfg.Pepper = []byte("loadtest-pepper-0123456789abcdef")
	cfg.Token.Issuer = "identity-loadtest"
	cfg.Token.User.Secret = []byte("loadtest-user-secret-0123456789ab")
	cfg.Token.User.TTL = time.Hour
	cfg.Token.Admin.Secret = []byte("loadtest-admin-secret-0123456789a")
	cfg.Token.Admin.TTL = time.Hour

	// Floor-cost hashing: the run measures orchestration and Redis, not
	// Argon2id tuning.
	cheap := identity.HashConfig{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 16}
	cfg.Password = cheap
	cfg.Code = cheap

	cfg.PasswordPolicy.MinLength = 10
	cfg.Challenge.TTL = 5 * time.Minute
	cfg.Challenge.KeyPrefix = "apc"
	cfg.Cache.BaseTTL = 10 * time.Minute
	cfg.Cache.Jitter = time.Minute
	cfg.Cache.KeyPrefix = "apid"
	cfg.Notify.BufferSize = 4096
	cfg.Metrics.Enabled = true

	return cfg
}

func accountEmail(i int) string {
	return fmt.Sprintf("load-%d@example.test", i)
}

func runSignInPhase(ctx context.Context, engine *identity.Engine, accounts, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				email := accountEmail(r.Intn(accounts))
				t0 := time.Now()
				_, _, err := engine.SignInStandard(ctx, email, seedPassword)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

func runSignUpPhase(ctx context.Context, engine *identity.Engine, mailbox *codeMailbox, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				email := fmt.Sprintf("new-%d-%d@example.test", worker, i)
				inbox := mailbox.register(email)

				t0 := time.Now()
				err := engine.IssueSignUpChallenge(ctx, email)
				if err == nil {
					select {
					case code := <-inbox:
						_, err = engine.CompleteSignUp(ctx, email, code, identity.SignUpFields{
							Password: seedPassword,
							FullName: "Load Test",
						})
					case <-time.After(10 * time.Second):
						err = fmt.Errorf("code delivery timed out for %s", email)
					}
				}
				d := time.Since(t0)
				mailbox.forget(email)

				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}

// memoryAccounts is a map-backed AccountStore sized for the load run.
type memoryAccounts struct {
	mu      sync.RWMutex
	records map[string]*identity.AccountRecord
}

func newMemoryAccounts() *memoryAccounts {
	return &memoryAccounts{records: make(map[string]*identity.AccountRecord)}
}

// seed writes accounts directly. Every account shares one hash so
// seeding does not dominate the run.
func (s *memoryAccounts) seed(cfg identity.Config, n int) error {
	hasher, err := password.New(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	}, cfg.Pepper)
	if err != nil {
		return err
	}
	hash, err := hasher.Hash(seedPassword)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	for i := 0; i < n; i++ {
		email := accountEmail(i)
		s.records[email+"|user"] = &identity.AccountRecord{
			ID:           fmt.Sprintf("acc-%d", i),
			Email:        email,
			Role:         "user",
			PasswordHash: hash,
			FullName:     "Load Account",
			CreatedAt:    now,
		}
	}
	return nil
}

func (s *memoryAccounts) FindByEmailAndRole(ctx context.Context, email, role string) (*identity.AccountRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[strings.ToLower(email)+"|"+role]
	if !ok {
		return nil, identity.ErrAccountNotFound
	}
	clone := *record
	return &clone, nil
}

func (s *memoryAccounts) Create(ctx context.Context, record *identity.AccountRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(record.Email) + "|" + record.Role
	if _, exists := s.records[key]; exists {
		return identity.ErrAccountDuplicate
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

func (s *memoryAccounts) UpdatePasswordHash(ctx context.Context, email, role, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[strings.ToLower(email)+"|"+role]
	if !ok {
		return identity.ErrAccountNotFound
	}
	record.PasswordHash = passwordHash
	return nil
}

// codeMailbox routes delivered codes to per-email channels.
type codeMailbox struct {
	mu      sync.Mutex
	inboxes map[string]chan string
}

func newCodeMailbox() *codeMailbox {
	return &codeMailbox{inboxes: make(map[string]chan string)}
}

func (m *codeMailbox) register(email string) <-chan string {
	ch := make(chan string, 1)
	m.mu.Lock()
	m.inboxes[strings.ToLower(email)] = ch
	m.mu.Unlock()
	return ch
}

func (m *codeMailbox) forget(email string) {
	m.mu.Lock()
	delete(m.inboxes, strings.ToLower(email))
	m.mu.Unlock()
}

func (m *codeMailbox) Deliver(ctx context.Context, destination, code string, kind identity.NotifyKind) error {
	m.mu.Lock()
	ch, ok := m.inboxes[strings.ToLower(destination)]
	m.mu.Unlock()
	if !ok {
		return nil
	}
	select {
	case ch <- code:
	default:
	}
	return nil
}

package cache

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/ghuysu/social-media-sub000/internal/logging"
	"github.com/ghuysu/social-media-sub000/kv"
)

// Identity is the public projection of an account held in the cache.
// It deliberately has no field for the password hash; credentials never
// enter the cache.
type Identity struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	FullName  string    `json:"full_name"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
}

// Config controls entry lifetime and key layout.
type Config struct {
	BaseTTL   time.Duration
	Jitter    time.Duration
	KeyPrefix string
}

// Manager implements the cache-aside pattern for identities.
type Manager struct {
	kv     kv.Store
	config Config
	log    logging.Logger
}

// NewManager validates cfg and returns a Manager.
func NewManager(store kv.Store, cfg Config, log logging.Logger) (*Manager, error) {
	if cfg.BaseTTL <= 0 {
		return nil, errors.New("cache: base TTL must be positive")
	}
	if cfg.Jitter < 0 {
		return nil, errors.New("cache: jitter must be non-negative")
	}
	if cfg.KeyPrefix == "" {
		return nil, errors.New("cache: key prefix is required")
	}
	if log == nil {
		log = logging.Nop{}
	}
	return &Manager{kv: store, config: cfg, log: log}, nil
}

func (m *Manager) key(role, email string) string {
	return m.config.KeyPrefix + ":" + role + ":" + strings.ToLower(email)
}

// GetOrLoad returns the cached identity for (role, email), falling back
// to loader on a miss or on any store failure. A fresh load is written
// back best-effort; write failures are logged and swallowed.
func (m *Manager) GetOrLoad(
	ctx context.Context,
	role, email string,
	loader func(ctx context.Context) (*Identity, error),
) (*Identity, error) {
	key := m.key(role, email)

	data, err := m.kv.Get(ctx, key)
	if err == nil {
		var identity Identity
		if jsonErr := json.Unmarshal(data, &identity); jsonErr == nil {
			return &identity, nil
		}
		// A corrupt entry is treated as a miss and replaced below.
		m.log.Warn("cache entry corrupt, reloading", "key", key)
	} else if !errors.Is(err, kv.ErrNotFound) {
		m.log.Warn("cache read failed, falling back to loader", "key", key, "error", err)
	}

	identity, err := loader(ctx)
	if err != nil {
		return nil, err
	}

	m.Put(ctx, identity)
	return identity, nil
}

// Put writes identity to the cache with a jittered TTL. Failures are
// logged, never returned: the cache is advisory.
func (m *Manager) Put(ctx context.Context, identity *Identity) {
	if identity == nil {
		return
	}

	data, err := json.Marshal(identity)
	if err != nil {
		m.log.Warn("cache encode failed", "role", identity.Role, "error", err)
		return
	}

	key := m.key(identity.Role, identity.Email)
	if err := m.kv.Set(ctx, key, data, m.entryTTL()); err != nil {
		m.log.Warn("cache write failed", "key", key, "error", err)
	}
}

// Invalidate removes the cached entry for (role, email). Failures are
// logged, never returned.
func (m *Manager) Invalidate(ctx context.Context, role, email string) {
	key := m.key(role, email)
	if err := m.kv.Delete(ctx, key); err != nil {
		m.log.Warn("cache invalidation failed", "key", key, "error", err)
	}
}

// entryTTL returns BaseTTL plus a uniformly random fraction of Jitter.
func (m *Manager) entryTTL() time.Duration {
	if m.config.Jitter <= 0 {
		return m.config.BaseTTL
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(m.config.Jitter)))
	if err != nil {
		return m.config.BaseTTL
	}
	return m.config.BaseTTL + time.Duration(n.Int64())
}

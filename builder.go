package identity

import (
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/ghuysu/social-media-sub000/cache"
	internalaudit "github.com/ghuysu/social-media-sub000/internal/audit"
	"github.com/ghuysu/social-media-sub000/internal/challenge"
	"github.com/ghuysu/social-media-sub000/internal/logging"
	"github.com/ghuysu/social-media-sub000/kv"
	"github.com/ghuysu/social-media-sub000/notify"
	"github.com/ghuysu/social-media-sub000/password"
	"github.com/ghuysu/social-media-sub000/token"
)

// Builder assembles an Engine. Builders are single-use: Build succeeds
// at most once per Builder.
type Builder struct {
	config Config
	redis  *redis.Client
	store  kv.Store

	accounts  AccountStore
	notifier  Notifier
	assets    AssetStore
	auditSink AuditSink
	logger    *slog.Logger

	built bool
}

// New returns a Builder carrying the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis supplies the Redis client backing challenges and the
// identity cache.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithStore supplies a key-value store directly, bypassing WithRedis.
// Useful for tests and alternative backends.
func (b *Builder) WithStore(store kv.Store) *Builder {
	b.store = store
	return b
}

// WithAccounts supplies the persistent account store.
func (b *Builder) WithAccounts(accounts AccountStore) *Builder {
	b.accounts = accounts
	return b
}

// WithNotifier supplies the verification-code delivery channel.
func (b *Builder) WithNotifier(notifier Notifier) *Builder {
	b.notifier = notifier
	return b
}

// WithAssets supplies the optional default-avatar store. Without one,
// new accounts get an empty avatar URL.
func (b *Builder) WithAssets(assets AssetStore) *Builder {
	b.assets = assets
	return b
}

// WithAuditSink supplies the audit destination. Audit stays off unless
// Config.Audit.Enabled is also set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger supplies the structured logger. Without one the engine
// logs nothing.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the verification latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, wires every component, and
// returns the Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store := b.store
	if store == nil {
		if b.redis == nil {
			return nil, errors.New("redis client or kv store required")
		}
		store = kv.NewRedisStore(b.redis)
	}

	if b.accounts == nil {
		return nil, errors.New("account store required")
	}

	if b.notifier == nil {
		return nil, errors.New("notifier required")
	}

	var log logging.Logger = logging.Nop{}
	if b.logger != nil {
		log = logging.NewSlog(b.logger)
	}

	engine := &Engine{
		config:   cfg,
		accounts: b.accounts,
		assets:   b.assets,
		log:      log,
	}

	engine.challenges = challenge.NewStore(store, cfg.Challenge.KeyPrefix)

	// -------- HASHERS --------
	codes, err := password.New(password.Config{
		Memory:      cfg.Code.Memory,
		Time:        cfg.Code.Time,
		Parallelism: cfg.Code.Parallelism,
		SaltLength:  cfg.Code.SaltLength,
		KeyLength:   cfg.Code.KeyLength,
	}, cfg.Pepper)
	if err != nil {
		return nil, err
	}
	engine.codes = codes

	passwords, err := password.New(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	}, cfg.Pepper)
	if err != nil {
		return nil, err
	}
	engine.passwords = passwords

	// -------- TOKENS --------
	tokens, err := token.New(token.Config{
		Issuer: cfg.Token.Issuer,
		Leeway: cfg.Token.Leeway,
		Keys: map[string]token.RoleKey{
			string(RoleUser): {
				Secret: cloneBytes(cfg.Token.User.Secret),
				TTL:    cfg.Token.User.TTL,
			},
			string(RoleAdministrator): {
				Secret: cloneBytes(cfg.Token.Admin.Secret),
				TTL:    cfg.Token.Admin.TTL,
			},
		},
	})
	if err != nil {
		return nil, err
	}
	engine.tokens = tokens

	// -------- CACHE --------
	identities, err := cache.NewManager(store, cache.Config{
		BaseTTL:   cfg.Cache.BaseTTL,
		Jitter:    cfg.Cache.Jitter,
		KeyPrefix: cfg.Cache.KeyPrefix,
	}, log)
	if err != nil {
		return nil, err
	}
	engine.cache = identities

	engine.notify = notify.NewDispatcher(b.notifier, cfg.Notify.BufferSize, log)
	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)

	b.built = true

	return engine, nil
}

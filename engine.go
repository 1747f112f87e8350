package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ghuysu/social-media-sub000/cache"
	internalaudit "github.com/ghuysu/social-media-sub000/internal/audit"
	"github.com/ghuysu/social-media-sub000/internal/challenge"
	"github.com/ghuysu/social-media-sub000/internal/logging"
	"github.com/ghuysu/social-media-sub000/notify"
	"github.com/ghuysu/social-media-sub000/password"
	"github.com/ghuysu/social-media-sub000/token"
)

// Engine runs the verification and sign-in flows. Construct it through
// a [Builder]; a zero Engine is not usable. All methods are safe for
// concurrent use.
type Engine struct {
	config     Config
	accounts   AccountStore
	assets     AssetStore
	challenges *challenge.Store
	codes      *password.Hasher
	passwords  *password.Hasher
	tokens     *token.Issuer
	cache      *cache.Manager
	notify     *notify.Dispatcher
	audit      *internalaudit.Dispatcher
	metrics    *Metrics
	log        logging.Logger
}

// Close drains and stops the background dispatchers. Pending code
// deliveries and audit events are flushed before it returns.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.notify != nil {
		e.notify.Close()
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were discarded because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// NotifyDropped reports how many code deliveries were discarded because
// the dispatcher buffer was full.
func (e *Engine) NotifyDropped() uint64 {
	if e == nil || e.notify == nil {
		return 0
	}
	return e.notify.Dropped()
}

// MetricsSnapshot copies the current counter values.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) metricObserve(id MetricID, d time.Duration) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Observe(id, d)
}

// ParseToken validates a session token against the given role's secret
// and returns its claims. Tokens signed for the other role fail with
// [ErrTokenInvalid].
func (e *Engine) ParseToken(tokenStr string, role Role) (*TokenClaims, error) {
	if e == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.tokens.Parse(tokenStr, string(role))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	return claims, nil
}

// TokenTTL reports the configured session lifetime for a role.
func (e *Engine) TokenTTL(role Role) time.Duration {
	if e == nil || e.tokens == nil {
		return 0
	}
	return e.tokens.TTL(string(role))
}

// Identity returns the cached identity snapshot for (role, email),
// loading it from the account store on a miss. Unknown accounts return
// [ErrNotRegistered].
func (e *Engine) Identity(ctx context.Context, role Role, email string) (*Identity, error) {
	if e == nil || e.cache == nil {
		return nil, ErrEngineNotReady
	}

	return e.cache.GetOrLoad(ctx, string(role), email, func(ctx context.Context) (*Identity, error) {
		record, err := e.findAccount(ctx, email, role)
		if err != nil {
			return nil, err
		}
		return identityFromRecord(record), nil
	})
}

// InvalidateIdentity drops the cached snapshot for (role, email). The
// next read reloads from the account store.
func (e *Engine) InvalidateIdentity(ctx context.Context, role Role, email string) {
	if e == nil || e.cache == nil {
		return
	}
	e.cache.Invalidate(ctx, string(role), email)
}

// findAccount wraps the account store's lookup, translating the storage
// sentinel and classifying everything else as an infrastructure fault.
func (e *Engine) findAccount(ctx context.Context, email string, role Role) (*AccountRecord, error) {
	record, err := e.accounts.FindByEmailAndRole(ctx, email, string(role))
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrNotRegistered
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return record, nil
}

func identityFromRecord(record *AccountRecord) *Identity {
	return &Identity{
		ID:        record.ID,
		Email:     record.Email,
		Role:      record.Role,
		FullName:  record.FullName,
		AvatarURL: record.AvatarURL,
		CreatedAt: record.CreatedAt,
	}
}

package identity

import (
	"context"
	"io"
	"time"

	"github.com/ghuysu/social-media-sub000/cache"
	internalaudit "github.com/ghuysu/social-media-sub000/internal/audit"
	"github.com/ghuysu/social-media-sub000/notify"
	"github.com/ghuysu/social-media-sub000/token"
)

// Role selects the privilege tier an operation acts on. The two tiers
// use disjoint token signing secrets and separate cache namespaces.
type Role string

const (
	// RoleUser is the standard account tier.
	RoleUser Role = "user"
	// RoleAdministrator is the privileged tier; its sign-in requires a
	// second-factor code.
	RoleAdministrator Role = "admin"
)

// AccountRecord is the durable account document owned by the persistent
// store. The engine reads it and, for password changes, requests a
// credential overwrite; it never mutates anything else.
type AccountRecord struct {
	ID           string
	Email        string
	Role         string
	PasswordHash string
	FullName     string
	AvatarURL    string
	CreatedAt    time.Time
}

// AccountStore is the persistent account storage contract callers must
// implement (or use the provided postgres adapter). NotFound
// and duplicate conditions must be returned distinctly via
// [ErrAccountNotFound] and [ErrAccountDuplicate].
type AccountStore interface {
	FindByEmailAndRole(ctx context.Context, email, role string) (*AccountRecord, error)
	Create(ctx context.Context, record *AccountRecord) error
	UpdatePasswordHash(ctx context.Context, email, role, passwordHash string) error
}

// AssetStore generates and stores default profile images. The avatar
// URL must be a pure function of the email so sign-up completion can
// record it without awaiting the upload.
type AssetStore interface {
	DefaultAvatarURL(email string) string
	PutDefaultAvatar(ctx context.Context, email string) error
}

// SignUpFields carries the account attributes supplied at sign-up
// completion time, alongside the verification code.
type SignUpFields struct {
	Password string
	FullName string
}

// Identity is the password-stripped account snapshot returned by the
// flows and held in the cache.
type Identity = cache.Identity

// TokenClaims is the payload carried by every session token.
type TokenClaims = token.Claims

// Notifier delivers verification codes out-of-band. Delivery is
// fire-and-forget: the engine never surfaces delivery failure to the
// caller of an Issue operation.
type Notifier = notify.Notifier

// NotifierFunc adapts a function to the [Notifier] interface.
type NotifierFunc = notify.NotifierFunc

// NotifyKind identifies which flow a delivered code belongs to.
type NotifyKind = notify.Kind

const (
	// NotifySignUpCode is an exported constant for the sign-up delivery template.
	NotifySignUpCode = notify.KindSignUpCode
	// NotifyPasswordChangeCode is an exported constant for the password-change delivery template.
	NotifyPasswordChangeCode = notify.KindPasswordChangeCode
	// NotifyAdminSignInCode is an exported constant for the administrator sign-in delivery template.
	NotifyAdminSignInCode = notify.KindAdminSignInCode
)

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit
// dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to
// an [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

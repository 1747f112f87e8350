package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// IssueSignUpChallenge starts the sign-up flow for email. The email
// must not already hold a standard account. On success a 6-digit code
// is queued for delivery; the caller learns nothing about the code.
//
// Account attributes are not collected here. They arrive with the code
// at [Engine.CompleteSignUp], so an abandoned challenge leaves nothing
// behind but an expiring key.
func (e *Engine) IssueSignUpChallenge(ctx context.Context, email string) error {
	if e == nil || e.challenges == nil {
		return ErrEngineNotReady
	}
	email = normalizeEmail(email)

	_, err := e.findAccount(ctx, email, RoleUser)
	if err == nil {
		e.emitAudit(ctx, auditEventSignUpDuplicate, false, "", email, RoleUser, ErrAlreadyRegistered, nil)
		return ErrAlreadyRegistered
	}
	if !errors.Is(err, ErrNotRegistered) {
		return err
	}

	return e.issueChallenge(ctx, flowSignUp, email, nil, NotifySignUpCode)
}

// CompleteSignUp spends the outstanding sign-up challenge and creates
// the account. The password policy is enforced before the code is
// checked, so a policy rejection never burns the challenge.
func (e *Engine) CompleteSignUp(ctx context.Context, email, code string, fields SignUpFields) (*Identity, error) {
	if e == nil || e.challenges == nil {
		return nil, ErrEngineNotReady
	}
	email = normalizeEmail(email)

	if len(fields.Password) < e.config.PasswordPolicy.MinLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters",
			ErrPasswordPolicy, e.config.PasswordPolicy.MinLength)
	}

	if _, err := e.consumeChallenge(ctx, flowSignUp, email, code); err != nil {
		return nil, err
	}

	passwordHash, err := e.passwords.Hash(fields.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	record := &AccountRecord{
		Email:        email,
		Role:         string(RoleUser),
		PasswordHash: passwordHash,
		FullName:     strings.TrimSpace(fields.FullName),
	}
	if e.assets != nil {
		// The URL is derivable without the upload, so the account can
		// reference it immediately.
		record.AvatarURL = e.assets.DefaultAvatarURL(email)
	}

	if err := e.accounts.Create(ctx, record); err != nil {
		if errors.Is(err, ErrAccountDuplicate) {
			// The challenge is already spent; a retry restarts the flow.
			e.emitAudit(ctx, auditEventSignUpDuplicate, false, "", email, RoleUser, ErrAlreadyRegistered, nil)
			return nil, ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	identity := identityFromRecord(record)

	if e.assets != nil {
		go func() {
			if err := e.assets.PutDefaultAvatar(context.Background(), email); err != nil {
				e.log.Warn("default avatar upload failed", "error", err)
			}
		}()
	}
	e.cache.Put(ctx, identity)

	e.metricInc(MetricSignUpCompleted)
	e.emitAudit(ctx, auditEventSignUpCompleted, true, record.ID, email, RoleUser, nil, nil)
	e.log.Info("account created", "role", string(RoleUser))

	return identity, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

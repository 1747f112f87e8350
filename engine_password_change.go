package identity

import (
	"context"
	"errors"
	"fmt"
)

// IssuePasswordChangeChallenge starts the password-change flow for a
// registered standard account. Unknown emails fail with
// [ErrNotRegistered]; no challenge or delivery happens for them.
func (e *Engine) IssuePasswordChangeChallenge(ctx context.Context, email string) error {
	if e == nil || e.challenges == nil {
		return ErrEngineNotReady
	}
	email = normalizeEmail(email)

	if _, err := e.findAccount(ctx, email, RoleUser); err != nil {
		return err
	}

	return e.issueChallenge(ctx, flowPasswordChange, email, nil, NotifyPasswordChangeCode)
}

// CompletePasswordChange spends the outstanding password-change
// challenge and overwrites the stored credential. The policy check runs
// before the code check, so a rejected password never burns the
// challenge. No session token is issued; the caller signs in with the
// new password.
func (e *Engine) CompletePasswordChange(ctx context.Context, email, code, newPassword string) error {
	if e == nil || e.challenges == nil {
		return ErrEngineNotReady
	}
	email = normalizeEmail(email)

	if len(newPassword) < e.config.PasswordPolicy.MinLength {
		return fmt.Errorf("%w: password must be at least %d characters",
			ErrPasswordPolicy, e.config.PasswordPolicy.MinLength)
	}

	if _, err := e.consumeChallenge(ctx, flowPasswordChange, email, code); err != nil {
		return err
	}

	passwordHash, err := e.passwords.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if err := e.accounts.UpdatePasswordHash(ctx, email, string(RoleUser), passwordHash); err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			// Account deleted between issue and completion.
			return ErrNotRegistered
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	e.metricInc(MetricPasswordChanged)
	e.emitAudit(ctx, auditEventPasswordChanged, true, "", email, RoleUser, nil, nil)
	e.log.Info("password changed", "role", string(RoleUser))

	return nil
}

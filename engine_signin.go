package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// SignInStandard verifies a standard account's password and issues a
// user-scoped session token. Unknown emails and wrong passwords are
// reported distinctly, as [ErrNotRegistered] and
// [ErrIncorrectPassword].
func (e *Engine) SignInStandard(ctx context.Context, email, password string) (*Identity, string, error) {
	if e == nil || e.tokens == nil {
		return nil, "", ErrEngineNotReady
	}
	email = normalizeEmail(email)

	record, err := e.checkCredentials(ctx, email, RoleUser, password)
	if err != nil {
		return nil, "", err
	}

	return e.issueSession(ctx, record, RoleUser)
}

// SignInAdministrator runs the first factor of administrator sign-in.
// A correct password does not produce a token; it issues a verification
// challenge carrying the already-fetched admin record, so
// [Engine.CompleteAdministratorSignIn] never touches the account store.
func (e *Engine) SignInAdministrator(ctx context.Context, email, password string) error {
	if e == nil || e.tokens == nil {
		return ErrEngineNotReady
	}
	email = normalizeEmail(email)

	record, err := e.checkCredentials(ctx, email, RoleAdministrator, password)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if err := e.issueChallenge(ctx, flowAdminSignIn, email, payload, NotifyAdminSignInCode); err != nil {
		return err
	}

	e.metricInc(MetricAdminChallengeIssued)
	e.emitAudit(ctx, auditEventAdminChallenge, true, record.ID, email, RoleAdministrator, nil, nil)

	return nil
}

// CompleteAdministratorSignIn spends the second-factor challenge and
// issues an admin-scoped session token. The identity comes from the
// challenge payload captured at the password stage.
func (e *Engine) CompleteAdministratorSignIn(ctx context.Context, email, code string) (*Identity, string, error) {
	if e == nil || e.tokens == nil {
		return nil, "", ErrEngineNotReady
	}
	email = normalizeEmail(email)

	payload, err := e.consumeChallenge(ctx, flowAdminSignIn, email, code)
	if err != nil {
		return nil, "", err
	}

	var record AccountRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	identity, tokenStr, err := e.issueSession(ctx, &record, RoleAdministrator)
	if err != nil {
		return nil, "", err
	}

	e.metricInc(MetricAdminSignInCompleted)
	e.emitAudit(ctx, auditEventAdminSignInSuccess, true, record.ID, email, RoleAdministrator, nil, nil)

	return identity, tokenStr, nil
}

// checkCredentials fetches the account for (email, role) and verifies
// password against the stored hash.
func (e *Engine) checkCredentials(ctx context.Context, email string, role Role, password string) (*AccountRecord, error) {
	record, err := e.findAccount(ctx, email, role)
	if err != nil {
		if errors.Is(err, ErrNotRegistered) {
			e.metricInc(MetricSignInFailure)
			e.emitAudit(ctx, auditEventSignInFailure, false, "", email, role, ErrNotRegistered, nil)
		}
		return nil, err
	}

	ok, err := e.passwords.Verify(password, record.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !ok {
		e.metricInc(MetricSignInFailure)
		e.emitAudit(ctx, auditEventSignInFailure, false, record.ID, email, role, ErrIncorrectPassword, nil)
		return nil, ErrIncorrectPassword
	}

	e.metricInc(MetricSignInSuccess)
	return record, nil
}

// issueSession signs a role-scoped token and refreshes the cached
// identity snapshot.
func (e *Engine) issueSession(ctx context.Context, record *AccountRecord, role Role) (*Identity, string, error) {
	tokenStr, err := e.tokens.Issue(record.ID, record.Email, string(role))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	identity := identityFromRecord(record)
	e.cache.Put(ctx, identity)

	e.metricInc(MetricTokenIssued)
	if role == RoleUser {
		e.emitAudit(ctx, auditEventSignInSuccess, true, record.ID, record.Email, role, nil, nil)
	}

	return identity, tokenStr, nil
}

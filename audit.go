package identity

import (
	"context"

	internalaudit "github.com/ghuysu/social-media-sub000/internal/audit"
)

const (
	auditEventChallengeIssued    = "challenge_issued"
	auditEventChallengeExpired   = "challenge_expired"
	auditEventCodeIncorrect      = "code_incorrect"
	auditEventSignUpCompleted    = "sign_up_completed"
	auditEventSignUpDuplicate    = "sign_up_duplicate"
	auditEventPasswordChanged    = "password_changed"
	auditEventSignInSuccess      = "sign_in_success"
	auditEventSignInFailure      = "sign_in_failure"
	auditEventAdminChallenge     = "admin_sign_in_challenged"
	auditEventAdminSignInSuccess = "admin_sign_in_success"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	accountID string,
	email string,
	role Role,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := internalaudit.NewEvent(eventType)
	event.AccountID = accountID
	event.Email = email
	event.Role = string(role)
	event.IP = clientIPFromContext(ctx)
	event.Success = success
	event.Metadata = metadata
	if err != nil {
		event.Error = err.Error()
	}

	e.audit.Emit(ctx, event)
}

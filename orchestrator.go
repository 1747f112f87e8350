package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ghuysu/social-media-sub000/internal/challenge"
)

// flowKind selects which verification flow a challenge belongs to. The
// kind is part of the challenge key, so the three flows never see each
// other's codes.
type flowKind uint8

const (
	flowSignUp flowKind = iota + 1
	flowPasswordChange
	flowAdminSignIn
)

func (f flowKind) String() string {
	switch f {
	case flowSignUp:
		return "signup"
	case flowPasswordChange:
		return "password-change"
	case flowAdminSignIn:
		return "admin-signin"
	default:
		return "unknown"
	}
}

func challengeName(flow flowKind, email string) string {
	return flow.String() + ":" + strings.ToLower(email)
}

// issueChallenge generates a fresh code, stores its hash under the
// flow's key, and queues delivery. An outstanding challenge for the
// same (flow, email) is overwritten: only the newest code is live.
func (e *Engine) issueChallenge(
	ctx context.Context,
	flow flowKind,
	email string,
	payload []byte,
	kind NotifyKind,
) error {
	code, err := challenge.GenerateCode()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	codeHash, err := e.codes.Hash(code)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	record := &challenge.Record{
		CodeHash:  codeHash,
		Payload:   payload,
		ExpiresAt: time.Now().Add(e.config.Challenge.TTL).Unix(),
	}

	name := challengeName(flow, email)
	if err := e.challenges.Save(ctx, name, record, e.config.Challenge.TTL); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if !e.notify.Enqueue(email, code, kind) {
		e.log.Warn("verification code delivery dropped", "flow", flow.String())
	}

	e.metricInc(MetricChallengeIssued)
	e.emitAudit(ctx, auditEventChallengeIssued, true, "", email, "", nil, func() map[string]string {
		return map[string]string{"flow": flow.String()}
	})

	return nil
}

// consumeChallenge verifies code against the outstanding challenge and,
// on a match, deletes it atomically. A wrong code leaves the challenge
// in place; a correct code spends it exactly once, even under
// concurrent completion attempts.
func (e *Engine) consumeChallenge(
	ctx context.Context,
	flow flowKind,
	email string,
	code string,
) ([]byte, error) {
	name := challengeName(flow, email)

	record, raw, err := e.challenges.Get(ctx, name)
	if err != nil {
		if errors.Is(err, challenge.ErrNotFound) {
			e.metricInc(MetricChallengeExpired)
			e.emitAudit(ctx, auditEventChallengeExpired, false, "", email, "", ErrChallengeExpired, func() map[string]string {
				return map[string]string{"flow": flow.String()}
			})
			return nil, ErrChallengeExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	start := time.Now()
	ok, err := e.codes.Verify(code, record.CodeHash)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !ok {
		e.metricInc(MetricCodeIncorrect)
		e.emitAudit(ctx, auditEventCodeIncorrect, false, "", email, "", ErrIncorrectCode, func() map[string]string {
			return map[string]string{"flow": flow.String()}
		})
		return nil, ErrIncorrectCode
	}

	// Delete only the exact bytes we verified. If the challenge was
	// reissued or consumed between Get and here, the delete is a no-op
	// and this attempt loses.
	deleted, err := e.challenges.ConsumeExact(ctx, name, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !deleted {
		e.metricInc(MetricChallengeExpired)
		return nil, ErrChallengeExpired
	}

	e.metricObserve(MetricVerifyLatency, time.Since(start))
	e.metricInc(MetricChallengeConsumed)

	return record.Payload, nil
}

package identity

import "errors"

var (
	// ErrAlreadyRegistered is returned when a sign-up flow targets an
	// email already holding an account under the same role.
	ErrAlreadyRegistered = errors.New("email already registered")
	// ErrNotRegistered is returned when a password-change or sign-in
	// flow targets an email with no account under the requested role.
	ErrNotRegistered = errors.New("email not registered")
	// ErrChallengeExpired is returned when a completion call finds no
	// live challenge: never issued, timed out, or already consumed.
	ErrChallengeExpired = errors.New("verification challenge expired or absent")
	// ErrIncorrectCode is returned when the supplied code does not match
	// the outstanding challenge. The challenge survives the attempt.
	ErrIncorrectCode = errors.New("incorrect verification code")
	// ErrIncorrectPassword is returned by the sign-in flows when the
	// supplied password does not verify against the stored credential.
	ErrIncorrectPassword = errors.New("incorrect password")
	// ErrPasswordPolicy is returned when a chosen password does not meet
	// the configured minimum length.
	ErrPasswordPolicy = errors.New("password policy violation")
	// ErrTokenInvalid is returned by ParseToken for any token that fails
	// signature, lifetime, or role validation.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrUnavailable wraps infrastructure faults (store, hasher backend,
	// database). Callers receive no backend detail beyond this sentinel.
	ErrUnavailable = errors.New("backend unavailable")
	// ErrEngineNotReady is returned when an Engine method is called on a
	// partially constructed engine.
	ErrEngineNotReady = errors.New("engine not initialized")

	// ErrAccountNotFound is the storage-boundary sentinel an
	// [AccountStore] must return for unknown (email, role) pairs. The
	// engine translates it to [ErrNotRegistered] before it reaches
	// callers.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountDuplicate is the storage-boundary sentinel an
	// [AccountStore] must return when Create hits an existing
	// (email, role) pair. The engine translates it to
	// [ErrAlreadyRegistered].
	ErrAccountDuplicate = errors.New("account already exists")
)

// Package notify delivers verification codes to account email
// addresses. Delivery is pushed off the request path through an async
// dispatcher so a slow mail relay never stalls challenge issuance.
package notify

import "context"

// Kind identifies which flow a code belongs to, so the notifier can
// pick wording per flow.
type Kind uint8

const (
	KindSignUpCode Kind = iota + 1
	KindPasswordChangeCode
	KindAdminSignInCode
)

func (k Kind) String() string {
	switch k {
	case KindSignUpCode:
		return "sign_up_code"
	case KindPasswordChangeCode:
		return "password_change_code"
	case KindAdminSignInCode:
		return "admin_sign_in_code"
	default:
		return "unknown"
	}
}

// Notifier sends one verification code to destination. Implementations
// must be safe for concurrent use.
type Notifier interface {
	Deliver(ctx context.Context, destination, code string, kind Kind) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, destination, code string, kind Kind) error

func (f NotifierFunc) Deliver(ctx context.Context, destination, code string, kind Kind) error {
	return f(ctx, destination, code, kind)
}

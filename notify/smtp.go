package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPConfig identifies the mail relay and sender address.
type SMTPConfig struct {
	Addr     string // host:port
	From     string
	Username string
	Password string
	Host     string // auth host; defaults to the host part of Addr
}

// SMTPNotifier delivers verification codes over a plain SMTP relay.
type SMTPNotifier struct {
	config SMTPConfig
}

// NewSMTPNotifier returns a notifier sending through cfg.Addr.
func NewSMTPNotifier(cfg SMTPConfig) (*SMTPNotifier, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("notify: smtp addr is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("notify: smtp from address is required")
	}
	if cfg.Host == "" {
		host, _, found := strings.Cut(cfg.Addr, ":")
		if !found {
			return nil, fmt.Errorf("notify: smtp addr must be host:port")
		}
		cfg.Host = host
	}
	return &SMTPNotifier{config: cfg}, nil
}

// Deliver sends the code to destination. The context deadline is not
// honored mid-send; net/smtp has no context support, so the dispatcher's
// timeout only bounds queue time.
func (n *SMTPNotifier) Deliver(ctx context.Context, destination, code string, kind Kind) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	subject, intro := messageFor(kind)
	body := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n\r\nYour verification code is: %s\r\n\r\nThe code expires in 5 minutes. If you did not request it, ignore this message.\r\n",
		n.config.From, destination, subject, intro, code,
	)

	var auth smtp.Auth
	if n.config.Username != "" {
		auth = smtp.PlainAuth("", n.config.Username, n.config.Password, n.config.Host)
	}

	if err := smtp.SendMail(n.config.Addr, auth, n.config.From, []string{destination}, []byte(body)); err != nil {
		return fmt.Errorf("notify: smtp send: %w", err)
	}
	return nil
}

func messageFor(kind Kind) (subject, intro string) {
	switch kind {
	case KindSignUpCode:
		return "Confirm your registration", "Finish creating your account with the code below."
	case KindPasswordChangeCode:
		return "Confirm your password change", "Confirm the password change on your account with the code below."
	case KindAdminSignInCode:
		return "Administrator sign-in verification", "Complete your administrator sign-in with the code below."
	default:
		return "Verification code", "Use the code below to continue."
	}
}

package notify

// Notifier delivers the password-reset link. Delivery is best-effort: the
// auth flow logs failures and carries on, it never fails a reset request
// because mail was down.
type Notifier interface {
	SendPasswordReset(toEmail, resetURL string) error
}

package notify

import (
	"fmt"

	"fixmycity-be/config"

	"gopkg.in/gomail.v2"
)

// EmailNotifier sends the reset link over SMTP.
type EmailNotifier struct {
	cfg config.SMTPConfig
}

func NewEmailNotifier(cfg config.SMTPConfig) *EmailNotifier {
	return &EmailNotifier{cfg: cfg}
}

func (n *EmailNotifier) SendPasswordReset(toEmail, resetURL string) error {
	if n.cfg.Host == "" || n.cfg.From == "" {
		return fmt.Errorf("smtp config missing")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "[FixMyCity] Reset your password")

	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>Password reset</h2>
    <p>We received a request to reset your FixMyCity password.</p>
    <p><a href="%s">Reset your password</a></p>
    <p>The link is valid for 30 minutes. If you did not ask for this, ignore this email.</p>
  </div>
</body>
</html>`, resetURL)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(n.cfg.Host, n.cfg.Port, n.cfg.User, n.cfg.Pass)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

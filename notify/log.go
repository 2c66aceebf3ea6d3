package notify

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// LogNotifier is the dev-mode sender: it logs the reset link and appends it
// to emails/password_reset.log so it is easy to copy during local testing.
type LogNotifier struct {
	log *zap.Logger
	dir string
}

func NewLogNotifier(log *zap.Logger, dir string) *LogNotifier {
	return &LogNotifier{log: log, dir: dir}
}

func (n *LogNotifier) SendPasswordReset(toEmail, resetURL string) error {
	n.log.Info("dev email: password reset",
		zap.String("to", toEmail),
		zap.String("reset_url", resetURL),
	)

	if err := os.MkdirAll(n.dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(n.dir, "password_reset.log"),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "To: %s | URL: %s\n", toEmail, resetURL)
	return err
}

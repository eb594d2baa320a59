package utils

import (
	"fmt"
	"html"
	"mime"
	"net/smtp"
	"strings"

	"github.com/sirupsen/logrus"
)

// Mailer sends notification e-mails over SMTP. Without a host or credentials
// it only logs what it would have sent.
type Mailer struct {
	host     string
	port     string
	username string
	password string
	fromName string
	logger   *logrus.Logger
	send     func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailer(host, port, username, password, fromName string, logger *logrus.Logger) *Mailer {
	return &Mailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		fromName: fromName,
		logger:   logger,
		send:     smtp.SendMail,
	}
}

// Configured reports whether real SMTP delivery is possible.
func (m *Mailer) Configured() bool {
	return m.host != "" && m.port != "" && m.username != "" && m.password != ""
}

// Send delivers a plain-text message with an HTML alternative.
func (m *Mailer) Send(recipient, subject, body string) error {
	if !m.Configured() {
		m.logger.WithFields(logrus.Fields{
			"to":      recipient,
			"subject": subject,
		}).Info("[MOCK EMAIL] smtp not configured")
		return nil
	}

	msg := buildMessage(m.from(), safeHeader(recipient), safeHeader(subject), body)
	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	if err := m.send(addr, auth, m.username, []string{recipient}, msg); err != nil {
		m.logger.WithError(err).WithField("to", recipient).Error("failed to send email")
		return err
	}
	m.logger.WithField("to", recipient).Info("email sent")
	return nil
}

func (m *Mailer) from() string {
	if m.fromName == "" {
		return m.username
	}
	return fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", safeHeader(m.fromName)), m.username)
}

var headerBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

func safeHeader(s string) string {
	return headerBreaks.Replace(strings.TrimSpace(s))
}

const mailBoundary = "----=_NOTIFICATION_BOUNDARY"

func buildMessage(from, to, subject, body string) []byte {
	htmlBody := fmt.Sprintf(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { background:#f5f7fb; font-family:Arial, Helvetica, sans-serif; color:#222; }
.container { max-width:640px; margin:20px auto; }
.card { background:#fff; border:1px solid #e6eef6; padding:24px; border-radius:8px; }
</style>
</head>
<body>
<div class="container">
  <div class="card">
    <h2>%s</h2>
    <p>%s</p>
  </div>
</div>
</body>
</html>`,
		html.EscapeString(subject), html.EscapeString(subject),
		strings.ReplaceAll(html.EscapeString(body), "\n", "<br>"),
	)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", from))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", to))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject)))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", mailBoundary))

	sb.WriteString(fmt.Sprintf("--%s\r\n", mailBoundary))
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	sb.WriteString(body + "\r\n")

	sb.WriteString(fmt.Sprintf("--%s\r\n", mailBoundary))
	sb.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	sb.WriteString(htmlBody + "\r\n")

	sb.WriteString(fmt.Sprintf("--%s--\r\n", mailBoundary))
	return []byte(sb.String())
}

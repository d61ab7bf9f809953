package smtp

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"text/template"

	"github.com/campus-marketplace/internal/config"
	"github.com/campus-marketplace/internal/domain"
	"go.uber.org/zap"
)

// sendFunc matches net/smtp.SendMail so tests can replace the network call.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

var codeTemplate = template.Must(template.New("code").Parse(`Olá {{.RecipientName}},

Seu código de verificação do {{.Marketplace}} é: {{.Code}}

O código expira em {{.TTLMinutes}} minutos. Volte para {{.OriginLink}} e digite-o para concluir o cadastro.

Se você não pediu este código, ignore este email.
`))

// Mailer delivers verification codes by email.
type Mailer struct {
	host        string
	port        string
	from        string
	username    string
	password    string
	marketplace string
	ttlMinutes  int
	send        sendFunc
	logger      *zap.Logger
}

func NewMailer(cfg *config.Config, logger *zap.Logger) *Mailer {
	return &Mailer{
		host:        cfg.SMTPHost,
		port:        cfg.SMTPPort,
		from:        cfg.SMTPFrom,
		username:    cfg.SMTPUsername,
		password:    cfg.SMTPPassword,
		marketplace: cfg.MarketplaceName,
		ttlMinutes:  int(cfg.VerificationCodeTTL.Minutes()),
		send:        smtp.SendMail,
		logger:      logger,
	}
}

// SendVerificationCode emails d.Code to d.RecipientEmail.
func (m *Mailer) SendVerificationCode(ctx context.Context, d domain.CodeDelivery) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var body bytes.Buffer
	err := codeTemplate.Execute(&body, struct {
		domain.CodeDelivery
		Marketplace string
		TTLMinutes  int
	}{d, m.marketplace, m.ttlMinutes})
	if err != nil {
		return fmt.Errorf("render verification email: %w", err)
	}
	subject := fmt.Sprintf("%s: seu código de verificação", m.marketplace)
	return m.sendEmail(d.RecipientEmail, subject, body.String())
}

type mailerMessage struct {
	from, to, subject, body string
}

func (m *mailerMessage) String() string {
	return fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		m.from, m.to, mime.QEncoding.Encode("utf-8", m.subject), m.body)
}

func (m *Mailer) sendEmail(to, subject, body string) error {
	msg := &mailerMessage{from: m.from, to: to, subject: subject, body: body}
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	if err := m.send(addr, auth, m.from, []string{to}, []byte(msg.String())); err != nil {
		m.logger.Error("failed to send email", zap.String("to", to), zap.String("subject", subject), zap.Error(err))
		return fmt.Errorf("send email: %w", err)
	}
	m.logger.Info("email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

package mailservice

import (
	"time"

	"github.com/go-mail/mail/v2"
)

const smtpTimeout = 5 * time.Second

func NewMailer(cfg MailConfig, tp TemplateParser) *Mail {
	dialer := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	dialer.Timeout = smtpTimeout

	return &Mail{
		dialer: dialer,
		sender: cfg.Sender,
		parser: tp,
	}
}

// compose renders templateFile into a multipart message with a plain text
// body and an HTML alternative.
func (m *Mail) compose(recipient string, data any, templateFile string) (*mail.Message, error) {
	subject, plainBody, htmlBody, err := m.parser.ParseTemplate(templateFile, data)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMessage()
	msg.SetHeaders(map[string][]string{
		"From":           {m.sender},
		"To":             {recipient},
		"Subject":        {subject.String()},
		"Auto-Submitted": {"auto-generated"},
	})
	msg.SetBody("text/plain", plainBody.String())
	msg.AddAlternative("text/html", htmlBody.String())

	return msg, nil
}

func (m *Mail) send(recipient string, data any, templateFile string) error {
	msg, err := m.compose(recipient, data, templateFile)
	if err != nil {
		return err
	}

	// one SMTP session at a time
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.dialer.DialAndSend(msg)
}

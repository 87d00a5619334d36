package mailservice

import (
	"bytes"
	"context"
	"html/template"
	"sync"
	"time"

	"github.com/go-mail/mail/v2"

	"github.com/sushihentaime/quill/internal/common"
)

const (
	WelcomeTemplate = "welcome_email.tmpl"

	defaultRetries   = 5
	defaultBaseDelay = 500 * time.Millisecond
)

type MailService struct {
	mb        common.MessageConsumer
	m         Mailer
	logger    MailLogger
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	retries   int
	baseDelay time.Duration
}

type MailLogger interface {
	Error(msg string, args ...any)
	Info(msg string, args ...any)
}

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

type Mail struct {
	mu     sync.Mutex
	dialer Dialer
	parser TemplateParser
	sender string
}

type Mailer interface {
	send(recipient string, data any, templateFile string) error
}

// Template holds every embedded mail template, parsed once.
type Template struct {
	pages map[string]*template.Template
}

type Dialer interface {
	DialAndSend(m ...*mail.Message) error
}

type TemplateParser interface {
	ParseTemplate(name string, data any) (*bytes.Buffer, *bytes.Buffer, *bytes.Buffer, error)
}

// welcomeData is what the welcome template renders.
type welcomeData struct {
	Name  string
	Email string
}

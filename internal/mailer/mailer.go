package mailer

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	"text/template"
	"time"

	"github.com/go-mail/mail/v2"
)

//go:embed "templates"
var templateFS embed.FS

type Mailer interface {
	Send(recipient, templateFile string, data any) error
}

// Message is a rendered email.
type Message struct {
	Subject   string
	PlainBody string
	HTMLBody  string
}

var templateFuncs = template.FuncMap{
	"date": func(t time.Time) string {
		return t.UTC().Format("2 January 2006")
	},
	"clock": func(t time.Time) string {
		return t.UTC().Format("3:04 PM")
	},
	"join": strings.Join,
}

// Render executes the subject, plainBody and htmlBody templates defined in
// templateFile. The subject and plain body are not HTML escaped.
func Render(templateFile string, data any) (*Message, error) {
	textTmpl, err := template.New("email").Funcs(templateFuncs).ParseFS(templateFS, "templates/"+templateFile)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", templateFile, err)
	}

	subject := new(bytes.Buffer)
	err = textTmpl.ExecuteTemplate(subject, "subject", data)
	if err != nil {
		return nil, fmt.Errorf("render %s subject: %w", templateFile, err)
	}

	plainBody := new(bytes.Buffer)
	err = textTmpl.ExecuteTemplate(plainBody, "plainBody", data)
	if err != nil {
		return nil, fmt.Errorf("render %s plain body: %w", templateFile, err)
	}

	htmlTmpl, err := htmltemplate.New("email").Funcs(htmltemplate.FuncMap(templateFuncs)).ParseFS(templateFS, "templates/"+templateFile)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", templateFile, err)
	}

	htmlBody := new(bytes.Buffer)
	err = htmlTmpl.ExecuteTemplate(htmlBody, "htmlBody", data)
	if err != nil {
		return nil, fmt.Errorf("render %s html body: %w", templateFile, err)
	}

	return &Message{
		Subject:   subject.String(),
		PlainBody: plainBody.String(),
		HTMLBody:  htmlBody.String(),
	}, nil
}

type SMTPMailer struct {
	dialer *mail.Dialer
	sender string
}

func NewSMTPMailer(host string, port int, username, password, sender string) *SMTPMailer {
	dialer := mail.NewDialer(host, port, username, password)
	dialer.Timeout = 5 * time.Second

	return &SMTPMailer{
		dialer: dialer,
		sender: sender,
	}
}

func (m *SMTPMailer) Send(recipient, templateFile string, data any) error {
	rendered, err := Render(templateFile, data)
	if err != nil {
		return err
	}

	msg := mail.NewMessage()
	msg.SetHeader("To", recipient)
	msg.SetHeader("From", m.sender)
	msg.SetHeader("Subject", rendered.Subject)
	msg.SetBody("text/plain", rendered.PlainBody)
	msg.AddAlternative("text/html", rendered.HTMLBody)

	for i := 1; i <= 3; i++ {
		err = m.dialer.DialAndSend(msg)
		if err == nil {
			return nil
		}

		if i < 3 {
			time.Sleep(500 * time.Millisecond)
		}
	}

	return fmt.Errorf("send %s to %s: %w", templateFile, recipient, err)
}

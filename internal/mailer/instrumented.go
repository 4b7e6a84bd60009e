package mailer

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// InstrumentedMailer counts sends per template and outcome.
type InstrumentedMailer struct {
	next   Mailer
	emails metric.Int64Counter
}

func NewInstrumentedMailer(next Mailer) (*InstrumentedMailer, error) {
	emails, err := otel.Meter("github.com/metinatakli/movie-ticket-events/internal/mailer").Int64Counter(
		"mailer.emails",
		metric.WithDescription("Emails sent by template and status"),
	)
	if err != nil {
		return nil, err
	}

	return &InstrumentedMailer{
		next:   next,
		emails: emails,
	}, nil
}

func (m *InstrumentedMailer) Send(recipient, templateFile string, data any) error {
	err := m.next.Send(recipient, templateFile, data)

	status := "sent"
	if err != nil {
		status = "failed"
	}

	m.emails.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("template", templateFile),
		attribute.String("status", status),
	))

	return err
}

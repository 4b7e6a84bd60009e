package mailer

import (
	"sync"
)

// Email represents a sent email
type Email struct {
	Recipient    string
	TemplateFile string
	Data         any
	Subject      string
	HTMLBody     string
}

// MockMailer is a mock implementation of the Mailer interface for testing.
// Templates are rendered so that broken templates fail the test.
type MockMailer struct {
	mu       sync.RWMutex
	emails   []Email
	failures map[string]error
	attempts int
}

// NewMockMailer creates a new MockMailer instance
func NewMockMailer() *MockMailer {
	return &MockMailer{
		emails:   make([]Email, 0),
		failures: make(map[string]error),
	}
}

// FailFor makes every send to recipient return err.
func (m *MockMailer) FailFor(recipient string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failures[recipient] = err
}

// Send records the email that would have been sent
func (m *MockMailer) Send(recipient, templateFile string, data any) error {
	rendered, err := Render(templateFile, data)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.attempts++

	if err, ok := m.failures[recipient]; ok {
		return err
	}

	m.emails = append(m.emails, Email{
		Recipient:    recipient,
		TemplateFile: templateFile,
		Data:         data,
		Subject:      rendered.Subject,
		HTMLBody:     rendered.HTMLBody,
	})

	return nil
}

// GetSentEmails returns a copy of all sent emails
func (m *MockMailer) GetSentEmails() []Email {
	m.mu.RLock()
	defer m.mu.RUnlock()

	emails := make([]Email, len(m.emails))
	copy(emails, m.emails)
	return emails
}

// Attempts returns the number of sends, failed ones included.
func (m *MockMailer) Attempts() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.attempts
}

// Reset clears the record of sent emails and configured failures
func (m *MockMailer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.emails = make([]Email, 0)
	m.failures = make(map[string]error)
	m.attempts = 0
}

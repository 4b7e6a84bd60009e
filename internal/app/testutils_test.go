package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/metinatakli/movie-ticket-events/api"
	"github.com/metinatakli/movie-ticket-events/internal/events"
	"github.com/metinatakli/movie-ticket-events/internal/mailer"
	"github.com/metinatakli/movie-ticket-events/internal/mocks"
	"github.com/metinatakli/movie-ticket-events/internal/validator"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestApplication(t *testing.T, opts ...func(*Application)) *Application {
	t.Helper()

	app := &Application{
		config: Config{
			Env: "test",
			Events: EventsConfig{
				AppID:   "test-app",
				Retries: 3,
			},
			Mail: MailConfig{ReminderConcurrency: 4},
		},
		validator:      validator.NewValidator(),
		logger:         discardLogger,
		mailer:         mailer.NewMockMailer(),
		userRepo:       &mocks.MockUserRepo{},
		showRepo:       &mocks.MockShowRepo{},
		bookingRepo:    &mocks.MockBookingRepo{},
		paymentWebhook: &mocks.MockPaymentWebhookParser{},
	}

	for _, opt := range opts {
		opt(app)
	}

	if app.engine == nil {
		app.engine = events.NewEngine(app.config.Events.AppID, events.NewMemoryStore(), discardLogger)

		err := app.engine.Register(app.functions()...)
		if err != nil {
			t.Fatalf("register functions: %v", err)
		}
	}

	return app
}

// newTestInput builds the input a handler receives from the engine, with
// steps executed inline.
func newTestInput(t *testing.T, name string, data any) events.Input {
	t.Helper()

	evt, err := events.NewEvent(name, data)
	if err != nil {
		t.Fatal(err)
	}

	return events.Input{
		Event:  evt,
		Step:   &events.InlineStep{},
		RunID:  "test-run",
		Logger: discardLogger,
	}
}

func newCronInput(tick time.Time) events.Input {
	return events.Input{
		Event: events.Event{
			ID:        "cron-test",
			Name:      events.CronEventName,
			Timestamp: tick,
		},
		Step:   &events.InlineStep{},
		RunID:  "test-run",
		Logger: discardLogger,
	}
}

func executeRequest(t *testing.T, method, url string, body any) (*httptest.ResponseRecorder, *http.Request) {
	var reader io.Reader

	switch b := body.(type) {
	case nil:
		reader = http.NoBody
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(jsonData)
	}

	r := httptest.NewRequest(method, url, reader)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	return w, r
}

func checkErrorResponse(t *testing.T, w *httptest.ResponseRecorder, tt struct {
	wantStatus     int
	wantErrMessage string
}) {
	if w.Code != tt.wantStatus {
		t.Errorf("Status = %d, want %d", w.Code, tt.wantStatus)
	}

	if tt.wantStatus >= 200 && tt.wantStatus < 300 {
		return
	}

	switch tt.wantStatus {
	case http.StatusUnprocessableEntity:
		var validationResp api.ValidationErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&validationResp); err != nil {
			t.Fatalf("Failed to decode validation error response: %v", err)
		}

		errorSet := make(map[string]bool)
		for _, vErr := range validationResp.ValidationErrors {
			errorSet[vErr.Issue] = true
		}

		if !errorSet[tt.wantErrMessage] {
			t.Errorf("Expected validation error message '%s' not found in response", tt.wantErrMessage)
		}

	default:
		var errorResp api.ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&errorResp); err != nil {
			t.Fatalf("Failed to decode error response: %v", err)
		}

		if tt.wantErrMessage != "" && errorResp.Message != tt.wantErrMessage {
			t.Errorf("Error message = %v, want %v", errorResp.Message, tt.wantErrMessage)
		}
	}
}

func notCalled[T any](t *testing.T, name string) func(context.Context, T) error {
	return func(context.Context, T) error {
		t.Errorf("%s must not be called", name)
		return nil
	}
}

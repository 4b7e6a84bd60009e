package app

import (
	"errors"
	"io"
	"net/http"

	"github.com/metinatakli/movie-ticket-events/api"
	"github.com/metinatakli/movie-ticket-events/internal/domain"
	"github.com/metinatakli/movie-ticket-events/internal/events"
)

// StripeWebhookHandler marks a booking paid when its checkout completes and
// announces the booking so the confirmation email goes out.
func (app *Application) StripeWebhookHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		app.badRequestResponse(w, r, errors.New("unable to read request body"))
		return
	}

	event, err := app.paymentWebhook.Parse(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		logger.Warn("rejected payment webhook", "error", err)
		app.badRequestResponse(w, r, errors.New("invalid webhook signature or payload"))
		return
	}

	if event.Type != domain.PaymentSucceeded {
		logger.Debug("ignoring payment webhook", "webhook_id", event.ID)
		app.writeJSON(w, http.StatusOK, api.WebhookResponse{Received: true}, nil)
		return
	}

	logger = logger.With("webhook_id", event.ID, "booking_id", event.BookingID)

	err = app.bookingRepo.MarkPaid(r.Context(), event.BookingID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			// Acknowledge so the provider stops retrying; the booking already expired.
			logger.Warn("paid booking not found")
			app.writeJSON(w, http.StatusOK, api.WebhookResponse{Received: true}, nil)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	evt, err := events.NewEvent(domain.EventShowBooked, domain.BookingPayload{BookingID: event.BookingID})
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	// The webhook id keeps redeliveries of the same webhook on one run.
	evt.ID = "stripe-" + event.ID

	_, err = app.engine.Send(r.Context(), evt)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	logger.Info("booking paid")

	err = app.writeJSON(w, http.StatusOK, api.WebhookResponse{Received: true}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

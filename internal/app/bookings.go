package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/metinatakli/movie-ticket-events/internal/domain"
	"github.com/metinatakli/movie-ticket-events/internal/events"
)

const (
	paymentGracePeriod = 10 * time.Minute

	// Attempts at persisting the released seats before giving the
	// conflict back to the engine.
	maxSeatReleaseAttempts = 3
)

type bookingRelease struct {
	BookingID string   `json:"bookingId"`
	Released  bool     `json:"released"`
	Seats     []string `json:"seats"`
}

func (app *Application) releaseSeatsAndDeleteBooking(ctx context.Context, in events.Input) (any, error) {
	var payload domain.BookingPayload

	err := app.decodeEvent(in.Event, &payload)
	if err != nil {
		return nil, err
	}

	err = in.Step.SleepUntil(ctx, "wait-for-10-minutes", in.Event.Timestamp.Add(paymentGracePeriod))
	if err != nil {
		return nil, err
	}

	return events.Run(ctx, in.Step, "check-payment-status", func(ctx context.Context) (bookingRelease, error) {
		result := bookingRelease{BookingID: payload.BookingID, Seats: []string{}}

		booking, err := app.bookingRepo.GetById(ctx, payload.BookingID)
		if err != nil {
			if errors.Is(err, domain.ErrRecordNotFound) {
				in.Logger.Info("booking already gone", "booking_id", payload.BookingID)
				return result, nil
			}

			return result, fmt.Errorf("get booking %s: %w", payload.BookingID, err)
		}

		if booking.IsPaid {
			in.Logger.Info("booking paid, keeping seats", "booking_id", booking.ID)
			return result, app.reclaimPaidSeats(ctx, in.Logger, booking)
		}

		seats, released, err := app.releaseUnpaidBooking(ctx, in.Logger, booking)
		if err != nil {
			return result, err
		}

		if released {
			in.Logger.Info("released unpaid booking", "booking_id", booking.ID, "seats", seats)
			result.Released = true
			result.Seats = seats
		}

		return result, nil
	})
}

// releaseUnpaidBooking frees the seats the booking's user holds on its show
// and then removes the booking. The two writes are not atomic. When the
// booking is paid between them the freed seats are handed back and the
// booking is reported as not released.
func (app *Application) releaseUnpaidBooking(ctx context.Context, logger *slog.Logger, booking *domain.Booking) ([]string, bool, error) {
	released, err := app.changeSeats(ctx, booking, func(show *domain.Show) []string {
		return show.ReleaseSeats(booking.UserID, booking.BookedSeats)
	})
	if err != nil {
		return nil, false, err
	}

	err = app.bookingRepo.DeleteUnpaid(ctx, booking.ID)
	if err == nil {
		return released, true, nil
	}

	if !errors.Is(err, domain.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("delete booking %s: %w", booking.ID, err)
	}

	current, err := app.bookingRepo.GetById(ctx, booking.ID)
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		return released, true, nil
	case err != nil:
		return nil, false, fmt.Errorf("get booking %s: %w", booking.ID, err)
	case !current.IsPaid:
		return nil, false, fmt.Errorf("booking %s was not deleted while unpaid", booking.ID)
	}

	logger.Warn("booking paid during release, restoring seats", "booking_id", booking.ID, "seats", released)

	restored, err := app.changeSeats(ctx, booking, func(show *domain.Show) []string {
		return show.OccupySeats(booking.UserID, released)
	})
	if err != nil {
		return nil, false, fmt.Errorf("restore seats of booking %s: %w", booking.ID, err)
	}

	if len(restored) != len(released) {
		logger.Error("seats of paid booking were taken", "booking_id", booking.ID, "released", released, "restored", restored)
	}

	return nil, false, nil
}

// reclaimPaidSeats gives a paid booking back any of its seats that are free,
// which only happens when an earlier release lost the race with the payment.
func (app *Application) reclaimPaidSeats(ctx context.Context, logger *slog.Logger, booking *domain.Booking) error {
	reclaimed, err := app.changeSeats(ctx, booking, func(show *domain.Show) []string {
		return show.OccupySeats(booking.UserID, booking.BookedSeats)
	})
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil
		}

		return err
	}

	if len(reclaimed) > 0 {
		logger.Warn("reclaimed seats of paid booking", "booking_id", booking.ID, "seats", reclaimed)
	}

	return nil
}

// changeSeats applies change to the booking's show and persists it, retrying
// on version conflicts. Nothing is written when change returns no seats.
func (app *Application) changeSeats(ctx context.Context, booking *domain.Booking, change func(*domain.Show) []string) ([]string, error) {
	for attempt := 1; ; attempt++ {
		show, err := app.showRepo.GetById(ctx, booking.ShowID)
		if err != nil {
			if errors.Is(err, domain.ErrRecordNotFound) {
				return nil, events.NonRetriable(fmt.Errorf("show %s of booking %s: %w", booking.ShowID, booking.ID, err))
			}

			return nil, fmt.Errorf("get show %s: %w", booking.ShowID, err)
		}

		changed := change(show)
		if len(changed) == 0 {
			return changed, nil
		}

		err = app.showRepo.UpdateOccupiedSeats(ctx, show)
		if err == nil {
			return changed, nil
		}

		if !errors.Is(err, domain.ErrEditConflict) || attempt == maxSeatReleaseAttempts {
			return nil, fmt.Errorf("update seats of show %s: %w", show.ID, err)
		}
	}
}

func (app *Application) sendBookingConfirmationEmail(ctx context.Context, in events.Input) (any, error) {
	var payload domain.BookingPayload

	err := app.decodeEvent(in.Event, &payload)
	if err != nil {
		return nil, err
	}

	details, err := app.bookingRepo.GetDetailsById(ctx, payload.BookingID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, events.NonRetriable(fmt.Errorf("booking %s: %w", payload.BookingID, err))
		}

		return nil, fmt.Errorf("get booking details %s: %w", payload.BookingID, err)
	}

	data := map[string]any{
		"userName":   details.User.Name,
		"movieTitle": details.Movie.Title,
		"showTime":   details.Show.StartTime,
		"seats":      details.Booking.BookedSeats,
		"amount":     details.Booking.Amount.StringFixed(2),
		"bookingId":  details.Booking.ID,
	}

	err = app.mailer.Send(details.User.Email, "booking_confirmation.tmpl", data)
	if err != nil {
		return nil, fmt.Errorf("send booking confirmation to %s: %w", details.User.ID, err)
	}

	in.Logger.Info("booking confirmation sent", "booking_id", details.Booking.ID, "user_id", details.User.ID)

	return map[string]string{"message": "Email sent"}, nil
}

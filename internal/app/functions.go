package app

import (
	"github.com/metinatakli/movie-ticket-events/internal/domain"
	"github.com/metinatakli/movie-ticket-events/internal/events"
)

const (
	FnSyncUserCreation       = "sync-user-from-clerk"
	FnSyncUserUpdate         = "update-user-from-clerk"
	FnSyncUserDeletion       = "delete-user-with-clerk"
	FnReleaseSeats           = "release-seats-delete-booking"
	FnSendBookingEmail       = "send-booking-confirmation-email"
	FnSendShowReminders      = "send-show-reminders"
	FnSendNewShowNotfication = "send-new-show-notification"

	// Every eight hours, on the hour.
	showRemindersSchedule = "0 */8 * * *"
)

func (app *Application) functions() []events.Function {
	retries := app.config.Events.Retries

	return []events.Function{
		{
			ID:      FnSyncUserCreation,
			Trigger: events.EventTrigger(domain.EventUserCreated),
			Retries: retries,
			Handler: app.syncUserCreation,
		},
		{
			ID:      FnSyncUserUpdate,
			Trigger: events.EventTrigger(domain.EventUserUpdated),
			Retries: retries,
			Handler: app.syncUserUpdate,
		},
		{
			ID:      FnSyncUserDeletion,
			Trigger: events.EventTrigger(domain.EventUserDeleted),
			Retries: retries,
			Handler: app.syncUserDeletion,
		},
		{
			ID:      FnReleaseSeats,
			Trigger: events.EventTrigger(domain.EventCheckPayment),
			Retries: retries,
			Handler: app.releaseSeatsAndDeleteBooking,
		},
		{
			ID:      FnSendBookingEmail,
			Trigger: events.EventTrigger(domain.EventShowBooked),
			Retries: retries,
			Handler: app.sendBookingConfirmationEmail,
		},
		{
			ID:      FnSendShowReminders,
			Trigger: events.CronTrigger(showRemindersSchedule),
			Retries: retries,
			Handler: app.sendShowReminders,
		},
		{
			ID:      FnSendNewShowNotfication,
			Trigger: events.EventTrigger(domain.EventShowAdded),
			Retries: retries,
			Handler: app.sendNewShowNotification,
		},
	}
}

package integration_test

import "time"

const (
	TestAppID         = "movie-ticket-booking-test"
	TestWebhookSecret = "whsec_test_secret"

	// User related constants
	TestUserId    = "user_2freddie"
	TestUserName  = "Freddie Mercury"
	TestUserEmail = "freddie@example.com"

	TestOtherUserId    = "user_2brian"
	TestOtherUserName  = "Brian May"
	TestOtherUserEmail = "brian@example.com"

	// Movie related constants
	TestMovieId    = "movie-dune-3"
	TestMovieTitle = "Dune Part Three"

	// Show and booking related constants
	TestShowId    = "show-1"
	TestBookingId = "booking-1"
	TestAmount    = "24.50"
)

var TestBookedSeats = []string{"G12", "G13"}

// reminderShowTime returns a start time inside the reminder window of a
// tick at now.
func reminderShowTime(now time.Time) time.Time {
	return now.Add(8*time.Hour - 5*time.Minute).Truncate(time.Second)
}

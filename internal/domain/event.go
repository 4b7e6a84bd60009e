package domain

const (
	EventUserCreated  = "clerk/user.created"
	EventUserUpdated  = "clerk/user.updated"
	EventUserDeleted  = "clerk/user.deleted"
	EventCheckPayment = "app/checkpayment"
	EventShowBooked   = "app/show.booked"
	EventShowAdded    = "app/show.added"
)

type BookingPayload struct {
	BookingID string `json:"bookingId" validate:"required"`
}

type ShowAddedPayload struct {
	MovieTitle string `json:"movieTitle" validate:"required"`
}

package models

// BookingInput carries the homeowner-supplied fields for a new booking.
type BookingInput struct {
	HomeownerID string  `json:"homeownerId"`
	ServiceType string  `json:"serviceType"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Address     string  `json:"address"`
	Notes       string  `json:"notes,omitempty"`
	Amount      float64 `json:"serviceAmount,omitempty"` // Explicit price; ignored unless positive
	PaymentRef  string  `json:"paymentRef,omitempty"`    // e.g. a Stripe PaymentIntent id
}

// RatingInput is the body of a rating submission.
type RatingInput struct {
	BookingID  string `json:"bookingId"`
	ProviderID string `json:"providerId"`
	Rating     int    `json:"rating"`
}

// EarningInput is the body of a manual earning entry.
type EarningInput struct {
	BookingID  string   `json:"bookingId"`
	ProviderID string   `json:"providerId"`
	Earning    *float64 `json:"earning"`
}

package models

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusAccepted  BookingStatus = "accepted"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusDeclined  BookingStatus = "declined"
	StatusCancelled BookingStatus = "cancelled"
)

// Booking is a homeowner's request for a service, optionally claimed by a provider.
type Booking struct {
	ID          string `bson:"id" json:"id"`                                       // Unique booking identifier (UUID)
	HomeownerID string `bson:"homeownerId" json:"homeownerId"`                     // Homeowner who created the booking
	ProviderID  string `bson:"providerId,omitempty" json:"providerId,omitempty"`   // Provider who claimed it, empty while open
	ServiceType string `bson:"serviceType" json:"serviceType"`                     // Catalogue key as supplied, e.g. "Plumbing"
	ServiceKey  string `bson:"serviceKey" json:"-"`                                // Normalized ServiceType used for matching
	PaymentRef  string `bson:"paymentRef,omitempty" json:"paymentRef,omitempty"`   // External payment confirmation reference

	ServiceAmount float64 `bson:"serviceAmount" json:"serviceAmount"`

	Date    string `bson:"date" json:"date"`
	Time    string `bson:"time" json:"time"`
	Address string `bson:"address" json:"address"`
	Notes   string `bson:"notes,omitempty" json:"notes,omitempty"`

	Status      BookingStatus `bson:"status" json:"status"`
	IsBooked    bool          `bson:"isBooked" json:"isBooked"`
	IsCancelled bool          `bson:"isCancelled" json:"isCancelled"`

	// Written at most once each.
	ProviderEarning *float64 `bson:"providerEarning,omitempty" json:"providerEarning,omitempty"`
	Rating          *int     `bson:"rating,omitempty" json:"rating,omitempty"`

	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
	AcceptedAt  *time.Time `bson:"acceptedAt,omitempty" json:"acceptedAt,omitempty"`
	CompletedAt *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CancelledAt *time.Time `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
}

// IsTerminal reports whether no further transition is allowed.
func (b *Booking) IsTerminal() bool {
	return b.IsCancelled || b.Status == StatusCancelled || b.Status == StatusCompleted
}

// EarningApplied reports whether a provider earning has been recorded.
func (b *Booking) EarningApplied() bool {
	return b.ProviderEarning != nil
}

package models

import "time"

// Homeowner is the consumer side of a booking. Only the booking back-references
// are maintained here; the profile belongs to the account service.
type Homeowner struct {
	ID         string    `bson:"id" json:"id"`
	FullName   string    `bson:"fullName,omitempty" json:"fullName,omitempty"`
	Email      string    `bson:"email,omitempty" json:"email,omitempty"`
	BookingIDs []string  `bson:"bookingIds" json:"bookingIds"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt,omitzero"`
}

package models

import "time"

// Provider is a service provider and the owner of the aggregate booking statistics.
// The statistic fields are written only by the booking write paths.
type Provider struct {
	ID          string   `bson:"id" json:"id"`
	FullName    string   `bson:"fullName" json:"fullName,omitempty"`
	Email       string   `bson:"email" json:"email,omitempty"`
	Professions []string `bson:"professions" json:"professions"`
	BookingIDs  []string `bson:"bookingIds" json:"bookingIds"`

	TotalAppointments int      `bson:"totalAppointments" json:"totalAppointments"`
	TotalClients      int      `bson:"totalClients" json:"totalClients"`
	ServedClients     []string `bson:"servedClients" json:"-"`
	Earnings          float64  `bson:"earnings" json:"earnings"`
	RatingCount       int      `bson:"ratingCount" json:"ratingCount"`
	AverageRating     float64  `bson:"averageRating" json:"averageRating"`

	// Per-booking guards for the earning and rating side effects, with the value each
	// booking contributed so a lost booking write can be completed with the same value.
	EarnedBookingIDs []string           `bson:"earnedBookingIds" json:"-"`
	EarnedAmounts    map[string]float64 `bson:"earnedAmounts" json:"-"`
	RatedBookingIDs  []string           `bson:"ratedBookingIds" json:"-"`
	BookingRatings   map[string]int     `bson:"bookingRatings" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt,omitzero"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt,omitzero"`
}
